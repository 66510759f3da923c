package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/wintheme/internal/controller"
	"github.com/mj1618/wintheme/internal/output"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Map a shell process's visual tree without mutating it",
	Long: `Inject the theming library with no element descriptors: it observes
the host's visual tree and writes one log line per element, so the names
and types worth targeting can be read off before writing matchers.

Examples:
  wintheme discover --target StartMenu
  wintheme discover --target Taskbar --log C:\temp\taskbar.log`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	addInjectionFlags(discoverCmd)
	discoverCmd.Flags().String("log", "", "Discovery log path (default: next to the library)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	opts, err := getInjectionOptions(cmd)
	if err != nil {
		return err
	}
	opts.Discovery = true
	opts.LogPath, _ = cmd.Flags().GetString("log")

	res, err := controller.New(log).Inject(opts)
	if err != nil {
		return err
	}
	return output.Print(res)
}
