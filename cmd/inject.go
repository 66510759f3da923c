package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/wintheme/internal/controller"
	"github.com/mj1618/wintheme/internal/model"
	"github.com/mj1618/wintheme/internal/output"
)

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Inject the theming library into a shell process",
	Long: `Publish the target's configuration through shared memory, load the
theming library into the shell process, and wait for it to attach.

Examples:
  wintheme inject --target Taskbar --mode acrylic
  wintheme inject --target Taskbar --element BackgroundFill:Rectangle --mode transparent
  wintheme inject --target StartMenu --pid 4242`,
	RunE: runInject,
}

func init() {
	rootCmd.AddCommand(injectCmd)
	addInjectionFlags(injectCmd)
	injectCmd.Flags().String("mode", "default", "Initial mode: default, transparent, acrylic")
	injectCmd.Flags().StringArray("element", nil, "Target element as NAME:TYPE (repeatable, overrides the preset)")
	injectCmd.Flags().String("log", "", "Module log path override, used if the config falls back to discovery")
}

func runInject(cmd *cobra.Command, args []string) error {
	opts, err := getInjectionOptions(cmd)
	if err != nil {
		return err
	}

	modeName, _ := cmd.Flags().GetString("mode")
	opts.Mode, err = model.ParseMode(modeName)
	if err != nil {
		return err
	}

	opts.LogPath, _ = cmd.Flags().GetString("log")

	if specs, _ := cmd.Flags().GetStringArray("element"); len(specs) > 0 {
		opts.Target.Elements, err = parseElements(specs)
		if err != nil {
			return err
		}
	}

	res, err := controller.New(log).Inject(opts)
	if err != nil {
		return err
	}
	return output.Print(res)
}
