package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/wintheme/internal/config"
	"github.com/mj1618/wintheme/internal/output"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the known target presets and their element matchers",
	RunE:  runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	targets, err := config.Targets(targetsFile())
	if err != nil {
		return err
	}
	return output.Print(output.TargetsResult{Targets: targets})
}
