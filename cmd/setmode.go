package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/wintheme/internal/controller"
	"github.com/mj1618/wintheme/internal/model"
	"github.com/mj1618/wintheme/internal/output"
)

var setModeCmd = &cobra.Command{
	Use:   "set-mode",
	Short: "Change the appearance mode of an attached target",
	Long: `Write a new appearance mode into a running module's shared-memory
channel. The module picks it up within its poll interval (250ms) and
reapplies it to every tracked element. Requires a prior inject.

Examples:
  wintheme set-mode --target Taskbar --mode acrylic
  wintheme set-mode --target Taskbar --mode default`,
	RunE: runSetMode,
}

func init() {
	rootCmd.AddCommand(setModeCmd)
	setModeCmd.Flags().String("target", "", "Target preset (see `wintheme targets`)")
	setModeCmd.Flags().String("mode", "", "Mode: default, transparent, acrylic")
	setModeCmd.MarkFlagRequired("target")
	setModeCmd.MarkFlagRequired("mode")
}

func runSetMode(cmd *cobra.Command, args []string) error {
	targetID, _ := cmd.Flags().GetString("target")
	modeName, _ := cmd.Flags().GetString("mode")
	mode, err := model.ParseMode(modeName)
	if err != nil {
		return err
	}

	ctrl := controller.New(log)
	if err := ctrl.SetMode(targetID, mode); err != nil {
		return err
	}
	status, err := ctrl.Status(targetID)
	if err != nil {
		return err
	}
	return output.Print(status)
}
