package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/wintheme/internal/controller"
	"github.com/mj1618/wintheme/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a target's module is attached and its mode",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("target", "", "Target preset (see `wintheme targets`)")
	statusCmd.MarkFlagRequired("target")
}

func runStatus(cmd *cobra.Command, args []string) error {
	targetID, _ := cmd.Flags().GetString("target")
	status, err := controller.New(log).Status(targetID)
	if err != nil {
		return err
	}
	return output.Print(status)
}
