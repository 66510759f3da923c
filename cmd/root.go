package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/wintheme/internal/logging"
	"github.com/mj1618/wintheme/internal/output"
	"github.com/mj1618/wintheme/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "wintheme",
	Short: "Theme Windows shell surfaces by rewriting their live XAML trees",
	Long: `A CLI tool that injects a theming library into Windows shell processes
(taskbar, start menu, action center) and rewrites their XAML visual trees:
transparent or acrylic backgrounds without patching any binaries on disk.`,
}

// log is the controller-side logger, configured by --verbose.
var log = zap.NewNop()

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log controller steps to stderr")
	rootCmd.PersistentFlags().String("targets-file", "", "YAML file overriding the built-in target presets")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		if pretty, _ := rootCmd.PersistentFlags().GetBool("pretty"); pretty {
			output.PrettyOutput = true
		}
		if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
			log = logging.NewConsoleLogger(true)
		}
		return nil
	}
}
