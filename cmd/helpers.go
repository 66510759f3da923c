package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/wintheme/internal/config"
	"github.com/mj1618/wintheme/internal/controller"
	"github.com/mj1618/wintheme/internal/model"
)

// targetsFile reads the --targets-file persistent flag.
func targetsFile() string {
	path, _ := rootCmd.PersistentFlags().GetString("targets-file")
	return path
}

// addInjectionFlags adds the flags shared by inject and discover.
func addInjectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("target", "", "Target preset (see `wintheme targets`)")
	cmd.Flags().String("process", "", "Override the target's process name")
	cmd.Flags().Uint32("pid", 0, "Inject into this PID instead of resolving by process name")
	cmd.Flags().String("dll", "", "Path to the theming library (default: shelltap.dll next to the executable)")
	cmd.Flags().Int("wait", 0, "Seconds to wait for the module to come up (0 = default)")
	cmd.MarkFlagRequired("target")
}

// getInjectionOptions assembles InjectOptions from the shared flags.
func getInjectionOptions(cmd *cobra.Command) (controller.InjectOptions, error) {
	targetID, _ := cmd.Flags().GetString("target")
	target, err := config.Lookup(targetID, targetsFile())
	if err != nil {
		return controller.InjectOptions{}, err
	}
	if process, _ := cmd.Flags().GetString("process"); process != "" {
		target.Process = process
	}

	pid, _ := cmd.Flags().GetUint32("pid")
	waitSec, _ := cmd.Flags().GetInt("wait")

	dll, _ := cmd.Flags().GetString("dll")
	if dll == "" {
		dll = defaultDLLPath()
	}
	if _, err := os.Stat(dll); err != nil {
		return controller.InjectOptions{}, fmt.Errorf("theming library not found at %s (build it with `go build -buildmode=c-shared -o shelltap.dll ./shelltap` or pass --dll)", dll)
	}

	return controller.InjectOptions{
		Target:     target,
		PID:        pid,
		DLLPath:    dll,
		AttachWait: time.Duration(waitSec) * time.Second,
	}, nil
}

func defaultDLLPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "shelltap.dll"
	}
	return filepath.Join(filepath.Dir(exe), "shelltap.dll")
}

// parseElements parses repeated --element NAME:TYPE flags.
func parseElements(specs []string) ([]model.Matcher, error) {
	if len(specs) > model.MaxMatchers {
		return nil, fmt.Errorf("too many --element flags: %d (max %d)", len(specs), model.MaxMatchers)
	}
	matchers := make([]model.Matcher, 0, len(specs))
	for _, s := range specs {
		m, err := model.ParseMatcher(s)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}
