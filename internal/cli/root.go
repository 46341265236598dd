// Package cli implements the quarkxr command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"quarkxr/internal/buildinfo"
)

var (
	// Global flags
	configPath string
	logLevel   string
	scriptPath string
	lockstep   bool
)

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quarkxr",
		Short: "XR tracked-device pose synchronization demo",
		Long: `quarkxr drives a simulated XR runtime and synchronizes the poses of the
headset and hand controllers into a scene hierarchy once per frame.

Trackers are adopted under the tracking root as they spawn; their transforms are
written from poses predicted for the frame's display time.`,
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringVar(&scriptPath, "script", "", "replay a pose script instead of the built-in motion")
	rootCmd.PersistentFlags().BoolVar(&lockstep, "lockstep", false, "drive one runtime frame per tick")

	rootCmd.AddCommand(newWindowCommand())
	rootCmd.AddCommand(newHeadlessCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
