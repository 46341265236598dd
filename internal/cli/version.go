package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quarkxr/internal/buildinfo"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "quarkxr "+buildinfo.String())
			return err
		},
	}
}
