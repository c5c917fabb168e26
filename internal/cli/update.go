package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "update <artifact>...",
		Short: "Approve the current permission sets as the new baseline",
		Long: `Extracts the permissions of every given artifact and unconditionally
overwrites the stored baseline with the result, regardless of drift.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := opts.controller(args)
			if err != nil {
				return err
			}

			b, err := controller.Update(cmd.Context(), args)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"baseline updated: %d android permission(s), %d ios permission key(s)\n",
				len(b.Android), len(b.IOS))
			return nil
		},
	}
}
