package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"permgate/internal/drift"
)

func newValidateCmd(opts *options) *cobra.Command {
	var (
		jsonOutput bool
		ciMode     bool
	)

	cmd := &cobra.Command{
		Use:   "validate <artifact>...",
		Short: "Validate artifacts against the approved permission baseline",
		Long: `Extracts the permissions of every given artifact and diffs them against
the stored baseline. If the baseline file is absent the current extraction
is written as the initial baseline and the run passes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := opts.controller(args)
			if err != nil {
				return err
			}

			outcome, err := controller.Validate(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				rendered, err := drift.FormatJSON(outcome.Report)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, rendered)
			} else {
				if outcome.FirstRun {
					fmt.Fprintln(cmd.ErrOrStderr(), "no baseline found; current extraction saved as initial baseline")
				}
				fmt.Fprint(out, drift.FormatCLI(outcome.Report))
				if ciMode && outcome.Report.HasDrift {
					fmt.Fprint(out, drift.FormatCI(outcome.Report))
				}
			}

			if outcome.Report.HasDrift {
				return drift.ErrDriftDetected
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the verdict as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "additionally emit GitHub Actions annotations")

	return cmd
}
