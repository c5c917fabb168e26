package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newExtractCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract declared permissions from a single artifact",
	}
	cmd.AddCommand(newExtractAndroidCmd(opts), newExtractIOSCmd(opts))
	return cmd
}

func newExtractAndroidCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "android <artifact>",
		Short: "Extract permissions from an APK or AAB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := opts.controller(args)
			if err != nil {
				return err
			}

			extraction, err := controller.ExtractAndroid(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, extraction)
		},
	}
}

func newExtractIOSCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ios <artifact>",
		Short: "Extract permission keys from an IPA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := opts.controller(nil)
			if err != nil {
				return err
			}

			extraction, err := controller.ExtractIOS(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, extraction)
		},
	}
}

func printJSON(cmd *cobra.Command, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
