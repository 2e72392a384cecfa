package main

import (
	"fmt"

	"github.com/danmuck/pktcodec/internal/protocol/record"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
	"github.com/spf13/cobra"
)

func newSchemeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheme",
		Short: "Work with scheme documents",
	}
	cmd.AddCommand(newSchemeInferCmd(a), newSchemeShowCmd(a))
	return cmd
}

func newSchemeInferCmd(a *app) *cobra.Command {
	var recordPath string
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Print the scheme encode would infer for a record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := record.LoadFile(recordPath)
			if err != nil {
				return err
			}
			s, err := scheme.Infer(rec)
			if err != nil {
				return fmt.Errorf("infer: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.formatter.Format(s))
			return nil
		},
	}
	cmd.Flags().StringVar(&recordPath, "record", "", "record document (YAML or JSON)")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

func newSchemeShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <scheme-file>",
		Short: "Validate a scheme document and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scheme.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.formatter.Format(s))
			return nil
		},
	}
}
