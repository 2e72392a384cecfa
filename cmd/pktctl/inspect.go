package main

import (
	"fmt"
	"time"

	"github.com/danmuck/pktcodec/internal/observability"
	"github.com/danmuck/pktcodec/internal/output"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		inPath   string
		asHex    bool
		withBody bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print packet headers without decoding bodies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeIn, err := openInput(cmd, inPath, hexFlag(cmd, asHex, a.profile.Hex))
			if err != nil {
				return err
			}
			defer closeIn()

			return eachPacket(r, a, observability.OpInspect, func(p frame.Packet) error {
				start := time.Now()
				err := p.Verify()
				elapsed := time.Since(start)
				observability.RecordCodecOp(observability.OpInspect, len(p.Body), elapsed, err)
				observability.LogCodecOp(a.logger, observability.OpInspect, p.ID, len(p.Body), elapsed, err)
				if err != nil {
					return fmt.Errorf("inspect packet %d: %w", p.ID, err)
				}
				view := output.ViewHeader(p.Header())
				if withBody {
					view = output.ViewPacket(p)
				}
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.Format(view))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input file (default stdin)")
	cmd.Flags().BoolVar(&asHex, "hex", false, "read the input as hex text")
	cmd.Flags().BoolVar(&withBody, "body", false, "include the body as hex")
	return cmd
}
