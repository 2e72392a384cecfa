package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/danmuck/pktcodec/internal/observability"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/danmuck/pktcodec/internal/protocol/record"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
	"github.com/spf13/cobra"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		id         uint32
		recordPath string
		schemePath string
		outPath    string
		asHex      bool
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Serialize a record document into a packet",
		Long: `Serialize a record document into a packet.

Without --scheme the wire types are inferred from the record values in
document order: strings, integers and byte arrays (!!binary or a list of
0..255 integers) are accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("id") {
				id = a.profile.DefaultID
			}
			rec, err := record.LoadFile(recordPath)
			if err != nil {
				return err
			}
			var s *scheme.Scheme
			if schemePath != "" {
				if s, err = scheme.LoadFile(schemePath); err != nil {
					return err
				}
			}

			start := time.Now()
			p, err := a.codec.Serialize(id, rec, s)
			elapsed := time.Since(start)
			observability.RecordCodecOp(observability.OpEncode, len(p.Body), elapsed, err)
			observability.LogCodecOp(a.logger, observability.OpEncode, id, len(p.Body), elapsed, err)
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}

			w, closeOut, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}
			if hexFlag(cmd, asHex, a.profile.Hex) {
				_, err = fmt.Fprintln(w, hex.EncodeToString(frame.ToBytes(p)))
			} else {
				_, err = frame.WriteTo(w, p, a.limits)
			}
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("write packet: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().Uint32Var(&id, "id", 0, "packet id (default from profile)")
	cmd.Flags().StringVar(&recordPath, "record", "", "record document (YAML or JSON)")
	cmd.Flags().StringVar(&schemePath, "scheme", "", "scheme document; inferred from the record when omitted")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&asHex, "hex", false, "write the packet as hex text")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}
