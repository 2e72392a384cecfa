package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/danmuck/pktcodec/internal/observability"
	"github.com/danmuck/pktcodec/internal/output"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		schemePath string
		inPath     string
		asHex      bool
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Deserialize packets into records",
		Long: `Deserialize packets into records.

Input is read as a stream of back-to-back packets until end of input. Every
packet is decoded with the same scheme. With --workers above 1 packets are
decoded concurrently; records are still printed in input order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scheme.LoadFile(schemePath)
			if err != nil {
				return err
			}
			r, closeIn, err := openInput(cmd, inPath, hexFlag(cmd, asHex, a.profile.Hex))
			if err != nil {
				return err
			}
			defer closeIn()

			var packets []frame.Packet
			if err := eachPacket(r, a, observability.OpDecode, func(p frame.Packet) error {
				packets = append(packets, p)
				return nil
			}); err != nil {
				return err
			}

			results, err := decodeAll(cmd.Context(), a, s, packets, workers)
			if err != nil {
				return err
			}
			for _, res := range results {
				fmt.Fprint(cmd.OutOrStdout(), res)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemePath, "scheme", "", "scheme document (YAML or JSON)")
	cmd.Flags().StringVar(&inPath, "in", "", "input file (default stdin)")
	cmd.Flags().BoolVar(&asHex, "hex", false, "read the input as hex text")
	cmd.Flags().IntVar(&workers, "workers", 1, "packets decoded concurrently; output keeps input order")
	_ = cmd.MarkFlagRequired("scheme")
	return cmd
}

// decodeAll decodes packets with up to workers goroutines and returns the
// formatted results in input order. The first failure cancels the rest.
func decodeAll(ctx context.Context, a *app, s *scheme.Scheme, packets []frame.Packet, workers int) ([]string, error) {
	if workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", workers)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]string, len(packets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range packets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			rec, err := a.codec.Deserialize(s, p)
			elapsed := time.Since(start)
			observability.RecordCodecOp(observability.OpDecode, len(p.Body), elapsed, err)
			observability.LogCodecOp(a.logger, observability.OpDecode, p.ID, len(p.Body), elapsed, err)
			if err != nil {
				return fmt.Errorf("decode packet %d (id %d): %w", i, p.ID, err)
			}
			results[i] = a.formatter.Format(output.Decoded{
				Packet: output.ViewHeader(p.Header()),
				Record: rec,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// eachPacket reads framed packets from r until a clean end of input. Framing
// errors are counted under op and stop the loop.
func eachPacket(r io.Reader, a *app, op string, fn func(frame.Packet) error) error {
	count := 0
	for {
		p, err := frame.ReadFrom(r, a.limits)
		if errors.Is(err, io.EOF) {
			if count == 0 {
				err = frame.ErrTruncatedHeader
			} else {
				return nil
			}
		}
		if err != nil {
			observability.RecordCodecOp(op, 0, 0, err)
			observability.LogCodecOp(a.logger, op, 0, 0, 0, err)
			return fmt.Errorf("read packet %d: %w", count, err)
		}
		if err := fn(p); err != nil {
			return err
		}
		count++
	}
}
