package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// openInput returns the packet stream named by path, or stdin when path is
// empty or "-". Hex input may contain whitespace between bytes.
func openInput(cmd *cobra.Command, path string, isHex bool) (io.Reader, func(), error) {
	r := io.Reader(cmd.InOrStdin())
	closeFn := func() {}
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		r = f
		closeFn = func() { _ = f.Close() }
	}
	if !isHex {
		return r, closeFn, nil
	}
	defer closeFn()
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	raw, err := hex.DecodeString(strings.Join(strings.Fields(string(text)), ""))
	if err != nil {
		return nil, nil, fmt.Errorf("decode hex input: %w", err)
	}
	return bytes.NewReader(raw), func() {}, nil
}

// openOutput returns path for writing, or the command's stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, f.Close, nil
}

func hexFlag(cmd *cobra.Command, value, profileDefault bool) bool {
	if cmd.Flags().Changed("hex") {
		return value
	}
	return profileDefault
}
