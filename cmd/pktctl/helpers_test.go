package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/danmuck/pktcodec/internal/protocol/record"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
	"github.com/stretchr/testify/require"
)

func mustRecord(t *testing.T, doc string) *record.Record {
	t.Helper()
	rec, err := record.ParseYAML([]byte(doc))
	require.NoError(t, err)
	return rec
}

func mustScheme(t *testing.T, doc string) *scheme.Scheme {
	t.Helper()
	s, err := scheme.ParseYAML([]byte(doc))
	require.NoError(t, err)
	return s
}

func compactJSON(t *testing.T, in string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.Compact(&buf, []byte(in)))
	return buf.String()
}
