package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pktcodec/internal/protocol"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
	"github.com/danmuck/pktcodec/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	personRecord = "name: Vasya\nage: 16\nnumbers: [32, 25, 78]\n"
	personScheme = "name: string\nage: int32\nnumbers: '[]byte'\n"
	// id 32, body {Vasya, 16, [32 25 78]}
	personHex = "00000020" + "00000000" + "00000014" +
		"00000005" + "5661737961" + "00000010" + "00000003" + "20194e"
)

func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	testlog.Start(t)
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pktctl version")
}

func TestEncodeInferredHex(t *testing.T) {
	dir := t.TempDir()
	rec := writeFile(t, dir, "rec.yaml", personRecord)

	out, _, err := executeCommand(t, "", "encode", "--id", "32", "--record", rec, "--hex")
	require.NoError(t, err)
	assert.Equal(t, personHex, strings.TrimSpace(out))
}

func TestEncodeWithSchemeToFile(t *testing.T) {
	dir := t.TempDir()
	// record order differs from the scheme; the scheme decides wire order
	rec := writeFile(t, dir, "rec.yaml", "numbers: [32, 25, 78]\nname: Vasya\nage: 16\n")
	s := writeFile(t, dir, "scheme.yaml", personScheme)
	target := filepath.Join(dir, "out.bin")

	_, _, err := executeCommand(t, "", "encode", "--id", "32", "--record", rec, "--scheme", s, "--out", target)
	require.NoError(t, err)

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, personHex, hex.EncodeToString(raw))
}

func TestEncodeEmptyRecordIsHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	rec := writeFile(t, dir, "rec.yaml", "{}\n")

	out, _, err := executeCommand(t, "", "encode", "--id", "13", "--record", rec, "--hex")
	require.NoError(t, err)
	assert.Equal(t, "0000000d0000000000000000", strings.TrimSpace(out))
}

func TestEncodeRejectsUnsupportedValue(t *testing.T) {
	dir := t.TempDir()
	rec := writeFile(t, dir, "rec.yaml", "name: Vasya\nweight: 61.5\n")

	_, _, err := executeCommand(t, "", "encode", "--record", rec, "--hex")
	var uerr scheme.UnsupportedValueTypeError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "weight", uerr.Field)
}

func TestEncodeMissingField(t *testing.T) {
	dir := t.TempDir()
	rec := writeFile(t, dir, "rec.yaml", "name: Vasya\n")
	s := writeFile(t, dir, "scheme.yaml", personScheme)

	_, _, err := executeCommand(t, "", "encode", "--record", rec, "--scheme", s, "--hex")
	assert.Equal(t, protocol.KindMissingField, protocol.KindOf(err))
}

func TestDecodeHexJSON(t *testing.T) {
	dir := t.TempDir()
	s := writeFile(t, dir, "scheme.yaml", personScheme)

	out, _, err := executeCommand(t, personHex+"\n", "decode", "--scheme", s, "--hex", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"packet": {"id": 32, "reserved": 0, "body_length": 20},
		"record": {"name": "Vasya", "age": 16, "numbers": "IBlO"}
	}`, out)
}

func TestDecodeStreamOfPackets(t *testing.T) {
	dir := t.TempDir()
	s := writeFile(t, dir, "scheme.yaml", personScheme)
	one, err := hex.DecodeString(personHex)
	require.NoError(t, err)
	two, err := protocol.New(protocol.DefaultOptions()).Marshal(33,
		mustRecord(t, "name: Petya\nage: 17\nnumbers: []\n"), mustScheme(t, personScheme))
	require.NoError(t, err)
	in := writeFile(t, dir, "stream.bin", string(append(one, two...)))

	out, _, err := executeCommand(t, "", "decode", "--scheme", s, "--in", in, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Vasya")
	assert.Contains(t, out, "name: Petya")
	assert.Less(t, strings.Index(out, "Vasya"), strings.Index(out, "Petya"))
}

func TestDecodeWorkersKeepOrder(t *testing.T) {
	dir := t.TempDir()
	s := writeFile(t, dir, "scheme.yaml", personScheme)
	codec := protocol.New(protocol.DefaultOptions())
	sch := mustScheme(t, personScheme)

	var stream []byte
	for i := 0; i < 20; i++ {
		doc := fmt.Sprintf("name: user-%02d\nage: %d\nnumbers: [%d]\n", i, i, i)
		raw, err := codec.Marshal(uint32(i), mustRecord(t, doc), sch)
		require.NoError(t, err)
		stream = append(stream, raw...)
	}
	in := writeFile(t, dir, "stream.bin", string(stream))

	out, _, err := executeCommand(t, "", "decode", "--scheme", s, "--in", in, "--workers", "4", "-o", "yaml")
	require.NoError(t, err)
	last := -1
	for i := 0; i < 20; i++ {
		idx := strings.Index(out, fmt.Sprintf("name: user-%02d", i))
		require.Greater(t, idx, last, "record %d out of order", i)
		last = idx
	}

	_, _, err = executeCommand(t, "", "decode", "--scheme", s, "--in", in, "--workers", "0")
	assert.ErrorContains(t, err, "workers")
}

func TestDecodeTrailingPolicyFromCodecConfig(t *testing.T) {
	dir := t.TempDir()
	s := writeFile(t, dir, "scheme.yaml", personScheme)
	codec := writeFile(t, dir, "codec.toml", "trailing_policy = \"reject\"\n")
	// same body plus two trailing bytes, body_length 22
	withTrailing := "00000020" + "00000000" + "00000016" + personHex[24:] + "dead"

	_, _, err := executeCommand(t, withTrailing, "decode", "--scheme", s, "--hex")
	require.NoError(t, err)

	_, _, err = executeCommand(t, withTrailing, "decode", "--scheme", s, "--hex", "--codec-config", codec)
	var terr protocol.TrailingBytesError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 2, terr.Count)
}

func TestDecodeTruncatedInput(t *testing.T) {
	dir := t.TempDir()
	s := writeFile(t, dir, "scheme.yaml", personScheme)

	_, _, err := executeCommand(t, "000000", "decode", "--scheme", s, "--hex")
	assert.ErrorIs(t, err, frame.ErrTruncatedHeader)

	_, _, err = executeCommand(t, personHex[:len(personHex)-2], "decode", "--scheme", s, "--hex")
	assert.ErrorIs(t, err, frame.ErrTruncatedBody)

	_, _, err = executeCommand(t, "", "decode", "--scheme", s)
	assert.ErrorIs(t, err, frame.ErrTruncatedHeader)
}

func TestDecodeBodyLimit(t *testing.T) {
	dir := t.TempDir()
	s := writeFile(t, dir, "scheme.yaml", personScheme)
	codec := writeFile(t, dir, "codec.toml", "max_body_bytes = 8\n")

	_, _, err := executeCommand(t, personHex, "decode", "--scheme", s, "--hex", "--codec-config", codec)
	assert.ErrorIs(t, err, frame.ErrBodyTooLarge)
}

func TestInspectHeaderOnly(t *testing.T) {
	out, _, err := executeCommand(t, personHex, "inspect", "--hex", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: 32")
	assert.Contains(t, out, "body_length: 20")
	assert.NotContains(t, out, "body:")

	out, _, err = executeCommand(t, personHex, "inspect", "--hex", "--body", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"body": "000000055661737961`)
}

func TestSchemeInferAndShow(t *testing.T) {
	dir := t.TempDir()
	rec := writeFile(t, dir, "rec.yaml", personRecord)

	out, _, err := executeCommand(t, "", "scheme", "infer", "--record", rec, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"string","age":"int32","numbers":"[]byte"}`, compactJSON(t, out))

	s := writeFile(t, dir, "scheme.json", `{"name":"string","age":"int32"}`)
	out, _, err = executeCommand(t, "", "scheme", "show", s)
	require.NoError(t, err)
	assert.Contains(t, out, "age")

	bad := writeFile(t, dir, "bad.yaml", "name: float64\n")
	_, _, err = executeCommand(t, "", "scheme", "show", bad)
	assert.ErrorIs(t, err, scheme.ErrUnknownType)
}

func TestConfigTemplateAndValidate(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "codec.toml")

	out, _, err := executeCommand(t, "", "config", "template", "--kind", "codec", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote codec config template")

	_, _, err = executeCommand(t, "", "config", "template", "--kind", "codec", "--out", target)
	assert.ErrorContains(t, err, "already exists")

	out, _, err = executeCommand(t, "", "config", "validate", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Validated codec config")

	out, _, err = executeCommand(t, "", "config", "template", "--kind", "pktctl")
	require.NoError(t, err)
	profilePath := writeFile(t, dir, "pktctl.toml", out)
	_, _, err = executeCommand(t, "", "config", "validate", "--kind", "pktctl", profilePath)
	require.NoError(t, err)
}

func TestProfileDefaults(t *testing.T) {
	dir := t.TempDir()
	rec := writeFile(t, dir, "rec.yaml", personRecord)
	writeFile(t, dir, "codec.toml", "extra_fields = \"ignore\"\n")
	profilePath := writeFile(t, dir, "pktctl.toml", `output = "yaml"
codec_config = "codec.toml"
default_id = 32
hex = true
`)

	out, _, err := executeCommand(t, "", "--config", profilePath, "encode", "--record", rec)
	require.NoError(t, err)
	assert.Equal(t, personHex, strings.TrimSpace(out))

	out, _, err = executeCommand(t, personHex, "--config", profilePath, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "body_length: 20")
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()

	p, err := loadProfile(writeFile(t, dir, "empty.toml", ""))
	require.NoError(t, err)
	assert.Equal(t, defaultProfile(), p)

	p, err = loadProfile(writeFile(t, dir, "abs.toml", "codec_config = \"/etc/pktcodec/codec.toml\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "/etc/pktcodec/codec.toml", p.CodecConfig)

	_, err = loadProfile(writeFile(t, dir, "fmt.toml", "output = \"xml\"\n"))
	assert.ErrorContains(t, err, "output")

	_, err = loadProfile(writeFile(t, dir, "id.toml", "default_id = -1\n"))
	assert.ErrorContains(t, err, "default_id")

	_, err = loadProfile(writeFile(t, dir, "unknown.toml", "colour = \"red\"\n"))
	assert.ErrorContains(t, err, "unknown keys")

	_, err = loadProfile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestMetricsFlagDumpsCounters(t *testing.T) {
	_, stderr, err := executeCommand(t, personHex, "--metrics", "inspect", "--hex")
	require.NoError(t, err)
	assert.Contains(t, stderr, "pktcodec_codec_packets_total")
	assert.Contains(t, stderr, `op="inspect"`)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, _, err := executeCommand(t, "", "-o", "xml", "version")
	assert.ErrorContains(t, err, "unknown output format")
}
