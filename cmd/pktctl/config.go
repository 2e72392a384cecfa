package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pktcodec/internal/output"
)

// profile carries per-user pktctl defaults.
type profile struct {
	Output      string
	CodecConfig string
	DefaultID   uint32
	Hex         bool
}

type fileProfile struct {
	Output      string `toml:"output"`
	CodecConfig string `toml:"codec_config"`
	DefaultID   int64  `toml:"default_id"`
	Hex         bool   `toml:"hex"`
}

func defaultProfile() profile {
	return profile{Output: "table"}
}

func loadProfile(path string) (profile, error) {
	p := defaultProfile()

	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return profile{}, fmt.Errorf("load pktctl profile: %w", err)
	}

	if meta.IsDefined("output") {
		format := strings.ToLower(strings.TrimSpace(raw.Output))
		if !output.ValidFormat(format) {
			return profile{}, fmt.Errorf("profile output %q: want one of %v", raw.Output, output.Formats)
		}
		if format != "" {
			p.Output = format
		}
	}

	if meta.IsDefined("codec_config") {
		codecPath := strings.TrimSpace(raw.CodecConfig)
		if codecPath != "" && !filepath.IsAbs(codecPath) {
			codecPath = filepath.Join(filepath.Dir(path), codecPath)
		}
		p.CodecConfig = codecPath
	}

	if meta.IsDefined("default_id") {
		if raw.DefaultID < 0 || raw.DefaultID > math.MaxUint32 {
			return profile{}, fmt.Errorf("profile default_id %d out of range", raw.DefaultID)
		}
		p.DefaultID = uint32(raw.DefaultID)
	}

	if meta.IsDefined("hex") {
		p.Hex = raw.Hex
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return profile{}, fmt.Errorf("profile has unknown keys: %v", undecoded)
	}

	return p, nil
}
