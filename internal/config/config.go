package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/pktcodec/internal/protocol"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/pelletier/go-toml/v2"
)

// CodecConfig is the on-disk form of protocol.Options and frame.Limits.
type CodecConfig struct {
	TrailingPolicy string `toml:"trailing_policy"`
	ExtraFields    string `toml:"extra_fields"`
	VerifyLength   *bool  `toml:"verify_length"`
	MaxBodyBytes   uint32 `toml:"max_body_bytes"`
}

func DefaultCodecConfig() CodecConfig {
	verify := true
	return CodecConfig{
		TrailingPolicy: protocol.TrailingWarn.String(),
		ExtraFields:    protocol.ExtraFieldsReject.String(),
		VerifyLength:   &verify,
		MaxBodyBytes:   frame.DefaultLimits().MaxBodyBytes,
	}
}

func LoadCodecConfig(path string) (CodecConfig, error) {
	var cfg CodecConfig
	if err := loadToml(path, &cfg); err != nil {
		return CodecConfig{}, err
	}
	cfg = withDefaults(cfg)
	if err := ValidateCodecConfig(cfg); err != nil {
		return CodecConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func withDefaults(cfg CodecConfig) CodecConfig {
	def := DefaultCodecConfig()
	if strings.TrimSpace(cfg.TrailingPolicy) == "" {
		cfg.TrailingPolicy = def.TrailingPolicy
	}
	if strings.TrimSpace(cfg.ExtraFields) == "" {
		cfg.ExtraFields = def.ExtraFields
	}
	if cfg.VerifyLength == nil {
		cfg.VerifyLength = def.VerifyLength
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	return cfg
}

func ValidateCodecConfig(cfg CodecConfig) error {
	if _, err := protocol.ParseTrailingPolicy(cfg.TrailingPolicy); err != nil {
		return fmt.Errorf("codec config trailing_policy invalid: %w", err)
	}
	if _, err := protocol.ParseExtraFieldsPolicy(cfg.ExtraFields); err != nil {
		return fmt.Errorf("codec config extra_fields invalid: %w", err)
	}
	if cfg.MaxBodyBytes == 0 {
		return fmt.Errorf("codec config max_body_bytes must be positive")
	}
	return nil
}

// Options converts cfg into codec options. Unset fields take their defaults.
func (cfg CodecConfig) Options() (protocol.Options, error) {
	cfg = withDefaults(cfg)
	trailing, err := protocol.ParseTrailingPolicy(cfg.TrailingPolicy)
	if err != nil {
		return protocol.Options{}, err
	}
	extra, err := protocol.ParseExtraFieldsPolicy(cfg.ExtraFields)
	if err != nil {
		return protocol.Options{}, err
	}
	return protocol.Options{
		Trailing:     trailing,
		ExtraFields:  extra,
		VerifyLength: *cfg.VerifyLength,
	}, nil
}

func (cfg CodecConfig) Limits() frame.Limits {
	return frame.Limits{MaxBodyBytes: withDefaults(cfg).MaxBodyBytes}
}
