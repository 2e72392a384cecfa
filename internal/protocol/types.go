package protocol

import (
	"fmt"
	"strings"
)

// TrailingPolicy decides what Deserialize does with body bytes left over
// after the last scheme field.
type TrailingPolicy int

const (
	// TrailingWarn logs and reports the leftover bytes but returns the record.
	TrailingWarn TrailingPolicy = iota
	TrailingIgnore
	TrailingReject
)

// ExtraFieldsPolicy decides what Serialize does with record fields that an
// explicit scheme does not name.
type ExtraFieldsPolicy int

const (
	ExtraFieldsReject ExtraFieldsPolicy = iota
	ExtraFieldsIgnore
)

// Options tunes a Codec. The zero value is not the default; use
// DefaultOptions.
type Options struct {
	Trailing    TrailingPolicy
	ExtraFields ExtraFieldsPolicy
	// VerifyLength makes Deserialize check BodyLength against the body.
	VerifyLength bool
	// OnTrailing is called under TrailingWarn for every packet with leftover
	// bytes. It must be safe for concurrent use if the Codec is shared.
	OnTrailing func(id uint32, err TrailingBytesError)
}

func DefaultOptions() Options {
	return Options{
		Trailing:     TrailingWarn,
		ExtraFields:  ExtraFieldsReject,
		VerifyLength: true,
	}
}

func (p TrailingPolicy) String() string {
	switch p {
	case TrailingWarn:
		return "warn"
	case TrailingIgnore:
		return "ignore"
	case TrailingReject:
		return "reject"
	default:
		return fmt.Sprintf("trailing(%d)", int(p))
	}
}

func ParseTrailingPolicy(raw string) (TrailingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "warn":
		return TrailingWarn, nil
	case "ignore":
		return TrailingIgnore, nil
	case "reject", "error":
		return TrailingReject, nil
	default:
		return 0, fmt.Errorf("protocol: unknown trailing policy %q", raw)
	}
}

func (p ExtraFieldsPolicy) String() string {
	switch p {
	case ExtraFieldsReject:
		return "reject"
	case ExtraFieldsIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("extra_fields(%d)", int(p))
	}
}

func ParseExtraFieldsPolicy(raw string) (ExtraFieldsPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "reject":
		return ExtraFieldsReject, nil
	case "ignore":
		return ExtraFieldsIgnore, nil
	default:
		return 0, fmt.Errorf("protocol: unknown extra_fields policy %q", raw)
	}
}
