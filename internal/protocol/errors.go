package protocol

import (
	"errors"
	"fmt"

	"github.com/danmuck/pktcodec/internal/protocol/field"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
)

var ErrNilScheme = errors.New("protocol: deserialize needs a scheme")

// MissingFieldError indicates a scheme field absent from the record.
type MissingFieldError struct {
	Name string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("protocol: missing field %q", e.Name)
}

// UnexpectedFieldError indicates a record field the explicit scheme does not
// name.
type UnexpectedFieldError struct {
	Name string
}

func (e UnexpectedFieldError) Error() string {
	return fmt.Sprintf("protocol: field %q not in scheme", e.Name)
}

// TrailingBytesError reports body bytes left after the last scheme field.
type TrailingBytesError struct {
	Count  int
	Offset int
}

func (e TrailingBytesError) Error() string {
	return fmt.Sprintf("protocol: %d trailing bytes after offset %d", e.Count, e.Offset)
}

// FieldError ties a wire error to the scheme field being processed.
type FieldError struct {
	Name string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("protocol: field %q: %v", e.Name, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Kind is a coarse error class, stable enough for metric labels.
type Kind string

const (
	KindNone                 Kind = ""
	KindUnsupportedValueType Kind = "unsupported_value_type"
	KindValueOutOfRange      Kind = "value_out_of_range"
	KindTypeMismatch         Kind = "type_mismatch"
	KindMissingField         Kind = "missing_field"
	KindUnexpectedField      Kind = "unexpected_field"
	KindTruncatedHeader      Kind = "truncated_header"
	KindTruncatedBody        Kind = "truncated_body"
	KindBodyTooLarge         Kind = "body_too_large"
	KindLengthMismatch       Kind = "length_mismatch"
	KindBufferUnderrun       Kind = "buffer_underrun"
	KindTrailingBytes        Kind = "trailing_bytes"
	KindInvalidScheme        Kind = "invalid_scheme"
	KindUnknown              Kind = "unknown"
)

// KindOf classifies err. A nil error is KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		unsupported scheme.UnsupportedValueTypeError
		outOfRange  field.ValueOutOfRangeError
		missing     MissingFieldError
		unexpected  UnexpectedFieldError
		trailing    TrailingBytesError
	)
	switch {
	case errors.As(err, &unsupported):
		return KindUnsupportedValueType
	case errors.As(err, &outOfRange):
		return KindValueOutOfRange
	case errors.Is(err, field.ErrTypeMismatch):
		return KindTypeMismatch
	case errors.As(err, &missing):
		return KindMissingField
	case errors.As(err, &unexpected):
		return KindUnexpectedField
	case errors.Is(err, frame.ErrTruncatedHeader):
		return KindTruncatedHeader
	case errors.Is(err, frame.ErrTruncatedBody):
		return KindTruncatedBody
	case errors.Is(err, frame.ErrBodyTooLarge):
		return KindBodyTooLarge
	case errors.Is(err, frame.ErrLengthMismatch):
		return KindLengthMismatch
	case errors.Is(err, field.ErrBufferUnderrun):
		return KindBufferUnderrun
	case errors.As(err, &trailing):
		return KindTrailingBytes
	case errors.Is(err, ErrNilScheme),
		errors.Is(err, ErrNotStruct),
		errors.Is(err, scheme.ErrUnknownType),
		errors.Is(err, scheme.ErrDuplicateField),
		errors.Is(err, scheme.ErrEmptyFieldName),
		errors.Is(err, field.ErrUnknownType):
		return KindInvalidScheme
	default:
		return KindUnknown
	}
}
