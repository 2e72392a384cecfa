// Package field implements the per-type wire rules of the codec.
//
// All integers are big-endian. String and ByteArray values carry a uint32
// length prefix; Int32 is a fixed 4 byte two's-complement value. The other
// fixed width tags write their natural width, floats as IEEE 754 bits and
// Bool as a single 0 or 1 byte.
package field

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/danmuck/pktcodec/internal/protocol/scheme"
)

const LengthPrefixLen = 4

var (
	ErrTypeMismatch   = errors.New("field: value does not match wire type")
	ErrBufferUnderrun = errors.New("field: buffer underrun")
	ErrUnknownType    = errors.New("field: unknown wire type")
)

// ValueOutOfRangeError reports a value that cannot be represented in the
// width its wire type allows.
type ValueOutOfRangeError struct {
	Type  scheme.TypeTag
	Value string
}

func (e ValueOutOfRangeError) Error() string {
	return fmt.Sprintf("field: value %s out of range for %s", e.Value, e.Type)
}

// Append encodes v under tag and appends it to dst. On error dst is returned
// unchanged.
func Append(dst []byte, tag scheme.TypeTag, v any) ([]byte, error) {
	switch tag {
	case scheme.String:
		s, ok := asString(v)
		if !ok {
			return dst, mismatch(tag, v)
		}
		if uint64(len(s)) > math.MaxUint32 {
			return dst, ValueOutOfRangeError{Type: tag, Value: fmt.Sprintf("len=%d", len(s))}
		}
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(s)))
		return append(dst, s...), nil
	case scheme.ByteArray:
		b, ok := asBytes(v)
		if !ok {
			return dst, mismatch(tag, v)
		}
		if uint64(len(b)) > math.MaxUint32 {
			return dst, ValueOutOfRangeError{Type: tag, Value: fmt.Sprintf("len=%d", len(b))}
		}
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(b)))
		return append(dst, b...), nil
	}

	width, ok := tag.FixedWidth()
	if !ok {
		return dst, fmt.Errorf("%w: %s", ErrUnknownType, tag)
	}
	bits, err := fixedBits(tag, v)
	if err != nil {
		return dst, err
	}
	switch width {
	case 1:
		return append(dst, byte(bits)), nil
	case 2:
		return binary.BigEndian.AppendUint16(dst, uint16(bits)), nil
	case 4:
		return binary.BigEndian.AppendUint32(dst, uint32(bits)), nil
	default:
		return binary.BigEndian.AppendUint64(dst, bits), nil
	}
}

// Size returns the encoded size of v under tag without encoding it.
func Size(tag scheme.TypeTag, v any) (int, error) {
	switch tag {
	case scheme.String:
		s, ok := asString(v)
		if !ok {
			return 0, mismatch(tag, v)
		}
		return LengthPrefixLen + len(s), nil
	case scheme.ByteArray:
		b, ok := asBytes(v)
		if !ok {
			return 0, mismatch(tag, v)
		}
		return LengthPrefixLen + len(b), nil
	}

	width, ok := tag.FixedWidth()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownType, tag)
	}
	if _, err := fixedBits(tag, v); err != nil {
		return 0, err
	}
	return width, nil
}

// fixedBits converts v to the raw big-endian bits of a fixed width tag. Only
// the low width bytes are meaningful.
func fixedBits(tag scheme.TypeTag, v any) (uint64, error) {
	switch tag {
	case scheme.Bool:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Bool {
			return 0, mismatch(tag, v)
		}
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case scheme.Int8:
		n, err := toSigned(tag, v, math.MinInt8, math.MaxInt8)
		return uint64(n), err
	case scheme.Int16:
		n, err := toSigned(tag, v, math.MinInt16, math.MaxInt16)
		return uint64(n), err
	case scheme.Int32:
		n, err := toSigned(tag, v, math.MinInt32, math.MaxInt32)
		return uint64(n), err
	case scheme.Int64:
		n, err := toSigned(tag, v, math.MinInt64, math.MaxInt64)
		return uint64(n), err
	case scheme.Uint8:
		return toUnsigned(tag, v, math.MaxUint8)
	case scheme.Uint16:
		return toUnsigned(tag, v, math.MaxUint16)
	case scheme.Uint32:
		return toUnsigned(tag, v, math.MaxUint32)
	case scheme.Uint64:
		return toUnsigned(tag, v, math.MaxUint64)
	case scheme.Float32:
		f, err := toFloat(tag, v)
		if err != nil {
			return 0, err
		}
		if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return 0, ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(f)}
		}
		return uint64(math.Float32bits(float32(f))), nil
	case scheme.Float64:
		f, err := toFloat(tag, v)
		if err != nil {
			return 0, err
		}
		return math.Float64bits(f), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownType, tag)
}

func toSigned(tag scheme.TypeTag, v any, lo, hi int64) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < lo || n > hi {
			return 0, ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(n)}
		}
		return n, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > uint64(hi) {
			return 0, ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(n)}
		}
		return int64(n), nil
	}
	return 0, mismatch(tag, v)
}

func toUnsigned(tag scheme.TypeTag, v any, hi uint64) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 || uint64(n) > hi {
			return 0, ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(n)}
		}
		return uint64(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > hi {
			return 0, ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(n)}
		}
		return n, nil
	}
	return 0, mismatch(tag, v)
}

// toFloat accepts float values and integers. Integers are converted to the
// nearest float64.
func toFloat(tag scheme.TypeTag, v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return 0, mismatch(tag, v)
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

func asBytes(v any) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, false
	}
	return rv.Bytes(), true
}

func mismatch(tag scheme.TypeTag, v any) error {
	return fmt.Errorf("%w: %s got %T", ErrTypeMismatch, tag, v)
}
