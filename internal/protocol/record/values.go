package record

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

var (
	ErrFieldNotFound     = errors.New("record: field not found")
	ErrFieldTypeMismatch = errors.New("record: field type mismatch")
)

// GetString returns the named field as a string.
func (r *Record) GetString(name string) (string, error) {
	v, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, not string", ErrFieldTypeMismatch, name, v)
	}
	return s, nil
}

// GetInt32 returns the named field as an int32. Any integer value that fits
// is accepted, so records built by hand and decoded records read the same.
func (r *Record) GetInt32(name string) (int32, error) {
	v, ok := r.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	n, ok := asInt(v)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q is %T(%v), not int32", ErrFieldTypeMismatch, name, v, v)
	}
	return int32(n), nil
}

// GetBytes returns the named field as a byte slice. The slice is shared with
// the record.
func (r *Record) GetBytes(name string) ([]byte, error) {
	v, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, not []byte", ErrFieldTypeMismatch, name, v)
	}
	return b, nil
}

// GetInt64 returns the named field as an int64 from any integer value that
// fits.
func (r *Record) GetInt64(name string) (int64, error) {
	v, ok := r.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	n, ok := asInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: %q is %T(%v), not int64", ErrFieldTypeMismatch, name, v, v)
	}
	return n, nil
}

// GetUint64 returns the named field as a uint64 from any non-negative
// integer value.
func (r *Record) GetUint64(name string) (uint64, error) {
	v, ok := r.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n := rv.Int(); n >= 0 {
			return uint64(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q is %T(%v), not uint64", ErrFieldTypeMismatch, name, v, v)
}

// GetFloat64 returns the named field as a float64. float32 values widen.
func (r *Record) GetFloat64(name string) (float64, error) {
	v, ok := r.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	switch f := v.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	}
	return 0, fmt.Errorf("%w: %q is %T, not float", ErrFieldTypeMismatch, name, v)
}

func (r *Record) GetBool(name string) (bool, error) {
	v, ok := r.Get(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q is %T, not bool", ErrFieldTypeMismatch, name, v)
	}
	return b, nil
}
