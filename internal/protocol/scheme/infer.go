package scheme

import (
	"fmt"
	"reflect"

	"github.com/danmuck/pktcodec/internal/protocol/record"
	"github.com/rs/zerolog/log"
)

// UnsupportedValueTypeError reports a record value whose Go type has no wire
// type. Inference never coerces.
type UnsupportedValueTypeError struct {
	Field string
	Kind  string
}

func (e UnsupportedValueTypeError) Error() string {
	return fmt.Sprintf("scheme: field %q: unsupported value type %s", e.Field, e.Kind)
}

// Infer derives a single-use scheme from the Go types of rec's values, in
// record order: string -> String, any integer -> Int32, []byte -> ByteArray.
// Integer range is checked when the value is encoded, not here.
func Infer(rec *record.Record) (*Scheme, error) {
	fields := make([]Field, 0, rec.Len())
	var inferErr error
	rec.Range(func(name string, v any) bool {
		tag, ok := TagOf(v)
		if !ok {
			inferErr = UnsupportedValueTypeError{Field: name, Kind: kindName(v)}
			return false
		}
		fields = append(fields, Field{Name: name, Type: tag})
		return true
	})
	if inferErr != nil {
		log.Debug().Err(inferErr).Msg("scheme.Infer rejected record")
		return nil, inferErr
	}
	s, err := New(fields...)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("fields", s.Len()).Str("scheme", s.String()).Msg("scheme.Infer ok")
	return s, nil
}

// TagOf maps a value's Go kind to a wire type, so named types such as
// `type age int` infer like their underlying type. Only String, Int32 and
// ByteArray are ever inferred; bools and floats need an explicit scheme.
func TagOf(v any) (TypeTag, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return String, true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return ByteArray, true
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int32, true
	}
	return 0, false
}

func kindName(v any) string {
	if v == nil {
		return "nil"
	}
	if _, ok := v.(*record.Record); ok {
		return "nested record"
	}
	return reflect.TypeOf(v).String()
}
