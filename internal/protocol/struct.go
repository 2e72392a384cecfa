package protocol

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/danmuck/pktcodec/internal/protocol/field"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/danmuck/pktcodec/internal/protocol/record"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
	"github.com/rs/zerolog/log"
)

// StructTag is the struct tag key read by the struct binding. The tag value
// is "name[,type]"; "-" skips the field.
//
//	type Person struct {
//		Name    string `pkt:"name"`
//		Age     int    `pkt:"age,int32"`
//		Numbers []byte `pkt:"numbers"`
//	}
const StructTag = "pkt"

var ErrNotStruct = errors.New("protocol: value is not a struct")

type structField struct {
	index int
	name  string
	tag   scheme.TypeTag
}

type structBinding struct {
	scheme *scheme.Scheme
	fields []structField
}

var bindings sync.Map // reflect.Type -> *structBinding

// SchemeOf derives the scheme a flat struct encodes under. Exported fields
// map in declaration order. Without a type in the tag the Go kind decides:
// string, []byte, bool and every sized integer or float map to the wire type
// of the same name; int and uint map to int64 and uint64.
func SchemeOf(v any) (*scheme.Scheme, error) {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, rt)
	}
	b, err := bindingFor(rt)
	if err != nil {
		return nil, err
	}
	return b.scheme, nil
}

func bindingFor(rt reflect.Type) (*structBinding, error) {
	if cached, ok := bindings.Load(rt); ok {
		return cached.(*structBinding), nil
	}
	b := &structBinding{}
	fields := make([]scheme.Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, tagName, _ := strings.Cut(sf.Tag.Get(StructTag), ",")
		if name == "-" && tagName == "" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		var tag scheme.TypeTag
		if tagName != "" {
			var err error
			if tag, err = scheme.ParseTypeTag(tagName); err != nil {
				return nil, fmt.Errorf("protocol: %s.%s: %w", rt, sf.Name, err)
			}
		} else {
			var ok bool
			if tag, ok = kindTag(sf.Type); !ok {
				return nil, scheme.UnsupportedValueTypeError{Field: name, Kind: sf.Type.String()}
			}
		}
		b.fields = append(b.fields, structField{index: i, name: name, tag: tag})
		fields = append(fields, scheme.Field{Name: name, Type: tag})
	}
	s, err := scheme.New(fields...)
	if err != nil {
		return nil, fmt.Errorf("protocol: %s: %w", rt, err)
	}
	b.scheme = s
	actual, _ := bindings.LoadOrStore(rt, b)
	log.Debug().Str("type", rt.String()).Str("scheme", s.String()).Msg("protocol struct binding")
	return actual.(*structBinding), nil
}

func kindTag(t reflect.Type) (scheme.TypeTag, bool) {
	switch t.Kind() {
	case reflect.String:
		return scheme.String, true
	case reflect.Bool:
		return scheme.Bool, true
	case reflect.Int8:
		return scheme.Int8, true
	case reflect.Int16:
		return scheme.Int16, true
	case reflect.Int32:
		return scheme.Int32, true
	case reflect.Int, reflect.Int64:
		return scheme.Int64, true
	case reflect.Uint8:
		return scheme.Uint8, true
	case reflect.Uint16:
		return scheme.Uint16, true
	case reflect.Uint32:
		return scheme.Uint32, true
	case reflect.Uint, reflect.Uint64:
		return scheme.Uint64, true
	case reflect.Float32:
		return scheme.Float32, true
	case reflect.Float64:
		return scheme.Float64, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return scheme.ByteArray, true
		}
	}
	return 0, false
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %s", ErrNotStruct, rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %T", ErrNotStruct, v)
	}
	return rv, nil
}

// SerializeStruct encodes a flat struct with DefaultOptions. See
// Codec.SerializeStruct.
func SerializeStruct(id uint32, v any) (frame.Packet, error) {
	return New(DefaultOptions()).SerializeStruct(id, v)
}

// DeserializeStruct decodes p into dst with DefaultOptions. See
// Codec.DeserializeStruct.
func DeserializeStruct(p frame.Packet, dst any) error {
	return New(DefaultOptions()).DeserializeStruct(p, dst)
}

// SerializeStruct encodes v, a struct or pointer to one, under the scheme
// SchemeOf derives for its type.
func (c *Codec) SerializeStruct(id uint32, v any) (frame.Packet, error) {
	rv, err := structValue(v)
	if err != nil {
		return frame.Packet{}, err
	}
	b, err := bindingFor(rv.Type())
	if err != nil {
		return frame.Packet{}, err
	}
	rec := record.New()
	for _, f := range b.fields {
		rec.Set(f.name, rv.Field(f.index).Interface())
	}
	return c.Serialize(id, rec, b.scheme)
}

// DeserializeStruct decodes p into dst, which must be a non-nil pointer to a
// struct. dst is left untouched on error.
func (c *Codec) DeserializeStruct(p frame.Packet, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: need a non-nil pointer, got %T", ErrNotStruct, dst)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T", ErrNotStruct, dst)
	}
	b, err := bindingFor(rv.Type())
	if err != nil {
		return err
	}
	rec, err := c.Deserialize(b.scheme, p)
	if err != nil {
		return err
	}

	out := reflect.New(rv.Type()).Elem()
	out.Set(rv)
	for _, f := range b.fields {
		v, _ := rec.Get(f.name)
		if err := assign(out.Field(f.index), f.tag, v); err != nil {
			return &FieldError{Name: f.name, Err: err}
		}
	}
	rv.Set(out)
	return nil
}

// MarshalStruct serializes v and flattens the packet to wire bytes.
func (c *Codec) MarshalStruct(id uint32, v any) ([]byte, error) {
	p, err := c.SerializeStruct(id, v)
	if err != nil {
		return nil, err
	}
	return frame.ToBytes(p), nil
}

// UnmarshalStruct splits raw wire bytes into a packet and decodes its body
// into dst.
func (c *Codec) UnmarshalStruct(b []byte, dst any) (frame.Packet, error) {
	p, err := frame.FromBytes(b)
	if err != nil {
		return frame.Packet{}, err
	}
	if err := c.DeserializeStruct(p, dst); err != nil {
		return frame.Packet{}, err
	}
	return p, nil
}

// assign stores a decoded value into a struct field. A tag override may
// decode a wider value than the field holds; that is reported as out of
// range rather than truncated.
func assign(dst reflect.Value, tag scheme.TypeTag, v any) error {
	src := reflect.ValueOf(v)
	switch dst.Kind() {
	case reflect.String:
		if src.Kind() == reflect.String {
			dst.SetString(src.String())
			return nil
		}
	case reflect.Bool:
		if src.Kind() == reflect.Bool {
			dst.SetBool(src.Bool())
			return nil
		}
	case reflect.Slice:
		if b, ok := v.([]byte); ok && dst.Type().Elem().Kind() == reflect.Uint8 {
			dst.SetBytes(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n := src.Int()
			if dst.OverflowInt(n) {
				return field.ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(n)}
			}
			dst.SetInt(n)
			return nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := src.Uint()
			if u > math.MaxInt64 || dst.OverflowInt(int64(u)) {
				return field.ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(u)}
			}
			dst.SetInt(int64(u))
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch src.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := src.Uint()
			if dst.OverflowUint(u) {
				return field.ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(u)}
			}
			dst.SetUint(u)
			return nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n := src.Int()
			if n < 0 || dst.OverflowUint(uint64(n)) {
				return field.ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(n)}
			}
			dst.SetUint(uint64(n))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if src.Kind() == reflect.Float32 || src.Kind() == reflect.Float64 {
			f := src.Float()
			if dst.OverflowFloat(f) {
				return field.ValueOutOfRangeError{Type: tag, Value: fmt.Sprint(f)}
			}
			dst.SetFloat(f)
			return nil
		}
	}
	return fmt.Errorf("%w: %s decodes %T, field is %s", field.ErrTypeMismatch, tag, v, dst.Type())
}
