// Package record holds the caller-facing key/value data that the codec
// serializes and produces on deserialization.
//
// A Record remembers insertion order. Encoding without a scheme walks fields
// in that order; decoding inserts fields in scheme order.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Record is an ordered mapping from field name to a dynamically typed value.
// The zero value is an empty record. A nil *Record reads as empty.
type Record struct {
	keys   []string
	values map[string]any
}

// New returns an empty record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// Of builds a record from alternating name/value arguments.
// It panics on an odd argument count or a non-string name.
func Of(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("record: Of needs name/value pairs")
	}
	r := New()
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("record: field name at %d is %T, not string", i, kv[i]))
		}
		r.Set(name, kv[i+1])
	}
	return r
}

// Set stores v under name. Overwriting keeps the original position.
func (r *Record) Set(name string, v any) *Record {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
	return r
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether name is present.
func (r *Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Delete removes name if present.
func (r *Record) Delete(name string) {
	if r == nil {
		return
	}
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	for i, k := range r.keys {
		if k == name {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns field names in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Range calls fn for each field in order until fn returns false.
func (r *Record) Range(fn func(name string, v any) bool) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// Equal reports key-for-key equality, ignoring order. Integers compare by
// numeric value regardless of Go width, so an int 16 equals an int32 16.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	equal := true
	r.Range(func(name string, v any) bool {
		ov, ok := o.Get(name)
		if !ok || !valuesEqual(v, ov) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

func valuesEqual(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	if ai, ok := asInt(a); ok {
		bi, ok := asInt(b)
		return ok && ai == bi
	}
	if ar, ok := a.(*Record); ok {
		br, ok := b.(*Record)
		return ok && ar.Equal(br)
	}
	return reflect.DeepEqual(a, b)
}

// asInt widens any signed integer and any unsigned integer that fits in
// int64. Unsigned values above that range never equal a decoded int32.
func asInt(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

// MarshalJSON writes fields in record order. Byte slices use the standard
// base64 form of encoding/json.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	i := 0
	r.Range(func(name string, v any) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		var kb, vb []byte
		if kb, err = json.Marshal(name); err != nil {
			return false
		}
		if vb, err = json.Marshal(v); err != nil {
			err = fmt.Errorf("record: field %q: %w", name, err)
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	r.Range(func(name string, v any) bool {
		if i > 0 {
			buf.WriteString(", ")
		}
		i++
		if s, ok := v.(string); ok {
			fmt.Fprintf(&buf, "%s:%q", name, s)
		} else {
			fmt.Fprintf(&buf, "%s:%v", name, v)
		}
		return true
	})
	buf.WriteByte('}')
	return buf.String()
}
