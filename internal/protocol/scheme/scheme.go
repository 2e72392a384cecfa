package scheme

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownType    = errors.New("scheme: unknown type")
	ErrDuplicateField = errors.New("scheme: duplicate field")
	ErrEmptyFieldName = errors.New("scheme: empty field name")
)

// Field is one named, typed slot in a scheme.
type Field struct {
	Name string
	Type TypeTag
}

// Scheme is an ordered list of fields. Field order drives both encoding and
// decoding. A Scheme is immutable once built.
type Scheme struct {
	fields []Field
	index  map[string]int
}

// New validates fields and returns a scheme with the given order.
func New(fields ...Field) (*Scheme, error) {
	s := &Scheme{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, ErrEmptyFieldName
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("%w: field %q has %s", ErrUnknownType, f.Name, f.Type)
		}
		if _, ok := s.index[f.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustNew is New for static schemes; it panics on error.
func MustNew(fields ...Field) *Scheme {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of fields.
func (s *Scheme) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Fields returns a copy of the fields in order.
func (s *Scheme) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup returns the type of the named field.
func (s *Scheme) Lookup(name string) (TypeTag, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[name]
	if !ok {
		return 0, false
	}
	return s.fields[i].Type, true
}

func (s *Scheme) String() string {
	parts := make([]string, 0, s.Len())
	for _, f := range s.Fields() {
		parts = append(parts, f.Name+":"+f.Type.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
