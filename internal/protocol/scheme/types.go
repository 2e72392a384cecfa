package scheme

import (
	"fmt"
	"strings"
)

// TypeTag is a wire type. Each tag fixes one encode/decode rule.
type TypeTag uint8

// Wire types. Zero is reserved so an unset tag never reads as valid.
//
// String, Int32 and ByteArray are the only tags inference produces. The rest
// are fixed width and only reachable through an explicit scheme.
const (
	String TypeTag = iota + 1
	Int32
	ByteArray
	Bool
	Int8
	Uint8
	Int16
	Uint16
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

var tagNames = map[TypeTag]string{
	String:    "string",
	Int32:     "int32",
	ByteArray: "[]byte",
	Bool:      "bool",
	Int8:      "int8",
	Uint8:     "uint8",
	Int16:     "int16",
	Uint16:    "uint16",
	Uint32:    "uint32",
	Int64:     "int64",
	Uint64:    "uint64",
	Float32:   "float32",
	Float64:   "float64",
}

var tagAliases = map[string]TypeTag{
	"string":    String,
	"str":       String,
	"int32":     Int32,
	"rune":      Int32,
	"[]byte":    ByteArray,
	"bytes":     ByteArray,
	"bytearray": ByteArray,
	"bool":      Bool,
	"int8":      Int8,
	"byte":      Uint8,
	"uint8":     Uint8,
	"int16":     Int16,
	"uint16":    Uint16,
	"uint32":    Uint32,
	"int64":     Int64,
	"uint64":    Uint64,
	"float32":   Float32,
	"float64":   Float64,
}

var fixedWidths = map[TypeTag]int{
	Bool:    1,
	Int8:    1,
	Uint8:   1,
	Int16:   2,
	Uint16:  2,
	Int32:   4,
	Uint32:  4,
	Float32: 4,
	Int64:   8,
	Uint64:  8,
	Float64: 8,
}

// String returns the canonical scheme name of the tag.
func (t TypeTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("typetag(%d)", uint8(t))
}

// Valid reports whether t is a known wire type.
func (t TypeTag) Valid() bool {
	_, ok := tagNames[t]
	return ok
}

// FixedWidth returns the encoded size for fixed width tags. Variable length
// tags return 0, false.
func (t TypeTag) FixedWidth() (int, bool) {
	n, ok := fixedWidths[t]
	return n, ok
}

// ParseTypeTag resolves a scheme type name such as "string", "int32" or
// "[]byte". Matching is case-insensitive.
func ParseTypeTag(name string) (TypeTag, error) {
	tag, ok := tagAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return tag, nil
}
