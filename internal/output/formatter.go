// Package output renders codec results for the pktctl command line.
package output

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/danmuck/pktcodec/internal/protocol/record"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
	"gopkg.in/yaml.v3"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	Format(data any) string
}

// Formats lists the accepted format names.
var Formats = []string{"table", "json", "yaml"}

// NewFormatter returns a Formatter for the given format string.
// Unknown formats fall back to "table".
func NewFormatter(format string) Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return &JSONFormatter{}
	case "yaml":
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

func ValidFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table", "json", "yaml":
		return true
	}
	return false
}

// PacketView is the printable form of a packet header and, optionally, its
// body as hex.
type PacketView struct {
	ID         uint32 `json:"id" yaml:"id"`
	Reserved   uint32 `json:"reserved" yaml:"reserved"`
	BodyLength uint32 `json:"body_length" yaml:"body_length"`
	Body       string `json:"body,omitempty" yaml:"body,omitempty"`
}

func ViewHeader(h frame.Header) PacketView {
	return PacketView{ID: h.ID, Reserved: h.Reserved, BodyLength: h.BodyLength}
}

func ViewPacket(p frame.Packet) PacketView {
	v := ViewHeader(p.Header())
	v.Body = hex.EncodeToString(p.Body)
	return v
}

// Decoded pairs a packet header with its decoded record.
type Decoded struct {
	Packet PacketView     `json:"packet" yaml:"packet"`
	Record *record.Record `json:"record" yaml:"record"`
}

// TableFormatter formats data as aligned text tables using tabwriter.
type TableFormatter struct{}

func (f *TableFormatter) Format(data any) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	switch d := data.(type) {
	case *record.Record:
		writeRecord(w, d)
	case Decoded:
		writeStruct(w, reflect.ValueOf(d.Packet))
		fmt.Fprintln(w)
		writeRecord(w, d.Record)
	case *scheme.Scheme:
		fmt.Fprintln(w, "FIELD\tTYPE")
		for _, sf := range d.Fields() {
			fmt.Fprintf(w, "%s\t%s\n", sf.Name, sf.Type)
		}
	default:
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		switch v.Kind() {
		case reflect.Struct:
			writeStruct(w, v)
		case reflect.Slice:
			if v.Len() == 0 {
				return "No results.\n"
			}
			for i := 0; i < v.Len(); i++ {
				fmt.Fprintln(w, v.Index(i).Interface())
			}
		default:
			fmt.Fprintln(w, data)
		}
	}

	w.Flush()
	return buf.String()
}

func writeStruct(w *tabwriter.Writer, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		fmt.Fprintf(w, "%s:\t%v\n", t.Field(i).Name, v.Field(i).Interface())
	}
}

func writeRecord(w *tabwriter.Writer, rec *record.Record) {
	if rec.Len() == 0 {
		fmt.Fprintln(w, "No fields.")
		return
	}
	fmt.Fprintln(w, "FIELD\tTYPE\tVALUE")
	rec.Range(func(name string, v any) bool {
		typeName := fmt.Sprintf("%T", v)
		if tag, ok := scheme.TagOf(v); ok {
			typeName = tag.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%v\n", name, typeName, v)
		return true
	})
}

// JSONFormatter formats data as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("error formatting JSON: %v\n", err)
	}
	return string(b) + "\n"
}

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any) string {
	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error formatting YAML: %v\n", err)
	}
	return string(b)
}
