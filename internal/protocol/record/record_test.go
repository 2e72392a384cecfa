package record

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSetKeepsInsertionOrder(t *testing.T) {
	r := New().Set("name", "Vasya").Set("age", 16).Set("numbers", []byte{32, 25, 79})
	r.Set("name", "Petya")

	got := strings.Join(r.Keys(), ",")
	if got != "name,age,numbers" {
		t.Fatalf("unexpected order: %s", got)
	}
	v, _ := r.Get("name")
	if v != "Petya" {
		t.Fatalf("overwrite lost: %v", v)
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	r := Of("a", 1, "b", 2, "c", 3)
	r.Delete("b")
	r.Delete("missing")
	if strings.Join(r.Keys(), ",") != "a,c" {
		t.Fatalf("unexpected keys after delete: %v", r.Keys())
	}
	if r.Has("b") {
		t.Fatalf("b still present")
	}
}

func TestNilRecordReadsEmpty(t *testing.T) {
	var r *Record
	if r.Len() != 0 || r.Has("x") || r.Keys() != nil {
		t.Fatalf("nil record should read as empty")
	}
	if !r.Equal(New()) {
		t.Fatalf("nil record should equal empty record")
	}
}

func TestEqualWidensIntegers(t *testing.T) {
	a := Of("age", 16, "numbers", []byte{1, 2})
	b := Of("numbers", []byte{1, 2}, "age", int32(16))
	if !a.Equal(b) {
		t.Fatalf("expected %v == %v", a, b)
	}
	c := Of("age", int32(17), "numbers", []byte{1, 2})
	if a.Equal(c) {
		t.Fatalf("expected %v != %v", a, c)
	}
	d := Of("age", "16", "numbers", []byte{1, 2})
	if a.Equal(d) {
		t.Fatalf("string must not equal integer")
	}
}

func TestParseYAMLKeepsDocumentOrder(t *testing.T) {
	doc := []byte(`
zeta: "last letter"
alpha: 16
numbers: [32, 25, 79]
blob: !!binary IBlP
`)
	r, err := ParseYAML(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.Join(r.Keys(), ",") != "zeta,alpha,numbers,blob" {
		t.Fatalf("unexpected order: %v", r.Keys())
	}
	if v, _ := r.Get("alpha"); v != int64(16) {
		t.Fatalf("alpha: %#v", v)
	}
	if v, _ := r.Get("numbers"); !bytes.Equal(v.([]byte), []byte{32, 25, 79}) {
		t.Fatalf("numbers: %#v", v)
	}
	if v, _ := r.Get("blob"); !bytes.Equal(v.([]byte), []byte{32, 25, 79}) {
		t.Fatalf("blob: %#v", v)
	}
}

func TestParseYAMLKeepsUnsupportedKinds(t *testing.T) {
	r, err := ParseYAML([]byte(`{"ratio": 1.5, "ok": true, "list": [1, "x"], "big": [300], "nested": {"a": 1}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, _ := r.Get("ratio"); v != 1.5 {
		t.Fatalf("ratio: %#v", v)
	}
	if v, _ := r.Get("ok"); v != true {
		t.Fatalf("ok: %#v", v)
	}
	if _, ok := mustGet(t, r, "list").([]any); !ok {
		t.Fatalf("mixed list should stay []any")
	}
	if _, ok := mustGet(t, r, "big").([]any); !ok {
		t.Fatalf("out of byte range list should stay []any")
	}
	if _, ok := mustGet(t, r, "nested").(*Record); !ok {
		t.Fatalf("nested mapping should become *Record")
	}
}

func TestParseYAMLRejectsNonMapping(t *testing.T) {
	_, err := ParseYAML([]byte(`[1, 2, 3]`))
	if !errors.Is(err, ErrNotMapping) {
		t.Fatalf("expected ErrNotMapping, got %v", err)
	}
}

func TestParseYAMLRejectsDuplicateField(t *testing.T) {
	_, err := ParseYAML([]byte("a: 1\na: 2\n"))
	if err == nil {
		t.Fatalf("expected duplicate field error")
	}
}

func TestParseYAMLEmptyDocument(t *testing.T) {
	r, err := ParseYAML(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty record")
	}
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	in := Of("name", "Vasya", "age", int32(16), "numbers", []byte{32, 25, 78})
	out, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := ParseYAML(out)
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, out)
	}
	if strings.Join(back.Keys(), ",") != "name,age,numbers" {
		t.Fatalf("order lost: %v", back.Keys())
	}
	if !in.Equal(back) {
		t.Fatalf("round trip mismatch: %v vs %v", in, back)
	}
}

func TestMarshalJSONOrdered(t *testing.T) {
	in := Of("name", "Vasya", "age", int32(16), "numbers", []byte{32, 25, 78})
	out, err := in.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"Vasya","age":16,"numbers":"IBlO"}`
	if string(out) != want {
		t.Fatalf("got=%s want=%s", out, want)
	}
}

func mustGet(t *testing.T, r *Record, name string) any {
	t.Helper()
	v, ok := r.Get(name)
	if !ok {
		t.Fatalf("missing %s", name)
	}
	return v
}

func TestZeroValueRecordSet(t *testing.T) {
	var r Record
	r.Set("a", 1).Set("b", "x")
	if r.Len() != 2 || r.Keys()[0] != "a" {
		t.Fatalf("unexpected record: %v", &r)
	}
	if v, ok := r.Get("b"); !ok || v != "x" {
		t.Fatalf("get b: %v %v", v, ok)
	}
}

func TestParseYAMLIntegerBeyondInt64(t *testing.T) {
	r, err := ParseYAML([]byte("big: 18446744073709551615\nsmall: -3\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, _ := r.Get("big"); v != uint64(18446744073709551615) {
		t.Fatalf("big: %#v", v)
	}
	if v, _ := r.Get("small"); v != int64(-3) {
		t.Fatalf("small: %#v", v)
	}
}
