package protocol

import (
	"testing"

	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/danmuck/pktcodec/internal/protocol/record"
)

func BenchmarkSerialize(b *testing.B) {
	rec := record.Of("name", "Vasya", "age", 16, "numbers", []byte{32, 25, 78})
	c := New(DefaultOptions())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Serialize(32, rec, personScheme); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSerializeInferred(b *testing.B) {
	rec := record.Of("name", "Vasya", "age", 16, "numbers", []byte{32, 25, 78})
	c := New(DefaultOptions())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Serialize(32, rec, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeserialize(b *testing.B) {
	p := frame.New(32, exampleBody)
	c := New(DefaultOptions())
	b.ReportAllocs()
	b.SetBytes(int64(frame.HeaderLen + len(exampleBody)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Deserialize(personScheme, p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshalLargeBody(b *testing.B) {
	rec := record.Of("name", "bulk", "age", 1, "numbers", make([]byte, 64<<10))
	c := New(DefaultOptions())
	raw, err := c.Marshal(7, rec, personScheme)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := c.Unmarshal(personScheme, raw); err != nil {
			b.Fatal(err)
		}
	}
}
