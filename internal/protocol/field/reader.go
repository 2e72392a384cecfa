package field

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/danmuck/pktcodec/internal/protocol/scheme"
)

// Reader is a forward-only cursor over an encoded body.
type Reader struct {
	data   []byte
	offset int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// need reserves n bytes and returns their start offset. A failed reservation
// does not move the cursor.
func (r *Reader) need(n uint64) (int, error) {
	if n > uint64(r.Remaining()) {
		return 0, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrBufferUnderrun, n, r.offset, r.Remaining())
	}
	off := r.offset
	r.offset += int(n)
	return off, nil
}

// Read decodes one value of type tag. String yields string and ByteArray
// yields a []byte that does not alias the input. Fixed width tags yield the
// Go type of the same name: Int32 yields int32, Uint8 yields uint8, Bool
// yields bool and so on. Any non-zero Bool byte reads as true.
func (r *Reader) Read(tag scheme.TypeTag) (any, error) {
	switch tag {
	case scheme.String:
		b, err := r.readPrefixed()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case scheme.ByteArray:
		b, err := r.readPrefixed()
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	case scheme.Int32:
		return r.ReadInt32()
	}

	width, ok := tag.FixedWidth()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, tag)
	}
	off, err := r.need(uint64(width))
	if err != nil {
		return nil, err
	}
	b := r.data[off : off+width]
	switch tag {
	case scheme.Bool:
		return b[0] != 0, nil
	case scheme.Int8:
		return int8(b[0]), nil
	case scheme.Uint8:
		return b[0], nil
	case scheme.Int16:
		return int16(binary.BigEndian.Uint16(b)), nil
	case scheme.Uint16:
		return binary.BigEndian.Uint16(b), nil
	case scheme.Uint32:
		return binary.BigEndian.Uint32(b), nil
	case scheme.Int64:
		return int64(binary.BigEndian.Uint64(b)), nil
	case scheme.Uint64:
		return binary.BigEndian.Uint64(b), nil
	case scheme.Float32:
		return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
	default:
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	}
}

// ReadInt32 reads a fixed 4 byte signed big-endian integer.
func (r *Reader) ReadInt32() (int32, error) {
	off, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(r.data[off:])), nil
}

// readPrefixed returns a sub-slice of the input. On a short body the cursor
// is left before the length prefix.
func (r *Reader) readPrefixed() ([]byte, error) {
	start := r.offset
	off, err := r.need(LengthPrefixLen)
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(r.data[off:])
	off, err = r.need(uint64(n))
	if err != nil {
		r.offset = start
		return nil, err
	}
	return r.data[off : off+int(n)], nil
}
