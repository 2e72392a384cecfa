package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const HeaderLen = 12

var (
	ErrTruncatedHeader = errors.New("frame: truncated header")
	ErrTruncatedBody   = errors.New("frame: truncated body")
	ErrBodyTooLarge    = errors.New("frame: body too large")
	ErrLengthMismatch  = errors.New("frame: body_length does not match body")
)

// Header is the fixed 12 byte wire header.
type Header struct {
	ID         uint32
	Reserved   uint32
	BodyLength uint32
}

// Packet is one framed message. Body is either the encoded field segments or,
// after FromBytes/ReadFrom, an opaque blob that still needs a scheme.
type Packet struct {
	ID         uint32
	Reserved   uint32
	BodyLength uint32
	Body       []byte
}

// New builds a packet around body with the length set and reserved zeroed.
// The caller must not modify body afterwards.
func New(id uint32, body []byte) Packet {
	return Packet{ID: id, BodyLength: uint32(len(body)), Body: body}
}

func (p Packet) Header() Header {
	return Header{ID: p.ID, Reserved: p.Reserved, BodyLength: p.BodyLength}
}

// Verify checks that BodyLength matches the body.
func (p Packet) Verify() error {
	if uint64(p.BodyLength) != uint64(len(p.Body)) {
		return fmt.Errorf("%w: header=%d body=%d", ErrLengthMismatch, p.BodyLength, len(p.Body))
	}
	return nil
}

// Payload returns a copy of the body.
func (p Packet) Payload() []byte {
	out := make([]byte, len(p.Body))
	copy(out, p.Body)
	return out
}

// Len returns the framed size.
func (p Packet) Len() int {
	return HeaderLen + len(p.Body)
}

// Limits constrains decode memory use.
type Limits struct {
	MaxBodyBytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		MaxBodyBytes: 8 * 1024 * 1024,
	}
}

// ToBytes flattens p into id | reserved | body_length | body.
func ToBytes(p Packet) []byte {
	buf := make([]byte, HeaderLen, HeaderLen+len(p.Body))
	putHeader(buf, p.Header())
	return append(buf, p.Body...)
}

// FromBytes splits b into header and opaque body. Bytes past
// 12+body_length are not part of the packet and are ignored.
func FromBytes(b []byte) (Packet, error) {
	h, err := DecodeHeader(b)
	if err != nil {
		return Packet{}, err
	}
	rest := b[HeaderLen:]
	if uint64(len(rest)) < uint64(h.BodyLength) {
		return Packet{}, fmt.Errorf("%w: want %d bytes, have %d", ErrTruncatedBody, h.BodyLength, len(rest))
	}
	body := make([]byte, h.BodyLength)
	copy(body, rest)
	return Packet{ID: h.ID, Reserved: h.Reserved, BodyLength: h.BodyLength, Body: body}, nil
}

// ReadFrom reads exactly one packet from r.
func ReadFrom(r io.Reader, limits Limits) (Packet, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Packet{}, ErrTruncatedHeader
		}
		return Packet{}, err
	}
	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return Packet{}, err
	}
	if limits.MaxBodyBytes > 0 && h.BodyLength > limits.MaxBodyBytes {
		return Packet{}, fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, h.BodyLength, limits.MaxBodyBytes)
	}
	body := make([]byte, h.BodyLength)
	if h.BodyLength > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return Packet{}, ErrTruncatedBody
			}
			return Packet{}, err
		}
	}
	return Packet{ID: h.ID, Reserved: h.Reserved, BodyLength: h.BodyLength, Body: body}, nil
}

// WriteTo writes p to w. The header length is taken from the body, so a
// packet with a stale BodyLength is rejected rather than written.
func WriteTo(w io.Writer, p Packet, limits Limits) (int64, error) {
	if err := p.Verify(); err != nil {
		return 0, err
	}
	if limits.MaxBodyBytes > 0 && p.BodyLength > limits.MaxBodyBytes {
		return 0, fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, p.BodyLength, limits.MaxBodyBytes)
	}
	n, err := w.Write(EncodeHeader(p.Header()))
	if err != nil {
		return int64(n), err
	}
	if len(p.Body) == 0 {
		return int64(n), nil
	}
	m, err := w.Write(p.Body)
	return int64(n + m), err
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	putHeader(buf, h)
	return buf
}

func putHeader(buf []byte, h Header) {
	binary.BigEndian.PutUint32(buf[0:4], h.ID)
	binary.BigEndian.PutUint32(buf[4:8], h.Reserved)
	binary.BigEndian.PutUint32(buf[8:12], h.BodyLength)
}

// DecodeHeader reads the fixed header from the front of b.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("%w: %d of %d bytes", ErrTruncatedHeader, len(b), HeaderLen)
	}
	return Header{
		ID:         binary.BigEndian.Uint32(b[0:4]),
		Reserved:   binary.BigEndian.Uint32(b[4:8]),
		BodyLength: binary.BigEndian.Uint32(b[8:12]),
	}, nil
}
