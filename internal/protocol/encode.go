package protocol

import (
	"fmt"
	"math"

	"github.com/danmuck/pktcodec/internal/protocol/field"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/danmuck/pktcodec/internal/protocol/record"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
	"github.com/rs/zerolog/log"
)

// Codec serializes and deserializes records under fixed Options. A Codec
// holds no mutable state and is safe for concurrent use.
type Codec struct {
	opts Options
}

func New(opts Options) *Codec {
	return &Codec{opts: opts}
}

func (c *Codec) Options() Options {
	return c.opts
}

// Serialize encodes rec with DefaultOptions. See Codec.Serialize.
func Serialize(id uint32, rec *record.Record, s *scheme.Scheme) (frame.Packet, error) {
	return New(DefaultOptions()).Serialize(id, rec, s)
}

// Serialize encodes rec into a packet with the given id.
//
// With a nil scheme the field types are inferred from rec's values in record
// order; an empty record then yields an empty body. With a scheme, every
// scheme field must be present in rec and fields are written in scheme
// order. Failure is atomic: on error the zero Packet is returned.
func (c *Codec) Serialize(id uint32, rec *record.Record, s *scheme.Scheme) (frame.Packet, error) {
	explicit := s != nil
	if !explicit {
		if rec.Len() == 0 {
			return frame.New(id, []byte{}), nil
		}
		inferred, err := scheme.Infer(rec)
		if err != nil {
			return frame.Packet{}, err
		}
		s = inferred
	}

	fields := s.Fields()
	values := make([]any, len(fields))
	var size int64
	for i, f := range fields {
		v, ok := rec.Get(f.Name)
		if !ok {
			return frame.Packet{}, MissingFieldError{Name: f.Name}
		}
		n, err := field.Size(f.Type, v)
		if err != nil {
			return frame.Packet{}, &FieldError{Name: f.Name, Err: err}
		}
		values[i] = v
		size += int64(n)
	}
	if size > math.MaxUint32 {
		return frame.Packet{}, fmt.Errorf("%w: %d bytes", frame.ErrBodyTooLarge, size)
	}

	if explicit && c.opts.ExtraFields == ExtraFieldsReject && rec.Len() > len(fields) {
		var extra string
		rec.Range(func(name string, _ any) bool {
			if _, ok := s.Lookup(name); !ok {
				extra = name
				return false
			}
			return true
		})
		if extra != "" {
			return frame.Packet{}, UnexpectedFieldError{Name: extra}
		}
	}

	body := make([]byte, 0, size)
	for i, f := range fields {
		var err error
		body, err = field.Append(body, f.Type, values[i])
		if err != nil {
			return frame.Packet{}, &FieldError{Name: f.Name, Err: err}
		}
	}

	log.Debug().
		Uint32("id", id).
		Int("fields", len(fields)).
		Int("body_len", len(body)).
		Bool("inferred", !explicit).
		Msg("protocol.Serialize ok")
	return frame.New(id, body), nil
}

// Marshal serializes rec and flattens the packet to wire bytes.
func (c *Codec) Marshal(id uint32, rec *record.Record, s *scheme.Scheme) ([]byte, error) {
	p, err := c.Serialize(id, rec, s)
	if err != nil {
		return nil, err
	}
	return frame.ToBytes(p), nil
}
