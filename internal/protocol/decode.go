package protocol

import (
	"github.com/danmuck/pktcodec/internal/protocol/field"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/danmuck/pktcodec/internal/protocol/record"
	"github.com/danmuck/pktcodec/internal/protocol/scheme"
	"github.com/rs/zerolog/log"
)

// Deserialize decodes p with DefaultOptions. See Codec.Deserialize.
func Deserialize(s *scheme.Scheme, p frame.Packet) (*record.Record, error) {
	return New(DefaultOptions()).Deserialize(s, p)
}

// Deserialize walks p's body field by field in scheme order. The returned
// record has its keys in scheme order. Leftover bytes are handled by the
// codec's TrailingPolicy.
func (c *Codec) Deserialize(s *scheme.Scheme, p frame.Packet) (*record.Record, error) {
	if s == nil {
		return nil, ErrNilScheme
	}
	if c.opts.VerifyLength {
		if err := p.Verify(); err != nil {
			return nil, err
		}
	}

	r := field.NewReader(p.Body)
	rec := record.New()
	for _, f := range s.Fields() {
		v, err := r.Read(f.Type)
		if err != nil {
			log.Debug().
				Uint32("id", p.ID).
				Str("field", f.Name).
				Int("offset", r.Offset()).
				Err(err).
				Msg("protocol.Deserialize failed")
			return nil, &FieldError{Name: f.Name, Err: err}
		}
		rec.Set(f.Name, v)
	}

	if n := r.Remaining(); n > 0 {
		trailing := TrailingBytesError{Count: n, Offset: r.Offset()}
		switch c.opts.Trailing {
		case TrailingReject:
			return nil, trailing
		case TrailingWarn:
			log.Warn().
				Uint32("id", p.ID).
				Int("trailing", n).
				Int("offset", trailing.Offset).
				Msg("protocol.Deserialize left trailing bytes")
			if c.opts.OnTrailing != nil {
				c.opts.OnTrailing(p.ID, trailing)
			}
		}
	}

	log.Debug().Uint32("id", p.ID).Int("fields", rec.Len()).Msg("protocol.Deserialize ok")
	return rec, nil
}

// Unmarshal splits raw wire bytes into a packet and decodes its body.
func (c *Codec) Unmarshal(s *scheme.Scheme, b []byte) (frame.Packet, *record.Record, error) {
	p, err := frame.FromBytes(b)
	if err != nil {
		return frame.Packet{}, nil, err
	}
	rec, err := c.Deserialize(s, p)
	if err != nil {
		return frame.Packet{}, nil, err
	}
	return p, rec, nil
}
