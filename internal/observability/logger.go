package observability

import (
	"time"

	"github.com/danmuck/pktcodec/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger returns the global logger tagged with app.
func Logger(app string) zerolog.Logger {
	return log.Logger.With().Str("app", app).Logger()
}

// LogCodecOp writes one line per codec call. Input errors (bad records,
// truncated packets) log at warn, anything unclassified at error.
func LogCodecOp(logger zerolog.Logger, op string, id uint32, bodyBytes int, duration time.Duration, err error) {
	event := logger.Debug()
	if err != nil {
		switch protocol.KindOf(err) {
		case protocol.KindUnknown:
			event = logger.Error()
		default:
			event = logger.Warn()
		}
		event = event.Err(err).Str("kind", string(protocol.KindOf(err)))
	}

	event.
		Str("op", op).
		Uint32("id", id).
		Int("body_bytes", bodyBytes).
		Dur("duration", duration).
		Msg("codec")
}
