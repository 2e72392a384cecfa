package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/pktcodec/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "pktcodec"

// Codec operation labels.
const (
	OpEncode  = "encode"
	OpDecode  = "decode"
	OpInspect = "inspect"
)

var (
	registerOnce sync.Once

	codecPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "packets_total",
			Help:      "Packets successfully processed by the codec.",
		},
		[]string{"op"},
	)
	codecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "errors_total",
			Help:      "Codec failures by error kind.",
		},
		[]string{"op", "kind"},
	)
	codecBodyBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "body_bytes",
			Help:      "Packet body size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		},
		[]string{"op"},
	)
	codecDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "operation_duration_seconds",
			Help:      "Codec operation duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
		[]string{"op"},
	)
	codecTrailing = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "trailing_bytes_total",
			Help:      "Body bytes left after the last scheme field.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(codecPackets, codecErrors, codecBodyBytes, codecDuration, codecTrailing)
	})
}

// RecordCodecOp records one codec call. bodyBytes is ignored when err is set.
func RecordCodecOp(op string, bodyBytes int, duration time.Duration, err error) {
	RegisterMetrics()
	codecDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		codecErrors.WithLabelValues(op, string(protocol.KindOf(err))).Inc()
		return
	}
	codecPackets.WithLabelValues(op).Inc()
	codecBodyBytes.WithLabelValues(op).Observe(float64(bodyBytes))
}

func RecordTrailing(count int) {
	RegisterMetrics()
	codecTrailing.Add(float64(count))
}

// TrailingRecorder adapts RecordTrailing to protocol.Options.OnTrailing.
func TrailingRecorder(_ uint32, err protocol.TrailingBytesError) {
	RecordTrailing(err.Count)
}

// WriteMetrics dumps the codec metric families in Prometheus text format.
func WriteMetrics(w io.Writer) error {
	RegisterMetrics()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("observability: gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("observability: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
