package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	encodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dcfselftest",
			Subsystem: "codec",
			Name:      "encode_total",
			Help:      "Total Writer.Finish calls by message type and outcome.",
		},
		[]string{"msg_type", "outcome"},
	)
	encodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dcfselftest",
			Subsystem: "codec",
			Name:      "encode_duration_seconds",
			Help:      "Time spent building and finishing a frame.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"msg_type"},
	)
	decodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dcfselftest",
			Subsystem: "codec",
			Name:      "decode_total",
			Help:      "Total NewReader calls by message type and outcome.",
		},
		[]string{"msg_type", "outcome"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dcfselftest",
			Subsystem: "codec",
			Name:      "decode_duration_seconds",
			Help:      "Time spent validating a frame header and decoding its payload.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"msg_type"},
	)
	payloadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dcfselftest",
			Subsystem: "codec",
			Name:      "payload_bytes",
			Help:      "Payload size in bytes observed on decode.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		},
		[]string{"msg_type"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dcfselftest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total debug HTTP server requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dcfselftest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Debug HTTP server request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// RegisterMetrics registers every collector exactly once, matching the
// teacher's sync.Once guard in internal/observability/metrics.go.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			encodeTotal, encodeDuration,
			decodeTotal, decodeDuration, payloadBytes,
			httpRequests, httpDuration,
		)
	})
}

// RecordEncode records the outcome of one Writer.Finish call.
func RecordEncode(msgType uint16, success bool, duration time.Duration) {
	RegisterMetrics()
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	label := strconv.Itoa(int(msgType))
	encodeTotal.WithLabelValues(label, outcome).Inc()
	encodeDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordDecode records the outcome of one NewReader call, including the
// observed payload size on success.
func RecordDecode(msgType uint16, success bool, payloadLen int, duration time.Duration) {
	RegisterMetrics()
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	label := strconv.Itoa(int(msgType))
	decodeTotal.WithLabelValues(label, outcome).Inc()
	decodeDuration.WithLabelValues(label).Observe(duration.Seconds())
	if success {
		payloadBytes.WithLabelValues(label).Observe(float64(payloadLen))
	}
}

// RecordHTTPRequest records one debug HTTP server request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
