// Package metrics provides Prometheus metrics for the camera bridge
// pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/camlink/internal/events"
)

var (
	framesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camlink",
		Subsystem: "sink",
		Name:      "frames_delivered_total",
		Help:      "Compressed frames written to the output device",
	}, []string{"camera", "role"})

	bytesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camlink",
		Subsystem: "sink",
		Name:      "bytes_delivered_total",
		Help:      "Compressed frame bytes written to the output device",
	}, []string{"camera", "role"})

	unitsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camlink",
		Subsystem: "bridge",
		Name:      "units_dropped_total",
		Help:      "Non-video media units discarded by the relay",
	}, []string{"camera", "role"})

	streamConnected = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "camlink",
		Subsystem: "bridge",
		Name:      "stream_connected",
		Help:      "1 while the camera stream is authenticated and live",
	}, []string{"camera", "role"})

	streamDisconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camlink",
		Subsystem: "bridge",
		Name:      "stream_disconnects_total",
		Help:      "Failed connection attempts and broken live streams",
	}, []string{"camera", "role"})

	streamAuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camlink",
		Subsystem: "bridge",
		Name:      "auth_failures_total",
		Help:      "Permanent authentication rejections",
	}, []string{"camera", "role"})

	formatCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camlink",
		Subsystem: "sink",
		Name:      "format_commits_total",
		Help:      "Output device format declarations, by codec",
	}, []string{"camera", "role", "codec"})
)

// Recorder counts per-frame activity. It satisfies the bridge's delivery
// recorder interface; per-frame counts go straight to the counters rather
// than through the event bus.
type Recorder struct{}

// FrameDelivered records one delivered frame of n payload bytes.
func (Recorder) FrameDelivered(camera, role string, n int) {
	framesDelivered.WithLabelValues(camera, role).Inc()
	bytesDelivered.WithLabelValues(camera, role).Add(float64(n))
}

// UnitDropped records one discarded non-video unit.
func (Recorder) UnitDropped(camera, role string) {
	unitsDropped.WithLabelValues(camera, role).Inc()
}

// Attach subscribes the stream lifecycle gauges and counters to the event
// bus. Returns an unsubscribe function.
func Attach(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.StreamConnectedEvent) {
			streamConnected.WithLabelValues(e.Camera, e.Role).Set(1)
		}),
		bus.Subscribe(func(e events.StreamDisconnectedEvent) {
			streamConnected.WithLabelValues(e.Camera, e.Role).Set(0)
			streamDisconnects.WithLabelValues(e.Camera, e.Role).Inc()
		}),
		bus.Subscribe(func(e events.StreamAuthFailedEvent) {
			streamConnected.WithLabelValues(e.Camera, e.Role).Set(0)
			streamAuthFailures.WithLabelValues(e.Camera, e.Role).Inc()
		}),
		bus.Subscribe(func(e events.FormatCommittedEvent) {
			formatCommits.WithLabelValues(e.Camera, e.Role, e.Codec).Inc()
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
