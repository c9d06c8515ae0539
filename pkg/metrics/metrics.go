// Package metrics exposes Prometheus instrumentation for the transport
// core's connection lifecycle and wire traffic, in the style of
// malbeclabs-doublezero's liveness/metrics.go: a service-labeled
// registry of gauges/counters/histograms built with promauto, rather
// than hand-rolled counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "netrelay"

// Metrics bundles every instrument the Peer orchestrator reports into;
// RemotePeer itself does not touch it.
type Metrics struct {
	ConnectedPeers      prometheus.Gauge
	StateTransitions    *prometheus.CounterVec
	PacketsSent         prometheus.Counter
	PacketsReceived     prometheus.Counter
	ChecksumFailures    prometheus.Counter
	AcksProcessed       prometheus.Counter
	ReliableQueueDepth  prometheus.Gauge
	MessagesDropped     *prometheus.CounterVec
	RTTMilliseconds     prometheus.Histogram
}

// New registers and returns a fresh Metrics bundle against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry across parallel test binaries.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectedPeers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_peers",
			Help:      "Number of RemotePeers currently in the Connected state.",
		}),
		StateTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Count of RemotePeer state transitions, labeled by from/to state.",
		}, []string{"from", "to"}),
		PacketsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_sent_total",
			Help:      "Datagrams transmitted across all peers.",
		}),
		PacketsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "Datagrams successfully parsed (checksum valid, not truncated).",
		}),
		ChecksumFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checksum_failures_total",
			Help:      "Datagrams discarded for failing CRC validation.",
		}),
		AcksProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acks_processed_total",
			Help:      "Individual sequence acknowledgments processed (ackseq plus bitfield hits).",
		}),
		ReliableQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reliable_queue_depth",
			Help:      "Sum of reliable-message retransmit queue depth across all peers.",
		}),
		MessagesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Inbound messages dropped, labeled by reason.",
		}, []string{"reason"}),
		RTTMilliseconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rtt_milliseconds",
			Help:      "Smoothed round-trip time samples, in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// Drop reasons, used as MessagesDropped labels.
const (
	DropReasonDuplicate      = "duplicate"
	DropReasonStaleOrdered   = "stale_ordered"
	DropReasonUnknownID      = "unknown_id"
	DropReasonBadDeserialize = "bad_deserialize"
	DropReasonPolicy         = "handshake_policy"
)
