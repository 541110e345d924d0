package prom

import (
	"strconv"

	"github.com/bnema/orderlink/internal/domain"
	"github.com/bnema/orderlink/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orderlink"

type Metrics struct {
	fragmentsReceived prometheus.Counter
	fragmentBytes     prometheus.Counter
	fragmentsDropped  *prometheus.CounterVec
	recordsCompleted  prometheus.Counter
	fragmentsSent     *prometheus.CounterVec
	connectionEvents  *prometheus.CounterVec
	bufferedBytes     prometheus.Gauge
}

var _ ports.Metrics = (*Metrics)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fragmentsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inbound",
			Name:      "fragments_total",
			Help:      "Fragments written by peers.",
		}),
		fragmentBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inbound",
			Name:      "bytes_total",
			Help:      "Bytes written by peers.",
		}),
		fragmentsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inbound",
			Name:      "dropped_total",
			Help:      "Fragments or partial messages discarded.",
		}, []string{"reason"}),
		recordsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "completed_total",
			Help:      "Orders reassembled and appended to the log.",
		}),
		fragmentsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbound",
			Name:      "fragments_total",
			Help:      "Response fragments handed to the transport.",
		}, []string{"success"}),
		connectionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "transitions_total",
			Help:      "Connection state transitions by target phase.",
		}, []string{"phase"}),
		bufferedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inbound",
			Name:      "buffered_bytes",
			Help:      "Bytes held in reassembly buffers across all connections.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.fragmentsReceived,
		m.fragmentBytes,
		m.fragmentsDropped,
		m.recordsCompleted,
		m.fragmentsSent,
		m.connectionEvents,
		m.bufferedBytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) FragmentReceived(bytes int) {
	m.fragmentsReceived.Inc()
	m.fragmentBytes.Add(float64(bytes))
}

func (m *Metrics) FragmentDropped(reason string) {
	m.fragmentsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordCompleted() {
	m.recordsCompleted.Inc()
}

func (m *Metrics) FragmentSent(ok bool) {
	m.fragmentsSent.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (m *Metrics) ConnectionPhase(phase domain.ConnectionPhase) {
	m.connectionEvents.WithLabelValues(string(phase)).Inc()
}

func (m *Metrics) BufferedBytes(total int) {
	m.bufferedBytes.Set(float64(total))
}
