package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric label:
//
//	kind: which message family the sample belongs to (route, address,
//	      neighbor or other)
var kindLabels = []string{"kind"}

type metrics struct {
	messages       *prometheus.CounterVec
	decodeFailures *prometheus.CounterVec
	events         *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "networkd",
			Subsystem: "monitor",
			Name:      "messages_total",
			Help:      "rtnetlink messages received from the kernel.",
		}, kindLabels),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "networkd",
			Subsystem: "monitor",
			Name:      "decode_failures_total",
			Help:      "rtnetlink messages dropped because they did not decode.",
		}, kindLabels),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "networkd",
			Subsystem: "monitor",
			Name:      "events_total",
			Help:      "decoded facts handed to the consumer.",
		}, kindLabels),
	}
}

func (m *metrics) register(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{m.messages, m.decodeFailures, m.events} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
