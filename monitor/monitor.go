//go:build linux

package monitor

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mdlayher/netlink"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sys/unix"
)

var logger *slog.Logger

type Monitor struct {
	Config

	conn   *netlink.Conn
	m      *metrics
	server *http.Server
}

func (m *Monitor) String() string {
	return "rtnetlink monitor"
}

func NewMonitor(c *Config) (*Monitor, error) {
	if c == nil {
		def := DefaultConfig
		c = &def
	}

	if c.Log {
		logger = slog.Default().With("t", "monitor")
	} else {
		logger = slog.New(slog.DiscardHandler)
	}

	m := Monitor{Config: *c, m: newMetrics()}

	var groups uint32
	if m.Routes {
		groups |= unix.RTMGRP_IPV4_ROUTE | unix.RTMGRP_IPV6_ROUTE
	}
	if m.Addresses {
		groups |= unix.RTMGRP_IPV4_IFADDR | unix.RTMGRP_IPV6_IFADDR
	}
	if m.Neighbors {
		groups |= unix.RTMGRP_NEIGH
	}
	if groups == 0 {
		return nil, fmt.Errorf("no rtnetlink groups enabled: nothing to monitor")
	}

	conn, err := netlink.Dial(unix.NETLINK_ROUTE, &netlink.Config{Groups: groups})
	if err != nil {
		return nil, fmt.Errorf("could not open an rtnetlink socket: %w", err)
	}
	m.conn = conn

	if m.MetricsPort != 0 {
		// Non-global registry, as usual.
		reg := prometheus.NewRegistry()
		if err := m.m.register(reg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("error registering the metrics: %w", err)
		}

		handler := http.NewServeMux()
		handler.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		m.server = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", m.BindAddress, m.MetricsPort),
			Handler: handler,
		}
	}

	return &m, nil
}

// Run reads messages until done is closed. Decoded facts go out on
// outChan; malformed messages are dropped after being counted and logged.
func (m *Monitor) Run(done <-chan struct{}, outChan chan<- Event) {
	logger.Debug("running the rtnetlink monitor")

	if m.server != nil {
		go func() {
			if err := m.server.ListenAndServe(); err != nil {
				logger.Info("metrics listener stopped", "err", err)
			}
		}()
	}

	// Receive blocks with no way to also wait on a channel, so closing
	// done knocks the socket out from under it through the deadline.
	go func() {
		<-done
		if err := m.conn.SetDeadline(time.Unix(0, 1)); err != nil {
			logger.Warn("could not interrupt the netlink socket", "err", err)
		}
	}()

	for {
		msgs, err := m.conn.Receive()
		if err != nil {
			select {
			case <-done:
				logger.Debug("cleanly exiting the rtnetlink monitor")
			default:
				logger.Error("error receiving from the rtnetlink socket", "err", err)
			}
			return
		}

		for _, msg := range msgs {
			kind := kindLabel(uint16(msg.Header.Type))
			m.m.messages.WithLabelValues(kind).Inc()

			ev, err := dispatch(msg)
			if err != nil {
				m.m.decodeFailures.WithLabelValues(kind).Inc()
				logger.Error("dropping message", "type", msg.Header.Type, "err", err)
				continue
			}
			if ev == nil {
				continue
			}
			m.m.events.WithLabelValues(kind).Inc()

			select {
			case outChan <- *ev:
			case <-done:
				logger.Debug("cleanly exiting the rtnetlink monitor")
				return
			}
		}
	}
}

func (m *Monitor) Cleanup() error {
	logger.Debug("cleaning up the rtnetlink monitor")
	if m.server != nil {
		if err := m.server.Close(); err != nil {
			logger.Warn("error closing the metrics listener", "err", err)
		}
	}
	return m.conn.Close()
}
