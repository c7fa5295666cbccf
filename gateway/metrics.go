// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK     = "ok"
	resultRevert = "revert"
	resultError  = "error"
)

type metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainvote",
			Name:      "contract_calls_total",
			Help:      "Number of Voting contract calls by method and result",
		}, []string{"method", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chainvote",
			Name:      "contract_call_seconds",
			Help:      "Latency of Voting contract calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.calls, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *metrics) observe(method string, start time.Time, err error) {
	result := resultOK
	if err != nil {
		result = resultError
		var ce *ChainError
		if errors.As(err, &ce) && ce.Kind != nil {
			result = resultRevert
		}
	}
	m.calls.WithLabelValues(method, result).Inc()
	m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
