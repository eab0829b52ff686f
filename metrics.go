// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by search contexts.
// One Metrics value may be shared by any number of contexts.
type Metrics struct {
	ContextsActive prometheus.Gauge
	PointsStored   prometheus.Gauge
	SearchesTotal  *prometheus.CounterVec
	SearchResults  prometheus.Histogram
	SearchDuration *prometheus.HistogramVec
	CreateFailures prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. If
// reg is nil, the collectors are created but not registered. Returns
// an error if registration fails, for example because collectors with
// the same names are already registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ContextsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pointsearch",
				Name:      "contexts_active",
				Help:      "Number of search contexts created and not yet destroyed.",
			},
		),
		PointsStored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pointsearch",
				Name:      "points_stored",
				Help:      "Total points held by live search contexts.",
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pointsearch",
				Name:      "searches_total",
				Help:      "Total searches by strategy.",
			},
			[]string{"strategy"},
		),
		SearchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pointsearch",
				Name:      "search_results",
				Help:      "Number of points returned per search.",
				Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 500, 1000},
			},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pointsearch",
				Name:      "search_duration_seconds",
				Help:      "Search latency in seconds by strategy.",
				Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"strategy"},
		),
		CreateFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pointsearch",
				Name:      "create_failures_total",
				Help:      "Total Create calls that returned an error.",
			},
		),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, wrapErr("failed to register metrics", err)
			}
		}
	}

	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ContextsActive,
		m.PointsStored,
		m.SearchesTotal,
		m.SearchResults,
		m.SearchDuration,
		m.CreateFailures,
	}
}

func (m *Metrics) observeCreate(points int) {
	if m == nil {
		return
	}
	m.ContextsActive.Inc()
	m.PointsStored.Add(float64(points))
}

func (m *Metrics) observeCreateFailure() {
	if m == nil {
		return
	}
	m.CreateFailures.Inc()
}

func (m *Metrics) observeSearch(s Strategy, results int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := s.String()
	m.SearchesTotal.WithLabelValues(label).Inc()
	m.SearchResults.Observe(float64(results))
	m.SearchDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (m *Metrics) observeDestroy(points int) {
	if m == nil {
		return
	}
	m.ContextsActive.Dec()
	m.PointsStored.Sub(float64(points))
}
