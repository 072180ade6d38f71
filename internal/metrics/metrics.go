// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics provides Prometheus collectors for compilation and
// scoring. Collectors live on a private registry so several instances can
// coexist (one per process, one per test).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the donor-match collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	CompilationsTotal *prometheus.CounterVec
	CompileDuration   prometheus.Histogram
	LookupRecords     *prometheus.GaugeVec
	UnresolvedNames   *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	Classifications   *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.CompilationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donor_match_compilations_total",
			Help: "Dictionary compilations by outcome",
		},
		[]string{"status"},
	)
	m.CompileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "donor_match_compile_duration_seconds",
			Help:    "Duration of dictionary compilations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)
	m.LookupRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "donor_match_lookup_records",
			Help: "Lookup records in the most recently compiled dictionary per version and typing method",
		},
		[]string{"version", "method"},
	)
	m.UnresolvedNames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donor_match_unresolved_names_total",
			Help: "Lookup names omitted from a compilation because they resolve to no allele",
		},
		[]string{"version"},
	)
	m.CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donor_match_dictionary_fetches_total",
			Help: "Dictionary requests by where they were served from",
		},
		[]string{"source"},
	)
	m.Classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donor_match_classifications_total",
			Help: "Position classifications by match confidence",
		},
		[]string{"confidence"},
	)

	m.Registry.MustRegister(
		m.CompilationsTotal,
		m.CompileDuration,
		m.LookupRecords,
		m.UnresolvedNames,
		m.CacheLookups,
		m.Classifications,
	)
	return m
}

// ObserveCompile records one compilation outcome.
func (m *Metrics) ObserveCompile(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.CompilationsTotal.WithLabelValues(status).Inc()
	m.CompileDuration.Observe(d.Seconds())
}

// SetLookupRecords sets the record count for a version and method.
func (m *Metrics) SetLookupRecords(version, method string, n int) {
	if m == nil {
		return
	}
	m.LookupRecords.WithLabelValues(version, method).Set(float64(n))
}

// AddUnresolved counts names omitted from a version.
func (m *Metrics) AddUnresolved(version string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.UnresolvedNames.WithLabelValues(version).Add(float64(n))
}

// CountFetch counts a dictionary request served from source
// ("memory", "store" or "compiled").
func (m *Metrics) CountFetch(source string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(source).Inc()
}

// CountClassification counts one position classification.
func (m *Metrics) CountClassification(confidence string) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(confidence).Inc()
}

// WriteTextfile writes the registry in the Prometheus text format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
