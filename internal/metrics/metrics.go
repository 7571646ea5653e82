// Package metrics counts what one run did, for node-exporter textfile
// collection.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"shareaudit/internal/domain"
	"shareaudit/internal/recon"
)

// RunMetrics tracks Prometheus metrics for a single run.
//
// Methods handle a nil receiver, so a nil *RunMetrics is a no-op when no
// metrics file is configured.
type RunMetrics struct {
	registry *prometheus.Registry

	// Hosts counts finished host probes.
	// Labels: outcome=[reachable_with_shares, reachable_no_matching_shares, unreachable, non_directory_host]
	Hosts *prometheus.CounterVec

	// Shares counts ACL reads.
	// Labels: result=[ok, access_denied, not_found, error]
	Shares *prometheus.CounterVec

	// Records counts exported permission records.
	Records prometheus.Counter

	// Domains counts finished domains.
	// Labels: result=[ok, fallback, no_reachable_server, enumeration_failed, error]
	Domains *prometheus.CounterVec

	// HostDuration tracks per-host probe time.
	HostDuration prometheus.Histogram
}

// New creates metrics on a private registry
func New() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		Hosts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shareaudit_hosts_total",
				Help: "Hosts probed by outcome",
			},
			[]string{"outcome"},
		),
		Shares: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shareaudit_shares_total",
				Help: "Share ACL reads by result",
			},
			[]string{"result"},
		),
		Records: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shareaudit_permission_records_total",
				Help: "Permission records produced",
			},
		),
		Domains: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shareaudit_domains_total",
				Help: "Domains processed by result",
			},
			[]string{"result"},
		),
		HostDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shareaudit_host_probe_duration_seconds",
				Help:    "Per-host share discovery and ACL read duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
	}

	m.registry.MustRegister(m.Hosts, m.Shares, m.Records, m.Domains, m.HostDuration)
	return m
}

// Registry returns the registry holding the run's metrics
func (m *RunMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// DomainDone implements recon.Observer
func (m *RunMetrics) DomainDone(r recon.DomainResult) {
	if m == nil {
		return
	}
	m.Domains.WithLabelValues(domainResult(r)).Inc()
}

// HostDone implements recon.Observer
func (m *RunMetrics) HostDone(r domain.HostResult) {
	if m == nil {
		return
	}
	m.Hosts.WithLabelValues(string(r.Outcome)).Inc()
	m.HostDuration.Observe(r.Duration.Seconds())
	m.Records.Add(float64(len(r.Records)))
}

// ShareDone implements recon.Observer
func (m *RunMetrics) ShareDone(path string, records int, err error) {
	if m == nil {
		return
	}
	m.Shares.WithLabelValues(shareResult(err)).Inc()
}

// WriteTextfile writes the metrics in text exposition format to path,
// atomically, for the node-exporter textfile collector
func (m *RunMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

var _ recon.Observer = (*RunMetrics)(nil)
