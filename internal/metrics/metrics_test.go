package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareaudit/internal/domain"
	"shareaudit/internal/recon"
)

// counterValue finds a gathered counter by name and label value
func counterValue(t *testing.T, m *RunMetrics, name, label string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if label == "" || hasLabel(metric, label) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestRunMetrics_Observer(t *testing.T) {
	m := New()

	m.DomainDone(recon.DomainResult{Server: domain.SelectedServer{Address: "dc1"}})
	m.DomainDone(recon.DomainResult{Server: domain.SelectedServer{Address: "example.org", Fallback: true}})
	m.DomainDone(recon.DomainResult{Err: domain.ErrNoReachableServer})

	m.HostDone(domain.HostResult{Outcome: domain.OutcomeReachableWithShares, Records: make([]domain.PermissionRecord, 3), Duration: time.Second})
	m.HostDone(domain.HostResult{Outcome: domain.OutcomeUnreachable})

	m.ShareDone(`\\a\S`, 3, nil)
	m.ShareDone(`\\a\T`, 0, domain.ErrAccessDenied)
	m.ShareDone(`\\a\U`, 0, errors.New("timeout"))

	assert.Equal(t, 1.0, counterValue(t, m, "shareaudit_domains_total", "ok"))
	assert.Equal(t, 1.0, counterValue(t, m, "shareaudit_domains_total", "fallback"))
	assert.Equal(t, 1.0, counterValue(t, m, "shareaudit_domains_total", "no_reachable_server"))
	assert.Equal(t, 1.0, counterValue(t, m, "shareaudit_hosts_total", "unreachable"))
	assert.Equal(t, 3.0, counterValue(t, m, "shareaudit_permission_records_total", ""))
	assert.Equal(t, 1.0, counterValue(t, m, "shareaudit_shares_total", "access_denied"))
	assert.Equal(t, 1.0, counterValue(t, m, "shareaudit_shares_total", "error"))
}

func TestRunMetrics_Nil(t *testing.T) {
	var m *RunMetrics
	m.DomainDone(recon.DomainResult{})
	m.HostDone(domain.HostResult{})
	m.ShareDone("", 0, nil)
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile("/nonexistent/metrics.prom"))
}

func TestRunMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.HostDone(domain.HostResult{Outcome: domain.OutcomeNoMatchingShares})

	path := filepath.Join(t.TempDir(), "shareaudit.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `shareaudit_hosts_total{outcome="reachable_no_matching_shares"} 1`)
	assert.Contains(t, string(data), "shareaudit_host_probe_duration_seconds_bucket")
}
