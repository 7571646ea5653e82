package adapter

import (
	"context"
	"testing"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNmapPinger_Options(t *testing.T) {
	p := NewNmapPinger(
		WithNmapTimeout(2*time.Second),
		WithNmapBinary("/usr/local/bin/nmap"),
		WithPrivileged(true),
		WithDiscoveryPorts("445, 3268"),
	)

	assert.Equal(t, 2*time.Second, p.timeout)
	assert.Equal(t, "/usr/local/bin/nmap", p.binaryPath)
	assert.True(t, p.privileged)
	assert.Equal(t, "445,3268", p.tcpPorts)

	p = NewNmapPinger(WithDiscoveryPorts("99999"))
	assert.Empty(t, p.tcpPorts, "invalid port list is ignored")
}

func TestNmapPinger_ScannerArgs(t *testing.T) {
	p := NewNmapPinger(
		WithNmapBinary("/usr/bin/nmap"),
		WithPrivileged(true),
		WithDiscoveryPorts("389,445"),
	)

	scanner, err := p.newScanner(context.Background(), "dc01.corp.example.org")
	require.NoError(t, err)

	args := scanner.Args()
	assert.Contains(t, args, "dc01.corp.example.org")
	assert.Contains(t, args, "-sn")
	assert.Contains(t, args, "-n")
	assert.Contains(t, args, "--privileged")
	assert.Contains(t, args, "-PS389,445")
}

func TestNmapPinger_ScannerArgsWithoutPorts(t *testing.T) {
	p := NewNmapPinger(WithNmapBinary("/usr/bin/nmap"))

	scanner, err := p.newScanner(context.Background(), "dc01")
	require.NoError(t, err)
	for _, arg := range scanner.Args() {
		assert.NotContains(t, arg, "-PS")
	}
	assert.NotContains(t, scanner.Args(), "--privileged")
}

func TestPingResultFromRun(t *testing.T) {
	tests := []struct {
		name    string
		run     *nmap.Run
		elapsed time.Duration
		wantUp  bool
		wantRTT time.Duration
	}{
		{
			name:   "nil run",
			run:    nil,
			wantUp: false,
		},
		{
			name: "host down",
			run: &nmap.Run{Hosts: []nmap.Host{
				{Status: nmap.Status{State: "down"}},
			}},
			wantUp: false,
		},
		{
			name: "srtt reported",
			run: &nmap.Run{Hosts: []nmap.Host{
				{Status: nmap.Status{State: "up"}, Times: nmap.Times{SRTT: "1500"}},
			}},
			elapsed: time.Second,
			wantUp:  true,
			wantRTT: 1500 * time.Microsecond,
		},
		{
			name: "no srtt falls back to elapsed",
			run: &nmap.Run{Hosts: []nmap.Host{
				{Status: nmap.Status{State: "up"}},
			}},
			elapsed: 40 * time.Millisecond,
			wantUp:  true,
			wantRTT: 40 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := pingResultFromRun(tt.run, tt.elapsed)
			assert.Equal(t, tt.wantUp, res.Responded)
			assert.Equal(t, tt.wantRTT, res.Latency)
		})
	}
}

// TestParsePorts tests port list validation
func TestParsePorts(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"single port", "445", false},
		{"multiple ports", "389,445,3268", false},
		{"port range", "1-1000", false},
		{"mixed format", "22,80-443,3268", false},
		{"with spaces", "389, 445", false},
		{"invalid range", "80-", true},
		{"invalid port", "99999", true},
		{"invalid format", "abc", true},
		{"negative port", "-1", true},
		{"reversed range", "443-80", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePorts(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("parsePorts(%s) error = %v, wantError %v", tt.input, err, tt.wantError)
			}
		})
	}
}
