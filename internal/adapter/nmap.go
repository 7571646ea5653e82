package adapter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"shareaudit/internal/domain"
	"shareaudit/internal/logger"
)

// NmapPinger probes reachability with an nmap ping scan (-sn) and reads the
// smoothed round-trip time nmap reports for the host
type NmapPinger struct {
	timeout    time.Duration
	binaryPath string
	privileged bool
	tcpPorts   string
}

// NewNmapPinger creates a new nmap-based pinger
func NewNmapPinger(opts ...NmapOption) *NmapPinger {
	p := &NmapPinger{
		timeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Ping runs a host-discovery-only scan against addr
func (p *NmapPinger) Ping(ctx context.Context, addr string) (domain.PingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	scanner, err := p.newScanner(ctx, addr)
	if err != nil {
		return domain.PingResult{}, err
	}

	start := time.Now()
	result, warnings, err := scanner.Run()
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return domain.PingResult{}, nil
		}
		return domain.PingResult{}, fmt.Errorf("scan failed: %w", err)
	}

	if warnings != nil && len(*warnings) > 0 {
		logger.Debug("nmap warnings", "addr", addr, "warnings", *warnings)
	}

	return pingResultFromRun(result, elapsed), nil
}

// newScanner builds a host-discovery-only scanner for addr
func (p *NmapPinger) newScanner(ctx context.Context, addr string) (*nmap.Scanner, error) {
	opts := []nmap.Option{
		nmap.WithTargets(addr),
		nmap.WithPingScan(),
		nmap.WithDisabledDNSResolution(),
	}
	if p.binaryPath != "" {
		opts = append(opts, nmap.WithBinaryPath(p.binaryPath))
	}
	if p.privileged {
		opts = append(opts, nmap.WithPrivileged())
	}
	if p.tcpPorts != "" {
		opts = append(opts, nmap.WithSYNDiscovery(p.tcpPorts))
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}
	return scanner, nil
}

// pingResultFromRun converts a ping scan run into a PingResult. The first
// host reported up wins; SRTT is microseconds, falling back to wall time.
func pingResultFromRun(result *nmap.Run, elapsed time.Duration) domain.PingResult {
	if result == nil {
		return domain.PingResult{}
	}

	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}
		if srtt, err := strconv.ParseInt(host.Times.SRTT, 10, 64); err == nil && srtt > 0 {
			return domain.PingResult{Responded: true, Latency: time.Duration(srtt) * time.Microsecond}
		}
		return domain.PingResult{Responded: true, Latency: elapsed}
	}

	return domain.PingResult{}
}

// parsePorts validates a port list in nmap format
// Supported: "80,443,8080" or "1-1000" or "22,80-443,8080"
func parsePorts(portRange string) (string, error) {
	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 1 || start > 65535 {
			return "", fmt.Errorf("invalid port number: %s", part)
		}
		if !isRange {
			continue
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil || end < start || end > 65535 {
			return "", fmt.Errorf("invalid port range: %s", part)
		}
	}
	return strings.ReplaceAll(portRange, " ", ""), nil
}
