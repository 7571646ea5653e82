package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"shareaudit/internal/domain"
)

// Pinger issues a single reachability probe against an address
type Pinger interface {
	Ping(ctx context.Context, addr string) (domain.PingResult, error)
}

// latencyRe matches "time=X.XX ms" (Linux) and "time=12ms" / "time<1ms" (Windows)
var latencyRe = regexp.MustCompile(`time[=<](\d+\.?\d*)\s*ms`)

// ICMPPinger pings with the system ping binary, one echo request per call
type ICMPPinger struct {
	timeout time.Duration
	goos    string
}

// NewICMPPinger creates a pinger bounded by timeout
func NewICMPPinger(timeout time.Duration) *ICMPPinger {
	return &ICMPPinger{timeout: timeout, goos: runtime.GOOS}
}

// Ping runs the system ping command. A non-zero exit is "no response", not an error.
func (p *ICMPPinger) Ping(ctx context.Context, addr string) (domain.PingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout+time.Second)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "ping", p.args(addr)...)
	output, err := cmd.Output()
	elapsed := time.Since(start)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || ctx.Err() != nil {
			return domain.PingResult{}, nil
		}
		return domain.PingResult{}, fmt.Errorf("run ping: %w", err)
	}

	if latency, ok := parseLatency(output); ok {
		return domain.PingResult{Responded: true, Latency: latency}, nil
	}
	// Ping succeeded but latency wasn't printed
	return domain.PingResult{Responded: true, Latency: elapsed}, nil
}

// args builds the ping command line for one echo request
func (p *ICMPPinger) args(addr string) []string {
	if p.goos == "windows" {
		ms := int(p.timeout.Milliseconds())
		if ms < 1 {
			ms = 1
		}
		return []string{"-n", "1", "-w", strconv.Itoa(ms), addr}
	}

	// Linux ping: -c count, -W timeout in seconds
	sec := int(p.timeout.Seconds())
	if sec < 1 {
		sec = 1
	}
	return []string{"-c", "1", "-W", strconv.Itoa(sec), addr}
}

// parseLatency extracts the round-trip time from ping output
func parseLatency(output []byte) (time.Duration, bool) {
	matches := latencyRe.FindSubmatch(output)
	if len(matches) < 2 {
		return 0, false
	}
	ms, err := strconv.ParseFloat(string(matches[1]), 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}

// TCPPinger measures the time to complete (or be refused by) a TCP handshake.
// It works without raw-socket privileges.
type TCPPinger struct {
	timeout time.Duration
	ports   []int
}

// NewTCPPinger creates a TCP pinger that tries ports in order
func NewTCPPinger(timeout time.Duration, ports ...int) *TCPPinger {
	if len(ports) == 0 {
		ports = []int{445}
	}
	return &TCPPinger{timeout: timeout, ports: ports}
}

// Ping tries each port until one answers. A refused connection still proves
// the host is up.
func (p *TCPPinger) Ping(ctx context.Context, addr string) (domain.PingResult, error) {
	for _, port := range p.ports {
		target := net.JoinHostPort(addr, strconv.Itoa(port))
		start := time.Now()

		dialer := net.Dialer{Timeout: p.timeout}
		conn, err := dialer.DialContext(ctx, "tcp", target)
		if err == nil {
			conn.Close()
			return domain.PingResult{Responded: true, Latency: time.Since(start)}, nil
		}
		if isRefused(err) {
			return domain.PingResult{Responded: true, Latency: time.Since(start)}, nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return domain.PingResult{}, nil
}

// PortOpen reports whether a full TCP handshake succeeds on port
func PortOpen(ctx context.Context, host string, port int, timeout time.Duration) bool {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// isRefused reports whether err is an active RST from the peer
func isRefused(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || opErr.Timeout() {
		return false
	}
	return errors.Is(err, errConnRefused)
}
