package adapter

import "time"

// NmapOption is a functional option for configuring NmapPinger
type NmapOption func(*NmapPinger)

// WithNmapTimeout bounds a single ping scan
func WithNmapTimeout(d time.Duration) NmapOption {
	return func(p *NmapPinger) {
		p.timeout = d
	}
}

// WithNmapBinary sets an explicit nmap path instead of $PATH lookup
func WithNmapBinary(path string) NmapOption {
	return func(p *NmapPinger) {
		p.binaryPath = path
	}
}

// WithPrivileged tells nmap it may use raw sockets (ICMP echo, ARP)
// Note: requires root or CAP_NET_RAW
func WithPrivileged(enabled bool) NmapOption {
	return func(p *NmapPinger) {
		p.privileged = enabled
	}
}

// WithDiscoveryPorts adds TCP SYN discovery probes (-PS) on the given ports
// Format: "445,389,3268"
func WithDiscoveryPorts(ports string) NmapOption {
	return func(p *NmapPinger) {
		if validated, err := parsePorts(ports); err == nil {
			p.tcpPorts = validated
		}
	}
}
