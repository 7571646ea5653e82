package domain

import (
	"strings"
	"time"
)

// Domain is a directory domain name plus the DNS root it lives under.
// An empty Name means the forest root.
type Domain struct {
	Name    string `json:"name" yaml:"name"`
	DNSRoot string `json:"dns_root" yaml:"dns_root"`
}

// NewDomain creates a Domain, trimming stray dots and whitespace
func NewDomain(name, dnsRoot string) Domain {
	return Domain{
		Name:    strings.Trim(strings.TrimSpace(name), "."),
		DNSRoot: strings.Trim(strings.TrimSpace(dnsRoot), "."),
	}
}

// SearchRoot returns the fully-qualified search root for the domain
func (d Domain) SearchRoot() string {
	if d.Name == "" {
		return d.DNSRoot
	}
	if d.DNSRoot == "" {
		return d.Name
	}
	return d.Name + "." + d.DNSRoot
}

// BaseDN converts the search root to an LDAP distinguished name
// ("corp.example.org" -> "DC=corp,DC=example,DC=org")
func (d Domain) BaseDN() string {
	return DNFromDNSName(d.SearchRoot())
}

// String returns a printable label, using "(forest root)" for the empty name
func (d Domain) String() string {
	if d.Name == "" {
		return "(forest root) " + d.DNSRoot
	}
	return d.SearchRoot()
}

// DNFromDNSName converts a dotted DNS name to DC= components
func DNFromDNSName(name string) string {
	name = strings.Trim(name, ".")
	if name == "" {
		return ""
	}
	labels := strings.Split(name, ".")
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		if label == "" {
			continue
		}
		parts = append(parts, "DC="+label)
	}
	return strings.Join(parts, ",")
}

// CandidateServer is a replica address with its measured latency.
// Latency is only meaningful when Responded is true.
type CandidateServer struct {
	Address   string        `json:"address"`
	Responded bool          `json:"responded"`
	Latency   time.Duration `json:"latency"`
}

// SelectedServer is the one server chosen per domain
type SelectedServer struct {
	Domain  Domain `json:"domain"`
	Address string `json:"address"`
	// Fallback is true when no replica list was obtainable and Address is the search root
	Fallback bool `json:"fallback"`
}
