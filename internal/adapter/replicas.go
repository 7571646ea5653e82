package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/miekg/dns"

	"shareaudit/internal/domain"
)

// DNSReplicaLister lists global catalog replicas from SRV records. Global
// catalogs register _gc._tcp under the forest name only, so a child domain's
// replicas are the forest catalogs that are also its domain controllers.
type DNSReplicaLister struct {
	server  string
	timeout time.Duration
	client  *dns.Client
}

// NewDNSReplicaLister creates a lister that queries server ("host:port").
// An empty server uses the first nameserver in /etc/resolv.conf, then the
// system resolver.
func NewDNSReplicaLister(server string, timeout time.Duration) *DNSReplicaLister {
	if server != "" {
		if _, _, err := net.SplitHostPort(server); err != nil {
			server = net.JoinHostPort(server, "53")
		}
	}
	return &DNSReplicaLister{
		server:  server,
		timeout: timeout,
		client:  &dns.Client{Timeout: timeout},
	}
}

// ListReplicas returns the _gc._tcp.<forest> targets, trailing dot trimmed,
// ordered by priority then answer order. For a child domain only targets
// also listed under _ldap._tcp.<searchRoot> are kept.
func (l *DNSReplicaLister) ListReplicas(ctx context.Context, d domain.Domain) ([]string, error) {
	forest := d.DNSRoot
	if forest == "" {
		forest = d.Name
	}

	catalogs, err := l.lookup(ctx, "_gc._tcp."+forest)
	if err != nil || len(catalogs) == 0 || strings.EqualFold(d.SearchRoot(), forest) {
		return catalogs, err
	}

	controllers, err := l.lookup(ctx, "_ldap._tcp."+d.SearchRoot())
	if err != nil {
		return nil, err
	}
	inDomain := make(map[string]bool, len(controllers))
	for _, h := range controllers {
		inDomain[strings.ToLower(h)] = true
	}

	var hosts []string
	for _, h := range catalogs {
		if inDomain[strings.ToLower(h)] {
			hosts = append(hosts, h)
		}
	}
	return hosts, nil
}

// lookup resolves the SRV targets of name. NXDOMAIN is an empty result.
func (l *DNSReplicaLister) lookup(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSuffix(name, ".")

	server := l.server
	if server == "" {
		server = systemNameserver()
	}
	if server == "" {
		return lookupSRVSystem(ctx, name)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeSRV)
	msg.RecursionDesired = true

	in, _, err := l.client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, fmt.Errorf("srv query %s via %s: %w", name, server, err)
	}
	if in.Rcode == dns.RcodeNameError {
		return nil, nil
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("srv query %s: %s", name, dns.RcodeToString[in.Rcode])
	}

	var records []*dns.SRV
	for _, rr := range in.Answer {
		if srv, ok := rr.(*dns.SRV); ok {
			records = append(records, srv)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Priority < records[j].Priority
	})

	hosts := make([]string, 0, len(records))
	for _, srv := range records {
		hosts = append(hosts, strings.TrimSuffix(srv.Target, "."))
	}
	return hosts, nil
}

func systemNameserver() string {
	cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(cfg.Servers) == 0 {
		return ""
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port)
}

func lookupSRVSystem(ctx context.Context, name string) ([]string, error) {
	_, addrs, err := net.DefaultResolver.LookupSRV(ctx, "", "", name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("srv lookup %s: %w", name, err)
	}
	hosts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		hosts = append(hosts, strings.TrimSuffix(a.Target, "."))
	}
	return hosts, nil
}

// Searcher is the directory capability LDAPReplicaLister needs
type Searcher interface {
	Search(ctx context.Context, server string, req domain.SearchRequest) ([]domain.Entry, error)
}

// gcSettingsFilter matches the NTDS settings of domain controllers that
// carry the global catalog bit (options & 1) and host the domain baseDN
func gcSettingsFilter(baseDN string) string {
	nc := ldap.EscapeFilter(baseDN)
	return "(&(objectCategory=nTDSDSA)(options:1.2.840.113556.1.4.803:=1)" +
		"(|(msDS-hasMasterNCs=" + nc + ")(hasMasterNCs=" + nc + ")))"
}

// LDAPReplicaLister lists global catalog replicas of a domain from the
// configuration partition of its forest
type LDAPReplicaLister struct {
	dir Searcher
}

// NewLDAPReplicaLister creates a lister on top of a directory client
func NewLDAPReplicaLister(dir Searcher) *LDAPReplicaLister {
	return &LDAPReplicaLister{dir: dir}
}

// ListReplicas returns the dNSHostName of each server object whose NTDS
// settings mark it as a global catalog holding d
func (l *LDAPReplicaLister) ListReplicas(ctx context.Context, d domain.Domain) ([]string, error) {
	searchRoot := d.SearchRoot()
	rootDSE, err := l.dir.Search(ctx, searchRoot, domain.SearchRequest{
		Scope:      domain.ScopeBase,
		Filter:     "(objectClass=*)",
		Attributes: []string{"configurationNamingContext"},
		Mode:       domain.QueryBounded,
	})
	if err != nil {
		return nil, fmt.Errorf("read rootDSE of %s: %w", searchRoot, err)
	}
	if len(rootDSE) == 0 || rootDSE[0]["configurationNamingContext"] == "" {
		return nil, fmt.Errorf("rootDSE of %s has no configurationNamingContext", searchRoot)
	}

	settings, err := l.dir.Search(ctx, searchRoot, domain.SearchRequest{
		BaseDN:     "CN=Sites," + rootDSE[0]["configurationNamingContext"],
		Scope:      domain.ScopeSubtree,
		Filter:     gcSettingsFilter(d.BaseDN()),
		Attributes: []string{"objectCategory"},
		Mode:       domain.QueryPaged,
	})
	if err != nil {
		return nil, fmt.Errorf("list ntds settings: %w", err)
	}

	hosts := make([]string, 0, len(settings))
	for _, s := range settings {
		serverDN := parentDN(s[domain.EntryDN])
		if serverDN == "" {
			continue
		}
		entries, err := l.dir.Search(ctx, searchRoot, domain.SearchRequest{
			BaseDN:     serverDN,
			Scope:      domain.ScopeBase,
			Filter:     "(objectClass=*)",
			Attributes: []string{"dNSHostName"},
			Mode:       domain.QueryBounded,
		})
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", serverDN, err)
		}
		if len(entries) > 0 && entries[0]["dNSHostName"] != "" {
			hosts = append(hosts, entries[0]["dNSHostName"])
		}
	}
	return hosts, nil
}

// parentDN drops the first RDN, honouring backslash-escaped commas
func parentDN(dn string) string {
	for i := 0; i < len(dn); i++ {
		switch dn[i] {
		case '\\':
			i++
		case ',':
			return strings.TrimSpace(dn[i+1:])
		}
	}
	return ""
}
