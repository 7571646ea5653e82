package adapter

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareaudit/internal/domain"
)

// startDNS serves handler on a local UDP port and returns its address
func startDNS(t *testing.T, handler dns.HandlerFunc) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go srv.ActivateAndServe()
	<-started
	t.Cleanup(func() { srv.Shutdown() })

	return pc.LocalAddr().String()
}

func srvRecord(name string, priority uint16, target string) *dns.SRV {
	return &dns.SRV{
		Hdr:      dns.RR_Header{Name: name, Rrtype: dns.TypeSRV, Class: dns.ClassINET, Ttl: 600},
		Priority: priority,
		Weight:   100,
		Port:     3268,
		Target:   target,
	}
}

func TestDNSReplicaLister(t *testing.T) {
	questions := make(chan string, 1)
	addr := startDNS(t, func(w dns.ResponseWriter, r *dns.Msg) {
		asked := r.Question[0].Name
		questions <- asked
		m := new(dns.Msg)
		m.SetReply(r)
		m.Answer = []dns.RR{
			srvRecord(asked, 10, "dc3.example.org."),
			srvRecord(asked, 0, "dc1.example.org."),
			srvRecord(asked, 10, "dc2.example.org."),
		}
		w.WriteMsg(m)
	})

	lister := NewDNSReplicaLister(addr, time.Second)
	hosts, err := lister.ListReplicas(context.Background(), domain.NewDomain("", "example.org"))
	require.NoError(t, err)
	assert.Equal(t, "_gc._tcp.example.org.", <-questions)
	assert.Equal(t, []string{"dc1.example.org", "dc3.example.org", "dc2.example.org"}, hosts)
}

func TestDNSReplicaLister_ChildDomain(t *testing.T) {
	records := map[string][]dns.RR{
		"_gc._tcp.corp.example.org.": {
			srvRecord("_gc._tcp.corp.example.org.", 0, "dc1.corp.example.org."),
			srvRecord("_gc._tcp.corp.example.org.", 0, "DC3.emea.corp.example.org."),
			srvRecord("_gc._tcp.corp.example.org.", 0, "dc2.emea.corp.example.org."),
		},
		"_ldap._tcp.emea.corp.example.org.": {
			srvRecord("_ldap._tcp.emea.corp.example.org.", 0, "dc2.emea.corp.example.org."),
			srvRecord("_ldap._tcp.emea.corp.example.org.", 0, "dc3.emea.corp.example.org."),
			srvRecord("_ldap._tcp.emea.corp.example.org.", 0, "dc4.emea.corp.example.org."),
		},
	}
	questions := make(chan string, 4)
	addr := startDNS(t, func(w dns.ResponseWriter, r *dns.Msg) {
		questions <- r.Question[0].Name
		m := new(dns.Msg)
		answer, ok := records[r.Question[0].Name]
		if !ok {
			m.SetRcode(r, dns.RcodeNameError)
		} else {
			m.SetReply(r)
			m.Answer = answer
		}
		w.WriteMsg(m)
	})

	hosts, err := NewDNSReplicaLister(addr, time.Second).ListReplicas(context.Background(), domain.NewDomain("emea", "corp.example.org"))
	require.NoError(t, err)
	assert.Equal(t, "_gc._tcp.corp.example.org.", <-questions, "catalogs are registered under the forest")
	assert.Equal(t, "_ldap._tcp.emea.corp.example.org.", <-questions)
	assert.Equal(t, []string{"DC3.emea.corp.example.org", "dc2.emea.corp.example.org"}, hosts)
}

func TestDNSReplicaLister_ChildDomainWithoutControllers(t *testing.T) {
	addr := startDNS(t, func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		if r.Question[0].Name != "_gc._tcp.corp.example.org." {
			m.SetRcode(r, dns.RcodeNameError)
		} else {
			m.SetReply(r)
			m.Answer = []dns.RR{srvRecord(r.Question[0].Name, 0, "dc1.corp.example.org.")}
		}
		w.WriteMsg(m)
	})

	hosts, err := NewDNSReplicaLister(addr, time.Second).ListReplicas(context.Background(), domain.NewDomain("apac", "corp.example.org"))
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestDNSReplicaLister_NXDomain(t *testing.T) {
	addr := startDNS(t, func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetRcode(r, dns.RcodeNameError)
		w.WriteMsg(m)
	})

	hosts, err := NewDNSReplicaLister(addr, time.Second).ListReplicas(context.Background(), domain.NewDomain("", "missing.example.org"))
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestDNSReplicaLister_ServerFailure(t *testing.T) {
	addr := startDNS(t, func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetRcode(r, dns.RcodeServerFailure)
		w.WriteMsg(m)
	})

	_, err := NewDNSReplicaLister(addr, time.Second).ListReplicas(context.Background(), domain.NewDomain("", "example.org"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVFAIL")
}

func TestNewDNSReplicaLister_DefaultPort(t *testing.T) {
	assert.Equal(t, "10.0.0.53:53", NewDNSReplicaLister("10.0.0.53", time.Second).server)
	assert.Equal(t, "10.0.0.53:5353", NewDNSReplicaLister("10.0.0.53:5353", time.Second).server)
	assert.Empty(t, NewDNSReplicaLister("", time.Second).server)
}

// fakeSearcher answers by base DN
type fakeSearcher struct {
	byBase map[string][]domain.Entry
	err    error
	reqs   []domain.SearchRequest
}

func (f *fakeSearcher) Search(ctx context.Context, server string, req domain.SearchRequest) ([]domain.Entry, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.byBase[req.BaseDN], nil
}

func TestLDAPReplicaLister(t *testing.T) {
	const config = "CN=Configuration,DC=example,DC=org"
	dir := &fakeSearcher{byBase: map[string][]domain.Entry{
		"": {{"configurationNamingContext": config}},
		"CN=Sites," + config: {
			{domain.EntryDN: "CN=NTDS Settings,CN=DC1,CN=Servers,CN=HQ,CN=Sites," + config},
			{domain.EntryDN: "CN=NTDS Settings,CN=DC\\,2,CN=Servers,CN=HQ,CN=Sites," + config},
		},
		"CN=DC1,CN=Servers,CN=HQ,CN=Sites," + config:    {{"dNSHostName": "dc1.example.org"}},
		"CN=DC\\,2,CN=Servers,CN=HQ,CN=Sites," + config: {{"dNSHostName": "dc2.example.org"}},
	}}

	hosts, err := NewLDAPReplicaLister(dir).ListReplicas(context.Background(), domain.NewDomain("", "example.org"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dc1.example.org", "dc2.example.org"}, hosts)

	require.Len(t, dir.reqs, 4)
	assert.Equal(t, domain.ScopeBase, dir.reqs[0].Scope)
	assert.Equal(t, gcSettingsFilter("DC=example,DC=org"), dir.reqs[1].Filter)
	assert.Contains(t, dir.reqs[1].Filter, "(msDS-hasMasterNCs=DC=example,DC=org)")
	assert.Equal(t, domain.QueryPaged, dir.reqs[1].Mode)
}

func TestLDAPReplicaLister_Errors(t *testing.T) {
	_, err := NewLDAPReplicaLister(&fakeSearcher{err: errors.New("connection refused")}).
		ListReplicas(context.Background(), domain.NewDomain("", "example.org"))
	assert.ErrorContains(t, err, "rootDSE")

	_, err = NewLDAPReplicaLister(&fakeSearcher{byBase: map[string][]domain.Entry{}}).
		ListReplicas(context.Background(), domain.NewDomain("", "example.org"))
	assert.ErrorContains(t, err, "configurationNamingContext")
}

func TestParentDN(t *testing.T) {
	tests := []struct {
		dn   string
		want string
	}{
		{"CN=NTDS Settings,CN=DC1,CN=Servers", "CN=DC1,CN=Servers"},
		{"CN=A\\,B,CN=Servers", "CN=Servers"},
		{"CN=Only", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parentDN(tt.dn), tt.dn)
	}
}
