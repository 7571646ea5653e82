package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldap/v3/gssapi"
	"github.com/jcmturner/gokrb5/v8/credentials"

	"shareaudit/internal/domain"
	"shareaudit/internal/logger"
)

// Bind methods
const (
	BindNone   = "none"
	BindGSSAPI = "gssapi"
)

// LDAPDirectory issues filtered searches against a directory server.
// Each Search opens and closes its own connection.
type LDAPDirectory struct {
	port     int
	timeout  time.Duration
	bind     string
	ccache   string
	krb5Conf string
	pageSize uint32
}

// LDAPOption is a functional option for configuring LDAPDirectory
type LDAPOption func(*LDAPDirectory)

// WithLDAPPort sets the server port (3268 is the global catalog)
func WithLDAPPort(port int) LDAPOption {
	return func(d *LDAPDirectory) {
		d.port = port
	}
}

// WithLDAPTimeout bounds dialing and each request
func WithLDAPTimeout(timeout time.Duration) LDAPOption {
	return func(d *LDAPDirectory) {
		d.timeout = timeout
	}
}

// WithPageSize sets the page size used in paged mode
func WithPageSize(size int) LDAPOption {
	return func(d *LDAPDirectory) {
		if size > 0 {
			d.pageSize = uint32(size)
		}
	}
}

// WithGSSAPIBind binds with the Kerberos credentials in ccache.
// Empty paths fall back to KRB5CCNAME and KRB5_CONFIG.
func WithGSSAPIBind(ccache, krb5Conf string) LDAPOption {
	return func(d *LDAPDirectory) {
		d.bind = BindGSSAPI
		d.ccache = ccache
		d.krb5Conf = krb5Conf
	}
}

// NewLDAPDirectory creates a directory client
func NewLDAPDirectory(opts ...LDAPOption) *LDAPDirectory {
	d := &LDAPDirectory{
		port:     3268,
		timeout:  60 * time.Second,
		bind:     BindNone,
		pageSize: 500,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search runs req against server
func (d *LDAPDirectory) Search(ctx context.Context, server string, req domain.SearchRequest) ([]domain.Entry, error) {
	conn, err := d.connect(ctx, server)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// Unblocks an in-flight request when ctx is cancelled
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	entries, err := d.search(conn, req)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return entries, err
}

func (d *LDAPDirectory) connect(ctx context.Context, server string) (*ldap.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	url := "ldap://" + net.JoinHostPort(server, strconv.Itoa(d.port))
	conn, err := ldap.DialURL(url, ldap.DialWithDialer(&net.Dialer{Timeout: d.timeout}))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetTimeout(d.timeout)

	if d.bind == BindGSSAPI {
		if err := d.gssapiBind(conn, server); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

func (d *LDAPDirectory) gssapiBind(conn *ldap.Conn, server string) error {
	ccache := d.ccachePath()
	if ccache == "" {
		return errors.New("gssapi bind: no credential cache (set ldap.ccache or KRB5CCNAME)")
	}

	if cc, err := credentials.LoadCCache(ccache); err == nil {
		logger.Debug("using inherited kerberos identity",
			"principal", cc.GetClientPrincipalName().PrincipalNameString(),
			"realm", cc.GetClientRealm())
	}

	krb, err := gssapi.NewClientFromCCache(ccache, d.krb5ConfPath())
	if err != nil {
		return fmt.Errorf("gssapi client: %w", err)
	}
	defer krb.Close()

	if err := conn.GSSAPIBind(krb, "ldap/"+server, ""); err != nil {
		return fmt.Errorf("gssapi bind to %s: %w", server, err)
	}
	return nil
}

func (d *LDAPDirectory) ccachePath() string {
	if d.ccache != "" {
		return d.ccache
	}
	return strings.TrimPrefix(os.Getenv("KRB5CCNAME"), "FILE:")
}

func (d *LDAPDirectory) krb5ConfPath() string {
	if d.krb5Conf != "" {
		return d.krb5Conf
	}
	if env := os.Getenv("KRB5_CONFIG"); env != "" {
		return env
	}
	return "/etc/krb5.conf"
}

func (d *LDAPDirectory) search(conn *ldap.Conn, req domain.SearchRequest) ([]domain.Entry, error) {
	scope := ldap.ScopeWholeSubtree
	if req.Scope == domain.ScopeBase {
		scope = ldap.ScopeBaseObject
	}

	sizeLimit := 0
	if req.Mode != domain.QueryPaged {
		sizeLimit = domain.BoundedSizeLimit
	}

	sr := ldap.NewSearchRequest(
		req.BaseDN,
		scope,
		ldap.NeverDerefAliases,
		sizeLimit,
		0,
		false,
		req.Filter,
		req.Attributes,
		nil,
	)

	var (
		result *ldap.SearchResult
		err    error
	)
	if req.Mode == domain.QueryPaged {
		result, err = conn.SearchWithPaging(sr, d.pageSize)
	} else {
		result, err = conn.Search(sr)
		// The server stops at the size limit and still returns what it found
		if ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
			logger.Debug("directory size limit reached", "base_dn", req.BaseDN, "limit", domain.BoundedSizeLimit)
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", req.Filter, err)
	}
	if result == nil {
		return nil, nil
	}

	return convertEntries(result.Entries, req.Attributes), nil
}

// convertEntries flattens ldap entries to first-value attribute maps
func convertEntries(entries []*ldap.Entry, attrs []string) []domain.Entry {
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		entry := domain.Entry{domain.EntryDN: e.DN}
		for _, attr := range attrs {
			if v := e.GetAttributeValue(attr); v != "" {
				entry[attr] = v
			}
		}
		out = append(out, entry)
	}
	return out
}
