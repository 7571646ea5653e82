package recon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareaudit/internal/domain"
	"shareaudit/internal/logger"
)

// ComputerFilter matches every computer object that has a name
const ComputerFilter = "(&(objectCategory=computer)(name=*))"

var hostAttributes = []string{"dNSHostName", "name"}

// Enumerator lists the host names registered in a domain
type Enumerator struct {
	dir     Directory
	mode    domain.QueryMode
	timeout time.Duration
}

// NewEnumerator creates an enumerator issuing queries in mode
func NewEnumerator(dir Directory, mode domain.QueryMode, timeout time.Duration) *Enumerator {
	return &Enumerator{dir: dir, mode: mode, timeout: timeout}
}

// Enumerate runs one computer query for d against server and returns host
// names in server order. dNSHostName is preferred, name is the fallback.
// Failures wrap domain.ErrEnumerationFailed.
func (e *Enumerator) Enumerate(ctx context.Context, server string, d domain.Domain) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	entries, err := e.dir.Search(ctx, server, domain.SearchRequest{
		BaseDN:     d.BaseDN(),
		Scope:      domain.ScopeSubtree,
		Filter:     ComputerFilter,
		Attributes: hostAttributes,
		Mode:       e.mode,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrEnumerationFailed, server, err)
	}

	hosts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name := hostName(entry); name != "" {
			hosts = append(hosts, name)
		}
	}

	logger.FromContext(ctx).Info("enumerated hosts",
		"domain", d.String(), "server", server, "mode", e.mode, "hosts", len(hosts))
	return hosts, nil
}

func hostName(entry domain.Entry) string {
	if v := strings.TrimSpace(entry["dNSHostName"]); v != "" {
		return v
	}
	return strings.TrimSpace(entry["name"])
}
