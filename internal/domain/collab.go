package domain

import "time"

// BoundedSizeLimit is the directory protocol's default result cap
const BoundedSizeLimit = 1000

// QueryMode selects how many directory results are retrieved
type QueryMode string

const (
	// QueryBounded returns at most BoundedSizeLimit entries
	QueryBounded QueryMode = "bounded"
	// QueryPaged requests successive pages until exhausted
	QueryPaged QueryMode = "paged"
)

// ModeFor maps the paged_queries option to a QueryMode
func ModeFor(paged bool) QueryMode {
	if paged {
		return QueryPaged
	}
	return QueryBounded
}

// SearchScope is the depth of a directory search
type SearchScope int

const (
	ScopeSubtree SearchScope = iota
	ScopeBase
)

// SearchRequest is one filtered directory query
type SearchRequest struct {
	BaseDN     string
	Scope      SearchScope
	Filter     string
	Attributes []string
	Mode       QueryMode
}

// Entry is one directory object, attribute name to first value.
// The object's distinguished name is stored under EntryDN.
type Entry map[string]string

// EntryDN is the Entry key holding the distinguished name
const EntryDN = "dn"

// PingResult is the outcome of a single reachability probe
type PingResult struct {
	Responded bool
	Latency   time.Duration
}

// ShareListing is the raw output of the share-listing collaborator
type ShareListing struct {
	ExitOK bool
	Output string
}
