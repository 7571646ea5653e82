// Package recon is the discovery-and-probe pipeline: pick the nearest
// global catalog per domain, enumerate its computer objects, then probe
// every host for disk shares and read each share's ACL.
//
// Failures are recovered at the smallest unit they affect. An unreachable
// replica, a failed domain, an offline host or a denied share never aborts
// its siblings. Only configuration errors are fatal.
package recon

import (
	"context"

	"shareaudit/internal/domain"
)

// Pinger issues one reachability probe
type Pinger interface {
	Ping(ctx context.Context, addr string) (domain.PingResult, error)
}

// ReplicaLister lists the global catalog replicas that hold a domain
type ReplicaLister interface {
	ListReplicas(ctx context.Context, d domain.Domain) ([]string, error)
}

// Directory runs filtered searches against a directory server
type Directory interface {
	Search(ctx context.Context, server string, req domain.SearchRequest) ([]domain.Entry, error)
}

// ShareLister returns the raw share listing of a host
type ShareLister interface {
	ListShares(ctx context.Context, host string) (domain.ShareListing, error)
}

// ACLReader returns the access entries of a share path
type ACLReader interface {
	GetACL(ctx context.Context, path string) ([]domain.ACE, error)
}

// Observer receives progress as units finish. Calls may come from
// concurrent goroutines.
type Observer interface {
	DomainDone(DomainResult)
	HostDone(domain.HostResult)
	ShareDone(path string, records int, err error)
}

type nopObserver struct{}

func (nopObserver) DomainDone(DomainResult)      {}
func (nopObserver) HostDone(domain.HostResult)   {}
func (nopObserver) ShareDone(string, int, error) {}
