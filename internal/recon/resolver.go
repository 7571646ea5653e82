package recon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareaudit/internal/domain"
	"shareaudit/internal/logger"
)

// Resolver selects one directory server per domain
type Resolver struct {
	replicas ReplicaLister
	prober   *LatencyProber
	timeout  time.Duration
}

// NewResolver creates a resolver. timeout bounds the replica lookup.
func NewResolver(replicas ReplicaLister, prober *LatencyProber, timeout time.Duration) *Resolver {
	return &Resolver{replicas: replicas, prober: prober, timeout: timeout}
}

// Resolve returns the lowest-latency global catalog replica of d. With no
// replica list it falls back to the search root itself. When replicas exist
// but none answer, it fails with domain.ErrNoReachableServer.
func (r *Resolver) Resolve(ctx context.Context, d domain.Domain) (domain.SelectedServer, error) {
	log := logger.FromContext(ctx).With("domain", d.String())
	root := d.SearchRoot()

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	replicas, err := r.replicas.ListReplicas(lookupCtx, d)
	cancel()
	if err != nil {
		log.Warn("replica lookup failed", "search_root", root, "error", err)
		replicas = nil
	}

	if len(replicas) == 0 {
		log.Warn("no global catalog replicas found, querying search root directly", "search_root", root)
		return domain.SelectedServer{Domain: d, Address: root, Fallback: true}, nil
	}

	best, candidates, err := r.prober.Probe(ctx, replicas)
	if err != nil {
		if errors.Is(err, domain.ErrAllUnreachable) {
			log.Error("no replica answered", "replicas", len(candidates))
			return domain.SelectedServer{Domain: d}, fmt.Errorf("%s: %w: %w", root, domain.ErrNoReachableServer, err)
		}
		return domain.SelectedServer{Domain: d}, fmt.Errorf("%s: %w", root, err)
	}

	log.Info("selected directory server", "server", best.Address, "latency", best.Latency, "candidates", len(candidates))
	return domain.SelectedServer{Domain: d, Address: best.Address}, nil
}
