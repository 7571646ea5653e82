package recon

import (
	"context"
	"sync"
	"time"

	"shareaudit/internal/domain"
	"shareaudit/internal/logger"
)

// LatencyProber picks the most responsive of a set of candidate servers
type LatencyProber struct {
	pinger  Pinger
	timeout time.Duration
}

// NewLatencyProber creates a prober bounding each probe by timeout
func NewLatencyProber(pinger Pinger, timeout time.Duration) *LatencyProber {
	return &LatencyProber{pinger: pinger, timeout: timeout}
}

// Probe pings every distinct address once, concurrently, and returns the
// lowest-latency responder along with every measurement in input order.
// Exact ties go to the address listed first.
func (p *LatencyProber) Probe(ctx context.Context, addrs []string) (domain.CandidateServer, []domain.CandidateServer, error) {
	addrs = distinct(addrs)
	if len(addrs) == 0 {
		return domain.CandidateServer{}, nil, domain.ErrEmptyCandidateSet
	}

	candidates := make([]domain.CandidateServer, len(addrs))
	var wg sync.WaitGroup
	for i, addr := range addrs {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			candidates[i] = p.probeOne(ctx, addr)
		}(i, addr)
	}
	wg.Wait()

	best := -1
	for i, c := range candidates {
		if !c.Responded {
			continue
		}
		if best < 0 || c.Latency < candidates[best].Latency {
			best = i
		}
	}
	if best < 0 {
		return domain.CandidateServer{}, candidates, domain.ErrAllUnreachable
	}
	return candidates[best], candidates, nil
}

func (p *LatencyProber) probeOne(ctx context.Context, addr string) domain.CandidateServer {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.pinger.Ping(ctx, addr)
	if err != nil {
		logger.FromContext(ctx).Debug("probe failed", "addr", addr, "error", err)
		return domain.CandidateServer{Address: addr}
	}
	return domain.CandidateServer{Address: addr, Responded: res.Responded, Latency: res.Latency}
}

// distinct drops empty and repeated addresses, keeping first occurrence order
func distinct(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
