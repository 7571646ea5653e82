package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"shareaudit/internal/domain"
	"shareaudit/internal/logger"
)

// DomainResult is the resolve and enumerate outcome for one domain
type DomainResult struct {
	Domain   domain.Domain         `json:"domain"`
	Server   domain.SelectedServer `json:"server"`
	Hosts    []string              `json:"hosts,omitempty"`
	Err      error                 `json:"-"`
	Duration time.Duration         `json:"duration"`
}

// Report is everything one run produced
type Report struct {
	RunID    string                    `json:"run_id"`
	Started  time.Time                 `json:"started"`
	Finished time.Time                 `json:"finished"`
	Domains  []DomainResult            `json:"domains"`
	Hosts    []domain.HostResult       `json:"hosts"`
	Records  []domain.PermissionRecord `json:"records"`
}

// HostNames returns the merged host list in domain order, duplicates kept
func (r *Report) HostNames() []string {
	return mergeHosts(r.Domains)
}

// OutcomeCounts tallies hosts per outcome
func (r *Report) OutcomeCounts() map[domain.HostOutcome]int {
	counts := make(map[domain.HostOutcome]int)
	for _, h := range r.Hosts {
		counts[h.Outcome]++
	}
	return counts
}

// FailedDomains returns the domains that contributed no hosts due to an error
func (r *Report) FailedDomains() []DomainResult {
	var failed []DomainResult
	for _, d := range r.Domains {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}

// Pipeline wires the resolver, enumerator and engine into one run
type Pipeline struct {
	resolver   *Resolver
	enumerator *Enumerator
	engine     *Engine
	sortOutput bool
	observer   Observer
}

// PipelineOption is a functional option for configuring Pipeline
type PipelineOption func(*Pipeline)

// WithSortedOutput orders the exported records by path then principal
func WithSortedOutput(sorted bool) PipelineOption {
	return func(p *Pipeline) {
		p.sortOutput = sorted
	}
}

// WithDomainObserver receives each finished domain
func WithDomainObserver(o Observer) PipelineOption {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

// NewPipeline creates a pipeline
func NewPipeline(resolver *Resolver, enumerator *Enumerator, engine *Engine, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		resolver:   resolver,
		enumerator: enumerator,
		engine:     engine,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run resolves and enumerates every domain, probes the merged host list and
// aggregates the records. The only error is an empty domain list.
func (p *Pipeline) Run(ctx context.Context, domains []domain.Domain) (*Report, error) {
	if len(domains) == 0 {
		return nil, domain.ErrNoDomains
	}

	report, ctx := p.newReport(ctx)
	log := logger.FromContext(ctx)

	report.Domains = p.discover(ctx, domains)
	hosts := mergeHosts(report.Domains)
	log.Info("discovery complete", "domains", len(domains), "failed_domains", len(report.FailedDomains()), "hosts", len(hosts))

	p.probe(ctx, report, hosts)
	return report, nil
}

// Resolve selects a server for every domain without enumerating
func (p *Pipeline) Resolve(ctx context.Context, domains []domain.Domain) (*Report, error) {
	if len(domains) == 0 {
		return nil, domain.ErrNoDomains
	}
	report, ctx := p.newReport(ctx)
	report.Domains = p.forEachDomain(ctx, domains, false)
	report.Finished = time.Now()
	return report, nil
}

// Discover resolves and enumerates every domain without probing hosts
func (p *Pipeline) Discover(ctx context.Context, domains []domain.Domain) (*Report, error) {
	if len(domains) == 0 {
		return nil, domain.ErrNoDomains
	}
	report, ctx := p.newReport(ctx)
	report.Domains = p.discover(ctx, domains)
	report.Finished = time.Now()
	return report, nil
}

// ProbeHosts skips discovery and probes the given hosts directly
func (p *Pipeline) ProbeHosts(ctx context.Context, hosts []string) *Report {
	report, ctx := p.newReport(ctx)
	p.probe(ctx, report, hosts)
	return report
}

func (p *Pipeline) newReport(ctx context.Context) (*Report, context.Context) {
	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	ctx = logger.NewContext(ctx, logger.FromContext(ctx).With("run_id", report.RunID))
	return report, ctx
}

func (p *Pipeline) discover(ctx context.Context, domains []domain.Domain) []DomainResult {
	return p.forEachDomain(ctx, domains, true)
}

// forEachDomain runs every domain concurrently. Results keep domain order
// and one domain's failure never cancels another.
func (p *Pipeline) forEachDomain(ctx context.Context, domains []domain.Domain, enumerate bool) []DomainResult {
	results := make([]DomainResult, len(domains))

	var g errgroup.Group
	for i, d := range domains {
		g.Go(func() error {
			start := time.Now()
			res := p.discoverDomain(ctx, d, enumerate)
			res.Duration = time.Since(start)
			results[i] = res
			p.observer.DomainDone(res)
			return nil
		})
	}
	g.Wait()

	return results
}

func (p *Pipeline) discoverDomain(ctx context.Context, d domain.Domain, enumerate bool) DomainResult {
	log := logger.FromContext(ctx).With("domain", d.String())
	res := DomainResult{Domain: d}

	server, err := p.resolver.Resolve(ctx, d)
	res.Server = server
	if err != nil {
		log.Error("domain skipped", "error", err)
		res.Err = err
		return res
	}
	if !enumerate {
		return res
	}

	hosts, err := p.enumerator.Enumerate(ctx, server.Address, d)
	if err != nil {
		log.Error("host enumeration failed", "server", server.Address, "error", err)
		res.Err = err
		return res
	}
	res.Hosts = hosts
	return res
}

func (p *Pipeline) probe(ctx context.Context, report *Report, hosts []string) {
	log := logger.FromContext(ctx)

	report.Hosts = p.engine.Probe(ctx, hosts)
	report.Records = Aggregate(report.Hosts, p.sortOutput)
	report.Finished = time.Now()

	counts := report.OutcomeCounts()
	log.Info("probe complete",
		"hosts", len(report.Hosts),
		"with_shares", counts[domain.OutcomeReachableWithShares],
		"no_shares", counts[domain.OutcomeNoMatchingShares],
		"unreachable", counts[domain.OutcomeUnreachable],
		"non_directory", counts[domain.OutcomeNonDirectoryHost],
		"records", len(report.Records),
		"elapsed", report.Finished.Sub(report.Started).Round(time.Millisecond))
}

// mergeHosts concatenates host lists in domain order
func mergeHosts(results []DomainResult) []string {
	var hosts []string
	for _, r := range results {
		hosts = append(hosts, r.Hosts...)
	}
	return hosts
}

// String summarises a domain result for printing
func (d DomainResult) String() string {
	switch {
	case d.Err != nil:
		return fmt.Sprintf("%s: error: %v", d.Domain, d.Err)
	case d.Server.Fallback:
		return fmt.Sprintf("%s: %s (fallback, no replicas)", d.Domain, d.Server.Address)
	default:
		return fmt.Sprintf("%s: %s", d.Domain, d.Server.Address)
	}
}
