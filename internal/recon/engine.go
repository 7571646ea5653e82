package recon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"shareaudit/internal/domain"
	"shareaudit/internal/logger"
)

// DefaultMaxConcurrency caps concurrent host tasks when none is configured
const DefaultMaxConcurrency = 64

// PortCheck reports whether a host accepts connections on the share port
type PortCheck func(ctx context.Context, host string) bool

// Engine probes hosts for disk shares and reads each share's ACL
type Engine struct {
	lister         ShareLister
	acl            ACLReader
	maxConcurrency int
	hostRate       float64
	portCheck      PortCheck
	observer       Observer
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithMaxConcurrency caps concurrent host tasks
func WithMaxConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxConcurrency = n
		}
	}
}

// WithHostRate limits how many host tasks start per second (0 = unlimited)
func WithHostRate(perSecond float64) EngineOption {
	return func(e *Engine) {
		e.hostRate = perSecond
	}
}

// WithPortCheck skips the share listing for hosts that fail check
func WithPortCheck(check PortCheck) EngineOption {
	return func(e *Engine) {
		e.portCheck = check
	}
}

// WithObserver receives host and share completions
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// NewEngine creates a share probe engine
func NewEngine(lister ShareLister, acl ACLReader, opts ...EngineOption) *Engine {
	e := &Engine{
		lister:         lister,
		acl:            acl,
		maxConcurrency: DefaultMaxConcurrency,
		observer:       nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Probe runs one task per host and returns the results in host order once
// every task has finished. Host failures are recorded in the results.
func (e *Engine) Probe(ctx context.Context, hosts []string) []domain.HostResult {
	results := make([]domain.HostResult, len(hosts))

	var limiter *rate.Limiter
	if e.hostRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(e.hostRate), 1)
	}

	// Tasks never return an error, so one host cannot cancel the others
	var g errgroup.Group
	g.SetLimit(e.maxConcurrency)

	for i, host := range hosts {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				for j := i; j < len(hosts); j++ {
					results[j] = e.skipped(hosts[j], err)
				}
				break
			}
		}
		g.Go(func() error {
			start := time.Now()
			res := e.probeHost(ctx, host)
			res.Duration = time.Since(start)
			results[i] = res
			e.observer.HostDone(res)
			return nil
		})
	}
	g.Wait()

	return results
}

func (e *Engine) skipped(host string, err error) domain.HostResult {
	res := domain.HostResult{Host: host, Outcome: domain.OutcomeUnreachable, Detail: err.Error()}
	e.observer.HostDone(res)
	return res
}

// probeHost runs the discover, parse, inspect sequence for one host
func (e *Engine) probeHost(ctx context.Context, host string) domain.HostResult {
	log := logger.FromContext(ctx).With("host", host)
	res := domain.HostResult{Host: host}

	if e.portCheck != nil && !e.portCheck(ctx, host) {
		return finish(log, res, domain.OutcomeUnreachable, "share port closed")
	}

	listing, err := e.lister.ListShares(ctx, host)
	if err != nil {
		// Timeouts and runner failures count as unreachable
		return finish(log, res, domain.OutcomeUnreachable, err.Error())
	}

	if !listing.ExitOK {
		if IsUnreachable(listing.Output) {
			return finish(log, res, domain.OutcomeUnreachable, firstLine(listing.Output))
		}
		return finish(log, res, domain.OutcomeNonDirectoryHost, firstLine(listing.Output))
	}

	res.Shares = ParseShares(listing.Output)
	if len(res.Shares) == 0 {
		return finish(log, res, domain.OutcomeNoMatchingShares, "")
	}

	for _, name := range res.Shares {
		share := domain.ShareRef{Host: host, Name: name}
		records, err := e.inspect(ctx, share)
		if err != nil {
			log.Warn("share acl unreadable", "path", share.Path(), "reason", shareFailureReason(err), "error", err)
			res.Failures = append(res.Failures, domain.ShareFailure{Path: share.Path(), Err: err})
			e.observer.ShareDone(share.Path(), 0, err)
			continue
		}
		log.Info("share acl read", "path", share.Path(), "entries", len(records))
		res.Records = append(res.Records, records...)
		e.observer.ShareDone(share.Path(), len(records), nil)
	}

	return finish(log, res, domain.OutcomeReachableWithShares, "")
}

// inspect reads the ACL of one share and attaches its path to every entry
func (e *Engine) inspect(ctx context.Context, share domain.ShareRef) ([]domain.PermissionRecord, error) {
	aces, err := e.acl.GetACL(ctx, share.Path())
	if err != nil {
		return nil, err
	}
	records := make([]domain.PermissionRecord, 0, len(aces))
	for _, ace := range aces {
		records = append(records, domain.NewPermissionRecord(share, ace))
	}
	return records, nil
}

// finish stamps the outcome and logs it at the level the outcome warrants
func finish(log *slog.Logger, res domain.HostResult, outcome domain.HostOutcome, detail string) domain.HostResult {
	res.Outcome = outcome
	res.Detail = detail

	args := []any{"outcome", outcome, "status", outcome.Description()}
	if detail != "" {
		args = append(args, "detail", detail)
	}

	switch outcome {
	case domain.OutcomeUnreachable, domain.OutcomeNonDirectoryHost:
		log.Warn("host skipped", args...)
	case domain.OutcomeNoMatchingShares:
		log.Info("host has no disk shares", args...)
	default:
		args = append(args, "shares", len(res.Shares), "records", len(res.Records), "failed_shares", len(res.Failures))
		log.Info("host probed", args...)
	}
	return res
}

func shareFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return "access denied"
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
