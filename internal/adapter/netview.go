package adapter

import (
	"context"
	"time"

	"shareaudit/internal/domain"
)

// NetViewLister lists shares with "net view \\host /all"
type NetViewLister struct {
	runner  Runner
	timeout time.Duration
}

// NewNetViewLister creates a lister that runs net view through runner
func NewNetViewLister(runner Runner, timeout time.Duration) *NetViewLister {
	return &NetViewLister{runner: runner, timeout: timeout}
}

// ListShares returns the raw net view output and whether it exited cleanly.
// /all includes hidden ($) shares.
func (l *NetViewLister) ListShares(ctx context.Context, host string) (domain.ShareListing, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	res, err := l.runner.Run(ctx, "net", "view", `\\`+host, "/all")
	if err != nil {
		return domain.ShareListing{}, err
	}
	return domain.ShareListing{ExitOK: res.OK(), Output: res.Output}, nil
}
