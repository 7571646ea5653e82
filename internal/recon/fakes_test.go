package recon

import (
	"context"
	"errors"
	"sync"
	"time"

	"shareaudit/internal/domain"
)

type fakePinger struct {
	mu      sync.Mutex
	latency map[string]time.Duration // missing = no response
	errs    map[string]error
	calls   []string
}

func (f *fakePinger) Ping(ctx context.Context, addr string) (domain.PingResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, addr)
	f.mu.Unlock()

	if err := f.errs[addr]; err != nil {
		return domain.PingResult{}, err
	}
	lat, ok := f.latency[addr]
	if !ok {
		return domain.PingResult{}, nil
	}
	return domain.PingResult{Responded: true, Latency: lat}, nil
}

func (f *fakePinger) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeReplicas struct {
	byRoot map[string][]string
	err    error
}

func (f *fakeReplicas) ListReplicas(ctx context.Context, d domain.Domain) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byRoot[d.SearchRoot()], nil
}

type fakeDirectory struct {
	mu       sync.Mutex
	byServer map[string][]domain.Entry
	errs     map[string]error
	reqs     []domain.SearchRequest
}

func (f *fakeDirectory) Search(ctx context.Context, server string, req domain.SearchRequest) ([]domain.Entry, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if err := f.errs[server]; err != nil {
		return nil, err
	}
	return f.byServer[server], nil
}

type fakeLister struct {
	listings map[string]domain.ShareListing
	errs     map[string]error
	delay    time.Duration

	mu     sync.Mutex
	active int
	peak   int
	calls  int
}

func (f *fakeLister) ListShares(ctx context.Context, host string) (domain.ShareListing, error) {
	f.mu.Lock()
	f.calls++
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.errs[host]; err != nil {
		return domain.ShareListing{}, err
	}
	listing, ok := f.listings[host]
	if !ok {
		return domain.ShareListing{Output: "System error 53 has occurred.\r\n\r\nThe network path was not found."}, nil
	}
	return listing, nil
}

type fakeACL struct {
	byPath map[string][]domain.ACE
	errs   map[string]error
}

func (f *fakeACL) GetACL(ctx context.Context, path string) ([]domain.ACE, error) {
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	aces, ok := f.byPath[path]
	if !ok {
		return nil, errors.New("no fixture for " + path)
	}
	return aces, nil
}

type recordingObserver struct {
	mu      sync.Mutex
	domains []DomainResult
	hosts   []domain.HostResult
	shares  map[string]error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{shares: make(map[string]error)}
}

func (o *recordingObserver) DomainDone(r DomainResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.domains = append(o.domains, r)
}

func (o *recordingObserver) HostDone(r domain.HostResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hosts = append(o.hosts, r)
}

func (o *recordingObserver) ShareDone(path string, records int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.shares[path] = err
}

// netView renders a successful listing with the given (name, type) rows
func netView(host string, rows ...[2]string) domain.ShareListing {
	out := "Shared resources at \\\\" + host + "\r\n\r\n\r\n\r\n" +
		"Share name   Type  Used as  Comment\r\n\r\n" +
		"-------------------------------------------------------------------------------\r\n"
	for _, r := range rows {
		out += r[0] + "        " + r[1] + "           \r\n"
	}
	out += "The command completed successfully.\r\n"
	return domain.ShareListing{ExitOK: true, Output: out}
}
