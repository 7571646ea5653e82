package adapter

import (
	"context"
	"sync"
)

// fakeRunner records invocations and replays a canned result
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	result RunResult
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.result, f.err
}
