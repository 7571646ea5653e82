package adapter

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// RunResult is a finished command's exit status and decoded output
type RunResult struct {
	ExitCode int
	Output   string
}

// OK reports a zero exit status
func (r RunResult) OK() bool {
	return r.ExitCode == 0
}

// Runner executes a command and returns its combined output.
// A non-zero exit is a RunResult, not an error; errors mean the command
// could not be run or did not finish.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (RunResult, error)
}

// LocalRunner executes commands on this machine
type LocalRunner struct {
	codepage string
}

// NewLocalRunner creates a runner that decodes output from codepage
func NewLocalRunner(codepage string) *LocalRunner {
	return &LocalRunner{codepage: codepage}
}

// Run executes name with args
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return RunResult{}, fmt.Errorf("%s: %w", name, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return RunResult{ExitCode: exitErr.ExitCode(), Output: DecodeOutput(r.codepage, output)}, nil
		}
		return RunResult{}, fmt.Errorf("run %s: %w", name, err)
	}
	return RunResult{Output: DecodeOutput(r.codepage, output)}, nil
}
