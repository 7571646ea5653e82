package adapter

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	r := NewLocalRunner("")

	res, err := r.Run(context.Background(), "sh", "-c", "echo shares")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "shares\n", res.Output)

	res, err = r.Run(context.Background(), "sh", "-c", "echo 'System error 53 has occurred.'; exit 2")
	require.NoError(t, err, "non-zero exit is a result")
	assert.Equal(t, 2, res.ExitCode)
	assert.Contains(t, res.Output, "error 53")
}

func TestLocalRunner_Errors(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	r := NewLocalRunner("")

	_, err := r.Run(context.Background(), "shareaudit-no-such-binary")
	assert.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = r.Run(ctx, "sh", "-c", "sleep 5")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, `net view \\srv1 /all`, commandLine("net", []string{"view", `\\srv1`, "/all"}))
	assert.Equal(t, `powershell -Command "Get-Acl x"`, commandLine("powershell", []string{"-Command", "Get-Acl x"}))
}

func TestSSHRunner_Config(t *testing.T) {
	r := NewSSHRunner(SSHRunnerConfig{Host: "jump"}, "")
	assert.Equal(t, 22, r.cfg.Port)
	assert.Equal(t, 10, cap(r.sessions))

	_, err := r.buildSSHConfig()
	assert.ErrorContains(t, err, "user")

	r = NewSSHRunner(SSHRunnerConfig{Host: "jump", User: "audit"}, "")
	_, err = r.buildSSHConfig()
	assert.ErrorContains(t, err, "no ssh key or password")

	r = NewSSHRunner(SSHRunnerConfig{Host: "jump", User: "audit", Password: "secret"}, "")
	cfg, err := r.buildSSHConfig()
	require.NoError(t, err)
	assert.Equal(t, "audit", cfg.User)
	assert.Len(t, cfg.Auth, 1)
}

func TestSSHRunner_DialFailure(t *testing.T) {
	ln, port := listenLocal(t)
	ln.Close()

	r := NewSSHRunner(SSHRunnerConfig{Host: "127.0.0.1", Port: port, User: "audit", Password: "x", Timeout: time.Second}, "")
	defer r.Close()

	_, err := r.Run(context.Background(), "net", "view")
	assert.ErrorContains(t, err, "failed to dial")
}
