package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"shareaudit/internal/logger"
)

// SSHRunnerConfig describes a Windows jump host running OpenSSH
type SSHRunnerConfig struct {
	Host        string
	Port        int
	User        string
	KeyPath     string
	Password    string
	KnownHosts  string
	Timeout     time.Duration
	MaxSessions int
}

// SSHRunner executes commands on a jump host, multiplexing sessions over one
// lazily established connection
type SSHRunner struct {
	cfg      SSHRunnerConfig
	codepage string
	sessions chan struct{}

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHRunner creates a runner. The connection is opened on first use.
func NewSSHRunner(cfg SSHRunnerConfig, codepage string) *SSHRunner {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	// OpenSSH MaxSessions default
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 10
	}
	return &SSHRunner{
		cfg:      cfg,
		codepage: codepage,
		sessions: make(chan struct{}, cfg.MaxSessions),
	}
}

// Run executes name with args in the remote shell
func (r *SSHRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	select {
	case r.sessions <- struct{}{}:
		defer func() { <-r.sessions }()
	case <-ctx.Done():
		return RunResult{}, ctx.Err()
	}

	client, err := r.connection(ctx)
	if err != nil {
		return RunResult{}, err
	}

	session, err := client.NewSession()
	if err != nil {
		r.reset(client)
		return RunResult{}, fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	type outcome struct {
		output []byte
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		output, err := session.CombinedOutput(commandLine(name, args))
		done <- outcome{output, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			var exitErr *ssh.ExitError
			if errors.As(res.err, &exitErr) {
				return RunResult{ExitCode: exitErr.ExitStatus(), Output: DecodeOutput(r.codepage, res.output)}, nil
			}
			return RunResult{}, fmt.Errorf("command failed: %w", res.err)
		}
		return RunResult{Output: DecodeOutput(r.codepage, res.output)}, nil
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return RunResult{}, fmt.Errorf("%s: %w", name, ctx.Err())
	}
}

// Close tears down the connection
func (r *SSHRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *SSHRunner) connection(ctx context.Context) (*ssh.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}

	client, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("ssh runner connected", "host", r.cfg.Host, "user", r.cfg.User)
	r.client = client
	return client, nil
}

// reset drops a broken connection so the next Run reconnects
func (r *SSHRunner) reset(broken *ssh.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == broken {
		r.client.Close()
		r.client = nil
	}
}

func (r *SSHRunner) connect(ctx context.Context) (*ssh.Client, error) {
	config, err := r.buildSSHConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))
	dialer := &net.Dialer{Timeout: r.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (r *SSHRunner) buildSSHConfig() (*ssh.ClientConfig, error) {
	if r.cfg.User == "" {
		return nil, errors.New("ssh user not set")
	}

	var auth []ssh.AuthMethod
	if r.cfg.KeyPath != "" {
		keyData, err := os.ReadFile(r.cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		var signer ssh.Signer
		if r.cfg.Password != "" {
			// Encrypted key
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(r.cfg.Password))
		} else {
			signer, err = ssh.ParsePrivateKey(keyData)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	} else if r.cfg.Password != "" {
		auth = append(auth, ssh.Password(r.cfg.Password))
	}
	if len(auth) == 0 {
		return nil, errors.New("no ssh key or password configured")
	}

	hostKey := ssh.InsecureIgnoreHostKey()
	if r.cfg.KnownHosts != "" {
		cb, err := knownhosts.New(r.cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("load known_hosts: %w", err)
		}
		hostKey = cb
	}

	return &ssh.ClientConfig{
		User:            r.cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         r.cfg.Timeout,
	}, nil
}

// commandLine joins name and args for cmd.exe, quoting args with spaces
func commandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if strings.ContainsAny(a, " \t") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
