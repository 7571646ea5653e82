package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"shareaudit/internal/adapter"
	"shareaudit/internal/config"
	"shareaudit/internal/domain"
	"shareaudit/internal/metrics"
	"shareaudit/internal/recon"
)

// smbPort is probed by the optional reachability precheck
const smbPort = 445

// app is one configured run: the pipeline, its metrics and the resources
// to release after it
type app struct {
	cfg      *config.Config
	pipeline *recon.Pipeline
	metrics  *metrics.RunMetrics
	closers  []func() error
}

// Close releases runner connections
func (a *app) Close() {
	for _, c := range a.closers {
		c()
	}
}

// newApp builds every collaborator named by cfg and wires them into a pipeline
func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New()}

	runner, err := newRunner(cfg)
	if err != nil {
		return nil, err
	}
	if ssh, ok := runner.(*adapter.SSHRunner); ok {
		a.closers = append(a.closers, ssh.Close)
	}

	dir := newDirectory(cfg)
	prober := recon.NewLatencyProber(newPinger(cfg), cfg.Timeouts.Ping.Duration())
	resolver := recon.NewResolver(newReplicaLister(cfg, dir), prober, cfg.Timeouts.Directory.Duration())
	enumerator := recon.NewEnumerator(dir, domain.ModeFor(cfg.PagedQueries), cfg.Timeouts.Directory.Duration())

	engineOpts := []recon.EngineOption{
		recon.WithMaxConcurrency(cfg.MaxHostConcurrency),
		recon.WithHostRate(cfg.Shares.HostRate),
		recon.WithObserver(a.metrics),
	}
	if cfg.Shares.PrecheckPort {
		timeout := cfg.Timeouts.Ping.Duration()
		engineOpts = append(engineOpts, recon.WithPortCheck(func(ctx context.Context, host string) bool {
			return adapter.PortOpen(ctx, host, smbPort, timeout)
		}))
	}
	lister, err := newShareLister(cfg, runner)
	if err != nil {
		a.Close()
		return nil, err
	}
	engine := recon.NewEngine(
		lister,
		adapter.NewACLReader(runner, cfg.Timeouts.ACL.Duration()),
		engineOpts...,
	)

	a.pipeline = recon.NewPipeline(resolver, enumerator, engine,
		recon.WithSortedOutput(cfg.SortOutput),
		recon.WithDomainObserver(a.metrics),
	)
	return a, nil
}

func newPinger(cfg *config.Config) recon.Pinger {
	timeout := cfg.Timeouts.Ping.Duration()
	switch cfg.Ping.Method {
	case "tcp":
		return adapter.NewTCPPinger(timeout, cfg.Ping.TCPPorts...)
	case "nmap":
		ports := make([]string, 0, len(cfg.Ping.TCPPorts))
		for _, p := range cfg.Ping.TCPPorts {
			ports = append(ports, strconv.Itoa(p))
		}
		return adapter.NewNmapPinger(
			adapter.WithNmapTimeout(timeout),
			adapter.WithNmapBinary(cfg.Ping.NmapBinary),
			adapter.WithPrivileged(cfg.Ping.Privileged),
			adapter.WithDiscoveryPorts(strings.Join(ports, ",")),
		)
	default:
		return adapter.NewICMPPinger(timeout)
	}
}

func newDirectory(cfg *config.Config) *adapter.LDAPDirectory {
	opts := []adapter.LDAPOption{
		adapter.WithLDAPPort(cfg.LDAP.Port),
		adapter.WithLDAPTimeout(cfg.Timeouts.Directory.Duration()),
		adapter.WithPageSize(cfg.LDAP.PageSize),
	}
	if cfg.LDAP.Bind == adapter.BindGSSAPI {
		opts = append(opts, adapter.WithGSSAPIBind(cfg.LDAP.CCache, cfg.LDAP.KRB5Conf))
	}
	return adapter.NewLDAPDirectory(opts...)
}

func newReplicaLister(cfg *config.Config, dir *adapter.LDAPDirectory) recon.ReplicaLister {
	if cfg.Replicas.Source == "ldap" {
		return adapter.NewLDAPReplicaLister(dir)
	}
	return adapter.NewDNSReplicaLister(cfg.Replicas.DNSServer, cfg.Timeouts.Directory.Duration())
}

func newRunner(cfg *config.Config) (adapter.Runner, error) {
	if cfg.Runner.Mode != "ssh" {
		return adapter.NewLocalRunner(cfg.Shares.Codepage), nil
	}

	ssh := cfg.Runner.SSH
	password, err := secret(ssh.PasswordEnv)
	if err != nil {
		return nil, err
	}
	return adapter.NewSSHRunner(adapter.SSHRunnerConfig{
		Host:       ssh.Host,
		Port:       ssh.Port,
		User:       ssh.User,
		KeyPath:    ssh.KeyPath,
		Password:   password,
		KnownHosts: ssh.KnownHosts,
		Timeout:    10 * time.Second,
	}, cfg.Shares.Codepage), nil
}

func newShareLister(cfg *config.Config, runner adapter.Runner) (recon.ShareLister, error) {
	if cfg.Shares.Lister != "smb" {
		return adapter.NewNetViewLister(runner, cfg.Timeouts.ShareList.Duration()), nil
	}
	password, err := secret(cfg.SMB.PasswordEnv)
	if err != nil {
		return nil, err
	}
	return adapter.NewSMBLister(adapter.SMBCredentials{
		User:     cfg.SMB.User,
		Domain:   cfg.SMB.Domain,
		Password: password,
	}, cfg.Timeouts.ShareList.Duration()), nil
}

// secret reads a password from the named environment variable. An empty
// name yields an empty password.
func secret(env string) (string, error) {
	if env == "" {
		return "", nil
	}
	v, ok := os.LookupEnv(env)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %s is not set", domain.ErrInvalidConfig, env)
	}
	return v, nil
}
