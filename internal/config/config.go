// Package config provides configuration management for shareaudit.
//
// Config file locations (priority order):
//  1. explicit path (--config)
//  2. $SHAREAUDIT_CONFIG
//  3. ./shareaudit.yaml
//  4. $XDG_CONFIG_HOME/shareaudit/config.yaml
//  5. ~/.config/shareaudit/config.yaml
//  6. /etc/shareaudit/config.yaml
//
// With no file found the defaults apply; domains must then come from flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"shareaudit/internal/domain"
)

// Load finds and loads the config file, or returns defaults if none found
func Load(explicit string) (*Config, string, error) {
	if explicit != "" {
		return LoadFromPath(explicit)
	}

	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes YAML config data and fills in defaults
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// InitConfig writes the default config to path. An existing file is only
// replaced when force is set.
func InitConfig(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	return DefaultConfig().Save(path)
}

// DefaultConfig returns defaults for a single forest-root audit
func DefaultConfig() *Config {
	return &Config{
		OutputPath:         "share_permissions.csv",
		OutputFormat:       "csv",
		MaxHostConcurrency: 64,
		Timeouts: TimeoutConfig{
			Ping:      Duration(1 * time.Second),
			Directory: Duration(60 * time.Second),
			ShareList: Duration(30 * time.Second),
			ACL:       Duration(30 * time.Second),
		},
		Ping:     PingConfig{Method: "icmp", TCPPorts: []int{389, 445, 3268}},
		Replicas: ReplicaConfig{Source: "dns"},
		LDAP:     LDAPConfig{Port: 3268, Bind: "none", PageSize: 500},
		Shares:   ShareConfig{Lister: "netview"},
		Runner:   RunnerConfig{Mode: "local", SSH: SSHConfig{Port: 22}},
		Logging:  LoggingConfig{Level: "INFO", Format: "text"},
	}
}

// applyDefaults fills in values left empty by a partial config file
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.OutputPath == "" {
		c.OutputPath = def.OutputPath
	}
	if c.OutputFormat == "" {
		c.OutputFormat = def.OutputFormat
	}
	c.OutputFormat = strings.ToLower(c.OutputFormat)
	if c.MaxHostConcurrency == 0 {
		c.MaxHostConcurrency = def.MaxHostConcurrency
	}
	if c.Timeouts.Ping == 0 {
		c.Timeouts.Ping = def.Timeouts.Ping
	}
	if c.Timeouts.Directory == 0 {
		c.Timeouts.Directory = def.Timeouts.Directory
	}
	if c.Timeouts.ShareList == 0 {
		c.Timeouts.ShareList = def.Timeouts.ShareList
	}
	if c.Timeouts.ACL == 0 {
		c.Timeouts.ACL = def.Timeouts.ACL
	}
	if c.Ping.Method == "" {
		c.Ping.Method = def.Ping.Method
	}
	if len(c.Ping.TCPPorts) == 0 {
		c.Ping.TCPPorts = def.Ping.TCPPorts
	}
	if c.Replicas.Source == "" {
		c.Replicas.Source = def.Replicas.Source
	}
	if c.LDAP.Port == 0 {
		c.LDAP.Port = def.LDAP.Port
	}
	if c.LDAP.Bind == "" {
		c.LDAP.Bind = def.LDAP.Bind
	}
	if c.LDAP.PageSize == 0 {
		c.LDAP.PageSize = def.LDAP.PageSize
	}
	if c.Shares.Lister == "" {
		c.Shares.Lister = def.Shares.Lister
	}
	if c.Runner.Mode == "" {
		c.Runner.Mode = def.Runner.Mode
	}
	if c.Runner.SSH.Port == 0 {
		c.Runner.SSH.Port = def.Runner.SSH.Port
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
}

var validate = validator.New()

// Validate checks the config before any task starts. Every failure wraps
// domain.ErrInvalidConfig, and an empty domain list wraps domain.ErrNoDomains.
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, domain.ErrNoDomains)
	}
	return c.check(validate.Struct(c))
}

// ValidateProbe checks the config for probing an explicit host list, where
// no domain or DNS root is consulted
func (c *Config) ValidateProbe() error {
	return c.check(validate.StructExcept(c, "Domains", "DNSRoot"))
}

func (c *Config) check(err error) error {
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if c.Runner.Mode == "ssh" && c.Runner.SSH.Host == "" {
		return fmt.Errorf("%w: runner.ssh.host is required when runner.mode is ssh", domain.ErrInvalidConfig)
	}
	if c.LDAP.Bind == "gssapi" && c.LDAP.CCache == "" && os.Getenv("KRB5CCNAME") == "" {
		return fmt.Errorf("%w: ldap.bind gssapi needs ldap.ccache or KRB5CCNAME", domain.ErrInvalidConfig)
	}
	return nil
}

// Targets returns the configured domains under the DNS root
func (c *Config) Targets() []domain.Domain {
	targets := make([]domain.Domain, 0, len(c.Domains))
	for _, name := range c.Domains {
		targets = append(targets, domain.NewDomain(name, c.DNSRoot))
	}
	return targets
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Domains: %d under %s, paged=%v\n", len(c.Domains), c.DNSRoot, c.PagedQueries)
	summary += fmt.Sprintf("Ping: %s, replicas: %s, ldap port: %d, bind: %s\n",
		c.Ping.Method, c.Replicas.Source, c.LDAP.Port, c.LDAP.Bind)
	summary += fmt.Sprintf("Shares: %s via %s runner, concurrency: %d\n",
		c.Shares.Lister, c.Runner.Mode, c.MaxHostConcurrency)
	summary += fmt.Sprintf("Output: %s (%s)", c.OutputPath, c.OutputFormat)
	return summary
}
