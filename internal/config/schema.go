package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Domains            []string      `yaml:"domains" validate:"required,min=1"`
	DNSRoot            string        `yaml:"dns_root" validate:"required,hostname_rfc1123"`
	PagedQueries       bool          `yaml:"paged_queries"`
	OutputPath         string        `yaml:"output_path" validate:"required"`
	OutputFormat       string        `yaml:"output_format" validate:"oneof=csv json yaml table sqlite"`
	SortOutput         bool          `yaml:"sort_output"`
	MaxHostConcurrency int           `yaml:"max_host_concurrency" validate:"gt=0,lte=4096"`
	MetricsFile        string        `yaml:"metrics_file,omitempty"`
	Timeouts           TimeoutConfig `yaml:"timeouts"`
	Ping               PingConfig    `yaml:"ping"`
	Replicas           ReplicaConfig `yaml:"replicas"`
	LDAP               LDAPConfig    `yaml:"ldap"`
	Shares             ShareConfig   `yaml:"shares"`
	SMB                SMBConfig     `yaml:"smb"`
	Runner             RunnerConfig  `yaml:"runner"`
	Logging            LoggingConfig `yaml:"logging"`
}

// TimeoutConfig bounds every blocking collaborator call
type TimeoutConfig struct {
	Ping      Duration `yaml:"ping" validate:"gt=0"`
	Directory Duration `yaml:"directory" validate:"gt=0"`
	ShareList Duration `yaml:"share_list" validate:"gt=0"`
	ACL       Duration `yaml:"acl" validate:"gt=0"`
}

// PingConfig selects the reachability probe used for replica selection.
// NmapBinary and Privileged apply to the nmap method only; Privileged lets
// nmap use raw sockets and needs root or CAP_NET_RAW.
type PingConfig struct {
	Method     string `yaml:"method" validate:"oneof=icmp tcp nmap"`
	TCPPorts   []int  `yaml:"tcp_ports,omitempty" validate:"dive,gt=0,lte=65535"`
	NmapBinary string `yaml:"nmap_binary,omitempty"`
	Privileged bool   `yaml:"privileged,omitempty"`
}

// ReplicaConfig selects how global catalog replicas are discovered
type ReplicaConfig struct {
	Source    string `yaml:"source" validate:"oneof=dns ldap"`
	DNSServer string `yaml:"dns_server,omitempty"`
}

// LDAPConfig holds directory query settings
type LDAPConfig struct {
	Port     int    `yaml:"port" validate:"gt=0,lte=65535"`
	Bind     string `yaml:"bind" validate:"oneof=none gssapi"`
	CCache   string `yaml:"ccache,omitempty"`
	KRB5Conf string `yaml:"krb5_conf,omitempty"`
	PageSize int    `yaml:"page_size" validate:"gt=0,lte=1000"`
}

// ShareConfig holds share discovery settings
type ShareConfig struct {
	Lister       string  `yaml:"lister" validate:"oneof=netview smb"`
	PrecheckPort bool    `yaml:"precheck_port"`
	HostRate     float64 `yaml:"host_rate" validate:"gte=0"`
	Codepage     string  `yaml:"codepage,omitempty" validate:"omitempty,oneof=437 850 866 1252"`
}

// SMBConfig holds the identity presented by the native SMB lister.
// An empty User means an anonymous session.
type SMBConfig struct {
	User        string `yaml:"user,omitempty"`
	Domain      string `yaml:"domain,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
}

// RunnerConfig selects where net view and PowerShell are executed
type RunnerConfig struct {
	Mode string    `yaml:"mode" validate:"oneof=local ssh"`
	SSH  SSHConfig `yaml:"ssh"`
}

// SSHConfig describes a Windows jump host reachable over SSH
type SSHConfig struct {
	Host        string `yaml:"host,omitempty"`
	Port        int    `yaml:"port,omitempty" validate:"omitempty,gt=0,lte=65535"`
	User        string `yaml:"user,omitempty"`
	KeyPath     string `yaml:"key_path,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
	KnownHosts  string `yaml:"known_hosts,omitempty"`
}

// LoggingConfig holds diagnostic output settings
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	Output string `yaml:"output,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
