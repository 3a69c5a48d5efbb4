package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fleetcheck/pkg/target"

	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"
)

const (
	GroupLocal  = "local"
	GroupRemote = "remote"
	GroupDocker = "docker"
	GroupDNS    = "dns"

	PingMethodExec = "exec"
	PingMethodICMP = "icmp"

	HistoryBackendFile   = "file"
	HistoryBackendSQLite = "sqlite"
)

// Defaults used when the config leaves a setting out.
const (
	DefaultTimeout       = 200 * time.Millisecond
	DefaultRetries       = 3
	DefaultBackoff       = 100 * time.Millisecond
	DefaultConcurrency   = 16
	DefaultDockerTimeout = 10 * time.Second
	DefaultDNSTimeout    = time.Second
)

type Config struct {
	Global      GlobalConfig  `yaml:"global"`
	SSH         *SSHConfig    `yaml:"ssh,omitempty"`
	History     HistoryConfig `yaml:"history,omitempty"`
	Logging     LoggingConfig `yaml:"logging,omitempty"`
	ServersFile string        `yaml:"servers_file,omitempty"`
	Servers     []Server      `yaml:"servers,omitempty"`
	Docker      DockerConfig  `yaml:"docker,omitempty"`
	DNS         DNSConfig     `yaml:"dns,omitempty"`

	dir string // directory of the loaded file, used to resolve relative paths
}

type GlobalConfig struct {
	Timeout     string `yaml:"timeout,omitempty"`
	Retries     *int   `yaml:"retries,omitempty"`
	Backoff     string `yaml:"backoff,omitempty"`
	Concurrency *int   `yaml:"concurrency,omitempty"` // 0 means unbounded
	PingMethod  string `yaml:"ping_method,omitempty"`
}

type SSHConfig struct {
	User           string `yaml:"user,omitempty"`
	Password       string `yaml:"password,omitempty"`
	PrivateKey     string `yaml:"private_key,omitempty"`
	PrivateKeyFile string `yaml:"private_key_file,omitempty"`
	Port           int    `yaml:"port,omitempty"`    // Default to 22
	Timeout        string `yaml:"timeout,omitempty"` // Default to 10s
}

type HistoryConfig struct {
	Backend string `yaml:"backend,omitempty"` // file (default) or sqlite
	Dir     string `yaml:"dir,omitempty"`
	Path    string `yaml:"path,omitempty"` // sqlite database file
}

type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // console or json
	File   string `yaml:"file,omitempty"`
}

type Server struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
	Group   string `yaml:"group,omitempty"` // local or remote
}

type DockerConfig struct {
	Timeout   string       `yaml:"timeout,omitempty"`
	API       bool         `yaml:"api,omitempty"`
	Hosts     []DockerHost `yaml:"hosts,omitempty"`
	HostsFile string       `yaml:"hosts_file,omitempty"`
}

type DockerHost struct {
	Address    string   `yaml:"address"`
	Containers []string `yaml:"containers"`
}

type DNSConfig struct {
	Primary   string   `yaml:"primary,omitempty"`
	Secondary string   `yaml:"secondary,omitempty"`
	Timeout   string   `yaml:"timeout,omitempty"`
	Sites     []string `yaml:"sites,omitempty"`
}

// Settings are the validated, typed run parameters derived from Config.
type Settings struct {
	Timeout       time.Duration
	Retries       int
	Backoff       time.Duration
	Concurrency   int
	PingMethod    string
	DockerTimeout time.Duration
	DNSTimeout    time.Duration
}

func (c *Config) Validate() error {
	for _, field := range []struct{ name, value string }{
		{"global.timeout", c.Global.Timeout},
		{"global.backoff", c.Global.Backoff},
		{"docker.timeout", c.Docker.Timeout},
		{"dns.timeout", c.DNS.Timeout},
	} {
		if field.value == "" {
			continue
		}
		d, err := ParseDuration(field.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", field.name, err)
		}
		if d < 0 || (d == 0 && field.name != "global.backoff") {
			return fmt.Errorf("%s must be positive", field.name)
		}
	}

	if c.Global.Retries != nil && *c.Global.Retries < 1 {
		return fmt.Errorf("global retries must be at least 1")
	}
	if c.Global.Concurrency != nil && *c.Global.Concurrency < 0 {
		return fmt.Errorf("global concurrency cannot be negative")
	}

	switch c.Global.PingMethod {
	case "", PingMethodExec, PingMethodICMP:
	default:
		return fmt.Errorf("unknown ping_method %q", c.Global.PingMethod)
	}

	switch c.History.Backend {
	case "", HistoryBackendFile, HistoryBackendSQLite:
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}

	if c.SSH != nil {
		if c.SSH.Timeout != "" {
			if _, err := ParseDuration(c.SSH.Timeout); err != nil {
				return fmt.Errorf("invalid ssh.timeout: %w", err)
			}
		}
		if c.SSH.PrivateKey != "" {
			if _, err := ssh.ParsePrivateKey([]byte(c.SSH.PrivateKey)); err != nil {
				return fmt.Errorf("ssh private_key is invalid: %w", err)
			}
		}
	}

	for i, srv := range c.Servers {
		if strings.TrimSpace(srv.Address) == "" {
			return fmt.Errorf("servers[%d] address is mandatory", i)
		}
		if strings.TrimSpace(srv.Name) == "" {
			return fmt.Errorf("servers[%d] name is mandatory", i)
		}
		switch srv.Group {
		case "", GroupLocal, GroupRemote:
		default:
			return fmt.Errorf("server %q has unknown group %q", srv.Name, srv.Group)
		}
	}

	for i, host := range c.Docker.Hosts {
		if strings.TrimSpace(host.Address) == "" {
			return fmt.Errorf("docker.hosts[%d] address is mandatory", i)
		}
		for _, name := range host.Containers {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("docker host %q has an empty container name", host.Address)
			}
		}
	}

	if len(c.DNS.Sites) > 0 && c.DNS.Primary == "" {
		return fmt.Errorf("dns.primary is mandatory when dns.sites is set")
	}

	return nil
}

// Settings returns typed run parameters. Call only after Validate.
func (c *Config) Settings() Settings {
	s := Settings{
		Timeout:       DefaultTimeout,
		Retries:       DefaultRetries,
		Backoff:       DefaultBackoff,
		Concurrency:   DefaultConcurrency,
		PingMethod:    PingMethodExec,
		DockerTimeout: DefaultDockerTimeout,
		DNSTimeout:    DefaultDNSTimeout,
	}
	if d, err := ParseDuration(c.Global.Timeout); err == nil && d > 0 {
		s.Timeout = d
	}
	if c.Global.Retries != nil {
		s.Retries = *c.Global.Retries
	}
	if c.Global.Backoff != "" {
		if d, err := ParseDuration(c.Global.Backoff); err == nil {
			s.Backoff = d
		}
	}
	if c.Global.Concurrency != nil {
		s.Concurrency = *c.Global.Concurrency
	}
	if c.Global.PingMethod != "" {
		s.PingMethod = c.Global.PingMethod
	}
	if d, err := ParseDuration(c.Docker.Timeout); err == nil && d > 0 {
		s.DockerTimeout = d
	}
	if d, err := ParseDuration(c.DNS.Timeout); err == nil && d > 0 {
		s.DNSTimeout = d
	}
	return s
}

// ServerEntries returns reachability targets in declaration order.
func (c *Config) ServerEntries() []target.Entry {
	entries := make([]target.Entry, 0, len(c.Servers))
	for _, srv := range c.Servers {
		group := srv.Group
		if group == "" {
			group = GroupLocal
		}
		entries = append(entries, target.Entry{
			Address: srv.Address,
			Name:    srv.Name,
			Kind:    target.KindHost,
			Group:   group,
		})
	}
	return entries
}

// DockerEntries returns one service target per configured container.
func (c *Config) DockerEntries() []target.Entry {
	var entries []target.Entry
	for _, host := range c.Docker.Hosts {
		for _, name := range host.Containers {
			entries = append(entries, target.Entry{
				Address: host.Address,
				Name:    name,
				Kind:    target.KindService,
				Group:   GroupDocker,
			})
		}
	}
	return entries
}

// DNSEntries returns one target per site to resolve.
func (c *Config) DNSEntries() []target.Entry {
	entries := make([]target.Entry, 0, len(c.DNS.Sites))
	for _, site := range c.DNS.Sites {
		entries = append(entries, target.Entry{
			Address: site,
			Name:    site,
			Kind:    target.KindHost,
			Group:   GroupDNS,
		})
	}
	return entries
}

// ResolvePath expands "~" and makes relative paths relative to the
// directory of the loaded config file.
func (c *Config) ResolvePath(p string) string {
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Config file path from command line flag is expected
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)

	if err := cfg.loadLegacyFiles(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadLegacyFiles merges the old line-oriented servers and docker files.
// Settings found in the servers file only apply when the YAML leaves them unset.
func (c *Config) loadLegacyFiles() error {
	if c.ServersFile != "" {
		f, err := os.Open(c.ResolvePath(c.ServersFile))
		if err != nil {
			return fmt.Errorf("open servers_file: %w", err)
		}
		legacy, err := ParseServers(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("read servers_file: %w", err)
		}
		c.Servers = append(c.Servers, legacy.Servers...)
		if c.Global.Timeout == "" && legacy.Timeout > 0 {
			c.Global.Timeout = legacy.Timeout.String()
		}
		if c.Global.Retries == nil && legacy.Retries > 0 {
			retries := legacy.Retries
			c.Global.Retries = &retries
		}
	}

	if c.Docker.HostsFile != "" {
		f, err := os.Open(c.ResolvePath(c.Docker.HostsFile))
		if err != nil {
			return fmt.Errorf("open docker hosts_file: %w", err)
		}
		hosts, err := ParseDockerHosts(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("read docker hosts_file: %w", err)
		}
		c.Docker.Hosts = append(c.Docker.Hosts, hosts...)
	}
	return nil
}

// ParseDuration parses a duration string, supporting "d" for days, "h" for hours, "m" for minutes, "s" for seconds.
// "2s", "4m", "5h", "1d". A bare number such as "0.2" is read as seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	// Check for "0"
	if s == "0" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	// Check for 'd' suffix
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration (days): %w", err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	// Fallback to time.ParseDuration
	return time.ParseDuration(s)
}
