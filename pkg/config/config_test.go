package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
global:
  timeout: 150ms
  retries: 2
  concurrency: 4
servers:
  - address: 10.0.0.1
    name: nas
  - address: 203.0.113.4
    name: vps
    group: remote
docker:
  hosts:
    - address: 127.0.0.1
      containers: [web, db]
dns:
  primary: 10.0.0.5
  secondary: 10.0.0.3
  sites: [example.com]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	s := cfg.Settings()
	if s.Timeout != 150*time.Millisecond {
		t.Errorf("expected timeout 150ms, got %v", s.Timeout)
	}
	if s.Retries != 2 {
		t.Errorf("expected 2 retries, got %d", s.Retries)
	}
	if s.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", s.Concurrency)
	}
	if s.Backoff != DefaultBackoff {
		t.Errorf("expected default backoff, got %v", s.Backoff)
	}

	servers := cfg.ServerEntries()
	if len(servers) != 2 || servers[0].Group != GroupLocal || servers[1].Group != GroupRemote {
		t.Errorf("unexpected server entries: %+v", servers)
	}
	docker := cfg.DockerEntries()
	if len(docker) != 2 || docker[0].Name != "web" || docker[1].Address != "127.0.0.1" {
		t.Errorf("unexpected docker entries: %+v", docker)
	}
	if got := cfg.DNSEntries(); len(got) != 1 || got[0].Name != "example.com" {
		t.Errorf("unexpected dns entries: %+v", got)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "servers: []\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	s := cfg.Settings()
	if s.Timeout != DefaultTimeout || s.Retries != DefaultRetries || s.Concurrency != DefaultConcurrency {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.PingMethod != PingMethodExec {
		t.Errorf("expected exec ping method, got %q", s.PingMethod)
	}
	if s.DNSTimeout != time.Second || s.DockerTimeout != 10*time.Second {
		t.Errorf("unexpected dns/docker timeouts: %+v", s)
	}
}

func TestLoadConfig_LegacyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "servers.conf", `
timeout=0.5
retries=5
[local]
192.168.1.10   nas
`)
	writeFile(t, dir, "docker.conf", `
host=127.0.0.1
web
`)
	path := writeFile(t, dir, "config.yaml", `
servers_file: servers.conf
servers:
  - address: 10.0.0.1
    name: router
docker:
  hosts_file: docker.conf
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Servers) != 2 || cfg.Servers[0].Name != "router" || cfg.Servers[1].Name != "nas" {
		t.Errorf("expected YAML servers before legacy ones, got %+v", cfg.Servers)
	}
	s := cfg.Settings()
	if s.Timeout != 500*time.Millisecond {
		t.Errorf("expected legacy timeout 500ms, got %v", s.Timeout)
	}
	if s.Retries != 5 {
		t.Errorf("expected legacy retries 5, got %d", s.Retries)
	}
	if len(cfg.Docker.Hosts) != 1 || cfg.Docker.Hosts[0].Containers[0] != "web" {
		t.Errorf("unexpected docker hosts: %+v", cfg.Docker.Hosts)
	}
}

func TestLoadConfig_YAMLSettingsWinOverLegacy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "servers.conf", "timeout=0.5\nretries=5\n")
	path := writeFile(t, dir, "config.yaml", "servers_file: servers.conf\nglobal:\n  timeout: 1s\n  retries: 1\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if s := cfg.Settings(); s.Timeout != time.Second || s.Retries != 1 {
		t.Errorf("expected YAML settings to win, got %+v", s)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfig_Validate(t *testing.T) {
	zero := 0
	negative := -1
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid empty", Config{}, ""},
		{"bad timeout", Config{Global: GlobalConfig{Timeout: "soon"}}, "global.timeout"},
		{"zero timeout", Config{Global: GlobalConfig{Timeout: "0"}}, "must be positive"},
		{"zero backoff allowed", Config{Global: GlobalConfig{Backoff: "0"}}, ""},
		{"zero retries", Config{Global: GlobalConfig{Retries: &zero}}, "retries"},
		{"negative concurrency", Config{Global: GlobalConfig{Concurrency: &negative}}, "concurrency"},
		{"unbounded concurrency", Config{Global: GlobalConfig{Concurrency: &zero}}, ""},
		{"unknown ping method", Config{Global: GlobalConfig{PingMethod: "arp"}}, "ping_method"},
		{"unknown history backend", Config{History: HistoryConfig{Backend: "redis"}}, "history backend"},
		{"server without address", Config{Servers: []Server{{Name: "x"}}}, "address is mandatory"},
		{"server without name", Config{Servers: []Server{{Address: "10.0.0.1"}}}, "name is mandatory"},
		{"server bad group", Config{Servers: []Server{{Address: "a", Name: "b", Group: "cloud"}}}, "unknown group"},
		{"docker host without address", Config{Docker: DockerConfig{Hosts: []DockerHost{{Containers: []string{"web"}}}}}, "address is mandatory"},
		{"docker empty container", Config{Docker: DockerConfig{Hosts: []DockerHost{{Address: "h", Containers: []string{" "}}}}}, "empty container"},
		{"dns without primary", Config{DNS: DNSConfig{Sites: []string{"example.com"}}}, "dns.primary"},
		{"bad ssh key", Config{SSH: &SSHConfig{PrivateKey: "not a key"}}, "private_key"},
		{"bad ssh timeout", Config{SSH: &SSHConfig{Timeout: "x"}}, "ssh.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"0.2", 200 * time.Millisecond, false},
		{"2", 2 * time.Second, false},
		{"150ms", 150 * time.Millisecond, false},
		{"5m", 5 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"xd", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	oldSystem := SystemConfigFile
	SystemConfigFile = filepath.Join(dir, "system.yaml")
	defer func() { SystemConfigFile = oldSystem }()

	t.Run("nothing found", func(t *testing.T) {
		_, err := Find("")
		if !errors.Is(err, ErrConfigMissing) {
			t.Errorf("expected ErrConfigMissing, got %v", err)
		}
	})

	t.Run("explicit missing", func(t *testing.T) {
		_, err := Find(filepath.Join(dir, "absent.yaml"))
		if !errors.Is(err, ErrConfigMissing) {
			t.Errorf("expected ErrConfigMissing, got %v", err)
		}
	})

	t.Run("system fallback", func(t *testing.T) {
		writeFile(t, dir, "system.yaml", "servers: []\n")
		got, err := Find("")
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if got != SystemConfigFile {
			t.Errorf("expected %s, got %s", SystemConfigFile, got)
		}
	})

	t.Run("user file wins", func(t *testing.T) {
		userDir := filepath.Join(dir, ".config", "fleetcheck")
		if err := os.MkdirAll(userDir, 0o755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, userDir, "config.yaml", "servers: []\n")
		got, err := Find("")
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if got != filepath.Join(userDir, "config.yaml") {
			t.Errorf("expected user config, got %s", got)
		}
	})
}

func TestResolvePath(t *testing.T) {
	cfg := &Config{dir: "/etc/fleetcheck"}
	if got := cfg.ResolvePath("history"); got != "/etc/fleetcheck/history" {
		t.Errorf("unexpected relative resolution: %s", got)
	}
	if got := cfg.ResolvePath("/var/lib/x"); got != "/var/lib/x" {
		t.Errorf("absolute path changed: %s", got)
	}
	if got := cfg.ResolvePath(""); got != "" {
		t.Errorf("expected empty path, got %s", got)
	}
}
