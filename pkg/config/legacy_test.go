package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseServers(t *testing.T) {
	input := `
# comment
timeout=0.3
retries=4

[local]
192.168.1.10   nas
192.168.1.11   media server
lonely

[other]
10.9.9.9 ignored

[remote]
203.0.113.4    vps
`
	got, err := ParseServers(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseServers: %v", err)
	}
	if got.Timeout != 300*time.Millisecond {
		t.Errorf("expected timeout 300ms, got %v", got.Timeout)
	}
	if got.Retries != 4 {
		t.Errorf("expected retries 4, got %d", got.Retries)
	}

	want := []Server{
		{Address: "192.168.1.10", Name: "nas", Group: GroupLocal},
		{Address: "192.168.1.11", Name: "media server", Group: GroupLocal},
		{Address: "203.0.113.4", Name: "vps", Group: GroupRemote},
	}
	if len(got.Servers) != len(want) {
		t.Fatalf("expected %d servers, got %d: %+v", len(want), len(got.Servers), got.Servers)
	}
	for i := range want {
		if got.Servers[i] != want[i] {
			t.Errorf("server %d: expected %+v, got %+v", i, want[i], got.Servers[i])
		}
	}
}

func TestParseServers_LinesBeforeSectionIgnored(t *testing.T) {
	got, err := ParseServers(strings.NewReader("10.0.0.1 early\n[local]\n10.0.0.2 late\n"))
	if err != nil {
		t.Fatalf("ParseServers: %v", err)
	}
	if len(got.Servers) != 1 || got.Servers[0].Name != "late" {
		t.Errorf("unexpected servers: %+v", got.Servers)
	}
}

func TestParseServers_MalformedSettingsIgnored(t *testing.T) {
	got, err := ParseServers(strings.NewReader("timeout=fast\nretries=-2\nunknown=1\n"))
	if err != nil {
		t.Fatalf("ParseServers: %v", err)
	}
	if got.Timeout != 0 || got.Retries != 0 {
		t.Errorf("expected malformed settings to be ignored, got %+v", got)
	}
}

func TestParseDockerHosts(t *testing.T) {
	input := `
orphan
host=127.0.0.1
web
db
host=10.0.0.2
cache
host=127.0.0.1
worker
`
	hosts, err := ParseDockerHosts(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDockerHosts: %v", err)
	}
	if len(hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(hosts))
	}
	if hosts[0].Address != "127.0.0.1" || strings.Join(hosts[0].Containers, ",") != "web,db,worker" {
		t.Errorf("unexpected first host: %+v", hosts[0])
	}
	if hosts[1].Address != "10.0.0.2" || strings.Join(hosts[1].Containers, ",") != "cache" {
		t.Errorf("unexpected second host: %+v", hosts[1])
	}
}
