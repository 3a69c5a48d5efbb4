package config

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// LegacyServers is the content of an old-style servers.conf file.
type LegacyServers struct {
	Timeout time.Duration
	Retries int
	Servers []Server
}

type sectionState int

const (
	stateNone sectionState = iota
	stateLocal
	stateRemote
)

// ParseServers reads the section based servers.conf format:
//
//	timeout=0.2
//	retries=3
//	[local]
//	192.168.1.10   nas
//	[remote]
//	203.0.113.4    vps frankfurt
//
// Unknown sections switch the scanner back to the none state so their lines
// are ignored. Malformed settings are ignored.
func ParseServers(r io.Reader) (*LegacyServers, error) {
	out := &LegacyServers{}
	state := stateNone

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			switch strings.TrimSpace(line[1 : len(line)-1]) {
			case GroupLocal:
				state = stateLocal
			case GroupRemote:
				state = stateRemote
			default:
				state = stateNone
			}
			continue
		}

		if key, value, ok := strings.Cut(line, "="); ok {
			applyLegacySetting(out, strings.TrimSpace(key), strings.TrimSpace(value))
			continue
		}

		var group string
		switch state {
		case stateLocal:
			group = GroupLocal
		case stateRemote:
			group = GroupRemote
		default:
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		out.Servers = append(out.Servers, Server{Address: fields[0], Name: name, Group: group})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func applyLegacySetting(out *LegacyServers, key, value string) {
	switch key {
	case "timeout":
		secs, err := strconv.ParseFloat(value, 64)
		if err != nil || secs <= 0 {
			return
		}
		out.Timeout = time.Duration(secs * float64(time.Second))
	case "retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return
		}
		out.Retries = n
	}
}

// ParseDockerHosts reads the old docker file where "host=<address>" opens a
// host and each following non-empty line names a container on it. Names
// before the first host line are dropped.
func ParseDockerHosts(r io.Reader) ([]DockerHost, error) {
	var hosts []DockerHost
	index := make(map[string]int)
	current := -1

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if addr, ok := strings.CutPrefix(line, "host="); ok {
			addr = strings.TrimSpace(addr)
			i, seen := index[addr]
			if !seen {
				i = len(hosts)
				index[addr] = i
				hosts = append(hosts, DockerHost{Address: addr})
			}
			current = i
			continue
		}
		if current < 0 {
			continue
		}
		hosts[current].Containers = append(hosts[current].Containers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return hosts, nil
}
