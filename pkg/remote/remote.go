// Package remote runs shell commands on a target host, either in this
// process' environment for loopback addresses or over SSH otherwise.
package remote

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
)

// ErrConnection marks failures to reach a host at all, as opposed to a
// command that ran and exited non-zero.
var ErrConnection = errors.New("connection failed")

type Executor interface {
	Host() string
	Local() bool
	Run(ctx context.Context, command string) (string, error)
	Close() error
}

// IsLocal reports whether address names this machine.
func IsLocal(address string) bool {
	address = strings.TrimSpace(address)
	switch strings.ToLower(address) {
	case "", "localhost", "local":
		return true
	}
	ip := net.ParseIP(address)
	return ip != nil && ip.IsLoopback()
}

// Factory builds the executor for a remote host.
type Factory func(host string) Executor

// Registry hands out one executor per host so every target on that host
// reuses the same connection.
type Registry struct {
	mu        sync.Mutex
	executors map[string]Executor
	newRemote Factory
}

func NewRegistry(newRemote Factory) *Registry {
	return &Registry{
		executors: make(map[string]Executor),
		newRemote: newRemote,
	}
}

func (r *Registry) ForHost(host string) Executor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.executors[host]; ok {
		return e
	}
	var e Executor
	if IsLocal(host) || r.newRemote == nil {
		e = NewLocalExecutor(host)
	} else {
		e = r.newRemote(host)
	}
	r.executors[host] = e
	return e
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.executors {
		_ = e.Close()
	}
	r.executors = make(map[string]Executor)
}

// Quote makes s safe to splice into a POSIX shell command line.
func Quote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:@=", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
