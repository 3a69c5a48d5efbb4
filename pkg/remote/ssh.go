package remote

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"fleetcheck/pkg/config"

	"golang.org/x/crypto/ssh"
)

// SSHExecutor keeps one lazily dialed client per host and opens a fresh
// session for every command.
type SSHExecutor struct {
	host    string
	cfg     *config.SSHConfig
	timeout time.Duration

	// DialContext replaces the TCP dialer, mainly for tests.
	DialContext func(ctx context.Context, network, address string) (net.Conn, error)

	mu     sync.Mutex
	client *ssh.Client
}

func NewSSHExecutor(host string, cfg *config.SSHConfig) *SSHExecutor {
	timeout := 10 * time.Second
	if cfg != nil && cfg.Timeout != "" {
		if d, err := config.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}
	return &SSHExecutor{host: host, cfg: cfg, timeout: timeout}
}

// SSHFactory returns a Factory that builds SSH executors sharing cfg.
func SSHFactory(cfg *config.SSHConfig) Factory {
	return func(host string) Executor {
		return NewSSHExecutor(host, cfg)
	}
}

func (e *SSHExecutor) Host() string { return e.host }
func (e *SSHExecutor) Local() bool  { return false }

func (e *SSHExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		err := e.client.Close()
		e.client = nil
		return err
	}
	return nil
}

func (e *SSHExecutor) Run(ctx context.Context, command string) (string, error) {
	client, err := e.getClient(ctx)
	if err != nil {
		return "", err
	}

	session, err := client.NewSession()
	if err != nil {
		e.reset()
		return "", fmt.Errorf("%w: %s: open session: %v", ErrConnection, e.host, err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.Output(command)
		done <- result{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = session.Close()
		return "", fmt.Errorf("%s: %w", e.host, ctx.Err())
	case res := <-done:
		if res.err != nil {
			if _, ok := res.err.(*ssh.ExitError); ok {
				return string(res.out), fmt.Errorf("%s: %w", e.host, res.err)
			}
			e.reset()
			return string(res.out), fmt.Errorf("%w: %s: %v", ErrConnection, e.host, res.err)
		}
		return string(res.out), nil
	}
}

func (e *SSHExecutor) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		_ = e.client.Close()
		e.client = nil
	}
}

func (e *SSHExecutor) getClient(ctx context.Context) (*ssh.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return e.client, nil
	}

	sshConfig, err := e.clientConfig()
	if err != nil {
		return nil, err
	}

	user, target := e.address()
	if user != "" {
		sshConfig.User = user
	}

	dialCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var conn net.Conn
	if e.DialContext != nil {
		conn, err = e.DialContext(dialCtx, "tcp", target)
	} else {
		d := net.Dialer{}
		conn, err = d.DialContext(dialCtx, "tcp", target)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ssh dial %s: %v", ErrConnection, target, err)
	}

	c, channel, req, err := ssh.NewClientConn(conn, target, sshConfig)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: ssh handshake %s: %v", ErrConnection, target, err)
	}

	e.client = ssh.NewClient(c, channel, req)
	return e.client, nil
}

func (e *SSHExecutor) clientConfig() (*ssh.ClientConfig, error) {
	sshConfig := &ssh.ClientConfig{
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // Fleet checks reach many hosts without a managed known_hosts
		Timeout:         e.timeout,
	}
	if e.cfg == nil {
		return sshConfig, nil
	}

	sshConfig.User = e.cfg.User
	if e.cfg.Password != "" {
		sshConfig.Auth = append(sshConfig.Auth, ssh.Password(e.cfg.Password))
	}

	key := []byte(e.cfg.PrivateKey)
	if len(key) == 0 && e.cfg.PrivateKeyFile != "" {
		data, err := os.ReadFile(e.cfg.PrivateKeyFile) //nolint:gosec // G304: key path comes from config
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		key = data
	}
	if len(key) > 0 {
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		sshConfig.Auth = append(sshConfig.Auth, ssh.PublicKeys(signer))
	}
	return sshConfig, nil
}

// address splits an optional "user@" prefix and adds the configured port.
func (e *SSHExecutor) address() (user, target string) {
	target = e.host
	if u, h, ok := strings.Cut(target, "@"); ok {
		user, target = u, h
	}
	if _, _, err := net.SplitHostPort(target); err != nil {
		port := 22
		if e.cfg != nil && e.cfg.Port != 0 {
			port = e.cfg.Port
		}
		target = net.JoinHostPort(target, fmt.Sprint(port))
	}
	return user, target
}
