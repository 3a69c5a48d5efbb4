package remote

import (
	"context"
	"fmt"
	"os/exec"
)

// execCommand is a variable to allow mocking in tests
var execCommand = exec.CommandContext

type LocalExecutor struct {
	host string
}

func NewLocalExecutor(host string) *LocalExecutor {
	return &LocalExecutor{host: host}
}

func (e *LocalExecutor) Host() string { return e.host }
func (e *LocalExecutor) Local() bool  { return true }
func (e *LocalExecutor) Close() error { return nil }

func (e *LocalExecutor) Run(ctx context.Context, command string) (string, error) {
	cmd := execCommand(ctx, "sh", "-c", command)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return string(out), fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
		}
		return string(out), err
	}
	return string(out), nil
}
