package monitor

import (
	"context"
	"fmt"
	"strings"

	"fleetcheck/pkg/remote"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultListCommand asks docker for one "name|||status" line per container.
const DefaultListCommand = `docker ps -a --format '{{.Names}}|||{{.Status}}'`

// CommandLister runs the docker CLI through an executor, locally or over SSH.
type CommandLister struct {
	Exec    remote.Executor
	Command string
	Logger  *zap.Logger
}

func (l *CommandLister) ListContainers(ctx context.Context) ([]Container, error) {
	command := l.Command
	if command == "" {
		command = DefaultListCommand
	}
	l.logger().Debug("listing containers", zap.String("host", l.Exec.Host()), zap.Bool("local", l.Exec.Local()))
	out, err := l.Exec.Run(ctx, command)
	if err != nil {
		return nil, err
	}
	containers, skipped := ParseContainerListing(out)
	for _, err := range skipped {
		l.logger().Debug("skipping container line", zap.String("host", l.Exec.Host()), zap.Error(err))
	}
	return containers, nil
}

func (l *CommandLister) RestartContainer(ctx context.Context, name string) error {
	_, err := l.Exec.Run(ctx, "docker restart "+remote.Quote(name))
	return err
}

func (l *CommandLister) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// ParseContainerListing reads "name|||status" lines as well as the JSON
// lines printed by `docker ps --format '{{json .}}'`. A container with
// several comma separated names is listed under each of them. Unreadable
// lines are returned separately so one bad line never hides the rest.
func ParseContainerListing(out string) ([]Container, []error) {
	var containers []Container
	var skipped []error
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var names, status string
		if strings.HasPrefix(line, "{") {
			if !gjson.Valid(line) {
				skipped = append(skipped, fmt.Errorf("%w: %q", ErrParse, line))
				continue
			}
			names = gjson.Get(line, "Names").String()
			status = gjson.Get(line, "Status").String()
			if names == "" || status == "" {
				skipped = append(skipped, fmt.Errorf("%w: %q", ErrParse, line))
				continue
			}
		} else {
			var err error
			names, status, err = ParseContainerLine(line)
			if err != nil {
				skipped = append(skipped, err)
				continue
			}
		}

		for _, name := range strings.Split(names, ",") {
			name = strings.TrimPrefix(strings.TrimSpace(name), "/")
			if name != "" {
				containers = append(containers, Container{Name: name, Status: status})
			}
		}
	}
	return containers, skipped
}

// DockerAPI is the slice of the Docker Engine client used here.
type DockerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
	Close() error
}

// APILister talks to the local Docker Engine API in-process.
type APILister struct {
	Client DockerAPI
}

// NewAPILister connects using DOCKER_HOST and friends from the environment.
func NewAPILister() (*APILister, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	return &APILister{Client: cli}, nil
}

func (l *APILister) ListContainers(ctx context.Context) ([]Container, error) {
	list, err := l.Client.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	var containers []Container
	for _, c := range list {
		for _, name := range c.Names {
			containers = append(containers, Container{
				Name:   strings.TrimPrefix(name, "/"),
				Status: c.Status,
			})
		}
	}
	return containers, nil
}

func (l *APILister) RestartContainer(ctx context.Context, name string) error {
	return l.Client.ContainerRestart(ctx, name, container.StopOptions{})
}

func (l *APILister) Close() error {
	return l.Client.Close()
}
