package remote

import "context"

// MockExecutor is a scriptable Executor for tests.
type MockExecutor struct {
	HostName  string
	IsLocal   bool
	RunFunc   func(ctx context.Context, command string) (string, error)
	CloseFunc func() error
}

func (m *MockExecutor) Host() string { return m.HostName }
func (m *MockExecutor) Local() bool  { return m.IsLocal }

func (m *MockExecutor) Run(ctx context.Context, command string) (string, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, command)
	}
	return "", nil
}

func (m *MockExecutor) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
