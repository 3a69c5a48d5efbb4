package history

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fleetcheck/pkg/target"

	"go.uber.org/zap"
)

// FileStore keeps one append-only text file per target under Dir.
type FileStore struct {
	Dir    string
	Logger *zap.Logger
}

func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{Dir: dir, Logger: logger}, nil
}

// Path names the file after the target for humans, and after its ID so two
// targets never share a file.
func (s *FileStore) Path(t target.Target) string {
	return filepath.Join(s.Dir, sanitize(t.Name)+"-"+t.ID.Short()+".log")
}

func (s *FileStore) Append(ctx context.Context, t target.Target, rec Record) error {
	f, err := os.OpenFile(s.Path(t), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640) //nolint:gosec // G304: path built from the history dir
	if err != nil {
		return err
	}
	if _, err := f.WriteString(rec.String() + "\n"); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *FileStore) Records(ctx context.Context, t target.Target) ([]Record, error) {
	f, err := os.Open(s.Path(t)) //nolint:gosec // G304: path built from the history dir
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			s.Logger.Debug("skipping history line", zap.String("file", f.Name()), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

func (s *FileStore) Close() error { return nil }

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, name)
}
