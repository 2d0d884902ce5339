package progress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
	"github.com/valyala/bytebufferpool"
)

var unsafeJobCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// FileStore keeps one JSON document per job under dir. Writes go to a temp
// file first and are renamed into place.
type FileStore struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

func NewFileStore(dir string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("progress dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create progress dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Path returns the file backing job.
func (s *FileStore) Path(job string) string {
	return filepath.Join(s.dir, unsafeJobCharRegex.ReplaceAllString(strings.TrimSpace(job), "_")+".json")
}

func (s *FileStore) Load(_ context.Context, job string) (syncprogress.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := syncprogress.Fresh(job, s.now())
	raw, err := os.ReadFile(s.Path(job))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fresh, nil
		}
		return fresh, fmt.Errorf("read progress %s: %w", job, err)
	}

	var state syncprogress.State
	if err := sonic.Unmarshal(raw, &state); err != nil {
		return fresh, fmt.Errorf("decode progress %s: %w", job, err)
	}
	state.Normalize(job)
	return state, nil
}

func (s *FileStore) Save(_ context.Context, state syncprogress.State) error {
	if strings.TrimSpace(state.Job) == "" {
		return fmt.Errorf("progress job is required")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigStd.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode progress %s: %w", state.Job, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.Path(state.Job)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp progress file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write progress %s: %w", state.Job, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync progress %s: %w", state.Job, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close progress %s: %w", state.Job, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("replace progress %s: %w", state.Job, err)
	}
	return nil
}
