package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"deckcast/internal/domain"

	"github.com/gofrs/flock"
)

// FileStore is the JSON-file persistence used when no database is
// configured: development, demos, tests against a real store. Each call
// reads or rewrites one aggregate file under an exclusive flock so a
// second process sharing the data directory cannot interleave a
// half-written document.
type FileStore struct {
	dir      string
	fileLock *flock.Flock
	mu       sync.Mutex
}

// NewFileStore opens (creating if needed) a data directory.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileStore{
		dir:      dir,
		fileLock: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

// Presentations returns the PresentationStore view of the file store.
func (s *FileStore) Presentations() PresentationStore {
	return &filePresentations{store: s}
}

// Polls returns the PollStore view of the file store.
func (s *FileStore) Polls() PollStore {
	return &filePolls{store: s}
}

func (s *FileStore) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lockCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	locked, err := s.fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire file lock")
	}
	defer func() { _ = s.fileLock.Unlock() }()

	return fn()
}

func (s *FileStore) readDoc(ctx context.Context, name string, out interface{}) error {
	return s.withLock(ctx, func() error {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if os.IsNotExist(err) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode %s: %w", name, err)
		}
		return nil
	})
}

func (s *FileStore) writeDoc(ctx context.Context, name string, in interface{}) error {
	return s.withLock(ctx, func() error {
		data, err := json.MarshalIndent(in, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		// Write-then-rename keeps a crashed write from leaving a
		// truncated aggregate behind.
		tmp := filepath.Join(s.dir, name+".tmp")
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		return os.Rename(tmp, filepath.Join(s.dir, name))
	})
}

func (s *FileStore) deleteDoc(ctx context.Context, name string) error {
	return s.withLock(ctx, func() error {
		err := os.Remove(filepath.Join(s.dir, name))
		if os.IsNotExist(err) {
			return domain.ErrNotFound
		}
		return err
	})
}

func (s *FileStore) listDocs(ctx context.Context, prefix string) ([][]byte, error) {
	var out [][]byte
	err := s.withLock(ctx, func() error {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			return fmt.Errorf("failed to list data dir: %w", err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".json" || len(name) <= len(prefix) || name[:len(prefix)] != prefix {
				continue
			}
			data, err := os.ReadFile(filepath.Join(s.dir, name))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			out = append(out, data)
		}
		return nil
	})
	return out, err
}

type filePresentations struct {
	store *FileStore
}

func presentationFile(id string) string { return "deck-" + id + ".json" }

func (f *filePresentations) Load(ctx context.Context, id string) (domain.Presentation, error) {
	var p domain.Presentation
	if err := f.store.readDoc(ctx, presentationFile(id), &p); err != nil {
		return domain.Presentation{}, err
	}
	return p, nil
}

func (f *filePresentations) Save(ctx context.Context, p domain.Presentation) error {
	return f.store.writeDoc(ctx, presentationFile(p.ID), p)
}

func (f *filePresentations) Delete(ctx context.Context, id string) error {
	return f.store.deleteDoc(ctx, presentationFile(id))
}

func (f *filePresentations) ListByCreator(ctx context.Context, creatorID string) ([]domain.Presentation, error) {
	docs, err := f.store.listDocs(ctx, "deck-")
	if err != nil {
		return nil, err
	}
	var out []domain.Presentation
	for _, data := range docs {
		var p domain.Presentation
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		if creatorID == "" || p.CreatorID == creatorID {
			out = append(out, p)
		}
	}
	sortPresentationsByUpdated(out)
	return out, nil
}

type filePolls struct {
	store *FileStore
}

func pollFile(id string) string { return "poll-" + id + ".json" }

func (f *filePolls) Load(ctx context.Context, id string) (domain.Poll, error) {
	var p domain.Poll
	if err := f.store.readDoc(ctx, pollFile(id), &p); err != nil {
		return domain.Poll{}, err
	}
	return p, nil
}

func (f *filePolls) LoadByShortCode(ctx context.Context, code string) (domain.Poll, error) {
	docs, err := f.store.listDocs(ctx, "poll-")
	if err != nil {
		return domain.Poll{}, err
	}
	for _, data := range docs {
		var p domain.Poll
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		if p.ShortCode == code {
			return p, nil
		}
	}
	return domain.Poll{}, domain.ErrNotFound
}

func (f *filePolls) Save(ctx context.Context, p domain.Poll) error {
	return f.store.writeDoc(ctx, pollFile(p.ID), p)
}

func (f *filePolls) Delete(ctx context.Context, id string) error {
	return f.store.deleteDoc(ctx, pollFile(id))
}

func (f *filePolls) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := f.LoadByShortCode(ctx, code)
	if err == domain.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func sortPresentationsByUpdated(list []domain.Presentation) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
}
