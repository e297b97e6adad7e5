package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

// FileKV keeps all keys in one JSON document on disk. Each operation holds an
// advisory lock on a sibling ".lock" file so several processes can share it.
type FileKV struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

// NewFileKV creates a store persisted at path. The file is created on first write.
func NewFileKV(path string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	return &FileKV{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (f *FileKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	locked, err := f.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return "", fmt.Errorf("acquire read lock: %w", lockError(err))
	}
	defer func() { _ = f.lock.Unlock() }()

	values, err := f.read()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

func (f *FileKV) Set(ctx context.Context, key, value string) error {
	return f.update(ctx, func(values map[string]string) {
		values[key] = value
	})
}

func (f *FileKV) Delete(ctx context.Context, key string) error {
	return f.update(ctx, func(values map[string]string) {
		delete(values, key)
	})
}

func (f *FileKV) update(ctx context.Context, mutate func(map[string]string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return fmt.Errorf("acquire write lock: %w", lockError(err))
	}
	defer func() { _ = f.lock.Unlock() }()

	values, err := f.read()
	if err != nil {
		return err
	}

	mutate(values)

	return f.write(values)
}

func (f *FileKV) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return values, nil
		}

		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(data) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	return values, nil
}

func (f *FileKV) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}

	return nil
}

var errLockNotAcquired = errors.New("lock not acquired")

func lockError(err error) error {
	if err != nil {
		return err
	}

	return errLockNotAcquired
}

var _ KV = (*FileKV)(nil)
