package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	poserrors "github.com/abgdnv/tillpos/internal/errors"
	"github.com/gofrs/flock"
)

const (
	fileExt           = ".json"
	lockExt           = ".lock"
	defaultLockRetry  = 10 * time.Millisecond
	defaultPermission = 0o644
)

// FileStore implements Store with one JSON file per collection inside a directory.
// Writers are serialized by an advisory lock file per collection, readers take no lock:
// every write goes to a temporary file that is synced and renamed over the previous one.
type FileStore struct {
	dir         string
	lockRetry   time.Duration
	lockTimeout time.Duration
	logger      *slog.Logger

	mu  sync.Mutex
	sem map[string]chan struct{}
}

// NewFileStore creates a new FileStore rooted at dir, creating the directory if needed.
// lockRetry is the polling interval while waiting for another process to release a lock;
// a positive lockTimeout bounds that wait, zero waits until ctx is done.
func NewFileStore(dir string, lockRetry, lockTimeout time.Duration, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	if lockRetry <= 0 {
		lockRetry = defaultLockRetry
	}
	return &FileStore{
		dir:         dir,
		lockRetry:   lockRetry,
		lockTimeout: lockTimeout,
		logger:      logger.With("component", "docstore"),
		sem:         make(map[string]chan struct{}),
	}, nil
}

// Path returns the backing file of a collection.
func (s *FileStore) Path(collection string) string {
	return filepath.Join(s.dir, collection+fileExt)
}

// Read decodes the collection file into out without taking the lock.
func (s *FileStore) Read(_ context.Context, collection string, out any) error {
	if err := validName(collection); err != nil {
		return err
	}
	return s.readFile(collection, out)
}

// Replace overwrites the collection under the exclusive lock.
func (s *FileStore) Replace(ctx context.Context, collection string, records any) error {
	return s.WithLock(ctx, collection, func(tx Tx) error {
		return tx.Write(records)
	})
}

// WithLock acquires the in-process semaphore and then the file lock of the collection,
// runs fn and releases both. The lock is held until the new bytes are on stable storage.
func (s *FileStore) WithLock(ctx context.Context, collection string, fn func(tx Tx) error) error {
	if err := validName(collection); err != nil {
		return err
	}
	unlock, err := s.lock(ctx, collection)
	if err != nil {
		return err
	}
	defer unlock()

	return fn(&fileTx{store: s, collection: collection})
}

func (s *FileStore) lock(ctx context.Context, collection string) (func(), error) {
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	// flock is held per open file, so goroutines of this process queue up here first.
	sem := s.semaphore(collection)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w %s: %w", poserrors.ErrLock, collection, ctx.Err())
	}

	fl := flock.New(s.Path(collection) + lockExt)
	locked, err := fl.TryLockContext(ctx, s.lockRetry)
	if err != nil || !locked {
		<-sem
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return nil, fmt.Errorf("%w %s: %w", poserrors.ErrLock, collection, err)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Error("Failed to release collection lock", "collection", collection, "error", err)
		}
		<-sem
	}, nil
}

func (s *FileStore) semaphore(collection string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	sem, ok := s.sem[collection]
	if !ok {
		sem = make(chan struct{}, 1)
		s.sem[collection] = sem
	}
	return sem
}

func (s *FileStore) readFile(collection string, out any) error {
	data, err := os.ReadFile(s.Path(collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Error("Collection is not well-formed", "collection", collection, "error", err)
		return fmt.Errorf("%w %s: %w", poserrors.ErrDecode, collection, err)
	}
	return nil
}

// writeFile encodes records fully before touching the file system, then writes a
// temporary sibling, syncs it and renames it over the collection file.
func (s *FileStore) writeFile(collection string, records any) (err error) {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w %s: encode: %w", poserrors.ErrWrite, collection, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w %s: %w", poserrors.ErrWrite, collection, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		return fmt.Errorf("%w %s: %w", poserrors.ErrWrite, collection, err)
	}
	if err = tmp.Chmod(defaultPermission); err != nil {
		return fmt.Errorf("%w %s: %w", poserrors.ErrWrite, collection, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w %s: sync: %w", poserrors.ErrWrite, collection, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w %s: %w", poserrors.ErrWrite, collection, err)
	}
	if err = os.Rename(tmp.Name(), s.Path(collection)); err != nil {
		return fmt.Errorf("%w %s: rename: %w", poserrors.ErrWrite, collection, err)
	}
	if syncErr := syncDir(s.dir); syncErr != nil {
		s.logger.Warn("Failed to sync data directory", "dir", s.dir, "error", syncErr)
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

func validName(collection string) error {
	if collection == "" || strings.ContainsAny(collection, `/\`) || strings.HasPrefix(collection, ".") {
		return fmt.Errorf("%w: invalid collection name %q", poserrors.ErrValidation, collection)
	}
	return nil
}

// fileTx is the Tx handed to WithLock callbacks.
type fileTx struct {
	store      *FileStore
	collection string
}

func (t *fileTx) Read(out any) error {
	return t.store.readFile(t.collection, out)
}

func (t *fileTx) Write(records any) error {
	return t.store.writeFile(t.collection, records)
}
