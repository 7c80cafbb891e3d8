package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

// FileLock is a lock file created with O_EXCL next to the registry.
// A lock file older than ttl is treated as left behind by a crashed run
// and is taken over through an exclusive breaker file.
type FileLock struct {
	path   string
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	token string
}

var _ ports.RegistryLock = (*FileLock)(nil)

// NewFileLock builds a lock guarded by the file at path.
func NewFileLock(path string, ttl time.Duration, logger *slog.Logger) *FileLock {
	return &FileLock{path: path, ttl: ttl, logger: logger, now: time.Now}
}

// Acquire creates the lock file or fails with domain.ErrRegistryLocked.
func (l *FileLock) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	token := uuid.NewString()
	err := createExclusive(l.path, token)
	if errors.Is(err, fs.ErrExist) {
		taken, breakErr := l.breakStale(token)
		if breakErr != nil {
			return breakErr
		}
		if taken {
			err = nil
		}
	}
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", domain.ErrRegistryLocked, l.path)
	}
	if err != nil {
		return fmt.Errorf("create lock %s: %w", l.path, err)
	}

	l.token = token
	return nil
}

// Release removes the lock file if this instance still owns it.
func (l *FileLock) Release(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""

	raw, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read lock %s: %w", l.path, err)
	}
	if strings.TrimSpace(string(raw)) != token {
		l.warn("registry lock taken over by another run", "path", l.path)
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock %s: %w", l.path, err)
	}
	return nil
}

// breakStale replaces a lock file older than ttl. Only the run holding the
// breaker file may remove the lock, and it re-reads the lock under the
// breaker so a lock renewed by another run in between is left alone.
func (l *FileLock) breakStale(token string) (bool, error) {
	holder, ok := l.staleHolder(l.path)
	if !ok {
		return false, nil
	}

	breaker := l.path + ".break"
	err := createExclusive(breaker, token)
	if errors.Is(err, fs.ErrExist) {
		// a breaker left by a run that crashed mid-takeover
		if _, abandoned := l.staleHolder(breaker); !abandoned {
			return false, nil
		}
		if rmErr := os.Remove(breaker); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return false, fmt.Errorf("remove abandoned breaker: %w", rmErr)
		}
		err = createExclusive(breaker, token)
	}
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create breaker %s: %w", breaker, err)
	}
	defer os.Remove(breaker)

	current, ok := l.staleHolder(l.path)
	if !ok || current != holder {
		return false, nil
	}

	l.warn("removing stale registry lock", "path", l.path, "holder", holder)
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("remove stale lock: %w", err)
	}
	err = createExclusive(l.path, token)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create lock %s: %w", l.path, err)
	}
	return true, nil
}

// staleHolder returns the token stored in path when the file is older than ttl.
func (l *FileLock) staleHolder(path string) (string, bool) {
	if l.ttl <= 0 {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || l.now().Sub(info.ModTime()) <= l.ttl {
		return "", false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(raw)), true
}

func createExclusive(path, token string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(token + "\n"); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func (l *FileLock) warn(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}
