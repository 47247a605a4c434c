package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/mergington/signupboard/internal/utils"
)

const (
	lockFileSuffix = ".lock"
)

// storeLock manages a file-based lock for the session database.
type storeLock struct {
	lock *flock.Flock
	path string
}

func newStoreLock(dbPath string) *storeLock {
	lockPath := dbPath + lockFileSuffix
	return &storeLock{
		lock: flock.New(lockPath),
		path: lockPath,
	}
}

// Lock acquires the lock, waiting if another signupboard process holds it.
func (l *storeLock) Lock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}

	if !locked {
		utils.Log.Info("Another signupboard process is writing the session, waiting for it to finish...")
		if err := l.lock.Lock(); err != nil {
			return fmt.Errorf("failed to acquire lock on %s after waiting: %w", l.path, err)
		}
	}
	return nil
}

// Unlock releases the lock.
func (l *storeLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		// Suppress error if the lock file doesn't exist, as it means we don't hold the lock.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// DefaultPath returns ~/.config/signupboard/session.sqlite.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "signupboard", "session.sqlite"), nil
}

// AbsPath resolves path, expanding a leading ~. Empty means DefaultPath.
func AbsPath(path string) (string, error) {
	if path == "" {
		return DefaultPath()
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}
