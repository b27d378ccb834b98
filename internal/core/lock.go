package core

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"epubfix/internal/errors"
)

// Lock represents a file-based lock using flock. A run holds one on the
// output directory so two concurrent runs cannot race on the same
// temp-and-rename targets.
type Lock struct {
	file *os.File
	path string
}

// AcquireExclusive acquires an exclusive lock on the given path.
// Blocks until the lock is acquired or timeout is reached.
func AcquireExclusive(path string, timeout time.Duration) (*Lock, error) {
	// Open or create the lock file
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	// Try to acquire the lock with timeout
	deadline := time.Now().Add(timeout)
	for {
		// Non-blocking attempt first
		err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return &Lock{
				file: file,
				path: path,
			}, nil
		}

		if time.Now().After(deadline) {
			file.Close()
			return nil, errors.Locked(path)
		}

		time.Sleep(100 * time.Millisecond)
	}
}

// Release releases the lock and closes the file.
func (l *Lock) Release() error {
	if l.file == nil {
		return fmt.Errorf("lock already released")
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("failed to unlock file: %w", err)
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close lock file: %w", err)
	}

	l.file = nil
	return nil
}
