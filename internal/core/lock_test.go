package core

import (
	"path/filepath"
	"testing"
	"time"

	"epubfix/internal/errors"
)

func TestAcquireExclusive(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	lock, err := AcquireExclusive(lockPath, 1*time.Second)
	if err != nil {
		t.Fatalf("AcquireExclusive() error = %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
}

func TestAcquireExclusive_Conflict(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	first, err := AcquireExclusive(lockPath, 1*time.Second)
	if err != nil {
		t.Fatalf("first AcquireExclusive() error = %v", err)
	}
	defer first.Release()

	start := time.Now()
	_, err = AcquireExclusive(lockPath, 300*time.Millisecond)
	if !errors.Is(err, errors.CodeLocked) {
		t.Fatalf("error code = %q, want %q", errors.Code(err), errors.CodeLocked)
	}
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Errorf("gave up after %v, before the timeout elapsed", elapsed)
	}
}

func TestAcquireExclusive_AfterRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	first, err := AcquireExclusive(lockPath, 1*time.Second)
	if err != nil {
		t.Fatalf("first AcquireExclusive() error = %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	second, err := AcquireExclusive(lockPath, 1*time.Second)
	if err != nil {
		t.Fatalf("second AcquireExclusive() error = %v", err)
	}
	second.Release()
}

func TestLock_DoubleRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	lock, err := AcquireExclusive(lockPath, 1*time.Second)
	if err != nil {
		t.Fatalf("AcquireExclusive() error = %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := lock.Release(); err == nil {
		t.Error("second Release() did not fail")
	}
}
