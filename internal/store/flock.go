package store

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// acquireMigrationLock takes an exclusive advisory flock on a sidecar
// file next to the database so concurrent processes serialize their
// migration runs. Blocks until the lock is free.
func acquireMigrationLock(dbPath string) (*os.File, error) {
	path := dbPath + ".migrate.lock"
	if dir := filepath.Dir(path); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // G304: path derived from trusted dbPath
	if err != nil {
		return nil, fmt.Errorf("open migration lock %s: %w", path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return f, nil
}

// releaseMigrationLock unlocks and closes the sidecar file. Nil-safe.
func releaseMigrationLock(f *os.File) {
	if f == nil {
		return
	}
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	_ = f.Close()
}
