// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package process

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// BuildLocker defines the interface for per-source-root build locking.
//
// # Description
//
// BuildLocker serializes build workflows targeting the same source root.
// Two concurrent builds of one root would race on the stale-database
// cleanup pass and could collide on timestamp-based database names; the
// lock turns that race into a fast, explicit failure.
//
// # Thread Safety
//
// Implementations must be safe for use from a single goroutine. The lock
// itself provides inter-process synchronization, not intra-process.
type BuildLocker interface {
	// Acquire attempts to get an exclusive lock.
	// Returns nil if lock acquired, error otherwise.
	Acquire() error

	// Release releases the lock if held.
	// Safe to call multiple times or if lock was never acquired.
	Release() error

	// IsHeld returns true if this instance currently holds the lock.
	IsHeld() bool

	// HolderPID returns the PID of the process holding the lock.
	// Returns 0 if no process holds the lock or if unable to determine.
	HolderPID() int
}

// BuildLock implements BuildLocker using file-based locking.
//
// # Description
//
// Uses flock(2) for advisory file locking. Lock files are keyed by a
// hash of the source root and live under the qlbuild config directory,
// never inside the user's project:
//
//	{lockDir}/{sha256(sourceRoot)[:16]}.lock
//
// # How It Works
//
//  1. Creates the lock file for the source root's key
//  2. Attempts a non-blocking exclusive flock on it
//  3. Writes PID to a sibling .pid file for debugging
//  4. On release, removes the PID file and releases the flock
//
// # Limitations
//
//   - Advisory lock only - other processes can ignore it if they don't check
//   - NFS and some network filesystems don't support flock properly
//   - Lock survives if process crashes without calling Release (OS releases flock)
//
// # Assumptions
//
//   - lockDir is creatable and writable
//   - OS supports flock(2)
//
// # Example
//
//	lock := NewBuildLock(lockDir, sourceRoot)
//	if err := lock.Acquire(); err != nil {
//	    fmt.Fprintf(os.Stderr, "Error: %v\n", err)
//	    os.Exit(1)
//	}
//	defer lock.Release()
type BuildLock struct {
	sourceRoot string
	lockPath   string
	pidPath    string
	lockFile   *os.File
	held       bool
}

// NewBuildLock creates a lock for builds of the given source root.
//
// # Description
//
// Creates a BuildLock whose file lives under lockDir, keyed by a hash
// of sourceRoot. Does not acquire the lock. An empty lockDir falls back
// to the system temp directory.
//
// # Inputs
//
//   - lockDir: Directory for lock files (created on Acquire)
//   - sourceRoot: The sanitized source root being built
//
// # Outputs
//
//   - *BuildLock: New lock instance (not yet acquired)
func NewBuildLock(lockDir, sourceRoot string) *BuildLock {
	if lockDir == "" {
		lockDir = os.TempDir()
	}

	sum := sha256.Sum256([]byte(sourceRoot))
	key := hex.EncodeToString(sum[:])[:16]

	return &BuildLock{
		sourceRoot: sourceRoot,
		lockPath:   filepath.Join(lockDir, key+".lock"),
		pidPath:    filepath.Join(lockDir, key+".pid"),
	}
}

// Acquire attempts to get an exclusive lock.
//
// # Description
//
// Uses a non-blocking flock to try to acquire the lock. If another
// process is building this source root, returns immediately with an
// error containing the holder's PID (if available).
//
// # Outputs
//
//   - error: nil if lock acquired, descriptive error otherwise
//
// # Error Conditions
//
//   - Another build of this source root is running (returns holder PID)
//   - Cannot create lock file (permission denied, disk full)
//   - Cannot acquire flock (system error)
func (l *BuildLock) Acquire() error {
	if l.held {
		return nil // Already held
	}

	if err := os.MkdirAll(filepath.Dir(l.lockPath), 0750); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to create lock file %s: %w", l.lockPath, err)
	}

	// Try non-blocking exclusive lock
	err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		f.Close()

		if err == syscall.EWOULDBLOCK {
			holderPID := l.readHolderPID()
			if holderPID > 0 {
				return fmt.Errorf("another build of %s is already running (PID %d). "+
					"If this is stale, remove %s", l.sourceRoot, holderPID, l.pidPath)
			}
			return fmt.Errorf("another build of %s is already running. "+
				"Check: lsof %s", l.sourceRoot, l.lockPath)
		}

		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	l.lockFile = f
	l.held = true

	// Write our PID for debugging; non-fatal if it fails, lock is held.
	_ = l.writePID()

	return nil
}

// Release releases the lock if held.
//
// # Description
//
// Removes the PID file and releases the flock. Safe to call multiple
// times or if the lock was never acquired.
func (l *BuildLock) Release() error {
	if !l.held || l.lockFile == nil {
		return nil
	}

	// Remove PID file first
	os.Remove(l.pidPath)

	// Release flock
	err := syscall.Flock(int(l.lockFile.Fd()), syscall.LOCK_UN)

	// Close file (also releases lock if flock failed)
	l.lockFile.Close()
	l.lockFile = nil
	l.held = false

	// Lock file is left in place for faster subsequent acquires.

	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return nil
}

// IsHeld returns true if this instance currently holds the lock.
//
// Checks local state only - does not verify the flock is still valid.
func (l *BuildLock) IsHeld() bool {
	return l.held
}

// HolderPID returns the PID of the process holding the lock.
//
// Reads the PID file to determine which process holds the lock.
// Returns 0 if no PID file exists or if unable to read it. May return
// a stale PID if the holder crashed without cleanup.
func (l *BuildLock) HolderPID() int {
	return l.readHolderPID()
}

// LockPath returns the path to the lock file.
//
// Useful for error messages and debugging.
func (l *BuildLock) LockPath() string {
	return l.lockPath
}

// writePID writes the current process PID to the PID file.
func (l *BuildLock) writePID() error {
	content := fmt.Sprintf("%d\n", os.Getpid())
	return os.WriteFile(l.pidPath, []byte(content), 0644)
}

// readHolderPID reads the PID from the PID file.
func (l *BuildLock) readHolderPID() int {
	data, err := os.ReadFile(l.pidPath)
	if err != nil {
		return 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}

	return pid
}

// Compile-time interface satisfaction check
var _ BuildLocker = (*BuildLock)(nil)
