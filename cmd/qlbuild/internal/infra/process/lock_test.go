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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewBuildLock_KeysOnSourceRoot(t *testing.T) {
	dir := t.TempDir()

	a := NewBuildLock(dir, "/home/alice/proj")
	b := NewBuildLock(dir, "/home/alice/proj")
	c := NewBuildLock(dir, "/home/alice/other")

	if a.LockPath() != b.LockPath() {
		t.Errorf("same source root produced different lock paths: %s vs %s",
			a.LockPath(), b.LockPath())
	}
	if a.LockPath() == c.LockPath() {
		t.Errorf("different source roots produced the same lock path: %s", a.LockPath())
	}
	if filepath.Dir(a.LockPath()) != dir {
		t.Errorf("lock path %s not under lock dir %s", a.LockPath(), dir)
	}
}

func TestBuildLock_AcquireRelease(t *testing.T) {
	dir := t.TempDir()
	lock := NewBuildLock(dir, "/tmp/proj")

	if lock.IsHeld() {
		t.Error("new lock reports held before Acquire")
	}

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !lock.IsHeld() {
		t.Error("lock not reported held after Acquire")
	}
	if got := lock.HolderPID(); got != os.Getpid() {
		t.Errorf("HolderPID = %d, want %d", got, os.Getpid())
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if lock.IsHeld() {
		t.Error("lock still reported held after Release")
	}
}

func TestBuildLock_AcquireIdempotent(t *testing.T) {
	dir := t.TempDir()
	lock := NewBuildLock(dir, "/tmp/proj")

	if err := lock.Acquire(); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer lock.Release()

	if err := lock.Acquire(); err != nil {
		t.Errorf("second Acquire on held lock failed: %v", err)
	}
}

func TestBuildLock_SecondHolderFailsFast(t *testing.T) {
	dir := t.TempDir()
	first := NewBuildLock(dir, "/tmp/proj")
	second := NewBuildLock(dir, "/tmp/proj")

	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer first.Release()

	err := second.Acquire()
	if err == nil {
		second.Release()
		t.Fatal("second Acquire on held lock succeeded, want error")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Errorf("error %q does not mention a running build", err)
	}
	if second.IsHeld() {
		t.Error("failed Acquire left lock marked held")
	}
}

func TestBuildLock_DifferentRootsDoNotConflict(t *testing.T) {
	dir := t.TempDir()
	a := NewBuildLock(dir, "/tmp/proj-a")
	b := NewBuildLock(dir, "/tmp/proj-b")

	if err := a.Acquire(); err != nil {
		t.Fatalf("Acquire a failed: %v", err)
	}
	defer a.Release()

	if err := b.Acquire(); err != nil {
		t.Errorf("Acquire for unrelated root failed: %v", err)
	}
	b.Release()
}

func TestBuildLock_ReleaseWithoutAcquire(t *testing.T) {
	lock := NewBuildLock(t.TempDir(), "/tmp/proj")

	if err := lock.Release(); err != nil {
		t.Errorf("Release on never-acquired lock failed: %v", err)
	}
}

func TestBuildLock_ReacquireAfterRelease(t *testing.T) {
	dir := t.TempDir()
	lock := NewBuildLock(dir, "/tmp/proj")

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	other := NewBuildLock(dir, "/tmp/proj")
	if err := other.Acquire(); err != nil {
		t.Errorf("Acquire after prior holder released failed: %v", err)
	}
	other.Release()
}
