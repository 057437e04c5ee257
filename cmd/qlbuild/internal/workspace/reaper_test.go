// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/util"
	"github.com/AleutianAI/qlbuild/pkg/logging"
)

func testReaper() *Reaper {
	return &Reaper{
		Prefix: "sample_",
		Logger: logging.New(logging.Config{Level: logging.LevelError}),
	}
}

// mkdirAll is a test helper that fails the test on error.
func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0750); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path, err)
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0640); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func TestCleanupStale_RemovesOnlyPrefixedDirs(t *testing.T) {
	root := t.TempDir()

	// Stale databases, one nested several levels deep.
	mkdirAll(t, filepath.Join(root, "sample_1000", "src", "pack"))
	writeFile(t, filepath.Join(root, "sample_1000", "db.bin"))
	writeFile(t, filepath.Join(root, "sample_1000", "src", "pack", "index.bin"))
	mkdirAll(t, filepath.Join(root, "sample_2000"))

	// Survivors: unrelated dir, ordinary file, and a FILE named with the prefix.
	mkdirAll(t, filepath.Join(root, "other"))
	writeFile(t, filepath.Join(root, "README.md"))
	writeFile(t, filepath.Join(root, "sample_notes.txt"))

	if err := testReaper().CleanupStale(context.Background(), root, nil); err != nil {
		t.Fatalf("CleanupStale failed: %v", err)
	}

	for _, gone := range []string{"sample_1000", "sample_2000"} {
		if _, err := os.Stat(filepath.Join(root, gone)); !os.IsNotExist(err) {
			t.Errorf("stale directory %s still exists", gone)
		}
	}
	for _, kept := range []string{"other", "README.md", "sample_notes.txt"} {
		if _, err := os.Stat(filepath.Join(root, kept)); err != nil {
			t.Errorf("non-stale entry %s was removed: %v", kept, err)
		}
	}
}

func TestCleanupStale_EmptyRoot(t *testing.T) {
	root := t.TempDir()
	rec := &util.RecordingReporter{}

	if err := testReaper().CleanupStale(context.Background(), root, rec); err != nil {
		t.Fatalf("CleanupStale failed: %v", err)
	}

	events := rec.Events()
	if len(events) != 2 || events[0].Kind != "begin" || events[1].Kind != "done" {
		t.Errorf("events = %+v, want only begin and done", events)
	}
}

func TestCleanupStale_ProgressCoversEveryChild(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, "sample_1"))
	mkdirAll(t, filepath.Join(root, "keep"))
	writeFile(t, filepath.Join(root, "file.txt"))
	writeFile(t, filepath.Join(root, "sample_2"))

	rec := &util.RecordingReporter{}
	if err := testReaper().CleanupStale(context.Background(), root, rec); err != nil {
		t.Fatalf("CleanupStale failed: %v", err)
	}

	var updates []float64
	for _, ev := range rec.Events() {
		if ev.Kind == "update" {
			updates = append(updates, ev.Value)
		}
	}
	// Skipped children still advance progress.
	if len(updates) != 4 {
		t.Fatalf("got %d updates, want 4: %v", len(updates), updates)
	}
	if updates[len(updates)-1] != 1.0 {
		t.Errorf("final update = %v, want 1.0", updates[len(updates)-1])
	}
	for i := 1; i < len(updates); i++ {
		if updates[i] < updates[i-1] {
			t.Errorf("progress regressed: %v", updates)
		}
	}
}

func TestCleanupStale_MissingRootIsNonFatal(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	if err := testReaper().CleanupStale(context.Background(), root, nil); err != nil {
		t.Errorf("CleanupStale on missing root returned %v, want nil", err)
	}
}

func TestCleanupStale_CancelledContext(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, "sample_1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := testReaper().CleanupStale(ctx, root, nil); err == nil {
		t.Error("CleanupStale with cancelled context returned nil, want error")
	}
	if _, err := os.Stat(filepath.Join(root, "sample_1")); err != nil {
		t.Error("cancelled cleanup still deleted entries")
	}
}

func TestRemoveTree_PostOrder(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "tree")
	mkdirAll(t, filepath.Join(target, "a", "b", "c"))
	writeFile(t, filepath.Join(target, "top.txt"))
	writeFile(t, filepath.Join(target, "a", "b", "deep.txt"))

	if err := removeTree(target); err != nil {
		t.Fatalf("removeTree failed: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("tree root still exists after removeTree")
	}
}

func TestRemoveTree_VanishedPath(t *testing.T) {
	if err := removeTree(filepath.Join(t.TempDir(), "gone")); err != nil {
		t.Errorf("removeTree on missing path returned %v, want nil", err)
	}
}

func TestCleanupStale_RejectsInvalidRoot(t *testing.T) {
	tests := []string{"", "relative/path", "/a/../b"}
	for _, root := range tests {
		err := testReaper().CleanupStale(context.Background(), root, nil)
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("CleanupStale(%q) error = %v, want ErrInvalidPath", root, err)
		}
	}
}
