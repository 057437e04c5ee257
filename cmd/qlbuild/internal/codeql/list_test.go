// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package codeql

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestListDatabases(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"sample_1000", "sample_2000", "other", "sample_custom"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0750); err != nil {
			t.Fatal(err)
		}
	}
	// Prefixed FILE is not a database.
	if err := os.WriteFile(filepath.Join(root, "sample_3000"), []byte("x"), 0640); err != nil {
		t.Fatal(err)
	}

	dbs, err := ListDatabases(root, "sample_")
	if err != nil {
		t.Fatalf("ListDatabases failed: %v", err)
	}
	if len(dbs) != 3 {
		t.Fatalf("got %d databases, want 3: %+v", len(dbs), dbs)
	}

	// Newest first; the unparseable name sorts last with zero time.
	if filepath.Base(dbs[0].Path) != "sample_2000" {
		t.Errorf("first entry = %s, want sample_2000", dbs[0].Path)
	}
	if filepath.Base(dbs[1].Path) != "sample_1000" {
		t.Errorf("second entry = %s, want sample_1000", dbs[1].Path)
	}
	if filepath.Base(dbs[2].Path) != "sample_custom" {
		t.Errorf("third entry = %s, want sample_custom", dbs[2].Path)
	}

	if want := time.UnixMilli(2000); !dbs[0].CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", dbs[0].CreatedAt, want)
	}
	if !dbs[2].CreatedAt.IsZero() {
		t.Errorf("unparseable suffix should have zero CreatedAt, got %v", dbs[2].CreatedAt)
	}
}

func TestListDatabases_MissingRoot(t *testing.T) {
	_, err := ListDatabases(filepath.Join(t.TempDir(), "gone"), "sample_")
	if err == nil {
		t.Error("ListDatabases on missing root succeeded, want error")
	}
}

func TestListDatabases_Empty(t *testing.T) {
	dbs, err := ListDatabases(t.TempDir(), "sample_")
	if err != nil {
		t.Fatalf("ListDatabases failed: %v", err)
	}
	if len(dbs) != 0 {
		t.Errorf("got %d databases, want 0", len(dbs))
	}
}
