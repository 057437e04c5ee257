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
	"sort"
	"strconv"
	"strings"
	"time"
)

// DatabaseInfo describes one generated database under a source root.
type DatabaseInfo struct {
	// Path is the absolute database directory path.
	Path string

	// CreatedAt is the creation time parsed from the directory name.
	// Zero when the suffix is not a millisecond timestamp.
	CreatedAt time.Time
}

// ListDatabases returns the generated databases under sourceRoot,
// newest first.
//
// # Description
//
// A read-only companion to the build workflow: finds the immediate
// child directories whose names carry the database prefix, without
// touching anything. Directory names that match the prefix but do not
// end in a millisecond timestamp are still listed, with a zero
// CreatedAt.
//
// # Inputs
//
//   - sourceRoot: Directory to inspect
//   - prefix: Database directory prefix (e.g. "sample_")
//
// # Outputs
//
//   - []DatabaseInfo: Matching directories, newest first
//   - error: Failure to read sourceRoot
func ListDatabases(sourceRoot, prefix string) ([]DatabaseInfo, error) {
	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return nil, err
	}

	var dbs []DatabaseInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info := DatabaseInfo{Path: filepath.Join(sourceRoot, entry.Name())}
		suffix := strings.TrimPrefix(entry.Name(), prefix)
		if millis, err := strconv.ParseInt(suffix, 10, 64); err == nil {
			info.CreatedAt = time.UnixMilli(millis)
		}
		dbs = append(dbs, info)
	}

	sort.Slice(dbs, func(i, j int) bool {
		if !dbs[i].CreatedAt.Equal(dbs[j].CreatedAt) {
			return dbs[i].CreatedAt.After(dbs[j].CreatedAt)
		}
		return dbs[i].Path > dbs[j].Path
	})

	return dbs, nil
}
