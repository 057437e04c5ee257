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
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/util"
	"github.com/AleutianAI/qlbuild/pkg/logging"
)

// Reaper deletes previously generated database directories from a
// source root.
//
// # Description
//
// A database build leaves a directory named {Prefix}<timestamp>
// directly under the source root. Before each new build every
// directory matching that prefix is stale and gets removed. Deletion
// is deliberately cautious: only the reaper's own naming pattern is
// touched, everything else under the root is left alone, and failures
// are logged rather than propagated so a permissions hiccup never
// blocks a fresh build.
//
// # Example
//
//	reaper := &Reaper{Prefix: "sample_", Logger: log}
//	_ = reaper.CleanupStale(ctx, "/home/alice/proj", reporter)
type Reaper struct {
	// Prefix is the directory-name prefix that marks a generated
	// database. Must be non-empty; an empty prefix would match every
	// child of the source root.
	Prefix string

	// Logger receives cleanup diagnostics. Required.
	Logger *logging.Logger
}

// CleanupStale removes every stale database directory under sourceRoot.
//
// # Description
//
// Lists the immediate children of sourceRoot and deletes, depth-first,
// each directory whose name starts with the reaper's prefix. Non-stale
// children are skipped but still advance progress, so the reporter
// moves through processed/total of the root's children. Errors are
// advisory: a failure to list the root, or to delete one stale
// directory, is logged and cleanup continues (or ends) without
// reporting failure to the caller. The next build will retry.
//
// # Inputs
//
//   - ctx: Cancels the traversal between children
//   - sourceRoot: Sanitized absolute path to clean
//   - progress: Receives Begin/Update/Done events. May be nil.
//
// # Outputs
//
//   - error: ErrInvalidPath for a bad root, or ctx.Err() when
//     cancelled; filesystem errors are swallowed after logging
func (r *Reaper) CleanupStale(ctx context.Context, sourceRoot string, progress util.Reporter) error {
	if _, err := SanitizePath(sourceRoot); err != nil {
		return err
	}

	if progress == nil {
		progress = util.NopReporter{}
	}
	progress.Begin("Cleaning stale databases")
	defer progress.Done()

	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		r.Logger.Warn("failed to list source root for cleanup",
			"source_root", sourceRoot, "error", err)
		return nil
	}

	total := len(entries)
	if total == 0 {
		return nil
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() && r.Prefix != "" && strings.HasPrefix(entry.Name(), r.Prefix) {
			stale := filepath.Join(sourceRoot, entry.Name())
			r.Logger.Debug("removing stale database", "path", stale)
			if err := removeTree(stale); err != nil {
				r.Logger.Warn("failed to remove stale database",
					"path", stale, "error", err)
			}
		}

		progress.Update(float64(i+1) / float64(total))
	}

	return nil
}

// removeTree deletes path and everything under it, post-order.
//
// Files are deleted on the way down, directories on the way back up
// once emptied. A vanished file is treated as already deleted; any
// other error aborts this subtree and is reported to the caller.
func removeTree(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := removeTree(filepath.Join(path, entry.Name())); err != nil {
				return err
			}
		}
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
