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
	"errors"
	"fmt"
	"path/filepath"
)

// ErrInvalidPath indicates a path that failed sanitization.
//
// Returned (wrapped) by SanitizePath for empty, relative, or
// non-canonical inputs. Check with errors.Is.
var ErrInvalidPath = errors.New("invalid path")

// SanitizePath validates a filesystem path before it is handed to any
// subprocess or deletion pass.
//
// # Description
//
// A path is accepted only when it is absolute and already in canonical
// form, meaning filepath.Clean would return it unchanged. Relative
// paths, paths with "." or ".." segments, duplicate separators, or
// trailing slashes are all rejected rather than repaired. Repairing
// would mask caller bugs; every path that reaches the builder or the
// reaper must already be exact.
//
// # Inputs
//
//   - path: The candidate path
//
// # Outputs
//
//   - string: The validated path, unchanged
//   - error: nil on success, wraps ErrInvalidPath otherwise
//
// # Example
//
//	root, err := workspace.SanitizePath("/home/alice/proj")
//	if errors.Is(err, workspace.ErrInvalidPath) { ... }
func SanitizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path is empty", ErrInvalidPath)
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, path)
	}
	if cleaned := filepath.Clean(path); cleaned != path {
		return "", fmt.Errorf("%w: %q is not canonical (did you mean %q?)",
			ErrInvalidPath, path, cleaned)
	}
	return path, nil
}
