// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workspace handles the filesystem side of database builds.
//
// It validates user-supplied source roots before any process is spawned
// (SanitizePath) and clears previously generated database directories
// out of a source root before a new one is created (Reaper). Both run
// on paths the user typed or picked, so validation is strict: only
// absolute, already-canonical paths pass.
package workspace
