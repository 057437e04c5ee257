// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package codeql drives the external CodeQL CLI to create analysis
// databases and registers the result with the host environment.
//
// The Builder owns the full build workflow: clear stale databases out
// of the source root, pick a fresh timestamped database path, run
// `codeql database create` with streamed output, and map the exit
// status into a ToolError carrying the stderr tail. The Registrar
// tells the surrounding tooling which database is now current.
package codeql
