// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
Package process provides abstractions for external process execution and
inter-process synchronization.

# Overview

This package contains two main components:

  - Runner: abstracts external process execution for testability
  - BuildLock: file-based locking to serialize builds per source root

# Runner

Runner enables testable interaction with the operating system's process
management capabilities. All exec.Command calls should go through this
interface to enable mocking in unit tests. Commands are always passed as
a discrete argument list, never a shell string, so user-supplied fields
(paths, build commands) cannot inject through shell metacharacters.

	r := process.NewDefaultRunner()
	output, err := r.Run(ctx, "codeql", "version")
	if err != nil {
	    return fmt.Errorf("failed to query codeql version: %w", err)
	}

For long-running commands, RunStreaming forwards stdout and stderr chunks
to callbacks as they arrive and reports the final exit code separately
from spawn failures.

For testing, use MockRunner:

	mock := &process.MockRunner{
	    RunStreamingFunc: func(ctx context.Context, onStdout, onStderr func([]byte), name string, args ...string) (int, error) {
	        return 0, nil
	    },
	}

# BuildLock

BuildLock prevents two builds of the same source root from running
simultaneously, avoiding races on the stale-database cleanup pass and on
timestamp-based database naming. Uses flock(2) for advisory file locking;
lock files live under the qlbuild config directory, keyed by a hash of
the source root, so nothing is written into the user's project.

	lock := process.NewBuildLock(lockDir, sourceRoot)
	if err := lock.Acquire(); err != nil {
	    fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	    os.Exit(1)
	}
	defer lock.Release()

# Thread Safety

  - Runner implementations are safe for concurrent use
  - BuildLock is NOT safe for concurrent use from multiple goroutines

# Limitations

  - BuildLock uses advisory locks - other processes can ignore if not checking
  - BuildLock requires OS support for flock(2)
*/
package process
