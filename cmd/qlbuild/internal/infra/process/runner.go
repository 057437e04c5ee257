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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------
// Interface Definition
// -----------------------------------------------------------------------------

// Runner handles external process operations.
//
// This interface abstracts all interaction with the operating system's
// process management, enabling testable code that doesn't require real
// process execution.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use from multiple goroutines.
//
// # Context Handling
//
// All methods accept a context.Context for cancellation support.
// Long-running processes should respect context cancellation.
type Runner interface {
	// Run executes a command synchronously and returns its output.
	//
	// # Description
	//
	// Executes the specified command with arguments and waits for
	// completion. Returns the stdout output on success. On failure the
	// stderr text is folded into the returned error.
	//
	// # Inputs
	//
	//   - ctx: Context for cancellation
	//   - name: The executable name or path
	//   - args: Command arguments (variadic, passed as a discrete list)
	//
	// # Outputs
	//
	//   - []byte: Stdout output
	//   - error: Non-nil if the command fails or is cancelled
	//
	// # Example
	//
	//   output, err := r.Run(ctx, "codeql", "version")
	//   if err != nil {
	//       return fmt.Errorf("failed to query codeql: %w", err)
	//   }
	//
	// # Limitations
	//
	//   - Large output is buffered fully in memory
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunStreaming executes a command, forwarding output as it arrives.
	//
	// # Description
	//
	// Starts the command and pumps stdout and stderr concurrently into
	// the provided callbacks until the process exits. The exit code is
	// reported separately from spawn failures: a process that started
	// and exited nonzero yields (code, nil); a process that could not
	// be started (binary missing, permission denied) yields (-1, err).
	//
	// # Inputs
	//
	//   - ctx: Context for cancellation (kills the child on cancel)
	//   - onStdout: Receives stdout chunks as they arrive (may be nil)
	//   - onStderr: Receives stderr chunks as they arrive (may be nil)
	//   - name: The executable name or path
	//   - args: Command arguments (variadic, passed as a discrete list)
	//
	// # Outputs
	//
	//   - int: Exit code of the process (-1 if it never started)
	//   - error: Non-nil only when the process could not be run at all
	//
	// # Example
	//
	//   exit, err := r.RunStreaming(ctx, onChunk, tail.Write,
	//       "codeql", "database", "create", dbPath)
	//   if err != nil {
	//       return fmt.Errorf("failed to launch codeql: %w", err)
	//   }
	//   if exit != 0 {
	//       return fmt.Errorf("codeql exited with code %d", exit)
	//   }
	//
	// # Limitations
	//
	//   - Callbacks run on internal goroutines; they must be thread-safe
	//   - Chunk boundaries are arbitrary, not line-aligned
	//
	// # Assumptions
	//
	//   - Callbacks return promptly (slow callbacks stall the child's pipes)
	RunStreaming(ctx context.Context, onStdout, onStderr func([]byte), name string, args ...string) (int, error)
}

// -----------------------------------------------------------------------------
// Implementation
// -----------------------------------------------------------------------------

// DefaultRunner implements Runner using os/exec.
//
// This is the production implementation that executes real processes on
// the system. Use MockRunner in tests instead.
type DefaultRunner struct{}

// NewDefaultRunner creates a Runner that executes real processes.
func NewDefaultRunner() *DefaultRunner {
	return &DefaultRunner{}
}

// Run executes a command synchronously and returns its output.
func (r *DefaultRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Include stderr in error for debugging
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}

	return stdout.Bytes(), nil
}

// RunStreaming executes a command, forwarding output as it arrives.
func (r *DefaultRunner) RunStreaming(ctx context.Context, onStdout, onStderr func([]byte), name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("failed to start %s: %w", name, err)
	}

	g := new(errgroup.Group)
	g.Go(func() error { return pump(stdout, onStdout) })
	g.Go(func() error { return pump(stderr, onStderr) })

	// Drain both pipes before Wait closes them.
	pumpErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("waiting for %s: %w", name, err)
	}

	if pumpErr != nil {
		return cmd.ProcessState.ExitCode(), fmt.Errorf("reading %s output: %w", name, pumpErr)
	}

	return cmd.ProcessState.ExitCode(), nil
}

// pump copies chunks from rd into fn until EOF.
func pump(rd io.Reader, fn func([]byte)) error {
	buf := make([]byte, 4096)
	for {
		n, err := rd.Read(buf)
		if n > 0 && fn != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			fn(chunk)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// -----------------------------------------------------------------------------
// Mock Implementation for Testing
// -----------------------------------------------------------------------------

// MockRunner is a test double for Runner.
//
// Configure the mock by setting function fields before use. If a function
// field is nil and the corresponding method is called, it will panic.
//
// # Example
//
//	mock := &MockRunner{
//	    RunStreamingFunc: func(ctx context.Context, onStdout, onStderr func([]byte), name string, args ...string) (int, error) {
//	        onStderr([]byte("Scanning sources...\n"))
//	        return 0, nil
//	    },
//	}
type MockRunner struct {
	// RunFunc is called when Run is invoked
	RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunStreamingFunc is called when RunStreaming is invoked
	RunStreamingFunc func(ctx context.Context, onStdout, onStderr func([]byte), name string, args ...string) (int, error)

	// Calls records all method invocations for verification
	Calls []RunnerCall

	// mu protects Calls for concurrent access
	mu sync.Mutex
}

// RunnerCall records a single method invocation.
type RunnerCall struct {
	Method string
	Name   string
	Args   []string
}

// Run delegates to RunFunc and records the call.
func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.record("Run", name, args)
	if m.RunFunc == nil {
		panic("MockRunner.RunFunc not set")
	}
	return m.RunFunc(ctx, name, args...)
}

// RunStreaming delegates to RunStreamingFunc and records the call.
func (m *MockRunner) RunStreaming(ctx context.Context, onStdout, onStderr func([]byte), name string, args ...string) (int, error) {
	m.record("RunStreaming", name, args)
	if m.RunStreamingFunc == nil {
		panic("MockRunner.RunStreamingFunc not set")
	}
	return m.RunStreamingFunc(ctx, onStdout, onStderr, name, args...)
}

func (m *MockRunner) record(method, name string, args []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, RunnerCall{Method: method, Name: name, Args: args})
}

// Reset clears all recorded calls.
func (m *MockRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// GetCalls returns a copy of all recorded calls.
func (m *MockRunner) GetCalls() []RunnerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]RunnerCall, len(m.Calls))
	copy(result, m.Calls)
	return result
}

// Compile-time interface compliance check.
var (
	_ Runner = (*DefaultRunner)(nil)
	_ Runner = (*MockRunner)(nil)
)
