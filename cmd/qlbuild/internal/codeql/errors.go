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
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the codeql package. Callers check these with
// errors.Is rather than matching message text.
var (
	// ErrExternalTool indicates the CodeQL CLI itself failed: it could
	// not be spawned, or it exited nonzero.
	ErrExternalTool = errors.New("external tool failed")

	// ErrUnsupportedLanguage indicates a language the builder does not
	// know how to pass to the CLI.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// ToolError describes a failed CodeQL CLI invocation.
//
// Carries the command line, the exit code (-1 when the process never
// started), and the tail of the process's stderr so the user sees the
// actual compiler or extractor complaint, not just "exit status 2".
// Matches ErrExternalTool under errors.Is.
type ToolError struct {
	// Command is the argv that was executed.
	Command []string

	// ExitCode is the process exit status, or -1 if spawning failed.
	ExitCode int

	// Stderr is the captured tail of the process's stderr output.
	Stderr string

	// Wrapped is the underlying error, if any (spawn failures).
	Wrapped error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", strings.Join(e.Command, " "), e.ExitCode)
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s failed: %v", strings.Join(e.Command, " "), e.Wrapped)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	if e.Wrapped != nil {
		return e.Wrapped
	}
	return ErrExternalTool
}

// Is reports whether target matches this error. A ToolError always
// matches ErrExternalTool, even when it wraps a spawn error.
func (e *ToolError) Is(target error) bool {
	return target == ErrExternalTool
}
