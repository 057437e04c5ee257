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
	"strings"
	"testing"
)

func TestToolError_Message(t *testing.T) {
	err := &ToolError{
		Command:  []string{"codeql", "database", "create"},
		ExitCode: 2,
		Stderr:   "no extractor found",
	}

	msg := err.Error()
	if !strings.Contains(msg, "codeql database create") {
		t.Errorf("message %q missing command", msg)
	}
	if !strings.Contains(msg, "code 2") {
		t.Errorf("message %q missing exit code", msg)
	}
	if !strings.Contains(msg, "no extractor found") {
		t.Errorf("message %q missing stderr", msg)
	}
}

func TestToolError_SpawnMessage(t *testing.T) {
	err := &ToolError{
		Command:  []string{"codeql"},
		ExitCode: -1,
		Wrapped:  errors.New("executable file not found"),
	}

	if !strings.Contains(err.Error(), "executable file not found") {
		t.Errorf("message %q missing wrapped error", err.Error())
	}
}

func TestToolError_Matching(t *testing.T) {
	spawn := errors.New("spawn failed")
	tests := []struct {
		name string
		err  *ToolError
	}{
		{name: "exit", err: &ToolError{Command: []string{"codeql"}, ExitCode: 2}},
		{name: "spawn", err: &ToolError{Command: []string{"codeql"}, ExitCode: -1, Wrapped: spawn}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrExternalTool) {
				t.Error("ToolError does not match ErrExternalTool")
			}
			var toolErr *ToolError
			if !errors.As(tt.err, &toolErr) {
				t.Error("errors.As failed to extract *ToolError")
			}
		})
	}
	if !errors.Is(tests[1].err, spawn) {
		t.Error("spawn ToolError does not match its wrapped error")
	}
}
