// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package util

import (
	"strings"
	"sync"
)

// TailBuffer retains the last N bytes written to it.
//
// # Description
//
// A bounded buffer for capturing the tail of a child process's stderr
// while the full stream is forwarded elsewhere. When a build fails, the
// tail is attached to the error so the user sees why without qlbuild
// holding unbounded output in memory.
//
// # Thread Safety
//
// Safe for concurrent use; writes may come from a stream-pumping
// goroutine while the owner reads the tail after process exit.
//
// # Example
//
//	tail := NewTailBuffer(64 * 1024)
//	runner.RunStreaming(ctx, nil, tail.Write, "codeql", args...)
//	if exit != 0 {
//	    return &ToolError{Stderr: tail.String()}
//	}
type TailBuffer struct {
	max  int
	data []byte
	// truncated is set once earlier bytes have been discarded.
	truncated bool
	mu        sync.Mutex
}

// NewTailBuffer creates a TailBuffer retaining at most max bytes.
//
// A non-positive max falls back to 4096.
func NewTailBuffer(max int) *TailBuffer {
	if max <= 0 {
		max = 4096
	}
	return &TailBuffer{max: max}
}

// Write appends p, discarding the oldest bytes beyond the limit.
func (b *TailBuffer) Write(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(p) >= b.max {
		// Incoming chunk alone fills the window.
		if len(p) > b.max || len(b.data) > 0 {
			b.truncated = true
		}
		b.data = append(b.data[:0], p[len(p)-b.max:]...)
		return
	}

	b.data = append(b.data, p...)
	if over := len(b.data) - b.max; over > 0 {
		b.data = b.data[over:]
		b.truncated = true
	}
}

// String returns the retained tail, trimmed of surrounding whitespace.
//
// When earlier output was discarded the result is prefixed with "..."
// so readers know they are looking at a tail.
func (b *TailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := strings.TrimSpace(string(b.data))
	if s == "" {
		return ""
	}
	if b.truncated {
		return "..." + s
	}
	return s
}

// Len returns the number of retained bytes.
func (b *TailBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
