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
	"testing"
)

// TestTailBuffer_UnderLimit verifies small writes are retained verbatim.
func TestTailBuffer_UnderLimit(t *testing.T) {
	b := NewTailBuffer(100)
	b.Write([]byte("error: no build command\n"))

	if got := b.String(); got != "error: no build command" {
		t.Errorf("String() = %q", got)
	}
}

// TestTailBuffer_DiscardsOldest verifies only the tail survives.
func TestTailBuffer_DiscardsOldest(t *testing.T) {
	b := NewTailBuffer(10)
	b.Write([]byte("aaaaaaaaaa"))
	b.Write([]byte("bbbbb"))

	got := b.String()
	if !strings.HasSuffix(got, "bbbbb") {
		t.Errorf("String() = %q, want suffix %q", got, "bbbbb")
	}
	if !strings.HasPrefix(got, "...") {
		t.Errorf("String() = %q, want truncation prefix", got)
	}
	if b.Len() != 10 {
		t.Errorf("Len() = %d, want 10", b.Len())
	}
}

// TestTailBuffer_OversizedChunk verifies a single huge write keeps its tail.
func TestTailBuffer_OversizedChunk(t *testing.T) {
	b := NewTailBuffer(5)
	b.Write([]byte("0123456789"))

	if got := b.String(); got != "...56789" {
		t.Errorf("String() = %q, want %q", got, "...56789")
	}
}

// TestTailBuffer_Empty verifies the empty buffer renders as "".
func TestTailBuffer_Empty(t *testing.T) {
	b := NewTailBuffer(10)
	if got := b.String(); got != "" {
		t.Errorf("String() = %q, want empty", got)
	}
}

// TestTailBuffer_WhitespaceOnly verifies whitespace collapses to empty.
func TestTailBuffer_WhitespaceOnly(t *testing.T) {
	b := NewTailBuffer(10)
	b.Write([]byte("  \n\t "))
	if got := b.String(); got != "" {
		t.Errorf("String() = %q, want empty", got)
	}
}

// TestTailBuffer_ZeroMax verifies the fallback capacity.
func TestTailBuffer_ZeroMax(t *testing.T) {
	b := NewTailBuffer(0)
	b.Write([]byte("content"))
	if got := b.String(); got != "content" {
		t.Errorf("String() = %q, want %q", got, "content")
	}
}
