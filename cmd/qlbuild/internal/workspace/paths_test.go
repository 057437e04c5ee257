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
	"testing"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "absolute canonical", path: "/home/alice/proj", wantErr: false},
		{name: "root", path: "/", wantErr: false},
		{name: "empty", path: "", wantErr: true},
		{name: "relative", path: "proj", wantErr: true},
		{name: "relative with dot", path: "./proj", wantErr: true},
		{name: "parent traversal", path: "/home/alice/../bob", wantErr: true},
		{name: "embedded dot segment", path: "/home/./alice", wantErr: true},
		{name: "duplicate separators", path: "/home//alice", wantErr: true},
		{name: "trailing slash", path: "/home/alice/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(tt.path)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("SanitizePath(%q) succeeded, want error", tt.path)
				}
				if !errors.Is(err, ErrInvalidPath) {
					t.Errorf("error %v does not wrap ErrInvalidPath", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("SanitizePath(%q) failed: %v", tt.path, err)
			}
			if got != tt.path {
				t.Errorf("SanitizePath(%q) = %q, want input unchanged", tt.path, got)
			}
		})
	}
}
