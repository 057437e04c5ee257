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
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"

	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/infra/process"
	"github.com/AleutianAI/qlbuild/pkg/logging"
)

// Registrar makes a freshly built database the current one in the
// host environment.
type Registrar interface {
	// RegisterCurrent registers dbPath as the active database.
	RegisterCurrent(ctx context.Context, dbPath string) error
}

// HostRegistrar registers databases by invoking a configured host
// command with the database's file:// URI appended as the final
// argument.
//
// # Description
//
// Editors and analysis frontends differ in how they are told about a
// new database, so the hook is configuration: for VS Code with the
// CodeQL extension, for example,
//
//	register_command: ["code", "--open-url"]
//
// When no command is configured the registrar prints the database
// path to Out so the user can load it by hand. That is a successful
// registration, not an error.
//
// # Thread Safety
//
// Safe for concurrent use; all fields are read-only after creation.
type HostRegistrar struct {
	// Command is the host command argv. Empty means print-only.
	Command []string

	// Runner executes the host command. Required when Command is set.
	Runner process.Runner

	// Logger receives registration diagnostics. Required.
	Logger *logging.Logger

	// Out receives the manual-load notice when no command is
	// configured. Defaults to os.Stdout.
	Out io.Writer
}

// RegisterCurrent registers dbPath with the host.
//
// Appends the database's file:// URI to the configured command and
// runs it. With no command configured, prints the path instead.
func (r *HostRegistrar) RegisterCurrent(ctx context.Context, dbPath string) error {
	uri := fileURI(dbPath)

	if len(r.Command) == 0 {
		out := r.Out
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintf(out, "Database ready: %s\n", dbPath)
		r.Logger.Debug("no register command configured", "db_path", dbPath)
		return nil
	}

	argv := append(append([]string(nil), r.Command...), uri)
	r.Logger.Info("registering database", "command", argv)

	if _, err := r.Runner.Run(ctx, argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("failed to register database %s: %w", dbPath, err)
	}
	return nil
}

// fileURI converts an absolute path to a file:// URI.
func fileURI(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}

// MockRegistrar is a test double for Registrar.
//
// Records every registered path. Set Err to force failures.
type MockRegistrar struct {
	// Err, when set, is returned from every RegisterCurrent call.
	Err error

	mu    sync.Mutex
	paths []string
}

func (m *MockRegistrar) RegisterCurrent(ctx context.Context, dbPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, dbPath)
	return m.Err
}

// Registered returns a copy of all registered database paths.
func (m *MockRegistrar) Registered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}

// Compile-time interface satisfaction checks
var (
	_ Registrar = (*HostRegistrar)(nil)
	_ Registrar = (*MockRegistrar)(nil)
)
