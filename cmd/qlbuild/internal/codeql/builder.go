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
	"path/filepath"
	"strconv"
	"time"

	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/infra/process"
	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/util"
	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/workspace"
	"github.com/AleutianAI/qlbuild/pkg/logging"
)

// =============================================================================
// Constants
// =============================================================================

// DefaultDatabasePrefix names generated database directories:
// {prefix}{epochMillis} directly under the source root.
const DefaultDatabasePrefix = "sample_"

// DefaultCodeQLBinary is the CLI binary resolved via PATH when no
// explicit path is configured.
const DefaultCodeQLBinary = "codeql"

// stderrTailBytes bounds how much process stderr is kept for error
// reporting.
const stderrTailBytes = 4096

// supportedLanguages maps user-facing language identifiers to the
// value passed to --language. Identity today, but the indirection is
// where aliases like "typescript" -> "javascript" would live.
var supportedLanguages = map[string]string{
	"java":       "java",
	"javascript": "javascript",
}

// SupportedLanguages returns the accepted language identifiers in
// sorted order, for help text and prompt options.
func SupportedLanguages() []string {
	return []string{"java", "javascript"}
}

// =============================================================================
// Types
// =============================================================================

// StaleCleaner clears previously generated databases out of a source
// root. Implemented by workspace.Reaper.
type StaleCleaner interface {
	CleanupStale(ctx context.Context, sourceRoot string, progress util.Reporter) error
}

// BuildRequest describes one database build.
type BuildRequest struct {
	// Language selects the CodeQL extractor. Must be one of
	// SupportedLanguages().
	Language string

	// SourceRoot is the absolute, canonical path to the project to
	// analyze.
	SourceRoot string

	// BuildCommand is the command CodeQL runs to compile the project.
	// Empty means no build step: the CLI is invoked with
	// --build-mode=none instead of --command.
	BuildCommand string
}

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	// CodeQLPath is the CodeQL CLI binary. Default: "codeql" (PATH).
	CodeQLPath string

	// DatabasePrefix names generated database directories.
	// Default: DefaultDatabasePrefix.
	DatabasePrefix string

	// Runner executes the CLI. Default: process.NewDefaultRunner().
	Runner process.Runner

	// Cleaner removes stale databases before the build. Default: a
	// workspace.Reaper using DatabasePrefix.
	Cleaner StaleCleaner

	// Logger receives build diagnostics. Default: logging.Default().
	Logger *logging.Logger

	// CleanupProgress reports stale-database cleanup. May be nil.
	CleanupProgress util.Reporter

	// BuildProgress reports external-tool output activity. May be nil.
	BuildProgress util.Reporter
}

// Builder runs the full database-creation workflow.
//
// # Description
//
// Build clears stale databases from the source root, picks a fresh
// timestamped database path, and shells out to
// `codeql database create`. Output is streamed: stdout drives the
// progress reporter, stderr is additionally retained in a bounded
// tail buffer so a failure can show what the tool actually said.
//
// # Thread Safety
//
// A Builder is safe for concurrent use; per-build state lives on the
// stack. Builds of the same source root should still be serialized by
// the caller (see process.BuildLock) because they share the stale
// cleanup pass.
//
// # Example
//
//	builder, err := codeql.NewBuilder(codeql.BuilderConfig{Logger: log})
//	if err != nil { ... }
//	dbPath, err := builder.Build(ctx, codeql.BuildRequest{
//	    Language:   "java",
//	    SourceRoot: "/home/alice/proj",
//	})
type Builder struct {
	config BuilderConfig

	// now is the clock used for database naming. Injectable for tests.
	now func() time.Time
}

// =============================================================================
// Constructor
// =============================================================================

// NewBuilder creates a Builder with the given configuration.
//
// Applies defaults for every unset optional field and validates the
// result. The zero BuilderConfig is valid and produces a builder that
// runs the real CLI from PATH.
func NewBuilder(config BuilderConfig) (*Builder, error) {
	applyBuilderDefaults(&config)
	if err := validateBuilderConfig(&config); err != nil {
		return nil, err
	}
	return &Builder{config: config, now: time.Now}, nil
}

func applyBuilderDefaults(config *BuilderConfig) {
	if config.CodeQLPath == "" {
		config.CodeQLPath = DefaultCodeQLBinary
	}
	if config.DatabasePrefix == "" {
		config.DatabasePrefix = DefaultDatabasePrefix
	}
	if config.Runner == nil {
		config.Runner = process.NewDefaultRunner()
	}
	if config.Logger == nil {
		config.Logger = logging.Default()
	}
	if config.Cleaner == nil {
		config.Cleaner = &workspace.Reaper{
			Prefix: config.DatabasePrefix,
			Logger: config.Logger,
		}
	}
	if config.CleanupProgress == nil {
		config.CleanupProgress = util.NopReporter{}
	}
	if config.BuildProgress == nil {
		config.BuildProgress = util.NopReporter{}
	}
}

func validateBuilderConfig(config *BuilderConfig) error {
	if config.DatabasePrefix == "" {
		return fmt.Errorf("database prefix must not be empty")
	}
	return nil
}

// =============================================================================
// Build
// =============================================================================

// Build creates a CodeQL database for the request.
//
// # Description
//
// Runs the workflow end to end:
//
//  1. Validate the language and sanitize the source root. No process
//     is spawned for a bad request.
//  2. Remove stale databases under the root (best effort; cleanup
//     problems are logged, not fatal).
//  3. Run `codeql database create` against a fresh
//     {prefix}{epochMillis} directory, streaming output into the
//     build progress reporter.
//
// # Inputs
//
//   - ctx: Cancels the external process
//   - req: Language, source root, optional build command
//
// # Outputs
//
//   - string: Absolute path of the created database directory
//   - error: ErrUnsupportedLanguage, workspace.ErrInvalidPath, or a
//     *ToolError when the CLI fails
//
// # Example
//
//	dbPath, err := builder.Build(ctx, req)
//	var toolErr *codeql.ToolError
//	if errors.As(err, &toolErr) {
//	    fmt.Fprintln(os.Stderr, toolErr.Stderr)
//	}
func (b *Builder) Build(ctx context.Context, req BuildRequest) (string, error) {
	language, ok := supportedLanguages[req.Language]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: %v)",
			ErrUnsupportedLanguage, req.Language, SupportedLanguages())
	}

	sourceRoot, err := workspace.SanitizePath(req.SourceRoot)
	if err != nil {
		return "", fmt.Errorf("source root rejected: %w", err)
	}

	if err := b.config.Cleaner.CleanupStale(ctx, sourceRoot, b.config.CleanupProgress); err != nil {
		return "", err
	}

	dbPath, err := workspace.SanitizePath(b.freshDatabasePath(sourceRoot))
	if err != nil {
		return "", fmt.Errorf("database path rejected: %w", err)
	}

	argv := buildArgv(b.config.CodeQLPath, dbPath, language, sourceRoot, req.BuildCommand)

	log := b.config.Logger.With("language", language, "source_root", sourceRoot)
	log.Info("creating database", "db_path", dbPath, "command", argv)

	progress := b.config.BuildProgress
	progress.Begin("Creating database")
	defer progress.Done()

	stderrTail := util.NewTailBuffer(stderrTailBytes)
	onStdout := func(p []byte) {
		progress.Increment(0.01)
	}
	onStderr := func(p []byte) {
		stderrTail.Write(p)
		progress.Increment(0.01)
	}

	exitCode, err := b.config.Runner.RunStreaming(ctx, onStdout, onStderr, argv[0], argv[1:]...)
	if err != nil {
		return "", &ToolError{Command: argv, ExitCode: -1, Wrapped: err}
	}
	if exitCode != 0 {
		log.Error("database creation failed",
			"exit_code", exitCode, "stderr_tail", stderrTail.String())
		return "", &ToolError{Command: argv, ExitCode: exitCode, Stderr: stderrTail.String()}
	}

	log.Info("database created", "db_path", dbPath)
	return dbPath, nil
}

// freshDatabasePath returns the database path for a build starting now.
func (b *Builder) freshDatabasePath(sourceRoot string) string {
	stamp := strconv.FormatInt(b.now().UnixMilli(), 10)
	return filepath.Join(sourceRoot, b.config.DatabasePrefix+stamp)
}

// buildArgv assembles the CLI invocation. The --command and
// --build-mode=none forms are mutually exclusive: a build command
// means CodeQL traces that command, no build command means the
// extractor runs without one.
func buildArgv(binary, dbPath, language, sourceRoot, buildCommand string) []string {
	argv := []string{
		binary, "database", "create", dbPath,
		"--language=" + language,
		"--source-root", sourceRoot,
	}
	if buildCommand != "" {
		argv = append(argv, "--command", buildCommand)
	} else {
		argv = append(argv, "--build-mode=none")
	}
	argv = append(argv, "--overwrite")
	return argv
}
