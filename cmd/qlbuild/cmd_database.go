// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/qlbuild/cmd/qlbuild/config"
	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/codeql"
	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/infra/process"
	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/util"
	"github.com/AleutianAI/qlbuild/cmd/qlbuild/internal/workspace"
	"github.com/AleutianAI/qlbuild/pkg/logging"
)

// languageOptions are the prompt choices, paired with the identifiers
// handed to the builder. Kept in display order.
var languageOptions = []struct {
	Display  string
	Language string
}{
	{Display: "Java", Language: "java"},
	{Display: "JavaScript / TypeScript", Language: "javascript"},
}

// databaseBuilder is the slice of codeql.Builder the workflow needs.
type databaseBuilder interface {
	Build(ctx context.Context, req codeql.BuildRequest) (string, error)
}

// buildWorkflow carries the collaborators for one database build so
// the whole flow is testable with doubles.
type buildWorkflow struct {
	prompter  UserPrompter
	builder   databaseBuilder
	registrar codeql.Registrar
	newLock   func(sourceRoot string) process.BuildLocker
	logger    *logging.Logger
	out       io.Writer
	errOut    io.Writer
}

// buildWorkflowRequest is the raw command input, before prompting
// fills in whatever the flags left blank.
type buildWorkflowRequest struct {
	// SourceRoot is the positional argument, or empty for the
	// current directory.
	SourceRoot string

	// Language is the --language flag value, or empty to prompt.
	Language string

	// BuildCommand is the --command flag value, or empty to prompt
	// (when PromptForCommand is set).
	BuildCommand string

	// PromptForCommand distinguishes the traced-build entry point from
	// the autobuild one: only the former asks for a build command.
	PromptForCommand bool
}

// -----------------------------------------------------------------------------
// Command handlers
// -----------------------------------------------------------------------------

func runBuildCommand(cmd *cobra.Command, args []string) {
	runDatabaseWorkflow(cmd.Context(), args, true)
}

func runAutobuildCommand(cmd *cobra.Command, args []string) {
	runDatabaseWorkflow(cmd.Context(), args, false)
}

func runDatabaseWorkflow(ctx context.Context, args []string, promptForCommand bool) {
	wf, err := newBuildWorkflow()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer wf.logger.Close()

	req := buildWorkflowRequest{
		Language:         languageFlag,
		BuildCommand:     commandFlag,
		PromptForCommand: promptForCommand,
	}
	if len(args) > 0 {
		req.SourceRoot = args[0]
	}

	if err := wf.execute(ctx, req); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runListCommand(cmd *cobra.Command, args []string) {
	sourceRoot, err := resolveSourceRoot(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	prefix := config.Global.CodeQL.DatabasePrefix
	dbs, err := codeql.ListDatabases(sourceRoot, prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(dbs) == 0 {
		fmt.Printf("No databases under %s\n", sourceRoot)
		return
	}
	for _, db := range dbs {
		if db.CreatedAt.IsZero() {
			fmt.Println(db.Path)
			continue
		}
		fmt.Printf("%s  (created %s)\n", db.Path, db.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

// newBuildWorkflow wires the real collaborators from the loaded config.
func newBuildWorkflow() (*buildWorkflow, error) {
	cfg := config.Global

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "qlbuild",
		Quiet:   true, // progress owns the terminal; diagnostics go to file
	})

	builder, err := codeql.NewBuilder(codeql.BuilderConfig{
		CodeQLPath:      cfg.CodeQL.BinaryPath,
		DatabasePrefix:  cfg.CodeQL.DatabasePrefix,
		Logger:          logger,
		CleanupProgress: util.NewConsoleReporter(os.Stderr),
		BuildProgress:   util.NewConsoleReporter(os.Stderr),
	})
	if err != nil {
		return nil, err
	}

	lockDir, err := config.LockDir()
	if err != nil {
		return nil, err
	}

	var prompter UserPrompter
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		prompter = NewInteractivePrompter()
	} else {
		prompter = NewNonInteractivePrompter()
	}

	return &buildWorkflow{
		prompter: prompter,
		builder:  builder,
		registrar: &codeql.HostRegistrar{
			Command: cfg.CodeQL.RegisterCommand,
			Runner:  process.NewDefaultRunner(),
			Logger:  logger,
		},
		newLock: func(sourceRoot string) process.BuildLocker {
			return process.NewBuildLock(lockDir, sourceRoot)
		},
		logger: logger,
		out:    os.Stdout,
		errOut: os.Stderr,
	}, nil
}

// -----------------------------------------------------------------------------
// Workflow
// -----------------------------------------------------------------------------

// execute runs one database build end to end.
//
// # Description
//
// Fills in anything the flags left blank by prompting, then locks the
// source root, builds the database, and registers it. A dismissed
// prompt aborts silently with a nil error; every other failure is
// logged and returned for the caller to surface.
func (w *buildWorkflow) execute(ctx context.Context, req buildWorkflowRequest) error {
	runID := uuid.NewString()
	log := w.logger.With("run_id", runID)

	sourceRoot, err := resolveSourceRootFrom(req.SourceRoot)
	if err != nil {
		log.Error("source root rejected", "error", err)
		return err
	}
	// Reject a bad root before prompting for anything else.
	if _, err := workspace.SanitizePath(sourceRoot); err != nil {
		log.Error("source root rejected", "source_root", sourceRoot, "error", err)
		return err
	}

	language, err := w.resolveLanguage(ctx, req.Language)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			log.Info("build cancelled at language prompt")
			return nil
		}
		return err
	}

	buildCommand := req.BuildCommand
	if req.PromptForCommand && buildCommand == "" {
		buildCommand, err = w.prompter.Input(ctx, "Build command (e.g. 'mvn package')")
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				log.Info("build cancelled at command prompt")
				return nil
			}
			return err
		}
	}

	lock := w.newLock(sourceRoot)
	if err := lock.Acquire(); err != nil {
		log.Error("failed to lock source root", "error", err)
		return err
	}
	defer lock.Release()

	log.Info("starting database build",
		"source_root", sourceRoot, "language", language,
		"traced", buildCommand != "")

	dbPath, err := w.builder.Build(ctx, codeql.BuildRequest{
		Language:     language,
		SourceRoot:   sourceRoot,
		BuildCommand: buildCommand,
	})
	if err != nil {
		log.Error("database build failed", "error", err)
		var toolErr *codeql.ToolError
		if errors.As(err, &toolErr) && toolErr.Stderr != "" {
			fmt.Fprintln(w.errOut, toolErr.Stderr)
		}
		return err
	}

	if err := w.registrar.RegisterCurrent(ctx, dbPath); err != nil {
		log.Error("database registration failed", "db_path", dbPath, "error", err)
		return err
	}

	log.Info("database build complete", "db_path", dbPath)
	fmt.Fprintf(w.out, "Created database %s\n", dbPath)
	return nil
}

// resolveLanguage returns the language from the flag, or prompts.
func (w *buildWorkflow) resolveLanguage(ctx context.Context, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	options := make([]string, len(languageOptions))
	for i, opt := range languageOptions {
		options[i] = opt.Display
	}
	choice, err := w.prompter.Select(ctx, "Select the analysis language:", options)
	if err != nil {
		return "", err
	}
	return languageOptions[choice].Language, nil
}

// resolveSourceRoot resolves the positional argument, defaulting to
// the current directory.
func resolveSourceRoot(args []string) (string, error) {
	if len(args) > 0 {
		return resolveSourceRootFrom(args[0])
	}
	return resolveSourceRootFrom("")
}

func resolveSourceRootFrom(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("could not determine the current directory: %w", err)
	}
	return cwd, nil
}
