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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrNonInteractive indicates a prompt was required but stdin is not
	// a terminal and the answer was not supplied via flags.
	ErrNonInteractive = errors.New("interactive prompt required but running non-interactively")

	// ErrCancelled indicates the user dismissed a prompt. Workflows
	// treat this as a silent abort, not a failure.
	ErrCancelled = errors.New("cancelled by user")

	// ErrInvalidSelection indicates a selection outside the offered range.
	ErrInvalidSelection = errors.New("invalid selection")
)

// -----------------------------------------------------------------------------
// Interface
// -----------------------------------------------------------------------------

// UserPrompter abstracts interactive input so command workflows can be
// tested without a terminal.
type UserPrompter interface {
	// Confirm asks a yes/no question. Defaults to no.
	Confirm(ctx context.Context, prompt string) (bool, error)

	// Select asks the user to pick one of options, returning its index.
	Select(ctx context.Context, prompt string, options []string) (int, error)

	// Input asks for a line of free text. A dismissed prompt (EOF or a
	// bare Enter) returns ErrCancelled.
	Input(ctx context.Context, prompt string) (string, error)

	// IsInteractive reports whether prompts will actually be shown.
	IsInteractive() bool
}

// -----------------------------------------------------------------------------
// InteractivePrompter
// -----------------------------------------------------------------------------

// InteractivePrompter prompts on a terminal.
type InteractivePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewInteractivePrompter creates a prompter bound to stdin/stdout.
func NewInteractivePrompter() *InteractivePrompter {
	return NewInteractivePrompterWithIO(os.Stdin, os.Stdout)
}

// NewInteractivePrompterWithIO creates a prompter with explicit IO,
// for tests.
func NewInteractivePrompterWithIO(r io.Reader, w io.Writer) *InteractivePrompter {
	return &InteractivePrompter{reader: bufio.NewReader(r), writer: w}
}

func (p *InteractivePrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(p.writer, "%s [y/N]: ", prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		// EOF counts as the default answer
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *InteractivePrompter) Select(ctx context.Context, prompt string, options []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(options) == 0 {
		return 0, fmt.Errorf("%w: no options to select from", ErrInvalidSelection)
	}

	fmt.Fprintln(p.writer, prompt)
	for i, option := range options {
		fmt.Fprintf(p.writer, "  %d. %s\n", i+1, option)
	}
	fmt.Fprintf(p.writer, "Enter choice [1-%d]: ", len(options))

	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return 0, ErrCancelled
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, ErrCancelled
	}
	choice, err := strconv.Atoi(trimmed)
	if err != nil || choice < 1 || choice > len(options) {
		return 0, fmt.Errorf("%w: %q (expected 1-%d)", ErrInvalidSelection, trimmed, len(options))
	}
	return choice - 1, nil
}

func (p *InteractivePrompter) Input(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(p.writer, "%s: ", prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", ErrCancelled
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", ErrCancelled
	}
	return trimmed, nil
}

func (p *InteractivePrompter) IsInteractive() bool {
	return true
}

// -----------------------------------------------------------------------------
// NonInteractivePrompter
// -----------------------------------------------------------------------------

// NonInteractivePrompter rejects every prompt. Used when stdin is not
// a terminal, so a missing flag becomes a clear error instead of a
// hang waiting for input that will never come.
type NonInteractivePrompter struct{}

func NewNonInteractivePrompter() *NonInteractivePrompter {
	return &NonInteractivePrompter{}
}

func (p *NonInteractivePrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	return false, fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
}

func (p *NonInteractivePrompter) Select(ctx context.Context, prompt string, options []string) (int, error) {
	return 0, fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
}

func (p *NonInteractivePrompter) Input(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
}

func (p *NonInteractivePrompter) IsInteractive() bool {
	return false
}

// -----------------------------------------------------------------------------
// MockPrompter
// -----------------------------------------------------------------------------

// PrompterCall records one prompt for test assertions.
type PrompterCall struct {
	Method  string
	Prompt  string
	Options []string
}

// MockPrompter is a test double for UserPrompter.
//
// Set the *Func fields to script responses; unset functions panic so a
// test never silently answers a prompt it did not expect.
type MockPrompter struct {
	ConfirmFunc       func(ctx context.Context, prompt string) (bool, error)
	SelectFunc        func(ctx context.Context, prompt string, options []string) (int, error)
	InputFunc         func(ctx context.Context, prompt string) (string, error)
	IsInteractiveFunc func() bool

	mu    sync.Mutex
	Calls []PrompterCall
}

func (m *MockPrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	m.record("Confirm", prompt, nil)
	if m.ConfirmFunc == nil {
		panic("MockPrompter.ConfirmFunc not set")
	}
	return m.ConfirmFunc(ctx, prompt)
}

func (m *MockPrompter) Select(ctx context.Context, prompt string, options []string) (int, error) {
	m.record("Select", prompt, options)
	if m.SelectFunc == nil {
		panic("MockPrompter.SelectFunc not set")
	}
	return m.SelectFunc(ctx, prompt, options)
}

func (m *MockPrompter) Input(ctx context.Context, prompt string) (string, error) {
	m.record("Input", prompt, nil)
	if m.InputFunc == nil {
		panic("MockPrompter.InputFunc not set")
	}
	return m.InputFunc(ctx, prompt)
}

func (m *MockPrompter) IsInteractive() bool {
	if m.IsInteractiveFunc != nil {
		return m.IsInteractiveFunc()
	}
	return true
}

func (m *MockPrompter) record(method, prompt string, options []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, PrompterCall{Method: method, Prompt: prompt, Options: options})
}

// Reset clears recorded calls.
func (m *MockPrompter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// Compile-time interface satisfaction checks
var (
	_ UserPrompter = (*InteractivePrompter)(nil)
	_ UserPrompter = (*NonInteractivePrompter)(nil)
	_ UserPrompter = (*MockPrompter)(nil)
)
