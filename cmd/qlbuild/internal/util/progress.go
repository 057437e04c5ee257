package util

import (
	"fmt"
	"io"
	"sync"
)

// =============================================================================
// Progress Reporter Interface
// =============================================================================

// Reporter receives incremental progress for a single phase of work.
//
// # Description
//
// A Reporter models one progress sequence: Begin once, any number of
// Update/Increment calls, Done once. Each phase of a build (cleanup,
// database creation) gets its own Reporter and each sequence reaches
// 100% independently.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; output callbacks may
// fire from stream-pumping goroutines.
type Reporter interface {
	// Begin starts the sequence with a human-readable label.
	Begin(label string)

	// Update sets the absolute completion fraction (0.0 to 1.0).
	// Values are clamped; fractions never move backwards.
	Update(fraction float64)

	// Increment advances the fraction by delta, capped just below 1.0.
	// Used when total work is unknown (streamed tool output).
	Increment(delta float64)

	// Done forces the fraction to 1.0 and finishes the sequence.
	Done()
}

// =============================================================================
// Console Reporter
// =============================================================================

// ConsoleReporter renders progress as a single rewritten line.
//
// # Description
//
// Writes "label... NN%" to the configured writer, using carriage returns
// to redraw in place. Done() prints the final 100% line and a newline.
//
// # Example
//
//	r := NewConsoleReporter(os.Stderr)
//	r.Begin("Cleaning up stale databases")
//	r.Update(0.5)
//	r.Done()
type ConsoleReporter struct {
	w        io.Writer
	label    string
	fraction float64
	mu       sync.Mutex
}

// NewConsoleReporter creates a ConsoleReporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// Begin starts the sequence with a human-readable label.
func (r *ConsoleReporter) Begin(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.label = label
	r.fraction = 0
	r.render()
}

// Update sets the absolute completion fraction.
func (r *ConsoleReporter) Update(fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fraction > 1 {
		fraction = 1
	}
	if fraction > r.fraction {
		r.fraction = fraction
		r.render()
	}
}

// Increment advances the fraction by delta, capped just below 1.0.
func (r *ConsoleReporter) Increment(delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.fraction + delta
	// Only Done may show 100%; streamed increments stall at 99%.
	if next >= 1 {
		next = 0.99
	}
	if next > r.fraction {
		r.fraction = next
		r.render()
	}
}

// Done forces the fraction to 1.0 and finishes the sequence.
func (r *ConsoleReporter) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fraction = 1
	r.render()
	fmt.Fprintln(r.w)
}

// render redraws the progress line. Caller holds r.mu.
func (r *ConsoleReporter) render() {
	fmt.Fprintf(r.w, "\r%s... %3.0f%%", r.label, r.fraction*100)
}

// =============================================================================
// Nop Reporter
// =============================================================================

// NopReporter discards all progress events.
//
// Used when no progress surface is wanted (scripting, tests that don't
// assert on progress).
type NopReporter struct{}

// Begin implements Reporter.
func (NopReporter) Begin(label string) {}

// Update implements Reporter.
func (NopReporter) Update(fraction float64) {}

// Increment implements Reporter.
func (NopReporter) Increment(delta float64) {}

// Done implements Reporter.
func (NopReporter) Done() {}

// =============================================================================
// Recording Reporter (Testing)
// =============================================================================

// ProgressEvent records a single Reporter method invocation.
type ProgressEvent struct {
	// Kind is "begin", "update", "increment", or "done".
	Kind string

	// Label is set for "begin" events.
	Label string

	// Value is the fraction for "update" or the delta for "increment".
	Value float64
}

// RecordingReporter captures progress events for test verification.
//
// # Example
//
//	rec := &RecordingReporter{}
//	reaper.CleanupStale(ctx, root, rec)
//	events := rec.Events()
type RecordingReporter struct {
	events []ProgressEvent
	mu     sync.Mutex
}

// Begin records a begin event.
func (r *RecordingReporter) Begin(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ProgressEvent{Kind: "begin", Label: label})
}

// Update records an update event.
func (r *RecordingReporter) Update(fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ProgressEvent{Kind: "update", Value: fraction})
}

// Increment records an increment event.
func (r *RecordingReporter) Increment(delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ProgressEvent{Kind: "increment", Value: delta})
}

// Done records a done event.
func (r *RecordingReporter) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ProgressEvent{Kind: "done"})
}

// Events returns a copy of all recorded events.
func (r *RecordingReporter) Events() []ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ProgressEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Compile-time interface compliance checks.
var (
	_ Reporter = (*ConsoleReporter)(nil)
	_ Reporter = NopReporter{}
	_ Reporter = (*RecordingReporter)(nil)
)
