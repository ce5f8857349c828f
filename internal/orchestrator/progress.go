package orchestrator

import "fmt"

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Role)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Role)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete", event.Role)
	case ProgressLoopedBack:
		return fmt.Sprintf("  ↩ %s %s", event.Role, event.Message)
	case ProgressTimedOut:
		return fmt.Sprintf("  ⏱ %s timed out", event.Role)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Role, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Role)
	}
}
