package analytics

import "time"

// BufferAccumulator rolls buffering periods up into two totals: Window, which is cleared every time a VIEW beacon
// goes out, and Total, which only grows for the life of the session.
type BufferAccumulator struct {
	Window time.Duration
	Total  time.Duration

	start    time.Time
	buffered bool
}

// Start records the beginning of a buffering period.  A second Start before Stop moves the start forward.
func (b *BufferAccumulator) Start(now time.Time) {
	b.start = now
	b.buffered = true
}

// Ready adds the time since the last mark to both totals and re-arms the mark at now, so the time between two
// Ready calls is counted as well.  It does nothing until Start has been called once.
func (b *BufferAccumulator) Ready(now time.Time) time.Duration {
	if !b.buffered {
		return 0
	}
	elapsed := now.Sub(b.start)
	if elapsed < 0 {
		elapsed = 0
	}
	b.Window += elapsed
	b.Total += elapsed
	b.start = now
	return elapsed
}

// Buffering reports whether a buffering mark is armed
func (b *BufferAccumulator) Buffering() bool {
	return b.buffered
}

// ResetWindow clears the per-heartbeat accumulator
func (b *BufferAccumulator) ResetWindow() {
	b.Window = 0
}
