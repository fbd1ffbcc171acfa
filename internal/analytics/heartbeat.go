package analytics

import (
	"sync"
	"time"
)

// DefaultHeartbeatPeriod is the tick resolution of the heartbeat
const DefaultHeartbeatPeriod = time.Second

// Heartbeat calls a function once per period, starting immediately, until stopped.  Every Start begins a new
// generation; the generation is passed to the callback so late ticks from a stopped generation can be recognised
// and dropped by the receiver.
type Heartbeat struct {
	period time.Duration
	onTick func(gen uint64)

	mu   sync.Mutex
	gen  uint64
	stop chan struct{}
}

// NewHeartbeat creates a stopped heartbeat
func NewHeartbeat(period time.Duration, onTick func(gen uint64)) *Heartbeat {
	if period <= 0 {
		period = DefaultHeartbeatPeriod
	}
	return &Heartbeat{
		period: period,
		onTick: onTick,
	}
}

// Period returns the tick period
func (h *Heartbeat) Period() time.Duration {
	return h.period
}

// Start begins ticking.  A running heartbeat is stopped first, so there is never more than one tick stream.
func (h *Heartbeat) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopLocked()
	h.gen++
	stop := make(chan struct{})
	h.stop = stop
	go h.run(h.gen, stop)
}

// Stop cancels pending ticks.  It does not wait for a tick that is already being delivered.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

// Running reports whether the heartbeat is currently started
func (h *Heartbeat) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stop != nil
}

// Current reports whether gen belongs to the running generation
func (h *Heartbeat) Current(gen uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stop != nil && h.gen == gen
}

func (h *Heartbeat) stopLocked() {
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
}

func (h *Heartbeat) run(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(h.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		default:
		}

		h.onTick(gen)

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
