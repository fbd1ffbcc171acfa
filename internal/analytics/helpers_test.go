package analytics

import (
	"context"
	"sync"
	"time"
)

type fakePlayer struct {
	position  time.Duration
	duration  time.Duration
	live      bool
	sessionID string
}

func (p *fakePlayer) Position() time.Duration { return p.position }
func (p *fakePlayer) Duration() time.Duration { return p.duration }
func (p *fakePlayer) IsLive() bool            { return p.live }
func (p *fakePlayer) SessionID() string       { return p.sessionID }

type fakeTransport struct {
	mu      sync.Mutex
	beacons []Beacon

	// respond produces the outcome of each dispatch.  Nil means an empty successful response.
	respond func(Beacon) (Response, error)
	// gate, when set, holds every dispatch until it is closed
	gate chan struct{}
}

func (f *fakeTransport) Dispatch(_ context.Context, beacon Beacon) (Response, error) {
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	f.beacons = append(f.beacons, beacon)
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return Response{}, nil
	}
	return respond(beacon)
}

func (f *fakeTransport) sent() []Beacon {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Beacon(nil), f.beacons...)
}

func (f *fakeTransport) events() []EventType {
	var events []EventType
	for _, b := range f.sent() {
		events = append(events, b.Event)
	}
	return events
}

type nameRecorder struct {
	mu    sync.Mutex
	names []string
}

func (r *nameRecorder) BeaconSent(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *nameRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// fixedClock is a manually advanced clock
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
