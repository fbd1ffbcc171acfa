package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/PizzaHomicide/kava/internal/log"
)

// Tracker owns the analytics session for one player.  Player signals, heartbeat ticks and beacon responses all
// funnel through a single mutex, so the session is only ever mutated by one of them at a time.  Beacons are
// dispatched on their own goroutines and never hold up signal processing.
type Tracker struct {
	player    Player
	transport Transport
	now       func() time.Time

	mu        sync.Mutex
	cfg       Config
	session   *Session
	heartbeat *Heartbeat
	observers []Observer
	closed    bool

	inflight sync.WaitGroup
}

// Option customises a Tracker
type Option func(*trackerOptions)

type trackerOptions struct {
	now       func() time.Time
	period    time.Duration
	observers []Observer
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(o *trackerOptions) {
		o.now = now
	}
}

// WithHeartbeatPeriod changes the heartbeat tick period
func WithHeartbeatPeriod(period time.Duration) Option {
	return func(o *trackerOptions) {
		o.period = period
	}
}

// WithObserver registers an observer at construction time
func WithObserver(obs Observer) Option {
	return func(o *trackerOptions) {
		o.observers = append(o.observers, obs)
	}
}

// NewTracker creates a tracker reporting on player through transport.  No media is loaded until LoadMedia is called;
// until then every beacon is skipped for lack of an entry id.
func NewTracker(cfg Config, player Player, transport Transport, opts ...Option) *Tracker {
	o := trackerOptions{
		now:    time.Now,
		period: DefaultHeartbeatPeriod,
	}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Tracker{
		player:    player,
		transport: transport,
		now:       o.now,
		cfg:       cfg.withDefaults(),
		session:   NewSession(Media{}),
		observers: o.observers,
	}
	t.heartbeat = NewHeartbeat(o.period, t.tick)

	if !cfg.PartnerIDValid() {
		log.Warn("Analytics partner id is not configured.  No beacons will be sent", "partner_id", cfg.PartnerID)
	}
	return t
}

// LoadMedia starts a new session for media, discarding everything known about the previous one
func (t *Tracker) LoadMedia(media Media) {
	t.mu.Lock()
	defer t.mu.Unlock()

	log.Info("Loading media for analytics", "entry_id", media.ID, "media_type", string(media.Type))
	t.heartbeat.Stop()
	t.session = NewSession(media)
}

// UpdateConfig replaces the analytics configuration.  It applies from the next beacon on.
func (t *Tracker) UpdateConfig(cfg Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg = cfg.withDefaults()
}

// Subscribe registers an observer for successfully sent beacons
func (t *Tracker) Subscribe(obs Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, obs)
}

// Handle processes one lifecycle signal from the player
func (t *Tracker) Handle(sig Signal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		log.Debug("Tracker closed, dropping signal", "signal", sig)
		return
	}
	if e, ok := sig.(Error); ok {
		log.Error("Playback error", "error_code", e.Code)
	}
	t.applyLocked(sig)
}

// ApplicationPaused is called when the embedding application goes to the background.  Playback counts as paused and
// the heartbeat stops until ApplicationResumed.
func (t *Tracker) ApplicationPaused() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.session.Flags.Paused = true
	t.heartbeat.Stop()
}

// ApplicationResumed restarts the heartbeat after ApplicationPaused
func (t *Tracker) ApplicationResumed() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.startHeartbeatLocked()
}

// Snapshot returns a copy of the current session counters
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Snapshot()
}

// HeartbeatRunning reports whether the heartbeat is currently ticking
func (t *Tracker) HeartbeatRunning() bool {
	return t.heartbeat.Running()
}

// Close stops the heartbeat and drops any further signals.  Beacons already dispatched are left to finish; use Wait
// to block until they have.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.heartbeat.Stop()
}

// Wait blocks until every dispatched beacon has completed or ctx is done
func (t *Tracker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tick is the heartbeat callback.  Ticks from a generation that has since been stopped are ignored.
func (t *Tracker) tick(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || !t.heartbeat.Current(gen) {
		return
	}
	t.applyLocked(HeartbeatTick{Period: t.heartbeat.Period()})
}

func (t *Tracker) applyLocked(sig Signal) {
	tr := t.session.Apply(sig, Env{Now: t.now(), Player: t.player})
	if tr.StartHeartbeat {
		t.startHeartbeatLocked()
	}
	for _, ev := range tr.Events {
		t.emitLocked(ev)
	}
}

func (t *Tracker) startHeartbeatLocked() {
	t.session.ResetViewCounter()
	t.heartbeat.Start()
}

// emitLocked builds and dispatches one beacon.  The event index advances once the beacon is handed to the
// transport, whatever the outcome of delivery.
func (t *Tracker) emitLocked(ev EventType) {
	params, err := BuildParams(ev, t.session, t.player, t.cfg, t.now())
	if err != nil {
		log.Warn("Can not send analytics event", "event", ev.String(), "error", err)
		return
	}

	beacon := Beacon{
		BaseURL: t.cfg.BaseURL,
		Event:   ev,
		Params:  params,
	}
	log.Debug("Sending analytics event", "event", ev.String(), "event_index", t.session.EventIndex,
		"entry_id", t.session.Media.ID)

	t.session.EventIndex++
	t.inflight.Add(1)
	go t.dispatch(t.session, beacon)
}

func (t *Tracker) dispatch(session *Session, beacon Beacon) {
	defer t.inflight.Done()

	resp, err := t.transport.Dispatch(context.Background(), beacon)
	if err != nil {
		log.Debug("Analytics event delivery failed", "event", beacon.Event.String(), "error", err)
		return
	}

	t.mu.Lock()
	// A response for a session that has since been replaced must not leak into the new one
	if t.session == session && session.SetStartTime(resp.Body) {
		log.Debug("Captured session start time", "session_start_time", resp.Body)
	}
	observers := append([]Observer(nil), t.observers...)
	t.mu.Unlock()

	name := beacon.Event.String()
	for _, obs := range observers {
		obs.BeaconSent(name)
	}
}
