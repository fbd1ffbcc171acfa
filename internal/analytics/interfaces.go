package analytics

import (
	"context"
	"time"
)

// Player is the host player as seen by the analytics core.  All calls must be cheap and free of side effects.
type Player interface {
	// Position is the current playback position
	Position() time.Duration
	// Duration is the media duration, or the size of the seekable window for live media
	Duration() time.Duration
	// IsLive reports whether the current media is a live stream
	IsLive() bool
	// SessionID is the player's playback session identifier.  May be empty.
	SessionID() string
}

// Response is what a transport hands back for a delivered beacon
type Response struct {
	// Body is the raw response body.  The first non-empty body of a session is kept as its session start time.
	Body string
}

// Beacon is one outbound analytics event with its assembled parameters
type Beacon struct {
	BaseURL string
	Event   EventType
	Params  Params
}

// Transport delivers a single beacon.  Retries, if any, are the transport's business.
type Transport interface {
	Dispatch(ctx context.Context, beacon Beacon) (Response, error)
}

// Observer is notified with the symbolic event name after every successfully dispatched beacon
type Observer interface {
	BeaconSent(name string)
}

// ObserverFunc adapts a plain function to the Observer interface
type ObserverFunc func(name string)

// BeaconSent calls f(name)
func (f ObserverFunc) BeaconSent(name string) {
	f(name)
}
