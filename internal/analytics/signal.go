package analytics

import "time"

// Signal is a single lifecycle notification coming from the host player.  The set of implementations is closed;
// the classifier switches over the concrete types.
type Signal interface {
	signal()
}

// PlayerState is the coarse state reported by StateChanged
type PlayerState int

const (
	StateOther PlayerState = iota
	StateBuffering
	StateReady
)

// String returns a human-readable name for the state.
func (s PlayerState) String() string {
	switch s {
	case StateBuffering:
		return "buffering"
	case StateReady:
		return "ready"
	default:
		return "other"
	}
}

// TrackKind identifies which track a TrackChanged signal refers to
type TrackKind int

const (
	TrackVideo TrackKind = iota
	TrackAudio
	TrackText
)

// String returns a human-readable name for the track kind.
func (k TrackKind) String() string {
	switch k {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackText:
		return "text"
	default:
		return "unknown"
	}
}

// MetadataLoaded indicates the media metadata is available and playback is possible
type MetadataLoaded struct{}

// PlayIntent indicates the user (or autoplay) asked for playback
type PlayIntent struct{}

// Playing indicates frames are actually being rendered
type Playing struct{}

// Paused indicates playback was paused
type Paused struct{}

// Seeking indicates a seek towards Target has started
type Seeking struct {
	Target time.Duration
}

// Replay indicates the media is being played again from the start after it ended
type Replay struct{}

// Ended indicates playback reached the end of the media
type Ended struct{}

// StateChanged reports a transition of the player's buffering state
type StateChanged struct {
	State PlayerState
}

// SourceSelected reports the source the player picked for the media
type SourceSelected struct {
	Format SourceFormat
}

// TrackChanged reports a manual track switch.  Bitrate is used for video tracks, Language for audio and text.
type TrackChanged struct {
	Kind     TrackKind
	Bitrate  int64
	Language string
}

// BitrateUpdated reports the bitrate currently being played, typically after an ABR switch
type BitrateUpdated struct {
	Bitrate int64
}

// Error reports a playback error.  Code is UnknownErrorCode when the cause could not be classified.
type Error struct {
	Code int
}

// HeartbeatTick is produced by the Heartbeat, once per Period
type HeartbeatTick struct {
	Period time.Duration
}

func (MetadataLoaded) signal() {}
func (PlayIntent) signal()     {}
func (Playing) signal()        {}
func (Paused) signal()         {}
func (Seeking) signal()        {}
func (Replay) signal()         {}
func (Ended) signal()          {}
func (StateChanged) signal()   {}
func (SourceSelected) signal() {}
func (TrackChanged) signal()   {}
func (BitrateUpdated) signal() {}
func (Error) signal()          {}
func (HeartbeatTick) signal()  {}
