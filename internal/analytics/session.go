package analytics

import "time"

const (
	// UnknownBitrate is reported until the player tells us what it is playing
	UnknownBitrate int64 = -1

	// UnknownErrorCode marks an error whose cause could not be mapped to a numeric code, and "no error" otherwise
	UnknownErrorCode = -1
)

// MediaType is the playback type tag carried by the media descriptor
type MediaType string

const (
	MediaTypeUnknown MediaType = ""
	MediaTypeVod     MediaType = "vod"
	MediaTypeLive    MediaType = "live"
)

// Media describes the media item a session is reporting on
type Media struct {
	ID   string
	Type MediaType
}

// SourceFormat is the container/protocol of the source the player selected
type SourceFormat string

const (
	FormatDash  SourceFormat = "dash"
	FormatHLS   SourceFormat = "hls"
	FormatOther SourceFormat = "other"
)

// DeliveryType returns the name the backend uses for the format
func (f SourceFormat) DeliveryType() string {
	switch f {
	case FormatDash:
		return "mpegdash"
	case FormatHLS:
		return "applehttp"
	default:
		return "url"
	}
}

// Flags are the boolean facts the classifier keeps about the current playback
type Flags struct {
	ImpressionSent bool
	AutoPlay       bool
	FirstPlay      bool
	Paused         bool
	Ended          bool
}

// Session is all analytics state for one loaded media item.  It is created by NewSession when media is loaded and
// discarded wholesale when the next one is.  A Session is not safe for concurrent use; the Tracker serialises access.
type Session struct {
	Media        Media
	DeliveryType string
	EventIndex   int
	StartTime    string

	Flags      Flags
	Milestones Milestones
	Buffer     BufferAccumulator

	ActualBitrate      int64
	ErrorCode          int
	TargetSeekPosition time.Duration
	JoinTimeStart      time.Time
	AudioLanguage      string
	CaptionLanguage    string

	viewCounter time.Duration

	// closedWindow is the buffering reported by the VIEW beacon that just cleared the window
	closedWindow time.Duration
}

// NewSession returns the initial state for a freshly loaded media item
func NewSession(media Media) *Session {
	return &Session{
		Media:         media,
		DeliveryType:  FormatOther.DeliveryType(),
		EventIndex:    1,
		Flags:         Flags{FirstPlay: true, Paused: true},
		ActualBitrate: UnknownBitrate,
		ErrorCode:     UnknownErrorCode,
	}
}

// ResetViewCounter restarts the heartbeat window, used whenever the heartbeat is (re)started
func (s *Session) ResetViewCounter() {
	s.viewCounter = 0
}

// SetStartTime records the session start time echoed by the backend.  Only the first non-empty value is kept.
func (s *Session) SetStartTime(value string) bool {
	if s.StartTime != "" || value == "" {
		return false
	}
	s.StartTime = value
	return true
}

// Snapshot is a point-in-time copy of the session counters, for display purposes
type Snapshot struct {
	EntryID       string
	EventIndex    int
	StartTime     string
	Paused        bool
	Ended         bool
	Milestones    Milestones
	BufferWindow  time.Duration
	BufferTotal   time.Duration
	ActualBitrate int64
}

// Snapshot copies out the values UIs are interested in
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		EntryID:       s.Media.ID,
		EventIndex:    s.EventIndex,
		StartTime:     s.StartTime,
		Paused:        s.Flags.Paused,
		Ended:         s.Flags.Ended,
		Milestones:    s.Milestones,
		BufferWindow:  s.Buffer.Window,
		BufferTotal:   s.Buffer.Total,
		ActualBitrate: s.ActualBitrate,
	}
}
