package player

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PizzaHomicide/kava/internal/analytics"
	"github.com/PizzaHomicide/kava/internal/log"
)

// Observed mpv properties.  The ids are echoed back in property-change events.
const (
	propTimePos = iota + 1
	propDuration
	propPause
	propPausedForCache
	propEOFReached
	propHLSBitrate
	propVideoTrack
	propAudioLang
	propSubLang
)

var observedProperties = map[int]string{
	propTimePos:        "time-pos",
	propDuration:       "duration",
	propPause:          "pause",
	propPausedForCache: "paused-for-cache",
	propEOFReached:     "eof-reached",
	propHLSBitrate:     "hls-bitrate",
	propVideoTrack:     "vid",
	propAudioLang:      "current-tracks/audio/lang",
	propSubLang:        "current-tracks/sub/lang",
}

// mpv reports load failures as text.  Anything not listed maps to analytics.UnknownErrorCode.
var fileErrorCodes = map[string]int{
	"loading failed":                     1001,
	"unrecognized file format":           1002,
	"no audio or video data played":      1003,
	"audio output initialization failed": 1004,
	"video output initialization failed": 1005,
}

// playbackState is what the mapper knows about the file mpv is playing
type playbackState struct {
	position time.Duration
	duration time.Duration
	loaded   bool
	started  bool
	paused   bool
	ended    bool
	seeking  bool
	bitrate  int64
	videoID  string
	audio    string
	subtitle string
}

// signalMapper turns the raw mpv event stream into analytics signals.  It only keeps enough state to suppress
// duplicates and to answer the analytics.Player queries; it performs no I/O.
type signalMapper struct {
	format analytics.SourceFormat
	state  playbackState
}

func newSignalMapper(mediaURL string) *signalMapper {
	return &signalMapper{
		format: detectFormat(mediaURL),
		state:  playbackState{bitrate: analytics.UnknownBitrate},
	}
}

// Map consumes one mpv event and returns the signals it implies, in order
func (m *signalMapper) Map(ev MPVEvent) []analytics.Signal {
	switch ev.Event {
	case "start-file":
		m.state = playbackState{bitrate: analytics.UnknownBitrate, paused: m.state.paused}
		if m.state.paused {
			return nil
		}
		return []analytics.Signal{analytics.PlayIntent{}}

	case "file-loaded":
		m.state.loaded = true
		return []analytics.Signal{
			analytics.MetadataLoaded{},
			analytics.SourceSelected{Format: m.format},
		}

	case "seek":
		if !m.state.started {
			return nil
		}
		if m.state.ended {
			m.state.ended = false
			return []analytics.Signal{analytics.Replay{}}
		}
		// time-pos only moves to the target after the seek event, so the target is reported on the restart
		m.state.seeking = true
		return nil

	case "playback-restart":
		m.state.started = true
		var signals []analytics.Signal
		if m.state.seeking {
			m.state.seeking = false
			signals = append(signals, analytics.Seeking{Target: m.state.position})
		}
		if !m.state.paused {
			signals = append(signals, analytics.Playing{})
		}
		return signals

	case "end-file":
		return m.endFile(ev)

	case "property-change":
		return m.propertyChange(ev)
	}
	return nil
}

func (m *signalMapper) endFile(ev MPVEvent) []analytics.Signal {
	switch ev.Reason {
	case "eof":
		if m.state.ended {
			return nil
		}
		m.state.ended = true
		return []analytics.Signal{analytics.Ended{}}
	case "error":
		code, ok := fileErrorCodes[ev.FileError]
		if !ok {
			code = analytics.UnknownErrorCode
		}
		return []analytics.Signal{analytics.Error{Code: code}}
	default:
		return nil
	}
}

func (m *signalMapper) propertyChange(ev MPVEvent) []analytics.Signal {
	switch ev.ID {
	case propTimePos:
		m.state.position = decodeSeconds(ev.Data)
	case propDuration:
		m.state.duration = decodeSeconds(ev.Data)

	case propPause:
		paused := decodeBool(ev.Data)
		if paused == m.state.paused {
			return nil
		}
		m.state.paused = paused
		if !m.state.started {
			return nil
		}
		if paused {
			if m.state.ended {
				return nil
			}
			return []analytics.Signal{analytics.Paused{}}
		}
		return []analytics.Signal{analytics.PlayIntent{}, analytics.Playing{}}

	case propPausedForCache:
		if !m.state.loaded {
			return nil
		}
		if decodeBool(ev.Data) {
			return []analytics.Signal{analytics.StateChanged{State: analytics.StateBuffering}}
		}
		return []analytics.Signal{analytics.StateChanged{State: analytics.StateReady}}

	case propEOFReached:
		if !decodeBool(ev.Data) || m.state.ended {
			return nil
		}
		m.state.ended = true
		return []analytics.Signal{analytics.Ended{}}

	case propHLSBitrate:
		bitrate := decodeInt(ev.Data)
		if bitrate <= 0 {
			return nil
		}
		m.state.bitrate = bitrate
		if !m.state.started {
			return nil
		}
		return []analytics.Signal{analytics.BitrateUpdated{Bitrate: bitrate}}

	case propVideoTrack:
		return m.trackChanged(&m.state.videoID, string(ev.Data), analytics.TrackVideo)
	case propAudioLang:
		return m.trackChanged(&m.state.audio, decodeString(ev.Data), analytics.TrackAudio)
	case propSubLang:
		return m.trackChanged(&m.state.subtitle, decodeString(ev.Data), analytics.TrackText)
	}
	return nil
}

// trackChanged records a track property and reports it as a manual selection once playback is under way.  The
// values mpv settles on while loading are the initial selection, not a change.
func (m *signalMapper) trackChanged(current *string, value string, kind analytics.TrackKind) []analytics.Signal {
	if *current == value {
		return nil
	}
	*current = value
	if !m.state.started {
		return nil
	}
	changed := analytics.TrackChanged{Kind: kind, Bitrate: m.state.bitrate}
	if kind != analytics.TrackVideo {
		changed.Language = value
	}
	return []analytics.Signal{changed}
}

// isLive treats media without a known duration as a live stream
func (m *signalMapper) isLive() bool {
	return m.state.loaded && m.state.duration <= 0
}

// detectFormat guesses the adaptive streaming format from the media URL
func detectFormat(mediaURL string) analytics.SourceFormat {
	p := mediaURL
	if u, err := url.Parse(mediaURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mpd":
		return analytics.FormatDash
	case ".m3u8":
		return analytics.FormatHLS
	default:
		return analytics.FormatOther
	}
}

func decodeSeconds(data json.RawMessage) time.Duration {
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func decodeBool(data json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		log.Trace("Non-boolean mpv property value", "data", string(data))
		return false
	}
	return b
}

func decodeInt(data json.RawMessage) int64 {
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return 0
	}
	return int64(n)
}

func decodeString(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}
