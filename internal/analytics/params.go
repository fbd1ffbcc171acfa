package analytics

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrPartnerIDMissing is returned when no valid partner id is configured
	ErrPartnerIDMissing = errors.New("mandatory field partnerId is missing")

	// ErrEntryIDMissing is returned when the loaded media has no entry id
	ErrEntryIDMissing = errors.New("mandatory field entryId is missing")
)

// Params is a string map that remembers insertion order, so beacons are encoded deterministically
type Params struct {
	keys   []string
	values map[string]string
}

// Set adds or replaces a parameter.  Replacing keeps the original position.
func (p *Params) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns a parameter value and whether it was set
func (p Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the parameter names in insertion order
func (p Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len returns the number of parameters
func (p Params) Len() int {
	return len(p.keys)
}

// Encode renders the parameters as a URL query string, in insertion order
func (p Params) Encode() string {
	var sb strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.values[k]))
	}
	return sb.String()
}

// PlaybackType is how the backend classifies the playback
type PlaybackType string

const (
	PlaybackVod     PlaybackType = "vod"
	PlaybackLive    PlaybackType = "live"
	PlaybackDvr     PlaybackType = "dvr"
	PlaybackUnknown PlaybackType = "unknown"
)

// BuildParams assembles the beacon parameters for ev from the session state.  Building an ERROR beacon consumes the
// session's error code, so a stale code is never attached to a later error.
func BuildParams(ev EventType, s *Session, p Player, cfg Config, now time.Time) (Params, error) {
	if !cfg.PartnerIDValid() {
		return Params{}, ErrPartnerIDMissing
	}
	if s == nil || s.Media.ID == "" {
		return Params{}, ErrEntryIDMissing
	}
	cfg = cfg.withDefaults()

	var sessionID string
	var position time.Duration
	if p != nil {
		sessionID = p.SessionID()
		position = p.Position()
	}

	var params Params
	params.Set("service", "analytics")
	params.Set("action", "trackEvent")
	params.Set("eventType", ev.Code())
	params.Set("partnerId", strconv.Itoa(cfg.PartnerID))
	params.Set("entryId", s.Media.ID)
	params.Set("sessionId", sessionID)
	params.Set("eventIndex", strconv.Itoa(s.EventIndex))
	params.Set("referrer", cfg.Referrer)
	params.Set("deliveryType", s.DeliveryType)
	params.Set("playbackType", string(playbackType(ev, s.Media, p, cfg.DVRThreshold)))
	params.Set("clientVer", cfg.ClientTag)
	params.Set("clientTag", cfg.ClientTag)
	params.Set("position", formatSeconds(position))

	if s.StartTime != "" {
		params.Set("sessionStartTime", s.StartTime)
	}

	switch ev {
	case EventView, EventPlay, EventResume:
		window := s.Buffer.Window
		if ev == EventView {
			window = s.closedWindow
		}
		params.Set("bufferTime", formatSeconds(window))
		params.Set("bufferTimeSum", formatSeconds(s.Buffer.Total))
		params.Set("actualBitrate", strconv.FormatInt(s.ActualBitrate, 10))
		if ev == EventPlay {
			var joinTime time.Duration
			if !s.JoinTimeStart.IsZero() {
				joinTime = now.Sub(s.JoinTimeStart)
			}
			params.Set("joinTime", formatSeconds(joinTime))
		}
	case EventSeek:
		params.Set("targetPosition", formatSeconds(s.TargetSeekPosition))
	case EventSourceSelected, EventFlavorSwitched:
		params.Set("actualBitrate", strconv.FormatInt(s.ActualBitrate, 10))
	case EventCaptions:
		params.Set("caption", s.CaptionLanguage)
	case EventAudioSelected:
		params.Set("language", s.AudioLanguage)
	case EventError:
		if s.ErrorCode != UnknownErrorCode {
			params.Set("errorCode", strconv.Itoa(s.ErrorCode))
			s.ErrorCode = UnknownErrorCode
		}
	}

	addOptionalParams(&params, cfg)
	return params, nil
}

func addOptionalParams(params *Params, cfg Config) {
	if cfg.PlaybackContext != "" {
		params.Set("playbackContext", cfg.PlaybackContext)
	}
	if cfg.CustomVar1 != "" {
		params.Set("customVar1", cfg.CustomVar1)
	}
	if cfg.CustomVar2 != "" {
		params.Set("customVar2", cfg.CustomVar2)
	}
	if cfg.CustomVar3 != "" {
		params.Set("customVar3", cfg.CustomVar3)
	}
	if cfg.KS != "" {
		params.Set("ks", cfg.KS)
	}
	if cfg.UIConfID > 0 {
		params.Set("uiConfId", strconv.Itoa(cfg.UIConfID))
	}
}

// playbackType prefers the media descriptor's tag and only asks the player when the descriptor has none
func playbackType(ev EventType, media Media, p Player, dvrThreshold time.Duration) PlaybackType {
	switch media.Type {
	case MediaTypeVod:
		return PlaybackVod
	case MediaTypeLive:
		return liveOrDvr(p, dvrThreshold)
	}

	if p == nil || ev == EventError {
		return PlaybackUnknown
	}
	if !p.IsLive() {
		return PlaybackVod
	}
	return liveOrDvr(p, dvrThreshold)
}

func liveOrDvr(p Player, dvrThreshold time.Duration) PlaybackType {
	if p == nil || !p.IsLive() {
		return PlaybackLive
	}
	if p.Duration()-p.Position() >= dvrThreshold {
		return PlaybackDvr
	}
	return PlaybackLive
}

// formatSeconds is the one rounding rule for every time value on the wire: truncate to whole milliseconds and
// render as seconds with the shortest exact decimal.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Milliseconds())/1000, 'f', -1, 64)
}
