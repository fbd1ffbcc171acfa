package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/kava/internal/version"
)

func testConfig() Config {
	return Config{PartnerID: 2504201}
}

func mustBuild(t *testing.T, ev EventType, s *Session, p Player, cfg Config, now time.Time) Params {
	t.Helper()
	params, err := BuildParams(ev, s, p, cfg, now)
	require.NoError(t, err)
	return params
}

func value(t *testing.T, params Params, key string) string {
	t.Helper()
	v, ok := params.Get(key)
	require.True(t, ok, "missing param %q", key)
	return v
}

func TestBuildParamsCommonFields(t *testing.T) {
	s := NewSession(Media{ID: "1_abcd", Type: MediaTypeVod})
	p := &fakePlayer{position: 12345 * time.Millisecond, duration: time.Minute, sessionID: "sess-1"}

	params := mustBuild(t, EventImpression, s, p, testConfig(), time.Now())

	assert.Equal(t, []string{
		"service", "action", "eventType", "partnerId", "entryId", "sessionId", "eventIndex", "referrer",
		"deliveryType", "playbackType", "clientVer", "clientTag", "position",
	}, params.Keys())

	assert.Equal(t, "analytics", value(t, params, "service"))
	assert.Equal(t, "trackEvent", value(t, params, "action"))
	assert.Equal(t, "1", value(t, params, "eventType"))
	assert.Equal(t, "2504201", value(t, params, "partnerId"))
	assert.Equal(t, "1_abcd", value(t, params, "entryId"))
	assert.Equal(t, "sess-1", value(t, params, "sessionId"))
	assert.Equal(t, "1", value(t, params, "eventIndex"))
	assert.Equal(t, "YXBwOi8va2F2YQ==", value(t, params, "referrer"))
	assert.Equal(t, "url", value(t, params, "deliveryType"))
	assert.Equal(t, "vod", value(t, params, "playbackType"))
	assert.Equal(t, version.ClientTag(), value(t, params, "clientVer"))
	assert.Equal(t, version.ClientTag(), value(t, params, "clientTag"))
	assert.Equal(t, "12.345", value(t, params, "position"))
}

func TestBuildParamsMandatoryFields(t *testing.T) {
	s := NewSession(Media{ID: "1_abcd"})

	_, err := BuildParams(EventImpression, s, nil, Config{}, time.Now())
	assert.ErrorIs(t, err, ErrPartnerIDMissing)

	_, err = BuildParams(EventImpression, s, nil, Config{PartnerID: -5}, time.Now())
	assert.ErrorIs(t, err, ErrPartnerIDMissing)

	_, err = BuildParams(EventImpression, NewSession(Media{}), nil, testConfig(), time.Now())
	assert.ErrorIs(t, err, ErrEntryIDMissing)

	_, err = BuildParams(EventImpression, nil, nil, testConfig(), time.Now())
	assert.ErrorIs(t, err, ErrEntryIDMissing)
}

func TestBuildParamsSessionStartTime(t *testing.T) {
	s := NewSession(Media{ID: "1_abcd"})

	params := mustBuild(t, EventImpression, s, nil, testConfig(), time.Now())
	_, ok := params.Get("sessionStartTime")
	assert.False(t, ok)

	require.True(t, s.SetStartTime("1709294400"))
	assert.False(t, s.SetStartTime("1709299999"))
	assert.False(t, s.SetStartTime(""))

	params = mustBuild(t, EventImpression, s, nil, testConfig(), time.Now())
	keys := params.Keys()
	assert.Equal(t, "sessionStartTime", keys[len(keys)-1])
	assert.Equal(t, "1709294400", value(t, params, "sessionStartTime"))
}

func TestBuildParamsEventFields(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	newSession := func() *Session {
		s := NewSession(Media{ID: "1_abcd", Type: MediaTypeVod})
		s.ActualBitrate = 480_000
		s.Buffer.Window = 1234567 * time.Microsecond
		s.Buffer.Total = 5 * time.Second
		s.closedWindow = 750 * time.Millisecond
		s.JoinTimeStart = now.Add(-1500 * time.Millisecond)
		s.TargetSeekPosition = 90 * time.Second
		s.AudioLanguage = "jpn"
		s.CaptionLanguage = "eng"
		return s
	}

	tests := []struct {
		event EventType
		want  map[string]string
	}{
		{
			event: EventPlay,
			want: map[string]string{
				"bufferTime":    "1.234",
				"bufferTimeSum": "5",
				"actualBitrate": "480000",
				"joinTime":      "1.5",
			},
		},
		{
			event: EventResume,
			want: map[string]string{
				"bufferTime":    "1.234",
				"bufferTimeSum": "5",
				"actualBitrate": "480000",
			},
		},
		{
			event: EventView,
			want: map[string]string{
				"bufferTime":    "0.75",
				"bufferTimeSum": "5",
				"actualBitrate": "480000",
			},
		},
		{
			event: EventSeek,
			want:  map[string]string{"targetPosition": "90"},
		},
		{
			event: EventSourceSelected,
			want:  map[string]string{"actualBitrate": "480000"},
		},
		{
			event: EventFlavorSwitched,
			want:  map[string]string{"actualBitrate": "480000"},
		},
		{
			event: EventAudioSelected,
			want:  map[string]string{"language": "jpn"},
		},
		{
			event: EventCaptions,
			want:  map[string]string{"caption": "eng"},
		},
		{
			event: EventPause,
			want:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			params := mustBuild(t, tt.event, newSession(), nil, testConfig(), now)

			common := 13
			assert.Equal(t, common+len(tt.want), params.Len())
			for k, v := range tt.want {
				assert.Equal(t, v, value(t, params, k), k)
			}
		})
	}
}

func TestBuildParamsJoinTimeWithoutIntent(t *testing.T) {
	s := NewSession(Media{ID: "1_abcd"})

	params := mustBuild(t, EventPlay, s, nil, testConfig(), time.Now())
	assert.Equal(t, "0", value(t, params, "joinTime"))
}

func TestBuildParamsErrorCodeConsumed(t *testing.T) {
	s := NewSession(Media{ID: "1_abcd"})
	s.ErrorCode = 7000

	params := mustBuild(t, EventError, s, &fakePlayer{}, testConfig(), time.Now())
	assert.Equal(t, "7000", value(t, params, "errorCode"))
	assert.Equal(t, UnknownErrorCode, s.ErrorCode)

	params = mustBuild(t, EventError, s, &fakePlayer{}, testConfig(), time.Now())
	_, ok := params.Get("errorCode")
	assert.False(t, ok, "a consumed error code is not reported again")
}

func TestBuildParamsOptionalFields(t *testing.T) {
	cfg := testConfig()
	cfg.PlaybackContext = "ctx"
	cfg.CustomVar1 = "one"
	cfg.CustomVar3 = "three"
	cfg.KS = "djJ8MjUwNDIwMX"
	cfg.UIConfID = 4242
	cfg.Referrer = "cmVm"
	cfg.ClientTag = "embedder:1.0"

	params := mustBuild(t, EventPause, NewSession(Media{ID: "1_abcd"}), nil, cfg, time.Now())

	keys := params.Keys()
	assert.Equal(t, []string{"playbackContext", "customVar1", "customVar3", "ks", "uiConfId"}, keys[len(keys)-5:])
	assert.Equal(t, "4242", value(t, params, "uiConfId"))
	assert.Equal(t, "cmVm", value(t, params, "referrer"))
	assert.Equal(t, "embedder:1.0", value(t, params, "clientVer"))
	_, ok := params.Get("customVar2")
	assert.False(t, ok)
}

func TestBuildParamsPlaybackType(t *testing.T) {
	tests := []struct {
		name   string
		event  EventType
		media  MediaType
		player Player
		want   PlaybackType
	}{
		{
			name:   "tagged vod",
			event:  EventPlay,
			media:  MediaTypeVod,
			player: &fakePlayer{live: true},
			want:   PlaybackVod,
		},
		{
			name:   "tagged live at the edge",
			event:  EventPlay,
			media:  MediaTypeLive,
			player: &fakePlayer{live: true, duration: 10 * time.Minute, position: 9*time.Minute + 30*time.Second},
			want:   PlaybackLive,
		},
		{
			name:   "tagged live behind the threshold",
			event:  EventPlay,
			media:  MediaTypeLive,
			player: &fakePlayer{live: true, duration: 10 * time.Minute, position: 8 * time.Minute},
			want:   PlaybackDvr,
		},
		{
			name:   "tagged live without player",
			event:  EventPlay,
			media:  MediaTypeLive,
			player: nil,
			want:   PlaybackLive,
		},
		{
			name:   "untagged without player",
			event:  EventPlay,
			media:  MediaTypeUnknown,
			player: nil,
			want:   PlaybackUnknown,
		},
		{
			name:   "untagged error",
			event:  EventError,
			media:  MediaTypeUnknown,
			player: &fakePlayer{},
			want:   PlaybackUnknown,
		},
		{
			name:   "untagged on demand",
			event:  EventPlay,
			media:  MediaTypeUnknown,
			player: &fakePlayer{},
			want:   PlaybackVod,
		},
		{
			name:   "untagged live far behind",
			event:  EventPlay,
			media:  MediaTypeUnknown,
			player: &fakePlayer{live: true, duration: time.Hour},
			want:   PlaybackDvr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(Media{ID: "1_abcd", Type: tt.media})
			params := mustBuild(t, tt.event, s, tt.player, testConfig(), time.Now())
			assert.Equal(t, string(tt.want), value(t, params, "playbackType"))
		})
	}
}

func TestParams(t *testing.T) {
	var p Params
	p.Set("b", "1")
	p.Set("a", "x y&z")
	p.Set("b", "2")

	assert.Equal(t, []string{"b", "a"}, p.Keys())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "b=2&a=x+y%26z", p.Encode())

	_, ok := p.Get("c")
	assert.False(t, ok)
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0"},
		{2 * time.Second, "2"},
		{1500 * time.Millisecond, "1.5"},
		{999999 * time.Microsecond, "0.999"},
		{61*time.Second + 5*time.Millisecond, "61.005"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSeconds(tt.in), tt.in.String())
	}
}

func TestEventType(t *testing.T) {
	assert.Equal(t, "PLAY_REACHED_25_PERCENT", EventPlayReached25.String())
	assert.Equal(t, "99", EventView.Code())
	assert.Equal(t, "UNKNOWN_5", EventType(5).String())
}
