package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// driver feeds signals into a session with a controllable clock and player
type driver struct {
	session *Session
	clock   *fixedClock
	player  *fakePlayer
}

func newDriver() *driver {
	return &driver{
		session: NewSession(Media{ID: "1_abcd", Type: MediaTypeVod}),
		clock:   newFixedClock(),
		player:  &fakePlayer{duration: 100 * time.Second},
	}
}

func (d *driver) apply(sig Signal) Transition {
	return d.session.Apply(sig, Env{Now: d.clock.Now(), Player: d.player})
}

func (d *driver) events(sig Signal) []EventType {
	return d.apply(sig).Events
}

func TestNewSession(t *testing.T) {
	s := NewSession(Media{ID: "1_abcd"})

	assert.Equal(t, 1, s.EventIndex)
	assert.True(t, s.Flags.FirstPlay)
	assert.True(t, s.Flags.Paused)
	assert.False(t, s.Flags.ImpressionSent)
	assert.Equal(t, UnknownBitrate, s.ActualBitrate)
	assert.Equal(t, UnknownErrorCode, s.ErrorCode)
	assert.Equal(t, "url", s.DeliveryType)
	assert.Empty(t, s.StartTime)
}

func TestApplyPlaybackLifecycle(t *testing.T) {
	d := newDriver()

	tr := d.apply(MetadataLoaded{})
	assert.Equal(t, []EventType{EventImpression}, tr.Events)
	assert.True(t, tr.StartHeartbeat)
	assert.True(t, d.session.Flags.ImpressionSent)

	t.Run("second metadata is ignored", func(t *testing.T) {
		tr := d.apply(MetadataLoaded{})
		assert.Empty(t, tr.Events)
		assert.False(t, tr.StartHeartbeat)
	})

	assert.Equal(t, []EventType{EventPlayRequest}, d.events(PlayIntent{}))
	assert.Equal(t, []EventType{EventPlay}, d.events(Playing{}))
	assert.False(t, d.session.Flags.Paused)

	t.Run("playing while playing reports nothing", func(t *testing.T) {
		assert.Empty(t, d.events(Playing{}))
	})

	assert.Equal(t, []EventType{EventPause}, d.events(Paused{}))
	assert.True(t, d.session.Flags.Paused)
	assert.Equal(t, []EventType{EventResume}, d.events(Playing{}))
}

func TestApplyAutoPlayBeforeMetadata(t *testing.T) {
	d := newDriver()

	assert.Empty(t, d.events(PlayIntent{}))
	assert.True(t, d.session.Flags.AutoPlay)

	assert.Equal(t, []EventType{EventImpression, EventPlayRequest}, d.events(MetadataLoaded{}))
	assert.False(t, d.session.Flags.AutoPlay)
}

func TestApplyJoinTimeStart(t *testing.T) {
	d := newDriver()
	start := d.clock.Now()

	d.apply(MetadataLoaded{})
	d.apply(PlayIntent{})
	assert.Equal(t, start, d.session.JoinTimeStart)

	d.clock.Advance(2 * time.Second)
	d.apply(PlayIntent{})
	assert.Equal(t, start, d.session.JoinTimeStart, "only the first intent starts the join timer")

	d.apply(Playing{})
	d.apply(Paused{})
	d.apply(PlayIntent{})
	assert.Equal(t, start, d.session.JoinTimeStart)
}

func TestApplyEndedAndReplay(t *testing.T) {
	d := newDriver()
	d.apply(MetadataLoaded{})
	d.apply(PlayIntent{})
	d.apply(Playing{})

	d.player.position = 100 * time.Second
	assert.Equal(t, []EventType{
		EventPlayReached25,
		EventPlayReached50,
		EventPlayReached75,
		EventPlayReached100,
	}, d.events(Ended{}))
	assert.True(t, d.session.Flags.Ended)
	assert.True(t, d.session.Flags.Paused)

	assert.Equal(t, []EventType{EventReplay}, d.events(Replay{}))
	assert.Empty(t, d.events(Playing{}), "playing after a replay is not a resume")
	assert.False(t, d.session.Flags.Ended)

	t.Run("milestones are never repeated", func(t *testing.T) {
		assert.Empty(t, d.events(Ended{}))
	})
}

func TestApplyMilestonesOnHeartbeat(t *testing.T) {
	tick := HeartbeatTick{Period: time.Second}

	t.Run("vod quartiles fire once in order", func(t *testing.T) {
		d := newDriver()
		d.apply(MetadataLoaded{})
		d.apply(Playing{})

		d.player.position = 10 * time.Second
		assert.Empty(t, d.events(tick))

		d.player.position = 90 * time.Second
		assert.Equal(t, []EventType{EventPlayReached25, EventPlayReached50, EventPlayReached75}, d.events(tick))
		assert.Empty(t, d.events(tick))
	})

	t.Run("exact quartile boundary fires", func(t *testing.T) {
		d := newDriver()
		d.apply(Playing{})

		d.player.position = 50 * time.Second
		assert.Equal(t, []EventType{EventPlayReached25, EventPlayReached50}, d.events(tick))
	})

	t.Run("live media has no quartiles", func(t *testing.T) {
		d := newDriver()
		d.player.live = true
		d.apply(Playing{})

		d.player.position = 90 * time.Second
		assert.Empty(t, d.events(tick))
	})

	t.Run("unknown duration has no quartiles", func(t *testing.T) {
		d := newDriver()
		d.player.duration = 0
		d.apply(Playing{})

		d.player.position = 90 * time.Second
		assert.Empty(t, d.events(tick))
	})

	t.Run("paused ticks do nothing", func(t *testing.T) {
		d := newDriver()
		d.player.position = 90 * time.Second
		assert.Empty(t, d.events(tick))
		assert.False(t, d.session.Milestones.Reached25)
	})
}

func TestApplyViewEveryTenSeconds(t *testing.T) {
	d := newDriver()
	d.player.duration = 0
	d.apply(MetadataLoaded{})
	d.apply(Playing{})

	d.apply(StateChanged{State: StateBuffering})
	d.clock.Advance(1500 * time.Millisecond)
	d.apply(StateChanged{State: StateReady})
	require.Equal(t, 1500*time.Millisecond, d.session.Buffer.Window)

	tick := HeartbeatTick{Period: time.Second}
	for i := 0; i < 9; i++ {
		assert.Empty(t, d.events(tick), "tick %d", i+1)
	}
	assert.Equal(t, []EventType{EventView}, d.events(tick))

	assert.Equal(t, 1500*time.Millisecond, d.session.closedWindow)
	assert.Zero(t, d.session.Buffer.Window)
	assert.Equal(t, 1500*time.Millisecond, d.session.Buffer.Total)

	t.Run("counter restarts after a view", func(t *testing.T) {
		for i := 0; i < 9; i++ {
			assert.Empty(t, d.events(tick))
		}
		assert.Equal(t, []EventType{EventView}, d.events(tick))
	})

	t.Run("paused time does not count", func(t *testing.T) {
		d.apply(Paused{})
		for i := 0; i < 20; i++ {
			assert.Empty(t, d.events(tick))
		}
	})
}

func TestApplyBuffering(t *testing.T) {
	t.Run("ready re-arms the mark", func(t *testing.T) {
		d := newDriver()
		d.apply(MetadataLoaded{})

		d.apply(StateChanged{State: StateBuffering})
		d.clock.Advance(3 * time.Second)
		d.apply(StateChanged{State: StateReady})
		assert.Equal(t, 3*time.Second, d.session.Buffer.Total)

		d.clock.Advance(2 * time.Second)
		d.apply(StateChanged{State: StateReady})

		assert.Equal(t, 5*time.Second, d.session.Buffer.Window)
		assert.Equal(t, 5*time.Second, d.session.Buffer.Total)
		assert.True(t, d.session.Buffer.Buffering())
	})

	t.Run("ready without buffering adds nothing", func(t *testing.T) {
		d := newDriver()
		d.apply(MetadataLoaded{})

		d.clock.Advance(3 * time.Second)
		d.apply(StateChanged{State: StateReady})

		assert.Zero(t, d.session.Buffer.Total)
		assert.False(t, d.session.Buffer.Buffering())
	})

	t.Run("ignored before impression", func(t *testing.T) {
		d := newDriver()

		d.apply(StateChanged{State: StateBuffering})
		d.clock.Advance(3 * time.Second)
		d.apply(StateChanged{State: StateReady})

		assert.Zero(t, d.session.Buffer.Total)
	})

	t.Run("other states are ignored", func(t *testing.T) {
		d := newDriver()
		d.apply(MetadataLoaded{})

		d.apply(StateChanged{State: StateBuffering})
		d.clock.Advance(time.Second)
		assert.Empty(t, d.events(StateChanged{State: StateOther}))
		assert.True(t, d.session.Buffer.Buffering())
	})
}

func TestApplyBitrate(t *testing.T) {
	d := newDriver()

	assert.Equal(t, []EventType{EventFlavorSwitched}, d.events(BitrateUpdated{Bitrate: 1_200_000}))
	assert.Empty(t, d.events(BitrateUpdated{Bitrate: 1_200_000}))
	assert.Equal(t, []EventType{EventFlavorSwitched}, d.events(BitrateUpdated{Bitrate: 800_000}))
	assert.Equal(t, int64(800_000), d.session.ActualBitrate)
}

func TestApplyTrackChanged(t *testing.T) {
	tests := []struct {
		name   string
		signal TrackChanged
		want   EventType
		check  func(t *testing.T, s *Session)
	}{
		{
			name:   "video",
			signal: TrackChanged{Kind: TrackVideo, Bitrate: 2_500_000},
			want:   EventSourceSelected,
			check: func(t *testing.T, s *Session) {
				assert.Equal(t, int64(2_500_000), s.ActualBitrate)
			},
		},
		{
			name:   "audio",
			signal: TrackChanged{Kind: TrackAudio, Language: "jpn"},
			want:   EventAudioSelected,
			check: func(t *testing.T, s *Session) {
				assert.Equal(t, "jpn", s.AudioLanguage)
			},
		},
		{
			name:   "text",
			signal: TrackChanged{Kind: TrackText, Language: "eng"},
			want:   EventCaptions,
			check: func(t *testing.T, s *Session) {
				assert.Equal(t, "eng", s.CaptionLanguage)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDriver()
			assert.Equal(t, []EventType{tt.want}, d.events(tt.signal))
			tt.check(t, d.session)
		})
	}
}

func TestApplyMiscSignals(t *testing.T) {
	d := newDriver()

	assert.Equal(t, []EventType{EventSeek}, d.events(Seeking{Target: 42 * time.Second}))
	assert.Equal(t, 42*time.Second, d.session.TargetSeekPosition)

	assert.Empty(t, d.events(SourceSelected{Format: FormatHLS}))
	assert.Equal(t, "applehttp", d.session.DeliveryType)
	d.apply(SourceSelected{Format: FormatDash})
	assert.Equal(t, "mpegdash", d.session.DeliveryType)

	assert.Equal(t, []EventType{EventError}, d.events(Error{Code: 7000}))
	assert.Equal(t, 7000, d.session.ErrorCode)
}

func TestApplyWithoutPlayer(t *testing.T) {
	s := NewSession(Media{ID: "1_abcd"})
	env := Env{Now: time.Now()}

	s.Apply(Playing{}, env)
	assert.Empty(t, s.Apply(HeartbeatTick{Period: time.Second}, env).Events)
	assert.Equal(t, []EventType{EventPlayReached100}, s.Apply(Ended{}, env).Events)
}

func TestMilestonesCheck(t *testing.T) {
	var m Milestones

	assert.Empty(t, m.Check(0.1))
	assert.Equal(t, []EventType{EventPlayReached25}, m.Check(0.3))
	assert.Equal(t, []EventType{EventPlayReached50, EventPlayReached75}, m.Check(0.8))
	assert.Empty(t, m.Check(1))
	assert.True(t, m.Complete())
	assert.False(t, m.Complete())
}
