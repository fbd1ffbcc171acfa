package analytics

import "time"

// ViewInterval is how much unpaused playback one VIEW beacon represents
const ViewInterval = 10 * time.Second

// Env is the outside world as seen by a single transition: the current time and the host player, which may be nil
type Env struct {
	Now    time.Time
	Player Player
}

// Transition is the outcome of applying one signal to a session
type Transition struct {
	// Events to emit, in order
	Events []EventType
	// StartHeartbeat asks the owner to (re)start the heartbeat scheduler
	StartHeartbeat bool
}

// Apply classifies sig against the session, mutating it, and returns the events it produces.  It does no I/O and
// never blocks, so the full state machine can be driven from tests with a fake player and a fixed clock.
func (s *Session) Apply(sig Signal, env Env) Transition {
	var t Transition

	switch sig := sig.(type) {
	case MetadataLoaded:
		if s.Flags.ImpressionSent {
			break
		}
		t.StartHeartbeat = true
		t.Events = append(t.Events, EventImpression)
		if s.Flags.AutoPlay {
			t.Events = append(t.Events, EventPlayRequest)
			s.Flags.AutoPlay = false
		}
		s.Flags.ImpressionSent = true

	case PlayIntent:
		if s.Flags.FirstPlay && s.JoinTimeStart.IsZero() {
			s.JoinTimeStart = env.Now
		}
		if s.Flags.ImpressionSent {
			t.Events = append(t.Events, EventPlayRequest)
		} else {
			s.Flags.AutoPlay = true
		}

	case Playing:
		if s.Flags.FirstPlay {
			s.Flags.FirstPlay = false
			t.Events = append(t.Events, EventPlay)
		} else if s.Flags.Paused && !s.Flags.Ended {
			t.Events = append(t.Events, EventResume)
		}
		// Cleared unconditionally so the Playing that follows a Replay is not reported as a RESUME
		s.Flags.Ended = false
		s.Flags.Paused = false

	case Paused:
		s.Flags.Paused = true
		t.Events = append(t.Events, EventPause)

	case Seeking:
		s.TargetSeekPosition = sig.Target
		t.Events = append(t.Events, EventSeek)

	case Replay:
		t.Events = append(t.Events, EventReplay)

	case SourceSelected:
		s.DeliveryType = sig.Format.DeliveryType()

	case TrackChanged:
		switch sig.Kind {
		case TrackVideo:
			s.ActualBitrate = sig.Bitrate
			t.Events = append(t.Events, EventSourceSelected)
		case TrackAudio:
			s.AudioLanguage = sig.Language
			t.Events = append(t.Events, EventAudioSelected)
		case TrackText:
			s.CaptionLanguage = sig.Language
			t.Events = append(t.Events, EventCaptions)
		}

	case BitrateUpdated:
		if sig.Bitrate != s.ActualBitrate {
			s.ActualBitrate = sig.Bitrate
			t.Events = append(t.Events, EventFlavorSwitched)
		}

	case Ended:
		t.Events = append(t.Events, s.checkMilestones(env.Player)...)
		if s.Milestones.Complete() {
			t.Events = append(t.Events, EventPlayReached100)
		}
		s.Flags.Ended = true
		s.Flags.Paused = true

	case StateChanged:
		switch sig.State {
		case StateBuffering:
			if s.Flags.ImpressionSent {
				s.Buffer.Start(env.Now)
			}
		case StateReady:
			s.Buffer.Ready(env.Now)
		}

	case Error:
		s.ErrorCode = sig.Code
		t.Events = append(t.Events, EventError)

	case HeartbeatTick:
		if s.Flags.Paused {
			break
		}
		s.viewCounter += sig.Period
		if s.viewCounter >= ViewInterval {
			t.Events = append(t.Events, EventView)
			s.viewCounter = 0
			s.closedWindow = s.Buffer.Window
			s.Buffer.ResetWindow()
		}
		t.Events = append(t.Events, s.checkMilestones(env.Player)...)
	}

	return t
}

// checkMilestones evaluates quartile progress for on-demand media.  Live media never reports quartiles.
func (s *Session) checkMilestones(p Player) []EventType {
	if p == nil || p.IsLive() {
		return nil
	}
	duration := p.Duration()
	if duration <= 0 {
		return nil
	}
	progress := float64(p.Position()) / float64(duration)
	return s.Milestones.Check(progress)
}
