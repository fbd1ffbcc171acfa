package models

import (
	"time"

	"github.com/PizzaHomicide/kava/internal/analytics"
)

// BeaconMsg is sent when the tracker reports a delivered beacon
type BeaconMsg struct {
	Name string
	At   time.Time
}

// FeedClosedMsg is sent when the beacon feed will deliver no more beacons
type FeedClosedMsg struct{}

// SnapshotMsg carries a fresh copy of the session counters and delivery latency
type SnapshotMsg struct {
	Snapshot analytics.Snapshot
	P50, P95 time.Duration
}

// PlaybackEndedMsg is sent when the player has finished, for whatever reason
type PlaybackEndedMsg struct {
	Err error
}
