package models

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/PizzaHomicide/kava/internal/analytics"
)

const feedBuffer = 256

// Feed bridges tracker notifications into the bubbletea event loop.  It implements analytics.Observer; beacons
// that arrive while the buffer is full are dropped rather than holding up the tracker.
type Feed struct {
	ch        chan BeaconMsg
	now       func() time.Time
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

var _ analytics.Observer = (*Feed)(nil)

// NewFeed creates an empty feed
func NewFeed() *Feed {
	return &Feed{
		ch:  make(chan BeaconMsg, feedBuffer),
		now: time.Now,
	}
}

// BeaconSent implements analytics.Observer
func (f *Feed) BeaconSent(name string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}

	select {
	case f.ch <- BeaconMsg{Name: name, At: f.now()}:
	default:
	}
}

// Close stops the feed.  Pending beacons are still delivered.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.ch)
		f.mu.Unlock()
	})
}

// Next returns a command that waits for the next beacon
func (f *Feed) Next() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-f.ch
		if !ok {
			return FeedClosedMsg{}
		}
		return msg
	}
}
