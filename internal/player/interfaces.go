package player

import (
	"context"

	"github.com/PizzaHomicide/kava/internal/analytics"
)

// VideoPlayer is a media player the analytics tracker can observe.  It answers the tracker's position and
// duration queries and translates its own events into analytics signals.
type VideoPlayer interface {
	analytics.Player

	// Play starts playback of the given URL and returns a channel of lifecycle signals
	Play(ctx context.Context, url string) (<-chan analytics.Signal, error)

	// Stop stops the current playback
	Stop() error

	// Cleanup performs any necessary cleanup
	Cleanup()
}
