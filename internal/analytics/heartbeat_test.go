package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeat(t *testing.T) {
	ticks := make(chan uint64, 16)
	hb := NewHeartbeat(time.Hour, func(gen uint64) {
		select {
		case ticks <- gen:
		default:
		}
	})
	defer hb.Stop()

	assert.False(t, hb.Running())
	assert.Equal(t, time.Hour, hb.Period())

	hb.Start()
	assert.True(t, hb.Running())

	select {
	case gen := <-ticks:
		assert.Equal(t, uint64(1), gen, "first tick fires immediately")
	case <-time.After(time.Second):
		require.Fail(t, "no immediate tick")
	}
	assert.True(t, hb.Current(1))

	hb.Start()
	assert.False(t, hb.Current(1), "restarting begins a new generation")
	assert.True(t, hb.Current(2))

	hb.Stop()
	assert.False(t, hb.Running())
	assert.False(t, hb.Current(2))

	hb.Stop()
	assert.False(t, hb.Running(), "stop is idempotent")
}

func TestHeartbeatTicksPeriodically(t *testing.T) {
	ticks := make(chan uint64, 64)
	hb := NewHeartbeat(5*time.Millisecond, func(gen uint64) {
		select {
		case ticks <- gen:
		default:
		}
	})
	hb.Start()
	defer hb.Stop()

	assert.Eventually(t, func() bool { return len(ticks) >= 3 }, time.Second, 5*time.Millisecond)
}

func TestHeartbeatDefaultPeriod(t *testing.T) {
	hb := NewHeartbeat(0, func(uint64) {})
	assert.Equal(t, DefaultHeartbeatPeriod, hb.Period())
}

func TestBufferAccumulator(t *testing.T) {
	var b BufferAccumulator
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Zero(t, b.Ready(start), "ready without start does nothing")

	b.Start(start)
	b.Start(start.Add(time.Second))
	assert.True(t, b.Buffering())
	assert.Equal(t, 2*time.Second, b.Ready(start.Add(3*time.Second)))
	assert.Equal(t, 2*time.Second, b.Window)
	assert.Equal(t, 2*time.Second, b.Total)

	b.ResetWindow()
	assert.Zero(t, b.Window)
	assert.Equal(t, 2*time.Second, b.Total)

	assert.True(t, b.Buffering(), "ready keeps the mark armed")
	assert.Equal(t, 4*time.Second, b.Ready(start.Add(7*time.Second)))
	assert.Equal(t, 4*time.Second, b.Window)
	assert.Equal(t, 6*time.Second, b.Total)
}
