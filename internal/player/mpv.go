package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PizzaHomicide/kava/internal/analytics"
	"github.com/PizzaHomicide/kava/internal/config"
	"github.com/PizzaHomicide/kava/internal/log"
)

const (
	connectAttempts   = 20
	connectRetryDelay = 250 * time.Millisecond
)

// MPVPlayer implements the VideoPlayer interface for MPV.  mpv is started idle, the IPC connection is made and
// every property of interest observed, and only then is the file loaded, so no lifecycle event is missed.
type MPVPlayer struct {
	config     config.PlayerConfig
	socketPath string

	mu        sync.RWMutex
	ipcClient *MPVIPCClient
	cmd       *exec.Cmd
	mapper    *signalMapper
	sessionID string
}

var _ VideoPlayer = (*MPVPlayer)(nil)

// NewMPVPlayer creates a new MPV player instance
func NewMPVPlayer(cfg config.PlayerConfig) *MPVPlayer {
	return &MPVPlayer{
		config:     cfg,
		socketPath: GetMPVSocketPath(),
		mapper:     newSignalMapper(""),
	}
}

// Play starts mpv on url and returns the analytics signals derived from its events.  The channel is closed when the
// file ends, mpv exits or ctx is cancelled.
func (p *MPVPlayer) Play(ctx context.Context, url string) (<-chan analytics.Signal, error) {
	log.Info("Starting MPV playback", "url", url)

	mpvPath := p.config.Path
	if mpvPath == "" {
		mpvPath = "mpv"
	}

	args := []string{
		"--no-terminal",
		"--idle=yes",
		"--keep-open=yes",
		"--input-ipc-server=" + p.socketPath,
	}
	if p.config.Args != "" {
		args = append(args, ParseArgs(p.config.Args)...)
	}

	cmd := exec.Command(mpvPath, args...)
	setupPlayerProcess(cmd)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start MPV: %w", err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug("MPV exited", "error", err)
		}
	}()

	ipc := NewMPVIPCClient(p.socketPath)
	connCtx, cancel := context.WithTimeout(ctx, connectAttempts*connectRetryDelay)
	defer cancel()
	if err := ipc.WaitForConnection(connCtx, connectAttempts, connectRetryDelay); err != nil {
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("failed to connect to MPV: %w", err)
	}

	for id, name := range observedProperties {
		if err := ipc.ObserveProperty(id, name); err != nil {
			log.Warn("Failed to observe MPV property", "property", name, "error", err)
		}
	}

	sessionID := uuid.NewString()
	p.mu.Lock()
	p.cmd = cmd
	p.ipcClient = ipc
	p.mapper = newSignalMapper(url)
	p.sessionID = sessionID
	p.mu.Unlock()

	if err := ipc.LoadFile(url); err != nil {
		_ = p.Stop()
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	signals := make(chan analytics.Signal, 32)
	go p.forward(ctx, ipc, signals, log.With("session_id", sessionID))
	return signals, nil
}

// forward maps mpv events to signals until playback finishes
func (p *MPVPlayer) forward(ctx context.Context, ipc *MPVIPCClient, signals chan<- analytics.Signal, logger *log.Logger) {
	defer close(signals)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Context cancelled, stopping MPV monitoring")
			return
		case event, ok := <-ipc.Events():
			if !ok {
				logger.Debug("MPV event channel closed")
				return
			}

			p.mu.Lock()
			mapped := p.mapper.Map(event)
			p.mu.Unlock()

			for _, sig := range mapped {
				logger.Trace("MPV event mapped", "event", event.Event, "property", event.Name, "signal", fmt.Sprintf("%T", sig))
				select {
				case signals <- sig:
				case <-ctx.Done():
					return
				}
			}

			// mpv idles rather than exiting once the file is over, so the file ending is our cue to finish
			if event.Event == "end-file" {
				logger.Info("MPV playback ended", "reason", event.Reason)
				return
			}
		}
	}
}

// Position implements analytics.Player
func (p *MPVPlayer) Position() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mapper.state.position
}

// Duration implements analytics.Player
func (p *MPVPlayer) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mapper.state.duration
}

// IsLive implements analytics.Player
func (p *MPVPlayer) IsLive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mapper.isLive()
}

// SessionID implements analytics.Player.  A new id is generated for every Play.
func (p *MPVPlayer) SessionID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sessionID
}

// Stop stops playback if it's active
func (p *MPVPlayer) Stop() error {
	p.mu.Lock()
	ipc, cmd := p.ipcClient, p.cmd
	p.ipcClient, p.cmd = nil, nil
	p.mu.Unlock()

	if ipc != nil {
		if err := ipc.Quit(); err != nil {
			log.Debug("Failed to ask MPV to quit", "error", err)
		}
		_ = ipc.Close()
	}

	if cmd != nil && cmd.Process != nil {
		log.Info("Stopping MPV playback")
		if err := cmd.Process.Kill(); err != nil && err != os.ErrProcessDone {
			return err
		}
	}
	return nil
}

// Cleanup performs any necessary cleanup
func (p *MPVPlayer) Cleanup() {
	if err := p.Stop(); err != nil {
		log.Warn("Failed to stop MPV", "error", err)
	}

	// Remove socket file if it exists (Unix only)
	if _, err := os.Stat(p.socketPath); err == nil {
		if err := os.Remove(p.socketPath); err != nil {
			log.Warn("Failed to remove MPV socket file", "path", p.socketPath, "error", err)
		}
	}
}
