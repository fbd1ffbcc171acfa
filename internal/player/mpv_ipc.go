package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/PizzaHomicide/kava/internal/log"
)

// ErrNotConnected is returned when a command is sent before Connect
var ErrNotConnected = errors.New("not connected to mpv")

// MPVIPCClient provides communication with a running MPV instance
type MPVIPCClient struct {
	socketPath string

	writeMu sync.Mutex
	conn    net.Conn

	events    chan MPVEvent
	done      chan struct{}
	closeOnce sync.Once
}

// MPVEvent is one line of mpv's JSON IPC protocol.  Asynchronous events carry Event; replies to commands carry
// RequestID and Error instead.
type MPVEvent struct {
	Event     string          `json:"event,omitempty"`
	ID        int             `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewMPVIPCClient creates a new MPV IPC client
func NewMPVIPCClient(socketPath string) *MPVIPCClient {
	return &MPVIPCClient{
		socketPath: socketPath,
		events:     make(chan MPVEvent, 100),
		done:       make(chan struct{}),
	}
}

// GetMPVSocketPath returns a per-process socket path for mpv IPC
func GetMPVSocketPath() string {
	if path := os.Getenv("KAVA_MPV_SOCKET"); path != "" {
		return path
	}

	name := "kava-mpv-" + strconv.Itoa(os.Getpid())
	if runtime.GOOS == "windows" {
		// Windows uses named pipes instead of unix sockets
		return `\\.\pipe\` + name
	}

	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, name+".sock")
}

// Connect establishes a connection with MPV and starts reading its events
func (c *MPVIPCClient) Connect(ctx context.Context) error {
	conn, err := dial(ctx, c.socketPath)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()

	go c.readEvents(conn)
	return nil
}

// WaitForConnection attempts to connect to MPV with retries
func (c *MPVIPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for MPV to create socket", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := c.Connect(ctx)
		if err == nil {
			log.Info("Connected to MPV", "attempt", attempt)
			return nil
		}

		log.Debug("Failed to connect to MPV", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("failed to connect to MPV after %d attempts", maxAttempts)
}

// Close closes the connection to MPV.  The events channel is closed once the reader notices.
func (c *MPVIPCClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// readEvents continuously reads events from MPV
func (c *MPVIPCClient) readEvents(conn net.Conn) {
	defer close(c.events)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw MPV event", "data", string(line))

		var event MPVEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Error("Failed to unmarshal MPV event", "error", err)
			continue
		}
		if event.Event == "" {
			if event.Error != "" && event.Error != "success" {
				log.Warn("MPV command failed", "request_id", event.RequestID, "error", event.Error)
			}
			continue
		}

		select {
		case c.events <- event:
		case <-c.done:
			return
		}
	}

	select {
	case <-c.done:
	default:
		if err := scanner.Err(); err != nil {
			log.Error("Error reading from MPV socket", "error", err)
		}
	}
	log.Debug("MPV event reader stopped")
}

// Events returns the channel for MPV events
func (c *MPVIPCClient) Events() <-chan MPVEvent {
	return c.events
}

// SendCommand sends a command to MPV
func (c *MPVIPCClient) SendCommand(cmd ...any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(map[string]any{"command": cmd})
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// ObserveProperty starts observing an MPV property
func (c *MPVIPCClient) ObserveProperty(id int, name string) error {
	return c.SendCommand("observe_property", id, name)
}

// LoadFile asks mpv to replace whatever it is playing with url
func (c *MPVIPCClient) LoadFile(url string) error {
	return c.SendCommand("loadfile", url, "replace")
}

// Quit asks mpv to exit
func (c *MPVIPCClient) Quit() error {
	return c.SendCommand("quit")
}
