//go:build windows

package player

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"syscall"
	"time"

	"gopkg.in/natefinch/npipe.v2"

	"github.com/PizzaHomicide/kava/internal/log"
)

const pipeDialTimeout = 2 * time.Second

// setupPlayerProcess starts mpv in a new process group so console control events aimed at kava do not reach it
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// dial connects to mpv's named pipe.  npipe has no context support, so the context deadline caps the timeout.
func dial(ctx context.Context, socketPath string) (net.Conn, error) {
	log.Debug("Connecting to Windows named pipe", "path", socketPath)

	timeout := pipeDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	conn, err := npipe.DialTimeout(socketPath, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MPV pipe: %w", err)
	}
	return conn, nil
}
