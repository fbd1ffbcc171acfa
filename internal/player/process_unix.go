//go:build !windows

package player

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"syscall"

	"github.com/PizzaHomicide/kava/internal/log"
)

// setupPlayerProcess puts mpv in its own process group so terminal signals aimed at kava do not reach it
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// dial connects to mpv's unix domain socket
func dial(ctx context.Context, socketPath string) (net.Conn, error) {
	log.Debug("Connecting to Unix socket", "path", socketPath)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MPV socket: %w", err)
	}
	return conn, nil
}
