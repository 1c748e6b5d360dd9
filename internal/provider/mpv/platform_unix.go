//go:build !windows

package mpv

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"

	"github.com/PizzaHomicide/mediabind/internal/log"
)

// setupProcess puts mpv in its own process group so terminal signals aimed at the TUI do not reach it.
func setupProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func dial(ctx context.Context, path string) (net.Conn, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("mpv socket not available: %w", err)
	}
	log.Debug("Connecting to unix socket", "path", path)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mpv socket: %w", err)
	}
	return conn, nil
}

// removeSocket deletes a stale socket file left by a previous mpv.
func removeSocket(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := os.Remove(path); err != nil {
		log.Warn("Failed to remove mpv socket file", "path", path, "error", err)
	}
}
