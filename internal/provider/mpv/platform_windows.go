//go:build windows

package mpv

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"syscall"

	"gopkg.in/natefinch/npipe.v2"

	"github.com/PizzaHomicide/mediabind/internal/log"
)

func setupProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

func dial(_ context.Context, path string) (net.Conn, error) {
	log.Debug("Connecting to Windows named pipe", "path", path)
	conn, err := npipe.Dial(path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mpv pipe: %w", err)
	}
	return conn, nil
}

// Named pipes disappear with the process that created them.
func removeSocket(string) {}
