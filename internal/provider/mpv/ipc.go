package mpv

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
	"sync"
	"time"

	"github.com/PizzaHomicide/mediabind/internal/log"
)

var (
	// ErrNotConnected is returned by commands sent before the IPC connection is up.
	ErrNotConnected = errors.New("not connected to mpv")
	// ErrCommandFailed wraps the error string mpv puts in a command reply.
	ErrCommandFailed = errors.New("mpv command failed")
)

// Event is one line read from the mpv IPC socket.  It is either an asynchronous event (Event is set) or the reply to
// a command (RequestID is set and Event is empty).
type Event struct {
	Event     string          `json:"event,omitempty"`
	Name      string          `json:"name,omitempty"`
	ID        int             `json:"id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
}

// IsReply reports whether the line answers a command rather than announcing an event.
func (e Event) IsReply() bool {
	return e.Event == "" && e.RequestID != 0
}

// Failed reports whether a reply carries an error.
func (e Event) Failed() bool {
	return e.IsReply() && e.Error != "" && e.Error != "success"
}

// IPCClient talks mpv's JSON IPC protocol over a unix socket or, on Windows, a named pipe.
type IPCClient struct {
	socketPath string

	mu     sync.Mutex
	conn   net.Conn
	nextID int

	events chan Event
}

// NewIPCClient creates a client for socketPath.  Nothing is dialled until Connect.
func NewIPCClient(socketPath string) *IPCClient {
	return &IPCClient{
		socketPath: socketPath,
		events:     make(chan Event, 100),
	}
}

// DefaultSocketPath returns the IPC path used when none is configured.
func DefaultSocketPath() string {
	if path := os.Getenv("MEDIABIND_MPV_SOCKET"); path != "" {
		return path
	}

	switch runtime.GOOS {
	case "windows":
		return `\\.\pipe\mediabind-mpv`
	case "darwin":
		return filepath.Join(os.TempDir(), "mediabind-mpv.sock")
	default:
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			return filepath.Join(dir, "mediabind-mpv.sock")
		}
		return "/tmp/mediabind-mpv.sock"
	}
}

// SocketPath returns the path the client dials.
func (c *IPCClient) SocketPath() string {
	return c.socketPath
}

// Connect dials mpv once.
func (c *IPCClient) Connect(ctx context.Context) error {
	conn, err := dial(ctx, c.socketPath)
	if err != nil {
		return err
	}
	c.Attach(conn)
	return nil
}

// Attach adopts an already established connection and starts reading from it.
func (c *IPCClient) Attach(conn net.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	go c.readEvents(conn)
}

// WaitForConnection dials mpv until it answers, the attempts run out or ctx is done.  mpv creates its socket a moment
// after the process starts, so the first attempts are expected to fail.
func (c *IPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for mpv IPC", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := c.Connect(ctx)
		if err == nil {
			log.Info("Connected to mpv", "attempt", attempt)
			return nil
		}
		log.Debug("mpv IPC not ready", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("failed to connect to mpv after %d attempts", maxAttempts)
}

// Events returns the stream of events and replies.  It is closed when the connection ends.
func (c *IPCClient) Events() <-chan Event {
	return c.events
}

// Connected reports whether a connection has been attached and not closed.
func (c *IPCClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close closes the connection.  The event channel closes once the reader notices.
func (c *IPCClient) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Command sends a command and returns its request id.  The reply arrives later on Events with the same id.
func (c *IPCClient) Command(args ...any) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return 0, ErrNotConnected
	}
	c.nextID++
	id := c.nextID

	data, err := json.Marshal(map[string]any{
		"command":    args,
		"request_id": id,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	log.Trace("Sending mpv command", "request_id", id, "command", args)
	if _, err := c.conn.Write(data); err != nil {
		return 0, fmt.Errorf("failed to send command: %w", err)
	}
	return id, nil
}

// SetProperty sets an mpv property.
func (c *IPCClient) SetProperty(name string, value any) (int, error) {
	return c.Command("set_property", name, value)
}

// ObserveProperty asks mpv to send property-change events for name, tagged with id.
func (c *IPCClient) ObserveProperty(id int, name string) error {
	_, err := c.Command("observe_property", id, name)
	return err
}

func (c *IPCClient) readEvents(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw mpv event", "data", string(line))

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			log.Warn("Failed to unmarshal mpv event", "error", err)
			continue
		}
		c.events <- event
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Error("Error reading from mpv IPC", "error", err)
	}

	log.Debug("mpv event reader stopped")
	close(c.events)
}
