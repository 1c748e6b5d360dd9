package log

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "test.log")

	logger, err := New(Config{
		Level:    "debug",
		FilePath: logPath,
	})
	require.NoError(t, err)

	SetDefaultLogger(logger)
	t.Cleanup(func() { SetDefaultLogger(nil) })

	Debug("Debug message", "test", true)
	Info("Info message", "test", true)
	Warn("Warning message", "test", true)
	Error("Error message", "error", fmt.Errorf("test error"))
	Trace("Trace message")

	logger.Close()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, "Debug message")
	assert.Contains(t, contentStr, "Info message")
	assert.Contains(t, contentStr, "Warning message")
	assert.Contains(t, contentStr, "Error message")
	assert.Contains(t, contentStr, "test error")
	// Trace is only written when the level is explicitly trace
	assert.NotContains(t, contentStr, "Trace message")
}

func TestTextFormatAndTrace(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewWithWriter(&buf, Config{Level: "trace", Format: "text"}))
	t.Cleanup(func() { SetDefaultLogger(nil) })

	Trace("Flushing queue", "count", 3)

	assert.Contains(t, buf.String(), "TRACE: Flushing queue")
	assert.Contains(t, buf.String(), "count=3")
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewWithWriter(&buf, Config{Level: "info"}))
	t.Cleanup(func() { SetDefaultLogger(nil) })

	var sources []string
	SetErrorHook(func(source string, err error) {
		sources = append(sources, source)
	})
	t.Cleanup(func() { SetErrorHook(nil) })

	ReportError("disposal", errors.New("boom"))
	ReportError("ignored", nil)
	Reporter("queue")(errors.New("bang"))

	assert.Equal(t, []string{"disposal", "queue"}, sources)
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "bang")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewWithWriter(&buf, Config{Level: "debug"}))
	t.Cleanup(func() { SetDefaultLogger(nil) })

	h := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/context", nil))

	assert.Contains(t, buf.String(), `"path":"/context"`)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"size":15`)
}
