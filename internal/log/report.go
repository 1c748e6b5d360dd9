package log

import "sync"

var (
	errorHook   func(source string, err error)
	errorHookMu sync.RWMutex
)

// SetErrorHook installs a function that is called for every error passed to ReportError, after it has been logged.
// Pass nil to remove the hook.
func SetErrorHook(hook func(source string, err error)) {
	errorHookMu.Lock()
	errorHook = hook
	errorHookMu.Unlock()
}

// ReportError is the error-reporting channel for failures that are isolated rather than returned to a caller, for
// example a cleanup callback or an event listener that failed while its siblings kept running.
func ReportError(source string, err error) {
	if err == nil {
		return
	}
	Error("Isolated failure", "source", source, "error", err)

	errorHookMu.RLock()
	hook := errorHook
	errorHookMu.RUnlock()
	if hook != nil {
		hook(source, err)
	}
}

// Reporter returns a func(error) bound to a source name.  Handy for packages that accept an error callback.
func Reporter(source string) func(error) {
	return func(err error) {
		ReportError(source, err)
	}
}
