// Package safe runs callbacks that must not take their caller down with them.
package safe

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrPanic wraps any value recovered from a panicking callback.
var ErrPanic = errors.New("callback panicked")

// Call runs fn, converting a panic into an error.
func Call(fn func()) (err error) {
	return CallErr(func() error {
		fn()
		return nil
	})
}

// CallErr runs fn and returns its error, converting a panic into an error as well.
func CallErr(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack())
		}
	}()
	return fn()
}
