package safe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCall(t *testing.T) {
	t.Run("NoPanic", func(t *testing.T) {
		ran := false
		assert.NoError(t, Call(func() { ran = true }))
		assert.True(t, ran)
	})

	t.Run("Panic", func(t *testing.T) {
		err := Call(func() { panic("kaboom") })
		assert.ErrorIs(t, err, ErrPanic)
		assert.Contains(t, err.Error(), "kaboom")
	})

	t.Run("ReturnedError", func(t *testing.T) {
		want := errors.New("failed")
		assert.ErrorIs(t, CallErr(func() error { return want }), want)
	})
}
