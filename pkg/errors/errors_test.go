package errors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroveError_ErrorString(t *testing.T) {
	e := New(TypeOther, "boom")
	assert.Equal(t, "boom", e.Error())

	wrapped := New(TypeOther, "boom", WithCause(assert.AnError))
	assert.Contains(t, wrapped.Error(), "boom")
	assert.Contains(t, wrapped.Error(), assert.AnError.Error())
}

func TestGroveError_Is(t *testing.T) {
	a := New(TypePortInUse, "a")
	b := New(TypePortInUse, "b")
	c := New(TypeNotFound, "c")

	assert.ErrorIs(t, a, b)
	assert.False(t, c.Is(a))
}

func TestNewPortInUse(t *testing.T) {
	err := NewPortInUse(3001, "app")
	require.True(t, err.HasSuggestions())
	assert.Equal(t, "app", err.Context["service"])
	assert.Equal(t, "3001", err.Context["port"])
}

func TestHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{Writer: &buf, NoColor: true}

	code := h.Handle(NewInsufficientDiskSpace(100, 500))
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "Error:")
	assert.Contains(t, buf.String(), "100 MB available")
}

func TestHandler_HandleNil(t *testing.T) {
	h := &Handler{Writer: &bytes.Buffer{}}
	assert.Equal(t, 0, h.Handle(nil))
}

func TestHandler_GenericError(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{Writer: &buf, NoColor: true}
	code := h.Handle(assert.AnError)
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "Error:")
}
