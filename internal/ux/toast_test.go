package ux

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToaster_WritesOneLinePerToast(t *testing.T) {
	var buf bytes.Buffer
	toaster := NewToaster(&buf, false)

	toaster.Success("Welcome back, Asha Rao!")
	toaster.Info("Registration pending approval")
	toaster.Error("Failed to mark notification as read")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "✓ Welcome back, Asha Rao!", lines[0])
	assert.Equal(t, "ℹ Registration pending approval", lines[1])
	assert.Equal(t, "✗ Failed to mark notification as read", lines[2])
}

func TestRecorder(t *testing.T) {
	var seen []Toast
	rec := NewRecorder(func(t Toast) { seen = append(seen, t) })

	_, ok := rec.Last()
	assert.False(t, ok)

	rec.Success("Logged out")
	rec.Error("boom")

	assert.Equal(t, []Toast{
		{Kind: ToastSuccess, Message: "Logged out"},
		{Kind: ToastError, Message: "boom"},
	}, rec.Toasts())
	assert.Equal(t, rec.Toasts(), seen)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, ToastError, last.Kind)
}

func TestToast_RenderWithoutColor(t *testing.T) {
	assert.Equal(t, "ℹ hello", Toast{Kind: ToastInfo, Message: "hello"}.Render(false))
}
