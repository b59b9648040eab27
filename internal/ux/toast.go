package ux

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ToastKind classifies a transient user-facing message.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastInfo    ToastKind = "info"
	ToastError   ToastKind = "error"
)

// Toast is one transient message.
type Toast struct {
	Kind    ToastKind
	Message string
}

var toastStyles = map[ToastKind]lipgloss.Style{
	ToastSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	ToastInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	ToastError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var toastIcons = map[ToastKind]string{
	ToastSuccess: "✓",
	ToastInfo:    "ℹ",
	ToastError:   "✗",
}

// Render styles t for a terminal.
func (t Toast) Render(color bool) string {
	line := fmt.Sprintf("%s %s", toastIcons[t.Kind], t.Message)
	if !color {
		return line
	}
	return toastStyles[t.Kind].Render(line)
}

// Toaster writes toasts as styled lines, typically to stderr.
// It satisfies the toast sinks of the session and notification stores.
type Toaster struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewToaster creates a Toaster writing to w.
func NewToaster(w io.Writer, color bool) *Toaster {
	return &Toaster{w: w, color: color}
}

func (t *Toaster) Success(msg string) { t.write(Toast{Kind: ToastSuccess, Message: msg}) }
func (t *Toaster) Info(msg string)    { t.write(Toast{Kind: ToastInfo, Message: msg}) }
func (t *Toaster) Error(msg string)   { t.write(Toast{Kind: ToastError, Message: msg}) }

func (t *Toaster) write(toast Toast) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, toast.Render(t.color))
}

// Recorder collects toasts in memory. The dashboard drains it into its
// status line; tests assert on it.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
	notify func(Toast)
}

// NewRecorder creates a Recorder. notify, when non-nil, is called for every toast.
func NewRecorder(notify func(Toast)) *Recorder {
	return &Recorder{notify: notify}
}

func (r *Recorder) Success(msg string) { r.add(Toast{Kind: ToastSuccess, Message: msg}) }
func (r *Recorder) Info(msg string)    { r.add(Toast{Kind: ToastInfo, Message: msg}) }
func (r *Recorder) Error(msg string)   { r.add(Toast{Kind: ToastError, Message: msg}) }

func (r *Recorder) add(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	notify := r.notify
	r.mu.Unlock()
	if notify != nil {
		notify(t)
	}
}

// Toasts returns a copy of everything recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Last returns the most recent toast.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}
