package ui

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
	ToastWarning ToastType = "warning"
)

const DefaultToastDuration = 5 * time.Second

type Toast struct {
	ID        string        `json:"id"`
	Type      ToastType     `json:"type"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

type ToastOption func(*Toasts)

// WithNotifier calls fn with the current list every time it changes. fn runs
// without the manager's lock held.
func WithNotifier(fn func([]Toast)) ToastOption {
	return func(t *Toasts) { t.notify = fn }
}

// Toasts keeps the visible notifications. Each toast removes itself when its
// duration elapses.
type Toasts struct {
	mu     sync.Mutex
	items  []Toast
	timers map[string]*time.Timer
	closed bool
	notify func([]Toast)
}

func NewToasts(opts ...ToastOption) *Toasts {
	t := &Toasts{timers: make(map[string]*time.Timer)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func newToastID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Add shows a toast and returns its id. A non-positive duration uses
// DefaultToastDuration. After Close, Add is a no-op and returns "".
func (t *Toasts) Add(kind ToastType, message string, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	toast := Toast{
		ID:        newToastID(),
		Type:      kind,
		Message:   message,
		Duration:  duration,
		CreatedAt: time.Now(),
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ""
	}
	t.items = append(t.items, toast)
	t.timers[toast.ID] = time.AfterFunc(duration, func() { t.Remove(toast.ID) })
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.changed(snapshot)
	return toast.ID
}

func (t *Toasts) Success(message string) string { return t.Add(ToastSuccess, message, 0) }
func (t *Toasts) Error(message string) string   { return t.Add(ToastError, message, 0) }
func (t *Toasts) Info(message string) string    { return t.Add(ToastInfo, message, 0) }
func (t *Toasts) Warning(message string) string { return t.Add(ToastWarning, message, 0) }

// Remove dismisses a toast. Unknown ids are ignored.
func (t *Toasts) Remove(id string) {
	t.mu.Lock()
	idx := -1
	for i, item := range t.items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return
	}
	t.items = append(t.items[:idx], t.items[idx+1:]...)
	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.changed(snapshot)
}

func (t *Toasts) List() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Close stops every pending timer and drops the toasts.
func (t *Toasts) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
	t.items = nil
	t.closed = true
}

func (t *Toasts) snapshotLocked() []Toast {
	out := make([]Toast, len(t.items))
	copy(out, t.items)
	return out
}

func (t *Toasts) changed(snapshot []Toast) {
	if t.notify != nil {
		t.notify(snapshot)
	}
}
