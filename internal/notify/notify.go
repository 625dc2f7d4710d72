// Package notify carries the transient notifications raised by page actions.
package notify

import "sync"

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level
	Message string
	// Detail is extra context for audit sinks; it is not shown as a toast.
	Detail string
}

type Notifier interface {
	Notify(n Notification)
}

func Success(n Notifier, message, detail string) {
	n.Notify(Notification{Level: LevelSuccess, Message: message, Detail: detail})
}

func Error(n Notifier, message string) {
	n.Notify(Notification{Level: LevelError, Message: message})
}

// Recorder collects the notifications of one request.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Fanout delivers every notification to each notifier in order. Nil entries
// are skipped.
type Fanout []Notifier

func (f Fanout) Notify(n Notification) {
	for _, notifier := range f {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Discard drops everything.
type Discard struct{}

func (Discard) Notify(Notification) {}
