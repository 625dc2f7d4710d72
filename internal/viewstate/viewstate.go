// Package viewstate models the Loading / Error / Empty / Ready discipline
// shared by every data-dependent view.
package viewstate

// State is the lifecycle of one fetch.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Phase is what a view renders. Exactly one applies per fetch.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseEmpty   Phase = "empty"
	PhaseReady   Phase = "ready"
)

// Fetch is the tri-state result of one asynchronous read.
type Fetch[T any] struct {
	State State
	Data  T
	Err   string
}

// Begin enters Loading and clears any previous error. Data is kept so a
// re-fetch does not blank already-rendered content.
func (f *Fetch[T]) Begin() {
	f.State = Loading
	f.Err = ""
}

func (f *Fetch[T]) Succeed(data T) {
	f.State = Loaded
	f.Data = data
	f.Err = ""
}

func (f *Fetch[T]) Fail(message string) {
	f.State = Failed
	f.Err = message
}

// Phase evaluates Loading, then Error, then Empty, then Ready. Idle renders as
// Loading since nothing has been fetched yet.
func (f Fetch[T]) Phase(isEmpty func(T) bool) Phase {
	switch {
	case f.State == Loading || f.State == Idle:
		return PhaseLoading
	case f.State == Failed:
		return PhaseError
	case isEmpty != nil && isEmpty(f.Data):
		return PhaseEmpty
	default:
		return PhaseReady
	}
}

// EmptySlice is the usual emptiness test for list fetches.
func EmptySlice[E any](items []E) bool {
	return len(items) == 0
}

// LoadingState renders a busy indicator.
type LoadingState struct {
	Message string
}

// EmptyState renders the "fetched successfully, zero results" condition.
type EmptyState struct {
	Title   string
	Message string
	Icon    string
}

// ErrorState renders a failed fetch. RetryURL, when set, re-issues the same
// request.
type ErrorState struct {
	Message  string
	RetryURL string
}

func NewLoading(message string) LoadingState {
	if message == "" {
		message = "Loading..."
	}
	return LoadingState{Message: message}
}

func NewEmptyState(title, message, icon string) EmptyState {
	if title == "" {
		title = "No data found"
	}
	if message == "" {
		message = "There are no records to display."
	}
	if icon == "" {
		icon = "inbox"
	}
	return EmptyState{Title: title, Message: message, Icon: icon}
}

func NewErrorState(message, retryURL string) ErrorState {
	if message == "" {
		message = "Something went wrong."
	}
	return ErrorState{Message: message, RetryURL: retryURL}
}
