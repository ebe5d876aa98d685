package poller

import "time"

// State tags a Result.
type State int

const (
	StateLoading State = iota
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is the observable state of a poller.
//
// A failure keeps the data of the last success for the same query, so HasData
// can be true while State is StateFailure. Message is only set on failure.
type Result[T any] struct {
	State     State
	Data      T
	HasData   bool
	Message   string
	UpdatedAt time.Time
}

// Loading reports whether no response has landed for the current query yet.
func (r Result[T]) Loading() bool { return r.State == StateLoading }

// Failed reports whether the latest response was an error.
func (r Result[T]) Failed() bool { return r.State == StateFailure }
