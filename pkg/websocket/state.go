package websocket

import "sync/atomic"

// State is the lifecycle state of a stream client connection.
type State int32

const (
	StateIdle State = iota
	StateDialing
	StateSubscribing
	StateReading
	StateClosing
	StateBackoff
	StateDisabled
	StateTerminated
)

// String returns the lowercase state name used in logs and metrics.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDialing:
		return "dialing"
	case StateSubscribing:
		return "subscribing"
	case StateReading:
		return "reading"
	case StateClosing:
		return "closing"
	case StateBackoff:
		return "backoff"
	case StateDisabled:
		return "disabled"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// StateTracker holds a client's current state, safe for concurrent reads.
type StateTracker struct {
	state atomic.Int32
}

// Set records a state transition.
func (t *StateTracker) Set(s State) {
	t.state.Store(int32(s))
}

// Get returns the current state.
func (t *StateTracker) Get() State {
	return State(t.state.Load())
}
