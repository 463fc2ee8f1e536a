package models

import (
	"fmt"
	"sync"
	"time"
)

// SessionState is a stage of an annotation session
type SessionState int

const (
	StateIdle SessionState = iota
	StateScanning
	StateLoaded
	StateBrowsing
	StateSaving
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateLoaded:
		return "loaded"
	case StateBrowsing:
		return "browsing"
	case StateSaving:
		return "saving"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Editing a row happens inside StateBrowsing; there is no separate dirty state.
var allowedTransitions = map[SessionState][]SessionState{
	StateIdle:     {StateScanning, StateClosed},
	StateScanning: {StateLoaded, StateIdle, StateClosed},
	StateLoaded:   {StateBrowsing, StateClosed},
	StateBrowsing: {StateSaving, StateClosed},
	StateSaving:   {StateBrowsing, StateClosed},
	StateClosed:   {},
}

// TransitionError reports a state change the session lifecycle does not allow
type TransitionError struct {
	From SessionState
	To   SessionState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid session transition %s -> %s", e.From, e.To)
}

// SessionStateRepository tracks the current state and when it was entered
type SessionStateRepository struct {
	mu      sync.RWMutex
	state   SessionState
	entered time.Time
	saves   int
}

// NewSessionStateRepository starts in StateIdle
func NewSessionStateRepository() *SessionStateRepository {
	return &SessionStateRepository{state: StateIdle, entered: time.Now()}
}

// Current returns the current state
func (r *SessionStateRepository) Current() SessionState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Since returns when the current state was entered
func (r *SessionStateRepository) Since() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entered
}

// SaveCount returns how many times the session entered StateSaving
func (r *SessionStateRepository) SaveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

// Transition moves to the given state if the lifecycle allows it
func (r *SessionStateRepository) Transition(to SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, allowed := range allowedTransitions[r.state] {
		if allowed == to {
			r.state = to
			r.entered = time.Now()
			if to == StateSaving {
				r.saves++
			}
			return nil
		}
	}
	return &TransitionError{From: r.state, To: to}
}
