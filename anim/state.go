package anim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState is returned for any value outside the eight animation states.
var ErrUnknownState = errors.New("anim: unknown animation state")

// State is a character's discrete movement/idle state. It is a closed
// enumeration: only the constants below are valid.
type State uint8

const (
	IdleDown State = iota
	IdleUp
	IdleRight
	IdleLeft
	WalkDown
	WalkUp
	WalkRight
	WalkLeft
)

// Count is the number of valid states.
const Count = 8

var names = [Count]string{
	IdleDown:  "idle_down",
	IdleUp:    "idle_up",
	IdleRight: "idle_right",
	IdleLeft:  "idle_left",
	WalkDown:  "walk_down",
	WalkUp:    "walk_up",
	WalkRight: "walk_right",
	WalkLeft:  "walk_left",
}

// States returns every state in enumeration order.
func States() []State {
	out := make([]State, Count)
	for i := range out {
		out[i] = State(i)
	}
	return out
}

// Valid reports whether s is one of the eight states.
func (s State) Valid() bool {
	return s < Count
}

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", uint8(s))
	}
	return names[s]
}

// Walking reports whether s is one of the walk states.
func (s State) Walking() bool {
	return s.Valid() && s >= WalkDown
}

// Facing returns the idle state facing the same direction as s.
func (s State) Facing() State {
	if s.Walking() {
		return s - WalkDown
	}
	return s
}

// Parse returns the state named by name. Both "walk_left" and "walk-left"
// spellings are accepted.
func Parse(name string) (State, error) {
	n := strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
	for i, candidate := range names {
		if candidate == n {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, uint8(s))
	}
	return []byte(names[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
