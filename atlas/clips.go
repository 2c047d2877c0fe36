package atlas

import (
	"errors"
	"fmt"

	"github.com/milk9111/huddle/anim"
)

var ErrInvalidClipTable = errors.New("atlas: invalid clip table")

// ClipTable lists the frame indices of every animation clip, indexed by state.
type ClipTable [anim.Count][]int

// DefaultClipTable returns the clip layout of the bundled character sheet:
// one idle frame per facing in column 0 of rows 0-3, and six walk frames per
// direction in rows 4-7.
func DefaultClipTable() ClipTable {
	return ClipTable{
		anim.IdleDown:  {0},
		anim.IdleUp:    {8},
		anim.IdleRight: {16},
		anim.IdleLeft:  {24},
		anim.WalkDown:  {32, 33, 34, 35, 36, 37},
		anim.WalkUp:    {40, 41, 42, 43, 44, 45},
		anim.WalkRight: {48, 49, 50, 51, 52, 53},
		anim.WalkLeft:  {56, 57, 58, 59, 60, 61},
	}
}

// ClipTableFromNames converts a name-keyed table (as found in prefab yaml)
// into a ClipTable. Every state must be present.
func ClipTableFromNames(m map[string][]int) (ClipTable, error) {
	var t ClipTable
	for name, indices := range m {
		s, err := anim.Parse(name)
		if err != nil {
			return ClipTable{}, fmt.Errorf("%w: %w", ErrInvalidClipTable, err)
		}
		if t[s] != nil {
			return ClipTable{}, fmt.Errorf("%w: clip %s listed twice", ErrInvalidClipTable, s)
		}
		t[s] = append([]int(nil), indices...)
	}
	if err := t.Validate(); err != nil {
		return ClipTable{}, err
	}
	return t, nil
}

// Validate checks that every state maps to a non-empty clip of in-range frames.
func (t ClipTable) Validate() error {
	for _, s := range anim.States() {
		indices := t[s]
		if len(indices) == 0 {
			return fmt.Errorf("%w: clip %s is empty", ErrInvalidClipTable, s)
		}
		for _, idx := range indices {
			if idx < 0 || idx >= FrameCount {
				return fmt.Errorf("%w: clip %s frame %d out of range", ErrInvalidClipTable, s, idx)
			}
		}
	}
	return nil
}
