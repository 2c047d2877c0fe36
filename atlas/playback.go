package atlas

import (
	"errors"
	"fmt"
	"math"
)

// MaxPlaybackSpeed is one frame per tick; anything faster skips frames.
const MaxPlaybackSpeed = 1.0

var ErrInvalidPlaybackSpeed = errors.New("atlas: invalid playback speed")

// ValidatePlaybackSpeed accepts finite speeds in (0, MaxPlaybackSpeed]
// frames per tick.
func ValidatePlaybackSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 || speed > MaxPlaybackSpeed {
		return fmt.Errorf("%w: %v frames per tick", ErrInvalidPlaybackSpeed, speed)
	}
	return nil
}
