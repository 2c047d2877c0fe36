package player

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/huddle/anim"
	"github.com/milk9111/huddle/common"
)

// DefaultSpeed is in scene pixels per tick.
const DefaultSpeed = 3

const stickDeadzone = 0.2

// Controller derives the local participant's position and animation from
// local input. It never waits on the network.
type Controller struct {
	Position common.Position
	State    anim.State
	Speed    float64
	Speaking bool
}

// NewController places the local participant at spawn, idle and facing down.
func NewController(spawn common.Position, speed float64) *Controller {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return &Controller{Position: spawn, State: anim.IdleDown, Speed: speed}
}

// Step applies one tick of movement input. moveX and moveY are in [-1, 1];
// screen y grows downward. The dominant axis picks the walk direction, and
// releasing input leaves the character idle facing the way it last walked.
func (c *Controller) Step(moveX, moveY float64) {
	if c == nil {
		return
	}
	mag := math.Hypot(moveX, moveY)
	if mag == 0 {
		c.State = c.State.Facing()
		return
	}
	if mag > 1 {
		moveX /= mag
		moveY /= mag
	}
	c.Position = c.Position.Add(moveX*c.Speed, moveY*c.Speed)

	switch {
	case math.Abs(moveX) > math.Abs(moveY) && moveX > 0:
		c.State = anim.WalkRight
	case math.Abs(moveX) > math.Abs(moveY):
		c.State = anim.WalkLeft
	case moveY < 0:
		c.State = anim.WalkUp
	default:
		c.State = anim.WalkDown
	}
}

// Update reads the keyboard and first gamepad, then steps. V toggles the
// speaking flag.
func (c *Controller) Update() {
	if c == nil {
		return
	}

	moveX, moveY := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		moveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		moveX += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		moveY -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		moveY += 1
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		sx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		sy := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(sx, sy) > stickDeadzone {
			moveX, moveY = sx, sy
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		c.Speaking = !c.Speaking
	}

	c.Step(moveX, moveY)
}
