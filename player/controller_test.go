package player

import (
	"math"
	"testing"

	"github.com/milk9111/huddle/anim"
	"github.com/milk9111/huddle/common"
)

func TestStep(t *testing.T) {
	cases := []struct {
		name      string
		start     anim.State
		moveX     float64
		moveY     float64
		wantState anim.State
		wantX     float64
		wantY     float64
	}{
		{"right", anim.IdleDown, 1, 0, anim.WalkRight, 2, 0},
		{"left", anim.IdleDown, -1, 0, anim.WalkLeft, -2, 0},
		{"up", anim.IdleDown, 0, -1, anim.WalkUp, 0, -2},
		{"down", anim.IdleUp, 0, 1, anim.WalkDown, 0, 2},
		{"diagonal_tie_is_vertical", anim.IdleDown, 1, 1, anim.WalkDown, math.Sqrt2, math.Sqrt2},
		{"stop_after_walk_left", anim.WalkLeft, 0, 0, anim.IdleLeft, 0, 0},
		{"stop_while_idle", anim.IdleUp, 0, 0, anim.IdleUp, 0, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctrl := NewController(common.Position{}, 2)
			ctrl.State = c.start
			ctrl.Step(c.moveX, c.moveY)
			if ctrl.State != c.wantState {
				t.Fatalf("expected %s, got %s", c.wantState, ctrl.State)
			}
			if math.Abs(ctrl.Position.X-c.wantX) > 1e-9 || math.Abs(ctrl.Position.Y-c.wantY) > 1e-9 {
				t.Fatalf("expected (%v, %v), got %+v", c.wantX, c.wantY, ctrl.Position)
			}
		})
	}
}

func TestNewControllerDefaults(t *testing.T) {
	ctrl := NewController(common.Position{X: 100, Y: 50}, 0)
	if ctrl.Speed != DefaultSpeed {
		t.Fatalf("expected default speed, got %v", ctrl.Speed)
	}
	if ctrl.State != anim.IdleDown {
		t.Fatalf("expected idle_down, got %s", ctrl.State)
	}
	if ctrl.Position.X != 100 || ctrl.Position.Y != 50 {
		t.Fatalf("unexpected spawn %+v", ctrl.Position)
	}
}
