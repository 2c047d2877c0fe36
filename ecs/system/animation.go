package system

import (
	"github.com/milk9111/huddle/ecs"
	"github.com/milk9111/huddle/ecs/component"
)

// AnimationSystem advances every playing body by one tick.
type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	ecs.ForEach(w, component.BodyComponent, func(_ ecs.Entity, body *component.Body) {
		body.Advance()
	})
}
