package ecs

import "github.com/hajimehoshi/ebiten/v2"

// RenderSystem is a system that also draws each frame.
type RenderSystem interface {
	Draw(w *World, screen *ebiten.Image, scale float64)
}

// Draw calls every render-capable system in update order.
func (w *World) Draw(screen *ebiten.Image, scale float64) {
	if w == nil || screen == nil {
		return
	}
	for _, s := range w.scheduler.Systems() {
		rs, ok := s.(RenderSystem)
		if !ok || rs == nil {
			continue
		}
		rs.Draw(w, screen, scale)
	}
}
