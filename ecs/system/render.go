package system

import (
	"bytes"
	"image/color"
	"log"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/milk9111/huddle/ecs"
	"github.com/milk9111/huddle/ecs/component"
)

// labelFontSize matches the default label size of the scene.
const labelFontSize = 26

// outlineSamples is how many offset copies approximate a text stroke.
const outlineSamples = 16

// RenderSystem draws every entity with a transform and depth in painter's
// order: lower depth first, ties broken by mount sequence.
type RenderSystem struct {
	face     text.Face
	faceErr  error
	loadFace func() (text.Face, error)
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{loadFace: loadLabelFace}
}

func loadLabelFace() (text.Face, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return &text.GoTextFace{Source: src, Size: labelFontSize}, nil
}

func (r *RenderSystem) Update(*ecs.World) {}

// DrawOrder returns the drawable entities back to front.
func DrawOrder(w *ecs.World) []ecs.Entity {
	type entry struct {
		e     ecs.Entity
		depth float64
		seq   uint64
	}
	var entries []entry
	ecs.ForEach2(w, component.TransformComponent, component.DepthComponent, func(e ecs.Entity, _ *component.Transform, d *component.Depth) {
		entries = append(entries, entry{e: e, depth: d.Key, seq: d.Seq})
	})
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].depth != entries[j].depth {
			return entries[i].depth < entries[j].depth
		}
		if entries[i].seq != entries[j].seq {
			return entries[i].seq < entries[j].seq
		}
		return uint32(entries[i].e) < uint32(entries[j].e)
	})
	out := make([]ecs.Entity, len(entries))
	for i, en := range entries {
		out[i] = en.e
	}
	return out
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image, scale float64) {
	if r == nil || w == nil || screen == nil {
		return
	}
	if scale <= 0 {
		scale = 1
	}

	for _, e := range DrawOrder(w) {
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		if label, ok := ecs.Get(w, e, component.LabelComponent); ok {
			r.drawLabel(screen, t, label, scale)
		}
		if body, ok := ecs.Get(w, e, component.BodyComponent); ok {
			drawBody(screen, t, body, scale)
		}
	}
}

func drawBody(screen *ebiten.Image, t *component.Transform, body *component.Body, scale float64) {
	sheet, ok := body.Sheet.(*ebiten.Image)
	if !ok || sheet == nil {
		return
	}
	frame, ok := body.Current()
	if !ok {
		return
	}
	img, ok := sheet.SubImage(frame.Rect).(*ebiten.Image)
	if !ok {
		return
	}

	size := body.Scale
	if size <= 0 {
		size = 1
	}
	fw := float64(frame.Rect.Dx())
	fh := float64(frame.Rect.Dy())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-body.AnchorX*fw, -body.AnchorY*fh)
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(t.X, t.Y)
	op.GeoM.Scale(scale, scale)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(img, op)
}

func (r *RenderSystem) drawLabel(screen *ebiten.Image, t *component.Transform, label *component.Label, scale float64) {
	if label.Text == "" {
		return
	}
	face := r.labelFace()
	if face == nil {
		return
	}

	tw, th := text.Measure(label.Text, face, 0)
	x := t.X + label.OffsetX - label.AnchorX*tw
	y := t.Y + label.OffsetY - label.AnchorY*th

	radius := label.Style.StrokeThickness / 2
	if radius > 0 {
		for i := 0; i < outlineSamples; i++ {
			angle := 2 * math.Pi * float64(i) / outlineSamples
			drawText(screen, label.Text, face, x+radius*math.Cos(angle), y+radius*math.Sin(angle), scale, label.Style.Stroke)
		}
	}
	drawText(screen, label.Text, face, x, y, scale, label.Style.Fill)
}

func drawText(screen *ebiten.Image, s string, face text.Face, x, y, scale float64, c color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.GeoM.Scale(scale, scale)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// labelFace loads the label font once. A failed load is remembered, so
// labels stay hidden without retrying every frame.
func (r *RenderSystem) labelFace() text.Face {
	if r.face != nil || r.faceErr != nil {
		return r.face
	}
	load := r.loadFace
	if load == nil {
		load = loadLabelFace
	}
	face, err := load()
	if err != nil {
		r.faceErr = err
		log.Printf("render: load label font: %v", err)
		return nil
	}
	r.face = face
	return r.face
}
