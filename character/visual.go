package character

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/image/colornames"

	"github.com/milk9111/huddle/anim"
	"github.com/milk9111/huddle/atlas"
	"github.com/milk9111/huddle/common"
	"github.com/milk9111/huddle/ecs"
	"github.com/milk9111/huddle/ecs/component"
)

const (
	// DefaultPlaybackSpeed is in frames per tick: six frames a second at 60 TPS.
	DefaultPlaybackSpeed = 0.1
	// DefaultSheetScale is the sheet's pixel density; 0.5 draws each tile at
	// twice its pixel size.
	DefaultSheetScale = 0.5

	labelOffsetY = -60
)

var ErrReleased = errors.New("character: visual released")

// mountSeq breaks depth ties between characters in mount order.
var mountSeq atomic.Uint64

// Options configure how a Visual builds its atlas and body.
type Options struct {
	Layout atlas.Layout
	Clips  atlas.ClipTable
	Loader atlas.Loader

	// PlaybackSpeed is frames per tick, at most atlas.MaxPlaybackSpeed; 0
	// means DefaultPlaybackSpeed.
	PlaybackSpeed float64
	// SheetScale is the sheet pixel density; 0 means DefaultSheetScale.
	SheetScale float64

	// Strict turns an unknown animation state into a panic.
	Strict bool
}

// DefaultOptions returns options for the bundled sheet with the given loader.
func DefaultOptions(load atlas.Loader) Options {
	return Options{
		Layout:        atlas.DefaultLayout(),
		Clips:         atlas.DefaultClipTable(),
		Loader:        load,
		PlaybackSpeed: DefaultPlaybackSpeed,
		SheetScale:    DefaultSheetScale,
	}
}

// StyleFor returns the label style for a participant's speaking state.
func StyleFor(speaking bool) component.LabelStyle {
	if speaking {
		return component.LabelStyle{Fill: colornames.White, Stroke: colornames.Lime, StrokeThickness: 6}
	}
	return component.LabelStyle{Fill: colornames.White, Stroke: colornames.Black, StrokeThickness: 4}
}

// Visual is one participant on screen: an entity carrying a label and, once
// its atlas has loaded, an animated body. The Visual exclusively owns its
// atlas until Release.
type Visual struct {
	world  *ecs.World
	entity ecs.Entity
	atlas  *atlas.Atlas
	opts   Options

	identity string
	bodyFor  anim.State
	hasBody  bool
	released bool
	loadErr  error
}

// Mount creates the entity for identity and starts building its atlas.
func Mount(w *ecs.World, identity string, opts Options) (*Visual, error) {
	if w == nil {
		return nil, errors.New("character: nil world")
	}
	if opts.PlaybackSpeed <= 0 {
		opts.PlaybackSpeed = DefaultPlaybackSpeed
	}
	if opts.SheetScale <= 0 {
		opts.SheetScale = DefaultSheetScale
	}
	if err := atlas.ValidatePlaybackSpeed(opts.PlaybackSpeed); err != nil {
		return nil, fmt.Errorf("character: mount %q: %w", identity, err)
	}

	a, err := atlas.Build(opts.Layout, opts.Clips, opts.Loader)
	if err != nil {
		return nil, fmt.Errorf("character: mount %q: %w", identity, err)
	}

	e := ecs.CreateEntity(w)
	v := &Visual{world: w, entity: e, atlas: a, opts: opts, identity: identity}

	label := &component.Label{
		Text:    identity,
		Style:   StyleFor(false),
		OffsetY: labelOffsetY,
		AnchorX: 0.5,
		AnchorY: 1,
	}
	if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{}); err != nil {
		v.Release()
		return nil, err
	}
	if err := ecs.Add(w, e, component.DepthComponent, &component.Depth{Seq: mountSeq.Add(1)}); err != nil {
		v.Release()
		return nil, err
	}
	if err := ecs.Add(w, e, component.LabelComponent, label); err != nil {
		v.Release()
		return nil, err
	}
	return v, nil
}

// Render places the character at pos and brings its label and body in line
// with identity, state and speaking. Until the atlas has loaded only the label
// is shown. An unknown state removes the body and is reported as an error, or
// panics when the Visual is strict.
func (v *Visual) Render(pos common.Position, identity string, state anim.State, speaking bool) error {
	if v == nil || v.released {
		return ErrReleased
	}
	w := v.world

	if t, ok := ecs.Get(w, v.entity, component.TransformComponent); ok {
		t.X, t.Y = pos.X, pos.Y
	}
	if d, ok := ecs.Get(w, v.entity, component.DepthComponent); ok {
		d.Key = pos.Y
	}
	if l, ok := ecs.Get(w, v.entity, component.LabelComponent); ok {
		l.Text = identity
		l.Style = StyleFor(speaking)
	}
	v.identity = identity

	v.atlas.Poll()
	clip, err := atlas.Resolve(v.atlas, state)
	switch {
	case errors.Is(err, atlas.ErrUnknownState):
		v.dropBody()
		if v.opts.Strict {
			panic(fmt.Sprintf("character: %q rendered with %v", identity, err))
		}
		return fmt.Errorf("character: %q: %w", identity, err)
	case err != nil:
		// Atlas pending or failed: label only.
		v.dropBody()
		if loadErr := v.atlas.Err(); loadErr != nil && v.loadErr == nil {
			v.loadErr = loadErr
		}
		return nil
	}

	if v.hasBody && v.bodyFor == state {
		return nil
	}
	body := component.NewBody(clip, v.atlas.Sheet(), v.opts.PlaybackSpeed, true)
	body.Scale = 1 / v.opts.SheetScale
	if err := ecs.Add(w, v.entity, component.BodyComponent, body); err != nil {
		return fmt.Errorf("character: %q: attach body: %w", identity, err)
	}
	v.bodyFor = state
	v.hasBody = true
	return nil
}

func (v *Visual) dropBody() {
	if !v.hasBody {
		return
	}
	ecs.Remove(v.world, v.entity, component.BodyComponent)
	v.hasBody = false
}

// LoadErr returns the atlas load failure once Render has observed it.
func (v *Visual) LoadErr() error {
	if v == nil {
		return nil
	}
	return v.loadErr
}

// Identity returns the identity last rendered.
func (v *Visual) Identity() string {
	if v == nil {
		return ""
	}
	return v.identity
}

// Entity returns the scene entity of this character.
func (v *Visual) Entity() ecs.Entity {
	if v == nil {
		return 0
	}
	return v.entity
}

// Body returns the live body, or nil while only the label is shown.
func (v *Visual) Body() *component.Body {
	if v == nil || v.released {
		return nil
	}
	b, _ := ecs.Get(v.world, v.entity, component.BodyComponent)
	return b
}

// Label returns a copy of the current label.
func (v *Visual) Label() component.Label {
	if v == nil || v.released {
		return component.Label{}
	}
	if l, ok := ecs.Get(v.world, v.entity, component.LabelComponent); ok {
		return *l
	}
	return component.Label{}
}

// Atlas exposes the owned atlas.
func (v *Visual) Atlas() *atlas.Atlas {
	if v == nil {
		return nil
	}
	return v.atlas
}

// Release destroys the entity and releases the atlas, whether or not it ever
// finished loading. It is safe to call more than once.
func (v *Visual) Release() {
	if v == nil || v.released {
		return
	}
	v.released = true
	v.hasBody = false
	ecs.DestroyEntity(v.world, v.entity)
	v.atlas.Release()
}
