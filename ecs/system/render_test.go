package system

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/milk9111/huddle/anim"
	"github.com/milk9111/huddle/atlas"
	"github.com/milk9111/huddle/ecs"
	"github.com/milk9111/huddle/ecs/component"
)

var spawnSeq uint64

func spawn(t *testing.T, w *ecs.World, x, y float64) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{X: x, Y: y}); err != nil {
		t.Fatal(err)
	}
	spawnSeq++
	if err := ecs.Add(w, e, component.DepthComponent, &component.Depth{Key: y, Seq: spawnSeq}); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestDrawOrder(t *testing.T) {
	cases := []struct {
		name string
		ys   []float64
		want []int // indices into ys, back to front
	}{
		{"lower_on_screen_in_front", []float64{200, 100}, []int{1, 0}},
		{"already_sorted", []float64{100, 200}, []int{0, 1}},
		{"ties_by_spawn_order", []float64{150, 150, 50}, []int{2, 0, 1}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			ents := make([]ecs.Entity, len(c.ys))
			for i, y := range c.ys {
				ents[i] = spawn(t, w, 0, y)
			}
			got := DrawOrder(w)
			if len(got) != len(c.want) {
				t.Fatalf("expected %d entities, got %d", len(c.want), len(got))
			}
			for i, idx := range c.want {
				if got[i] != ents[idx] {
					t.Fatalf("position %d: expected %s, got %s", i, ents[idx], got[i])
				}
			}
		})
	}
}

func TestDrawOrderTieIgnoresRecycledID(t *testing.T) {
	w := ecs.NewWorld()
	first := spawn(t, w, 0, 100)
	older := spawn(t, w, 0, 100)
	ecs.DestroyEntity(w, first)
	readded := spawn(t, w, 0, 100)

	got := DrawOrder(w)
	if len(got) != 2 || got[0] != older || got[1] != readded {
		t.Fatalf("expected %s then %s, got %v", older, readded, got)
	}
}

func TestLabelFaceFailureIsCached(t *testing.T) {
	calls := 0
	r := &RenderSystem{loadFace: func() (text.Face, error) {
		calls++
		return nil, errors.New("no font")
	}}
	for i := 0; i < 5; i++ {
		if r.labelFace() != nil {
			t.Fatal("expected no face after a failed load")
		}
	}
	if calls != 1 {
		t.Fatalf("expected one load attempt, got %d", calls)
	}
}

func TestDrawOrderSkipsUndrawable(t *testing.T) {
	w := ecs.NewWorld()
	drawable := spawn(t, w, 0, 10)
	bare := ecs.CreateEntity(w)
	if err := ecs.Add(w, bare, component.TransformComponent, &component.Transform{}); err != nil {
		t.Fatal(err)
	}

	got := DrawOrder(w)
	if len(got) != 1 || got[0] != drawable {
		t.Fatalf("expected only the drawable entity, got %v", got)
	}
}

func TestAnimationSystemAdvancesBodies(t *testing.T) {
	w := ecs.NewWorld()
	e := spawn(t, w, 0, 0)
	clip := atlas.Clip{State: anim.WalkUp, Frames: []atlas.Frame{{Index: 40}, {Index: 41}}}
	if err := ecs.Add(w, e, component.BodyComponent, component.NewBody(clip, nil, 0.5, true)); err != nil {
		t.Fatal(err)
	}
	w.AddSystem(NewAnimationSystem())

	w.Update()
	w.Update()

	body, ok := ecs.Get(w, e, component.BodyComponent)
	if !ok {
		t.Fatal("body missing")
	}
	if body.Frame() != 1 {
		t.Fatalf("expected frame 1 after two ticks, got %d", body.Frame())
	}
}
