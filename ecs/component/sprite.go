package component

import (
	"math"

	"github.com/milk9111/huddle/atlas"
)

// Body is one playing instance of an animation clip. A Body is never
// re-pointed at another clip: changing animation means replacing the
// component with a freshly constructed Body.
type Body struct {
	Clip  atlas.Clip
	Sheet atlas.Sheet

	// Speed is frames advanced per tick.
	Speed   float64
	Loop    bool
	Playing bool

	AnchorX float64
	AnchorY float64
	// Scale is the on-screen size of one sheet pixel.
	Scale float64

	frame    int
	progress float64
}

// frameEpsilon absorbs float drift so ten steps of 0.1 make one frame.
const frameEpsilon = 1e-9

// NewBody returns a body playing clip from its first frame.
func NewBody(clip atlas.Clip, sheet atlas.Sheet, speed float64, loop bool) *Body {
	return &Body{
		Clip:    clip,
		Sheet:   sheet,
		Speed:   speed,
		Loop:    loop,
		Playing: true,
		AnchorX: 0.5,
		AnchorY: 0.65,
		Scale:   1,
	}
}

// Frame returns the index into Clip.Frames currently shown.
func (b *Body) Frame() int {
	if b == nil {
		return 0
	}
	return b.frame
}

// Current returns the atlas frame currently shown.
func (b *Body) Current() (atlas.Frame, bool) {
	if b == nil || len(b.Clip.Frames) == 0 {
		return atlas.Frame{}, false
	}
	return b.Clip.Frames[b.frame], true
}

// Advance steps playback by one tick. A non-finite or non-positive speed
// holds the current frame.
func (b *Body) Advance() {
	if b == nil || !b.Playing || len(b.Clip.Frames) == 0 {
		return
	}
	if math.IsNaN(b.Speed) || math.IsInf(b.Speed, 0) || b.Speed <= 0 {
		return
	}
	b.progress += b.Speed
	steps := math.Floor(b.progress + frameEpsilon)
	if steps < 1 {
		return
	}
	b.progress = math.Max(b.progress-steps, 0)

	n := float64(len(b.Clip.Frames))
	target := float64(b.frame) + steps
	if b.Loop {
		b.frame = int(math.Mod(target, n))
		return
	}
	if target >= n {
		b.frame = len(b.Clip.Frames) - 1
		b.progress = 0
		b.Playing = false
		return
	}
	b.frame = int(target)
}

var BodyComponent = NewComponentKind[Body]()
