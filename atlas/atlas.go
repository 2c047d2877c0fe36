package atlas

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/milk9111/huddle/anim"
)

var (
	ErrNotReady      = errors.New("atlas: not ready")
	ErrReleased      = errors.New("atlas: released")
	ErrSheetTooSmall = errors.New("atlas: sheet smaller than layout")
	ErrUnknownState  = fmt.Errorf("atlas: %w", anim.ErrUnknownState)
)

// Sheet is the decoded source image backing an atlas. *ebiten.Image
// satisfies it.
type Sheet interface {
	Bounds() image.Rectangle
	Deallocate()
}

// Loader decodes the source image. It runs off the update cycle and must
// honour ctx cancellation where it can.
type Loader func(ctx context.Context) (Sheet, error)

// Clip is an ordered run of frames for one animation state.
type Clip struct {
	State  anim.State
	Frames []Frame
}

type loadState int

const (
	loadPending loadState = iota
	loadReady
	loadFailed
	loadReleased
)

type loadResult struct {
	sheet Sheet
	err   error
}

// Atlas maps every animation state to its clip over one sheet. Frames and
// clips are computed at Build time, but the atlas only becomes usable once
// Poll observes that the sheet finished loading.
type Atlas struct {
	layout Layout
	frames [FrameCount]Frame
	clips  [anim.Count]Clip

	state  loadState
	sheet  Sheet
	err    error
	cancel context.CancelFunc

	// mu guards the hand-off between the loader goroutine and the owner.
	mu       sync.Mutex
	pending  *loadResult
	released bool
}

// Build validates the layout and clip table, computes the frame grid, and
// starts loading the sheet in the background.
func Build(layout Layout, table ClipTable, load Loader) (*Atlas, error) {
	if load == nil {
		return nil, errors.New("atlas: nil loader")
	}
	frames, err := Frames(layout)
	if err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	a := &Atlas{layout: layout, frames: frames}
	for _, s := range anim.States() {
		indices := table[s]
		clip := Clip{State: s, Frames: make([]Frame, len(indices))}
		for i, idx := range indices {
			clip.Frames[i] = frames[idx]
		}
		a.clips[s] = clip
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.run(ctx, load)
	return a, nil
}

func (a *Atlas) run(ctx context.Context, load Loader) {
	sheet, err := load(ctx)
	if err == nil && sheet == nil {
		err = errors.New("atlas: loader returned no sheet")
	}
	if err == nil {
		b := sheet.Bounds()
		if b.Dx() < a.layout.Width || b.Dy() < a.layout.Height {
			err = fmt.Errorf("%w: %dx%d < %dx%d", ErrSheetTooSmall, b.Dx(), b.Dy(), a.layout.Width, a.layout.Height)
		}
	}
	if err != nil && sheet != nil {
		sheet.Deallocate()
		sheet = nil
	}

	a.mu.Lock()
	if a.released {
		a.mu.Unlock()
		if sheet != nil {
			sheet.Deallocate()
		}
		return
	}
	a.pending = &loadResult{sheet: sheet, err: err}
	a.mu.Unlock()
}

// Poll applies a finished load. It reports whether the atlas is ready.
func (a *Atlas) Poll() bool {
	if a == nil {
		return false
	}
	if a.state != loadPending {
		return a.state == loadReady
	}

	a.mu.Lock()
	res := a.pending
	a.pending = nil
	a.mu.Unlock()

	if res == nil {
		return false
	}
	if res.err != nil {
		a.state = loadFailed
		a.err = res.err
		return false
	}
	a.sheet = res.sheet
	a.state = loadReady
	return true
}

// Ready reports whether clips can be resolved.
func (a *Atlas) Ready() bool {
	return a != nil && a.state == loadReady
}

// Err returns the load failure, if any.
func (a *Atlas) Err() error {
	if a == nil {
		return nil
	}
	if a.state == loadReleased {
		return ErrReleased
	}
	return a.err
}

// Sheet returns the loaded source image, or nil when not ready.
func (a *Atlas) Sheet() Sheet {
	if !a.Ready() {
		return nil
	}
	return a.sheet
}

// Frame returns the grid cell at idx.
func (a *Atlas) Frame(idx int) (Frame, bool) {
	if a == nil || idx < 0 || idx >= FrameCount {
		return Frame{}, false
	}
	return a.frames[idx], true
}

// Release frees the sheet. A load still in flight is cancelled and its sheet
// is freed when it arrives. Release is safe to call more than once.
func (a *Atlas) Release() {
	if a == nil || a.state == loadReleased {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}

	a.mu.Lock()
	a.released = true
	res := a.pending
	a.pending = nil
	a.mu.Unlock()

	if res != nil && res.sheet != nil {
		res.sheet.Deallocate()
	}
	if a.sheet != nil {
		a.sheet.Deallocate()
		a.sheet = nil
	}
	a.state = loadReleased
}

// Resolve returns the clip for s. It fails with ErrUnknownState for values
// outside the enumeration and ErrNotReady until the sheet has loaded.
func Resolve(a *Atlas, s anim.State) (Clip, error) {
	switch s {
	case anim.IdleDown, anim.IdleUp, anim.IdleRight, anim.IdleLeft,
		anim.WalkDown, anim.WalkUp, anim.WalkRight, anim.WalkLeft:
	default:
		return Clip{}, fmt.Errorf("%w: %d", ErrUnknownState, uint8(s))
	}
	if !a.Ready() {
		if a != nil && a.err != nil {
			return Clip{}, fmt.Errorf("%w: %w", ErrNotReady, a.err)
		}
		return Clip{}, ErrNotReady
	}
	return a.clips[s], nil
}
