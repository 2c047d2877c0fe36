package atlas

import (
	"errors"
	"fmt"
	"image"
)

// Fixed geometry of the character sheet.
const (
	SheetWidth  = 512
	SheetHeight = 512
	TileWidth   = 64
	TileHeight  = 64
	Rows        = 8
	Cols        = 8
	FrameCount  = Rows * Cols
)

var ErrInvalidLayout = errors.New("atlas: invalid layout")

// Layout describes a uniform tile grid laid over a source image.
type Layout struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	TileWidth  int `yaml:"tile_width"`
	TileHeight int `yaml:"tile_height"`
	Rows       int `yaml:"rows"`
	Cols       int `yaml:"cols"`
}

// DefaultLayout is the 8x8 grid of 64px tiles over the 512x512 sheet.
func DefaultLayout() Layout {
	return Layout{
		Width:      SheetWidth,
		Height:     SheetHeight,
		TileWidth:  TileWidth,
		TileHeight: TileHeight,
		Rows:       Rows,
		Cols:       Cols,
	}
}

// Validate checks that the grid fits inside the image and addresses exactly
// FrameCount cells.
func (l Layout) Validate() error {
	if l.Width <= 0 || l.Height <= 0 || l.TileWidth <= 0 || l.TileHeight <= 0 || l.Rows <= 0 || l.Cols <= 0 {
		return fmt.Errorf("%w: non-positive dimension in %+v", ErrInvalidLayout, l)
	}
	if l.Cols*l.TileWidth > l.Width || l.Rows*l.TileHeight > l.Height {
		return fmt.Errorf("%w: %dx%d grid of %dx%d tiles exceeds %dx%d image",
			ErrInvalidLayout, l.Rows, l.Cols, l.TileWidth, l.TileHeight, l.Width, l.Height)
	}
	if l.Rows*l.Cols != FrameCount {
		return fmt.Errorf("%w: grid has %d cells, want %d", ErrInvalidLayout, l.Rows*l.Cols, FrameCount)
	}
	return nil
}

// Bounds returns the image rectangle the layout expects.
func (l Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height)
}

// Frame is one grid cell of the source image.
type Frame struct {
	Index int
	Rect  image.Rectangle
}

// Frames computes every cell of the grid in row-major order. The result is
// indexed by linear frame index.
func Frames(l Layout) ([FrameCount]Frame, error) {
	var frames [FrameCount]Frame
	if err := l.Validate(); err != nil {
		return frames, err
	}
	for row := 0; row < l.Rows; row++ {
		for col := 0; col < l.Cols; col++ {
			idx := row*l.Cols + col
			x := col * l.TileWidth
			y := row * l.TileHeight
			frames[idx] = Frame{
				Index: idx,
				Rect:  image.Rect(x, y, x+l.TileWidth, y+l.TileHeight),
			}
		}
	}
	return frames, nil
}
