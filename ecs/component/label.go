package component

import "image/color"

// LabelStyle is the fill and outline of a text label. StrokeThickness is the
// full outline width; half of it extends outside the glyphs.
type LabelStyle struct {
	Fill            color.RGBA
	Stroke          color.RGBA
	StrokeThickness float64
}

// Label is a line of text drawn relative to the entity's transform. AnchorX
// and AnchorY select the point of the text box placed at the offset, as
// fractions of its width and height.
type Label struct {
	Text    string
	Style   LabelStyle
	OffsetX float64
	OffsetY float64
	AnchorX float64
	AnchorY float64
}

var LabelComponent = NewComponentKind[Label]()
