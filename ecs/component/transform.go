package component

// Transform anchors an entity in scene space.
type Transform struct {
	X float64
	Y float64
}

var TransformComponent = NewComponentKind[Transform]()
