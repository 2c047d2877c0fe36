package component

// Depth orders drawing: lower Key draws first, so higher Key appears in
// front. Characters use their scene Y. Equal keys fall back to Seq, which
// only ever grows, so an entity created later draws in front even when it
// reuses a freed entity id.
type Depth struct {
	Key float64
	Seq uint64
}

var DepthComponent = NewComponentKind[Depth]()
