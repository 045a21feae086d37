package frame

// Edge tells which edge of a box a static position refers to.
type Edge uint8

// Static position edges. For physical static positions EdgeStart is the left
// or top edge.
const (
	EdgeStart Edge = iota
	EdgeCenter
	EdgeEnd
)

func (e Edge) flip() Edge {
	switch e {
	case EdgeStart:
		return EdgeEnd
	case EdgeEnd:
		return EdgeStart
	}
	return e
}

func (e Edge) String() string {
	switch e {
	case EdgeCenter:
		return "center"
	case EdgeEnd:
		return "end"
	}
	return "start"
}

// LogicalStaticPosition is the position a positioned box would have had in
// normal flow, together with the edges of the box this position refers to.
type LogicalStaticPosition struct {
	Offset     LogicalOffset
	InlineEdge Edge
	BlockEdge  Edge
}

// PhysicalStaticPosition is a static position in physical coordinates.
type PhysicalStaticPosition struct {
	Offset PhysicalOffset
	HEdge  Edge // start is left
	VEdge  Edge // start is top
}

// ToPhysical converts sp, relative to a box of size outer.
func (sp LogicalStaticPosition) ToPhysical(wd WritingDirection, outer PhysicalSize) PhysicalStaticPosition {
	p := PhysicalStaticPosition{Offset: sp.Offset.ToPhysical(wd, outer, PhysicalSize{})}
	ie := sp.InlineEdge
	if !wd.IsLTR() {
		ie = ie.flip()
	}
	switch wd.Mode {
	case HorizontalTB:
		p.HEdge, p.VEdge = ie, sp.BlockEdge
	case VerticalLR:
		p.HEdge, p.VEdge = sp.BlockEdge, ie
	default:
		p.HEdge, p.VEdge = sp.BlockEdge.flip(), ie
	}
	return p
}

// ToLogical converts sp, relative to a box of size outer.
func (sp PhysicalStaticPosition) ToLogical(wd WritingDirection, outer PhysicalSize) LogicalStaticPosition {
	l := LogicalStaticPosition{Offset: sp.Offset.ToLogical(wd, outer, PhysicalSize{})}
	switch wd.Mode {
	case HorizontalTB:
		l.InlineEdge, l.BlockEdge = sp.HEdge, sp.VEdge
	case VerticalLR:
		l.InlineEdge, l.BlockEdge = sp.VEdge, sp.HEdge
	default:
		l.InlineEdge, l.BlockEdge = sp.VEdge, sp.HEdge.flip()
	}
	if !wd.IsLTR() {
		l.InlineEdge = l.InlineEdge.flip()
	}
	return l
}
