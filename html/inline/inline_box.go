package inline

import (
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

func (b *Box) linePositionMode() render.LinePositionMode {
	if b.Kind == Root {
		return render.PositionOfInteriorLineBoxes
	}
	return render.PositionOnContainingLine
}

// borderAndPaddingLogicalHeight returns the sum of the borders
// and paddings in the block direction of the line.
func (b *Box) borderAndPaddingLogicalHeight() Fl {
	st := b.Object.Style
	if b.isHorizontal {
		return st.Border.Top + st.Border.Bottom + st.Padding.Top + st.Padding.Bottom
	}
	return st.Border.Left + st.Border.Right + st.Padding.Left + st.Padding.Right
}

func (b *Box) borderLogicalLeft() Fl {
	if b.isHorizontal {
		return b.Object.Style.Border.Left
	}
	return b.Object.Style.Border.Top
}

func (b *Box) borderLogicalRight() Fl {
	if b.isHorizontal {
		return b.Object.Style.Border.Right
	}
	return b.Object.Style.Border.Bottom
}

func (b *Box) paddingLogicalLeft() Fl {
	if b.isHorizontal {
		return b.Object.Style.Padding.Left
	}
	return b.Object.Style.Padding.Top
}

func (b *Box) paddingLogicalRight() Fl {
	if b.isHorizontal {
		return b.Object.Style.Padding.Right
	}
	return b.Object.Style.Padding.Bottom
}

func (b *Box) borderBefore() Fl {
	if b.isHorizontal {
		return b.Object.Style.Border.Top
	}
	return b.Object.Style.Border.Right
}

func (b *Box) paddingBefore() Fl {
	if b.isHorizontal {
		return b.Object.Style.Padding.Top
	}
	return b.Object.Style.Padding.Right
}

// LogicalHeight returns the height of [id] in the block direction.
func (c *Context) LogicalHeight(id BoxID) Fl {
	b := c.Box(id)
	switch b.Kind {
	case Ellipsis:
		return b.ellipsis.height
	case TextLeaf, LineBreakLeaf:
		if !b.IsText {
			return 0
		}
		return b.style().FontMetrics().Height()
	case ReplacedLeaf:
		if !b.parent.IsNone() {
			if b.isHorizontal {
				return b.Object.Frame.Height
			}
			return b.Object.Frame.Width
		}
	}
	out := b.style().FontMetrics().Height()
	if !b.parent.IsNone() {
		out += b.borderAndPaddingLogicalHeight()
	}
	return out
}

func (c *Context) LogicalBottom(id BoxID) Fl { return c.Box(id).LogicalTop() + c.LogicalHeight(id) }

// LogicalFrameRect returns the frame of [id] in the logical
// coordinates of its line.
func (c *Context) LogicalFrameRect(id BoxID) utils.Rect {
	b := c.Box(id)
	return utils.Rect{X: b.LogicalLeft(), Y: b.LogicalTop(), Width: b.LogicalWidth, Height: c.LogicalHeight(id)}
}

// FrameRect returns the physical frame of [id].
func (c *Context) FrameRect(id BoxID) utils.Rect {
	b := c.Box(id)
	r := utils.Rect{X: b.X, Y: b.Y, Width: b.LogicalWidth, Height: c.LogicalHeight(id)}
	if !b.isHorizontal {
		r.Width, r.Height = r.Height, r.Width
	}
	return r
}

// Width returns the physical width of [id].
func (c *Context) Width(id BoxID) Fl {
	if b := c.Box(id); !b.isHorizontal {
		return c.LogicalHeight(id)
	}
	return c.Box(id).LogicalWidth
}

func (c *Context) Height(id BoxID) Fl {
	if b := c.Box(id); !b.isHorizontal {
		return b.LogicalWidth
	}
	return c.LogicalHeight(id)
}

// BaselinePosition returns the distance from the top of [id]
// to its baseline.
func (c *Context) BaselinePosition(id BoxID, baseline text.Baseline) Fl {
	b := c.Box(id)
	switch b.Kind {
	case TextLeaf, LineBreakLeaf:
		if !b.IsText || b.parent.IsNone() {
			return 0
		}
		if p := c.Box(b.parent); p.Object == b.Object.Parent {
			return c.BaselinePosition(b.parent, baseline)
		}
		return b.Object.Parent.BaselinePosition(baseline, b.firstLine, b.isHorizontal, render.PositionOnContainingLine)
	case Ellipsis:
		return b.Object.BaselinePosition(baseline, b.firstLine, b.isHorizontal, render.PositionOfInteriorLineBoxes)
	}
	return b.Object.BaselinePosition(baseline, b.firstLine, b.isHorizontal, b.linePositionMode())
}

// LineHeight returns the used line height of [id].
func (c *Context) LineHeight(id BoxID) Fl {
	b := c.Box(id)
	switch b.Kind {
	case TextLeaf, LineBreakLeaf:
		if !b.IsText || b.Object.Parent == nil {
			return 0
		}
		if b.Object.IsBR() {
			return b.style().ComputedLineHeight()
		}
		if !b.parent.IsNone() && c.Box(b.parent).Object == b.Object.Parent {
			return c.LineHeight(b.parent)
		}
		return b.Object.Parent.LineHeight(b.firstLine, b.isHorizontal, render.PositionOnContainingLine)
	case Ellipsis:
		return b.Object.LineHeight(b.firstLine, b.isHorizontal, render.PositionOfInteriorLineBoxes)
	}
	return b.Object.LineHeight(b.firstLine, b.isHorizontal, b.linePositionMode())
}

// NextOnLineExists returns true if some content follows [id] on its line,
// possibly after the end of its ancestors.
func (c *Context) NextOnLineExists(id BoxID) bool {
	b := c.Box(id)
	return b.nextOnLineExists.get(func() bool {
		if b.parent.IsNone() {
			return false
		}
		if !b.nextOnLine.IsNone() {
			return true
		}
		return c.NextOnLineExists(b.parent)
	})
}

func (c *Context) PrevOnLineExists(id BoxID) bool {
	b := c.Box(id)
	return b.prevOnLineExists.get(func() bool {
		if b.parent.IsNone() {
			return false
		}
		if !b.prevOnLine.IsNone() {
			return true
		}
		return c.PrevOnLineExists(b.parent)
	})
}

// FirstLeafChild returns the first leaf descendant of [id], in visual order,
// or [NoBox].
func (c *Context) FirstLeafChild(id BoxID) BoxID {
	leaf := NoBox
	for child := c.Box(id).FirstChild(); !child.IsNone() && leaf.IsNone(); child = c.Box(child).nextOnLine {
		if c.Box(child).Kind.IsLeaf() {
			leaf = child
		} else {
			leaf = c.FirstLeafChild(child)
		}
	}
	return leaf
}

func (c *Context) LastLeafChild(id BoxID) BoxID {
	leaf := NoBox
	for child := c.Box(id).LastChild(); !child.IsNone() && leaf.IsNone(); child = c.Box(child).prevOnLine {
		if c.Box(child).Kind.IsLeaf() {
			leaf = child
		} else {
			leaf = c.LastLeafChild(child)
		}
	}
	return leaf
}

// NextLeafChild returns the leaf following [id] on the line,
// crossing the boundaries of the flow boxes.
func (c *Context) NextLeafChild(id BoxID) BoxID {
	b := c.Box(id)
	leaf := NoBox
	for box := b.nextOnLine; !box.IsNone() && leaf.IsNone(); box = c.Box(box).nextOnLine {
		if c.Box(box).Kind.IsLeaf() {
			leaf = box
		} else {
			leaf = c.FirstLeafChild(box)
		}
	}
	if leaf.IsNone() && !b.parent.IsNone() {
		leaf = c.NextLeafChild(b.parent)
	}
	return leaf
}

func (c *Context) PrevLeafChild(id BoxID) BoxID {
	b := c.Box(id)
	leaf := NoBox
	for box := b.prevOnLine; !box.IsNone() && leaf.IsNone(); box = c.Box(box).prevOnLine {
		if c.Box(box).Kind.IsLeaf() {
			leaf = box
		} else {
			leaf = c.LastLeafChild(box)
		}
	}
	if leaf.IsNone() && !b.parent.IsNone() {
		leaf = c.PrevLeafChild(b.parent)
	}
	return leaf
}

// NextLeafChildIgnoringLineBreak returns [NoBox] instead of a line break.
func (c *Context) NextLeafChildIgnoringLineBreak(id BoxID) BoxID {
	leaf := c.NextLeafChild(id)
	if !leaf.IsNone() && c.Box(leaf).Kind == LineBreakLeaf {
		return NoBox
	}
	return leaf
}

func (c *Context) PrevLeafChildIgnoringLineBreak(id BoxID) BoxID {
	leaf := c.PrevLeafChild(id)
	if !leaf.IsNone() && c.Box(leaf).Kind == LineBreakLeaf {
		return NoBox
	}
	return leaf
}

func truncInt(v Fl) Fl { return Fl(int(v)) }

// CanAccommodateEllipsis returns false if a replaced box of [id]
// would be overlapped by an ellipsis of width [ellipsisWidth]
// placed against [blockEdge].
func (c *Context) CanAccommodateEllipsis(id BoxID, ltr bool, blockEdge, ellipsisWidth Fl) bool {
	b := c.Box(id)
	if b.flow != nil {
		for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
			if !c.CanAccommodateEllipsis(child, ltr, blockEdge, ellipsisWidth) {
				return false
			}
		}
		return true
	}
	if b.Kind != ReplacedLeaf || !b.Object.IsReplaced() {
		return true
	}
	boxRect := utils.Rect{X: truncInt(b.X), Width: truncInt(b.LogicalWidth), Height: 10}
	ellipsisX := blockEdge
	if ltr {
		ellipsisX = blockEdge - ellipsisWidth
	}
	ellipsisRect := utils.Rect{X: truncInt(ellipsisX), Width: truncInt(ellipsisWidth), Height: 10}
	return !boxRect.Intersects(ellipsisRect)
}

// CaretMinOffset returns the first caret position in [id].
func (c *Context) CaretMinOffset(id BoxID) int {
	b := c.Box(id)
	if b.Kind == TextLeaf {
		return b.Text.Start
	}
	return 0
}

func (c *Context) CaretMaxOffset(id BoxID) int {
	b := c.Box(id)
	switch b.Kind {
	case TextLeaf:
		return b.Text.Start + b.Text.Len
	case ReplacedLeaf:
		return 1
	default:
		return 0
	}
}

// AdjustPosition moves [id] and its descendants. Replaced objects
// are moved along with their boxes.
func (c *Context) AdjustPosition(id BoxID, dx, dy Fl) {
	b := c.Box(id)
	b.X += dx
	b.Y += dy
	if b.Kind == ReplacedLeaf {
		b.Object.Frame = b.Object.Frame.Moved(dx, dy)
	}
	if b.flow == nil {
		return
	}
	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		c.AdjustPosition(child, dx, dy)
	}
	if ov := b.flow.overflow; ov != nil {
		ov.layout = ov.layout.Moved(dx, dy)
		ov.visual = ov.visual.Moved(dx, dy)
	}
	if b.Kind == Root {
		delta := dy
		if !b.isHorizontal {
			delta = dx
		}
		rd := b.root
		rd.lineTop += delta
		rd.lineBottom += delta
		rd.lineTopWithLeading += delta
		rd.lineBottomWithLeading += delta
		if e := c.EllipsisBox(id); !e.IsNone() {
			c.AdjustPosition(e, dx, dy)
		}
	}
}

// LocationIncludingFlipping returns the position of [id] with
// the block direction flipped, if needed.
func (c *Context) LocationIncludingFlipping(id BoxID) utils.Point {
	b := c.Box(id)
	if !b.Object.Style.IsFlippedBlocksWritingMode() {
		return utils.Point{X: b.X, Y: b.Y}
	}
	block := c.Block(id)
	if block.Style.IsHorizontalWritingMode() {
		return utils.Point{X: b.X, Y: block.Frame.Height - c.Height(id) - b.Y}
	}
	return utils.Point{X: block.Frame.Width - c.Width(id) - b.X, Y: b.Y}
}

// FlipForWritingMode converts [rect] between the physical
// and the flipped coordinates of the block of [id].
func (c *Context) FlipForWritingMode(id BoxID, rect utils.Rect) utils.Rect {
	if !c.Box(id).Object.Style.IsFlippedBlocksWritingMode() {
		return rect
	}
	return c.Block(id).FlipForWritingMode(rect)
}

func (c *Context) flipPointForWritingMode(id BoxID, p utils.Point) utils.Point {
	if !c.Box(id).Object.Style.IsFlippedBlocksWritingMode() {
		return p
	}
	return c.Block(id).FlipPointForWritingMode(p)
}
