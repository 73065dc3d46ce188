package inline

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/utils"
)

// logicalFrameRectIncludingLineHeight returns the logical frame of [id]
// extended to the whole height of its line.
func (c *Context) logicalFrameRectIncludingLineHeight(id BoxID, lineTop, lineBottom Fl) utils.Rect {
	b := c.Box(id)
	return utils.Rect{X: b.LogicalLeft(), Y: lineTop, Width: b.LogicalWidth, Height: lineBottom - lineTop}
}

func (c *Context) frameRectIncludingLineHeight(id BoxID, lineTop, lineBottom Fl) utils.Rect {
	r := c.logicalFrameRectIncludingLineHeight(id, lineTop, lineBottom)
	if !c.Box(id).isHorizontal {
		return r.Transposed()
	}
	return r
}

// VisualOverflowRect returns the physical area painted by the flow box [id]
// and its descendants.
func (c *Context) VisualOverflowRect(id BoxID, lineTop, lineBottom Fl) utils.Rect {
	if ov := c.Box(id).flow.overflow; ov != nil {
		return ov.visual
	}
	return c.frameRectIncludingLineHeight(id, lineTop, lineBottom)
}

// LayoutOverflowRect returns the physical area used to
// compute the scrollable extent of the block.
func (c *Context) LayoutOverflowRect(id BoxID, lineTop, lineBottom Fl) utils.Rect {
	if ov := c.Box(id).flow.overflow; ov != nil {
		return ov.layout
	}
	return c.frameRectIncludingLineHeight(id, lineTop, lineBottom)
}

func (c *Context) LogicalVisualOverflowRect(id BoxID, lineTop, lineBottom Fl) utils.Rect {
	r := c.VisualOverflowRect(id, lineTop, lineBottom)
	if !c.Box(id).Object.Style.IsHorizontalWritingMode() {
		return r.Transposed()
	}
	return r
}

func (c *Context) LogicalLayoutOverflowRect(id BoxID, lineTop, lineBottom Fl) utils.Rect {
	r := c.LayoutOverflowRect(id, lineTop, lineBottom)
	if !c.Box(id).Object.Style.IsHorizontalWritingMode() {
		return r.Transposed()
	}
	return r
}

// LogicalOverflowRect returns the logical area painted by the text box [id].
func (c *Context) LogicalOverflowRect(id BoxID) utils.Rect {
	b := c.Box(id)
	if b.knownToHaveNoOverflow {
		return c.LogicalFrameRect(id).Enclosing()
	}
	if r, ok := c.textOverflows[id]; ok {
		return r
	}
	return c.LogicalFrameRect(id).Enclosing()
}

// roundedFrameRect snaps the edges of the frame of [id] to the nearest pixel.
func (c *Context) roundedFrameRect(id BoxID) utils.Rect {
	return c.FrameRect(id).PixelSnapped()
}

// constrainToLineTopAndBottomIfNeeded clips [rect] to the extent of the line
// in quirks mode, for flow boxes without text.
func (c *Context) constrainToLineTopAndBottomIfNeeded(id BoxID, rect utils.Rect) utils.Rect {
	b := c.Box(id)
	if !b.Object.InQuirksMode() || b.flow.hasTextChildren || (b.flow.descendantsHaveSameLineHeightAndBaseline && b.flow.hasTextDescendants) {
		return rect
	}
	root := c.Box(c.Root(id))
	logicalTop, logicalHeight := rect.Y, rect.Height
	if !b.isHorizontal {
		logicalTop, logicalHeight = rect.X, rect.Width
	}
	bottom := utils.MinF(root.LineBottom(), logicalTop+logicalHeight)
	logicalTop = utils.MaxF(root.LineTop(), logicalTop)
	logicalHeight = bottom - logicalTop
	if b.isHorizontal {
		rect.Y, rect.Height = logicalTop, logicalHeight
	} else {
		rect.X, rect.Width = logicalTop, logicalHeight
	}
	return rect
}

func unitedBounds(r utils.Rect, left, top, right, bottom Fl) utils.Rect {
	left, top = utils.MinF(left, r.X), utils.MinF(top, r.Y)
	right, bottom = utils.MaxF(right, r.MaxX()), utils.MaxF(bottom, r.MaxY())
	return utils.Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// addBoxShadowVisualOverflow extends [logicalVisualOverflow] with the
// box shadows of the flow box [id]. Shadows of root boxes apply to the block.
func (c *Context) addBoxShadowVisualOverflow(id BoxID, logicalVisualOverflow utils.Rect) utils.Rect {
	b := c.Box(id)
	if b.parent.IsNone() {
		return logicalVisualOverflow
	}
	st := b.style()
	if len(st.BoxShadow) == 0 {
		return logicalVisualOverflow
	}
	ext := st.BoxShadowExtent()
	// extents in the logical coordinates of the line, the
	// over side being negative
	shadowTop, shadowBottom, shadowLeft, shadowRight := -ext.Top, ext.Bottom, -ext.Left, ext.Right
	if !b.isHorizontal {
		shadowTop, shadowBottom, shadowLeft, shadowRight = -ext.Left, ext.Right, -ext.Top, ext.Bottom
	}
	// on flipped lines, the opposite shadow applies
	if st.IsFlippedLinesWritingMode() {
		shadowTop, shadowBottom = -shadowBottom, -shadowTop
	}
	return unitedBounds(logicalVisualOverflow,
		b.PixelSnappedLogicalLeft()+shadowLeft, b.PixelSnappedLogicalTop()+shadowTop,
		b.PixelSnappedLogicalRight()+shadowRight, c.pixelSnappedLogicalBottom(id)+shadowBottom)
}

// addBorderOutsetVisualOverflow extends [logicalVisualOverflow]
// with the border image outsets of the flow box [id].
func (c *Context) addBorderOutsetVisualOverflow(id BoxID, logicalVisualOverflow utils.Rect) utils.Rect {
	b := c.Box(id)
	if b.parent.IsNone() {
		return logicalVisualOverflow
	}
	st := b.style()
	if st.BorderImageOutsets.IsZero() {
		return logicalVisualOverflow
	}
	outsets, wm := st.BorderImageOutsets, st.WritingMode
	outsetTop, outsetBottom := outsets.Before(wm), outsets.After(wm)
	if st.IsFlippedLinesWritingMode() {
		outsetTop, outsetBottom = outsetBottom, outsetTop
	}
	var outsetLeft, outsetRight Fl
	if b.IncludeLogicalLeftEdge() {
		outsetLeft = outsets.LogicalLeft(wm)
	}
	if b.IncludeLogicalRightEdge() {
		outsetRight = outsets.LogicalRight(wm)
	}
	return unitedBounds(logicalVisualOverflow,
		b.PixelSnappedLogicalLeft()-outsetLeft, b.PixelSnappedLogicalTop()-outsetTop,
		b.PixelSnappedLogicalRight()+outsetRight, c.pixelSnappedLogicalBottom(id)+outsetBottom)
}

// addTextBoxVisualOverflow extends the frame of the text box [textBox]
// with its glyph overflow, stroke, emphasis marks and shadows, and
// stores the result as its logical overflow.
func (c *Context) addTextBoxVisualOverflow(parent, textBox BoxID, logicalVisualOverflow utils.Rect) utils.Rect {
	tb := c.Box(textBox)
	if tb.knownToHaveNoOverflow {
		return logicalVisualOverflow
	}
	st := tb.Object.StyleFor(c.Box(parent).firstLine)

	glyphOverflow, hasGlyphOverflow := c.glyphOverflows[textBox]
	isFlippedLine := st.IsFlippedLinesWritingMode()

	var topGlyphEdge, bottomGlyphEdge, leftGlyphEdge, rightGlyphEdge Fl
	if hasGlyphOverflow {
		topGlyphEdge, bottomGlyphEdge = glyphOverflow.Top, glyphOverflow.Bottom
		if isFlippedLine {
			topGlyphEdge, bottomGlyphEdge = bottomGlyphEdge, topGlyphEdge
		}
		leftGlyphEdge, rightGlyphEdge = glyphOverflow.Left, glyphOverflow.Right
	}

	strokeOverflow := utils.Ceil(st.TextStrokeWidth / 2)
	topGlyphOverflow := -strokeOverflow - topGlyphEdge
	bottomGlyphOverflow := strokeOverflow + bottomGlyphEdge
	leftGlyphOverflow := -strokeOverflow - leftGlyphEdge
	rightGlyphOverflow := strokeOverflow + rightGlyphEdge

	if pos, ok := c.emphasisMarkPosition(textBox, st); ok {
		markHeight := st.Font.EmphasisMarkHeight(st.TextEmphasisMark)
		if (pos == pr.EmphasisOver) == !isFlippedLine {
			topGlyphOverflow = utils.MinF(topGlyphOverflow, -markHeight)
		} else {
			bottomGlyphOverflow = utils.MaxF(bottomGlyphOverflow, markHeight)
		}
	}

	// negative letter spacing is applied on the right, even in rtl
	rightGlyphOverflow -= utils.MinF(0, truncInt(st.LetterSpacing))

	ext := st.TextShadowExtent()
	shadowTop, shadowBottom, shadowLeft, shadowRight := -ext.Top, ext.Bottom, -ext.Left, ext.Right
	if !tb.isHorizontal {
		shadowTop, shadowBottom, shadowLeft, shadowRight = -ext.Left, ext.Right, -ext.Top, ext.Bottom
	}

	childOverflowTop := utils.MinF(shadowTop+topGlyphOverflow, topGlyphOverflow)
	childOverflowBottom := utils.MaxF(shadowBottom+bottomGlyphOverflow, bottomGlyphOverflow)
	childOverflowLeft := utils.MinF(shadowLeft+leftGlyphOverflow, leftGlyphOverflow)
	childOverflowRight := utils.MaxF(shadowRight+rightGlyphOverflow, rightGlyphOverflow)

	out := unitedBounds(logicalVisualOverflow,
		tb.PixelSnappedLogicalLeft()+childOverflowLeft, tb.PixelSnappedLogicalTop()+childOverflowTop,
		tb.PixelSnappedLogicalRight()+childOverflowRight, c.pixelSnappedLogicalBottom(textBox)+childOverflowBottom)
	c.textOverflows[textBox] = out
	return out
}

// addReplacedChildOverflow propagates the overflow of a replaced child.
// The visual overflow is ignored for objects painting themselves.
func (c *Context) addReplacedChildOverflow(parent, child BoxID, logicalLayoutOverflow, logicalVisualOverflow utils.Rect) (layout, visual utils.Rect) {
	cb := c.Box(child)
	horizontal := c.Box(parent).Object.Style.IsHorizontalWritingMode()
	obj := cb.Object
	if !obj.SelfPaintingLayer {
		childVisual := obj.LogicalVisualOverflowRectForPropagation(horizontal).Moved(cb.LogicalLeft(), cb.LogicalTop())
		logicalVisualOverflow = logicalVisualOverflow.Unite(childVisual)
	}
	childLayout := obj.LogicalLayoutOverflowRectForPropagation(horizontal).Moved(cb.LogicalLeft(), cb.LogicalTop())
	return logicalLayoutOverflow.Unite(childLayout), logicalVisualOverflow
}

// ComputeOverflow computes the visual and layout overflow of the
// flow box [id] and its descendants. Nothing is stored
// for the boxes known to have no overflow.
func (c *Context) ComputeOverflow(id BoxID, lineTop, lineBottom Fl) {
	b := c.Box(id)
	if b.knownToHaveNoOverflow {
		return
	}

	logicalLayoutOverflow := c.logicalFrameRectIncludingLineHeight(id, lineTop, lineBottom).Enclosing()
	logicalVisualOverflow := logicalLayoutOverflow

	logicalVisualOverflow = c.addBoxShadowVisualOverflow(id, logicalVisualOverflow)
	logicalVisualOverflow = c.addBorderOutsetVisualOverflow(id, logicalVisualOverflow)

	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		cb := c.Box(child)
		obj := cb.Object
		if obj.IsOutOfFlowPositioned() {
			continue
		}
		switch {
		case cb.Kind == LineBreakLeaf:
		case cb.Kind == TextLeaf:
			textBoxOverflow := c.addTextBoxVisualOverflow(id, child, c.LogicalFrameRect(child).Enclosing())
			logicalVisualOverflow = logicalVisualOverflow.Unite(textBoxOverflow)
		case cb.Kind == Flow:
			c.ComputeOverflow(child, lineTop, lineBottom)
			if !obj.SelfPaintingLayer {
				logicalVisualOverflow = logicalVisualOverflow.Unite(c.LogicalVisualOverflowRect(child, lineTop, lineBottom))
			}
			logicalLayoutOverflow = logicalLayoutOverflow.Unite(c.LogicalLayoutOverflowRect(child, lineTop, lineBottom))
		default:
			logicalLayoutOverflow, logicalVisualOverflow = c.addReplacedChildOverflow(id, child, logicalLayoutOverflow, logicalVisualOverflow)
		}
	}

	c.setOverflowFromLogicalRects(id, logicalLayoutOverflow, logicalVisualOverflow, lineTop, lineBottom)
}

func (c *Context) setOverflowFromLogicalRects(id BoxID, logicalLayoutOverflow, logicalVisualOverflow utils.Rect, lineTop, lineBottom Fl) {
	b := c.Box(id)
	layout, visual := logicalLayoutOverflow, logicalVisualOverflow
	if !b.isHorizontal {
		layout, visual = layout.Transposed(), visual.Transposed()
	}
	frameBox := c.frameRectIncludingLineHeight(id, lineTop, lineBottom).Enclosing()

	if !frameBox.Contains(layout) && !layout.IsEmpty() {
		if b.flow.overflow == nil {
			b.flow.overflow = &overflowRects{layout: frameBox, visual: frameBox}
		}
		b.flow.overflow.layout = layout
	}
	if !frameBox.Contains(visual) && !visual.IsEmpty() {
		if b.flow.overflow == nil {
			b.flow.overflow = &overflowRects{layout: frameBox, visual: frameBox}
		}
		b.flow.overflow.visual = visual
	}
}

// ClearOverflow forgets the overflow computed for [id].
func (c *Context) ClearOverflow(id BoxID) {
	if b := c.Box(id); b.flow != nil {
		b.flow.overflow = nil
	}
}
