package inline

import (
	"github.com/benoitkugler/linebox/backend"
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/utils"
)

// GapRects stores the rectangles filling the unselected
// parts of a selection on a line.
type GapRects struct {
	Left, Center, Right utils.Rect
}

// Unite returns the union of the three gaps.
func (g GapRects) Unite() utils.Rect { return g.Left.Unite(g.Center).Unite(g.Right) }

// SelectionTop returns the top of the selection highlight of the line [root].
func (c *Context) SelectionTop(root BoxID) Fl {
	b := c.Box(root)
	rd := b.rootData()
	selectionTop := rd.lineTop

	flipped := b.Object.Style.IsFlippedLinesWritingMode()
	if rd.hasAnnotationsBefore {
		if !flipped {
			selectionTop -= c.computeOverAnnotationAdjustment(root, rd.lineTop)
		} else {
			selectionTop -= c.computeUnderAnnotationAdjustment(root, rd.lineTop)
		}
	}

	prev := c.PrevRootBox(root)
	if flipped || prev.IsNone() {
		return selectionTop
	}

	block := b.Object
	prevBottom := c.SelectionBottom(prev)
	if prevBottom < selectionTop && block.ContainsFloats() {
		// the line has been moved down, by a large line-height or to
		// clear floats: the bottom of the previous line is only used
		// if the offsets are greater on both sides
		prevLeft := block.LogicalLeftOffsetForLine(prevBottom, false)
		prevRight := block.LogicalRightOffsetForLine(prevBottom, false)
		newLeft := block.LogicalLeftOffsetForLine(selectionTop, false)
		newRight := block.LogicalRightOffsetForLine(selectionTop, false)
		if prevLeft > newLeft || prevRight < newRight {
			return selectionTop
		}
	}
	return prevBottom
}

// SelectionBottom returns the bottom of the selection highlight of the line [root].
func (c *Context) SelectionBottom(root BoxID) Fl {
	b := c.Box(root)
	rd := b.rootData()
	selectionBottom := rd.lineBottom

	flipped := b.Object.Style.IsFlippedLinesWritingMode()
	if rd.hasAnnotationsAfter {
		if !flipped {
			selectionBottom += c.computeUnderAnnotationAdjustment(root, rd.lineBottom)
		} else {
			selectionBottom += c.computeOverAnnotationAdjustment(root, rd.lineBottom)
		}
	}

	next := c.NextRootBox(root)
	if !flipped || next.IsNone() {
		return selectionBottom
	}

	block := b.Object
	nextTop := c.SelectionTop(next)
	if nextTop > selectionBottom && block.ContainsFloats() {
		nextLeft := block.LogicalLeftOffsetForLine(nextTop, false)
		nextRight := block.LogicalRightOffsetForLine(nextTop, false)
		newLeft := block.LogicalLeftOffsetForLine(selectionBottom, false)
		newRight := block.LogicalRightOffsetForLine(selectionBottom, false)
		if nextLeft > newLeft || nextRight < newRight {
			return selectionBottom
		}
	}
	return nextTop
}

// SelectionHeight is never negative.
func (c *Context) SelectionHeight(root BoxID) Fl {
	return utils.MaxF(0, c.SelectionBottom(root)-c.SelectionTop(root))
}

// SelectionState returns the selection state of [id]. For a root box,
// it is the combination of the states of its leaves.
func (c *Context) SelectionState(id BoxID) render.SelectionState {
	b := c.Box(id)
	switch b.Kind {
	case TextLeaf:
		return c.textSelectionState(id)
	case Ellipsis:
		return c.ellipsisSelectionState(id)
	case Root:
		return c.lineSelectionState(id)
	case Flow:
		return render.SelectionNone
	default:
		return b.Object.Selection.State
	}
}

func (c *Context) lineSelectionState(root BoxID) render.SelectionState {
	state := render.SelectionNone
	for box := c.FirstLeafChild(root); !box.IsNone(); box = c.NextLeafChild(box) {
		boxState := c.SelectionState(box)
		switch {
		case (boxState == render.SelectionStart && state == render.SelectionEnd) ||
			(boxState == render.SelectionEnd && state == render.SelectionStart):
			state = render.SelectionBoth
		case state == render.SelectionNone ||
			((boxState == render.SelectionStart || boxState == render.SelectionEnd) && state == render.SelectionInside):
			state = boxState
		case boxState == render.SelectionNone && state == render.SelectionStart:
			// past the end of the selection
			state = render.SelectionBoth
		}
		if state == render.SelectionBoth {
			break
		}
	}
	return state
}

// FirstSelectedBox returns the first selected leaf of the line [root], or [NoBox].
func (c *Context) FirstSelectedBox(root BoxID) BoxID {
	for box := c.FirstLeafChild(root); !box.IsNone(); box = c.NextLeafChild(box) {
		if c.SelectionState(box) != render.SelectionNone {
			return box
		}
	}
	return NoBox
}

func (c *Context) LastSelectedBox(root BoxID) BoxID {
	for box := c.LastLeafChild(root); !box.IsNone(); box = c.PrevLeafChild(box) {
		if c.SelectionState(box) != render.SelectionNone {
			return box
		}
	}
	return NoBox
}

// LineSelectionGap returns the rectangles filling the selection of the line [root]
// outside of its selected boxes: before the first one, after the last one, and
// between selected boxes split by bidi reordering. The gaps are painted
// when [canvas] is not nil.
func (c *Context) LineSelectionGap(root BoxID, rootBlock *render.Object, rootBlockPhysicalPosition, offsetFromRootBlock utils.Point,
	selTop, selHeight Fl, cache *render.LogicalSelectionOffsetCaches, canvas backend.Canvas,
) GapRects {
	b := c.Box(root)
	block := b.Object
	lineState := c.SelectionState(root)

	leftGap, rightGap := block.GetSelectionGapInfo(lineState)

	var result GapRects
	firstBox, lastBox := c.FirstSelectedBox(root), c.LastSelectedBox(root)
	if firstBox.IsNone() {
		return result
	}
	if leftGap {
		fb := c.Box(firstBox)
		result.Left = result.Left.Unite(block.LogicalLeftSelectionGap(rootBlock, rootBlockPhysicalPosition, offsetFromRootBlock,
			c.Box(fb.parent).Object, fb.LogicalLeft(), selTop, selHeight, cache, canvas))
	}
	if rightGap {
		lb := c.Box(lastBox)
		result.Right = result.Right.Unite(block.LogicalRightSelectionGap(rootBlock, rootBlockPhysicalPosition, offsetFromRootBlock,
			c.Box(lb.parent).Object, lb.LogicalRight(), selTop, selHeight, cache, canvas))
	}

	// with bidi text, the selection may be non contiguous: the logical
	// text aaaAAAbbb (capitals are RTL) is displayed as |aaa|bbb|AAA|,
	// so selecting 4 characters from the start leaves |bbb| unselected
	// between two selected runs
	if firstBox == lastBox {
		return result
	}
	offset := offsetFromRootBlock
	if !block.Style.IsHorizontalWritingMode() {
		offset = utils.Point{X: offsetFromRootBlock.Y, Y: offsetFromRootBlock.X}
	}
	lastLogicalLeft := c.Box(firstBox).LogicalRight()
	isPreviousBoxSelected := c.SelectionState(firstBox) != render.SelectionNone
	for box := c.NextLeafChild(firstBox); !box.IsNone(); box = c.NextLeafChild(box) {
		bb := c.Box(box)
		if c.SelectionState(box) != render.SelectionNone {
			logicalRect := utils.Rect{X: lastLogicalLeft, Y: selTop, Width: bb.LogicalLeft() - lastLogicalLeft, Height: selHeight}
			logicalRect = logicalRect.Moved(offset.X, offset.Y)
			gapRect := rootBlock.LogicalRectToPhysicalRect(rootBlockPhysicalPosition, logicalRect)
			if isPreviousBoxSelected && gapRect.Width > 0 && gapRect.Height > 0 {
				parentObj := c.Box(bb.parent).Object
				if canvas != nil && parentObj.Style.Visibility == pr.Visible {
					backend.FillRect(canvas, gapRect, parentObj.SelectionBackgroundColor())
				}
				result.Center = result.Center.Unite(gapRect)
			}
			lastLogicalLeft = bb.LogicalRight()
		}
		if box == lastBox {
			break
		}
		isPreviousBoxSelected = c.SelectionState(box) != render.SelectionNone
	}
	return result
}
