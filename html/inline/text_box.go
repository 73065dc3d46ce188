package inline

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

// textRun returns the measured characters of the text box [id].
func (c *Context) textRun(id BoxID) render.TextRun {
	b := c.Box(id)
	return render.ConstructTextRun(b.textOf(), b.style(), !b.IsLeftToRightDirection(), b.Text.Expansion)
}

// MeasureText returns the advance of the characters of the text box [id],
// which is the logical width the line layout should use.
func (c *Context) MeasureText(id BoxID) Fl { return c.textRun(id).Width() }

// selectionRectForText returns the horizontal extent of the characters
// [from, to) of [run], drawn from [x].
func selectionRectForText(run render.TextRun, x Fl, from, to int) (left, width Fl) {
	wFrom, wTo := run.WidthOfPrefix(from), run.WidthOfPrefix(to)
	if run.RTL {
		return x + run.Width() - wTo, wTo - wFrom
	}
	return x + wFrom, wTo - wFrom
}

// IsLineBreak returns true for the boxes of <br> elements
// and preserved newlines.
func (c *Context) IsLineBreak(id BoxID) bool {
	b := c.Box(id)
	if b.Kind == LineBreakLeaf || b.Object.IsBR() {
		return true
	}
	return b.Kind == TextLeaf && b.Text.Len == 1 && b.runeAt(b.Text.Start) == '\n'
}

// IsSelected returns true if some characters of [id]
// are in [startPos, endPos).
func (c *Context) IsSelected(id BoxID, startPos, endPos int) bool {
	tf := c.Box(id).Text
	sPos := max(startPos-tf.Start, 0)
	ePos := min(endPos-tf.Start, tf.Len)
	return sPos < ePos
}

// textSelectionState narrows the selection state of the text object
// to the range of the box. It also updates the selection state of the
// ellipsis of the line for truncated boxes.
func (c *Context) textSelectionState(id BoxID) render.SelectionState {
	b := c.Box(id)
	tf := b.Text
	state := b.Object.Selection.State
	if state == render.SelectionStart || state == render.SelectionEnd || state == render.SelectionBoth {
		startPos, endPos := b.Object.SelectionStartEnd()
		// the position after a hard line break is past its end
		lastSelectable := tf.Start + tf.Len
		if c.IsLineBreak(id) {
			lastSelectable--
		}

		start := state != render.SelectionEnd && startPos >= tf.Start && startPos < tf.Start+tf.Len
		end := state != render.SelectionStart && endPos > tf.Start && endPos <= lastSelectable
		switch {
		case start && end:
			state = render.SelectionBoth
		case start:
			state = render.SelectionStart
		case end:
			state = render.SelectionEnd
		case (state == render.SelectionEnd || startPos < tf.Start) &&
			(state == render.SelectionStart || endPos > lastSelectable):
			state = render.SelectionInside
		case state == render.SelectionBoth:
			state = render.SelectionNone
		}
	}

	if tf.Truncation != NoTruncation && !b.parent.IsNone() {
		if ellipsis := c.EllipsisBox(c.Root(id)); !ellipsis.IsNone() {
			ellipsisState := render.SelectionNone
			if state != render.SelectionNone {
				// the ellipsis is selected when the selection
				// covers the beginning of the truncation
				start, end := c.selectionStartEnd(id)
				if end >= tf.Truncation && start <= tf.Truncation {
					ellipsisState = render.SelectionInside
				}
			}
			c.Box(ellipsis).ellipsis.selectionState = ellipsisState
		}
	}
	return state
}

// selectionStartEnd returns the selected range of the text box [id],
// relative to its start.
func (c *Context) selectionStartEnd(id BoxID) (sPos, ePos int) {
	b := c.Box(id)
	obj := b.Object
	var startPos, endPos int
	if obj.Selection.State == render.SelectionInside {
		startPos, endPos = 0, text.RuneCount(obj.Text)
	} else {
		startPos, endPos = obj.SelectionStartEnd()
		switch obj.Selection.State {
		case render.SelectionStart:
			endPos = text.RuneCount(obj.Text)
		case render.SelectionEnd:
			startPos = 0
		}
	}
	return max(startPos-b.Text.Start, 0), min(endPos-b.Text.Start, b.Text.Len)
}

// LocalSelectionRect returns the physical rectangle covered by the characters
// [startPos, endPos) of the text box [id], over the whole selection height
// of its line.
func (c *Context) LocalSelectionRect(id BoxID, startPos, endPos int) utils.Rect {
	b := c.Box(id)
	tf := b.Text
	sPos := max(startPos-tf.Start, 0)
	ePos := min(endPos-tf.Start, tf.Len)
	if sPos > ePos {
		return utils.Rect{}
	}

	root := c.Root(id)
	selTop := c.SelectionTop(root)
	selHeight := c.SelectionHeight(root)

	var r utils.Rect
	if sPos != 0 || ePos != tf.Len {
		x, w := selectionRectForText(c.textRun(id), b.LogicalLeft(), sPos, ePos)
		r = utils.Rect{X: x, Y: selTop, Width: w, Height: selHeight}.Enclosing()
	} else {
		r = utils.Rect{X: b.LogicalLeft(), Y: selTop, Width: b.LogicalWidth, Height: selHeight}.Enclosing()
	}

	logicalWidth := r.Width
	if r.X > b.LogicalRight() {
		logicalWidth = 0
	} else if r.MaxX() > b.LogicalRight() {
		logicalWidth = b.LogicalRight() - r.X
	}

	if b.isHorizontal {
		return utils.Rect{X: r.X, Y: selTop, Width: logicalWidth, Height: selHeight}
	}
	return utils.Rect{X: selTop, Y: r.X, Width: selHeight, Height: logicalWidth}
}

// placeEllipsisInTextBox truncates the text box [id] so that an ellipsis
// of width [ellipsisWidth] fits in the visible edges.
func (c *Context) placeEllipsisInTextBox(id BoxID, flowIsLTR bool, visibleLeftEdge, visibleRightEdge, ellipsisWidth Fl, truncatedWidth *Fl, foundBox *bool) Fl {
	b := c.Box(id)
	tf := b.Text
	if *foundBox {
		tf.Truncation = FullTruncation
		return -1
	}

	left, right := b.LogicalLeft(), b.LogicalRight()
	ellipsisX := visibleLeftEdge + ellipsisWidth
	if flowIsLTR {
		ellipsisX = visibleRightEdge - ellipsisWidth
	}

	ltrFullTruncation := flowIsLTR && ellipsisX <= left
	rtlFullTruncation := !flowIsLTR && ellipsisX >= right
	if ltrFullTruncation || rtlFullTruncation {
		tf.Truncation = FullTruncation
		*foundBox = true
		return -1
	}

	ltrEllipsisWithinBox := flowIsLTR && ellipsisX < right
	rtlEllipsisWithinBox := !flowIsLTR && ellipsisX > left
	if !ltrEllipsisWithinBox && !rtlEllipsisWithinBox {
		*truncatedWidth += b.LogicalWidth
		return -1
	}

	*foundBox = true

	// the text is truncated from its own end when its
	// direction differs from the one of the flow
	ltr := b.IsLeftToRightDirection()
	if ltr != flowIsLTR {
		visibleBoxWidth := truncInt(visibleRightEdge - visibleLeftEdge - ellipsisWidth)
		if ltr {
			ellipsisX = left + visibleBoxWidth
		} else {
			ellipsisX = right - visibleBoxWidth
		}
	}

	offset := c.OffsetForPosition(id, ellipsisX)
	if offset == 0 {
		// no character fits, the ellipsis goes where the text starts
		tf.Truncation = FullTruncation
		*truncatedWidth += ellipsisWidth
		if flowIsLTR {
			return utils.MinF(ellipsisX, b.LogicalLeft())
		}
		return utils.MaxF(ellipsisX, right-ellipsisWidth)
	}

	tf.Truncation = offset
	widthOfVisibleText := c.textRun(id).WidthOfPrefix(offset)

	*truncatedWidth += widthOfVisibleText + ellipsisWidth
	if flowIsLTR {
		return left + widthOfVisibleText
	}
	return right - widthOfVisibleText - ellipsisWidth
}

// widthOfVisibleText returns the width of the characters
// displayed before the ellipsis.
func (c *Context) widthOfVisibleText(id BoxID) Fl {
	b := c.Box(id)
	switch t := b.Text.Truncation; t {
	case NoTruncation:
		return b.LogicalWidth
	case FullTruncation:
		return 0
	default:
		return c.textRun(id).WidthOfPrefix(t)
	}
}

// emphasisMarkPosition returns the position of the emphasis marks of the
// text box [id], and false if there is no mark or if the marks
// over the text are replaced by a ruby annotation.
func (c *Context) emphasisMarkPosition(id BoxID, style *pr.Style) (pr.TextEmphasisPosition, bool) {
	if style.TextEmphasisMark == "" {
		return 0, false
	}
	pos := style.TextEmphasisPosition
	// ruby annotations are always over
	if pos == pr.EmphasisUnder {
		return pos, true
	}
	containingBlock := c.Box(id).Object.ContainingBlock()
	if containingBlock == nil || !containingBlock.IsRubyBase() {
		return pos, true
	}
	run := containingBlock.Parent
	if run == nil || !run.IsRubyRun() {
		return pos, true
	}
	var rubyText *render.RubyPart
	if run.Ruby != nil {
		rubyText = run.Ruby.Text
	}
	return pos, rubyText == nil || !rubyText.HasLines
}

// TextPos returns the offset of the text box [id] from the start of its line.
func (c *Context) TextPos(id BoxID) Fl {
	b := c.Box(id)
	if b.LogicalLeft() == 0 {
		return 0
	}
	return b.LogicalLeft() - c.Box(c.Root(id)).LogicalLeft()
}

// OffsetForPosition returns the character of the text box [id]
// at [lineOffset], in the inline direction of the line.
func (c *Context) OffsetForPosition(id BoxID, lineOffset Fl) int {
	if c.IsLineBreak(id) {
		return 0
	}
	b := c.Box(id)
	ltr := b.IsLeftToRightDirection()
	if lineOffset-b.LogicalLeft() > b.LogicalWidth {
		if ltr {
			return b.Text.Len
		}
		return 0
	}
	if lineOffset-b.LogicalLeft() < 0 {
		if ltr {
			return 0
		}
		return b.Text.Len
	}
	return c.textRun(id).OffsetForPosition(lineOffset - b.LogicalLeft())
}

// PositionForOffset returns the position in the line of the
// caret placed before the character [offset] of the text object.
func (c *Context) PositionForOffset(id BoxID, offset int) Fl {
	b := c.Box(id)
	if c.IsLineBreak(id) {
		return b.LogicalLeft()
	}
	from, to := 0, offset-b.Text.Start
	if !b.IsLeftToRightDirection() {
		from, to = offset-b.Text.Start, b.Text.Len
	}
	x, w := selectionRectForText(c.textRun(id), b.LogicalLeft(), from, to)
	return x + w
}

// ContainsCaretOffset returns true if the caret at [offset]
// in the text object belongs to the text box [id].
func (c *Context) ContainsCaretOffset(id BoxID, offset int) bool {
	tf := c.Box(id).Text
	if offset < tf.Start {
		return false
	}
	pastEnd := tf.Start + tf.Len
	if offset < pastEnd {
		return true
	}
	if offset > pastEnd {
		return false
	}
	// the end of a line break is on the next line
	return !c.IsLineBreak(id)
}
