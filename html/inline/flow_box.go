package inline

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

// Margins, borders and paddings of flow boxes only apply
// on the included edges of the fragment.

func (c *Context) marginLogicalLeft(id BoxID) Fl {
	b := c.Box(id)
	if !b.IncludeLogicalLeftEdge() {
		return 0
	}
	return b.Object.MarginLogicalLeft(b.isHorizontal)
}

func (c *Context) marginLogicalRight(id BoxID) Fl {
	b := c.Box(id)
	if !b.IncludeLogicalRightEdge() {
		return 0
	}
	return b.Object.MarginLogicalRight(b.isHorizontal)
}

func (c *Context) edgeBorderLogicalLeft(id BoxID) Fl {
	b := c.Box(id)
	if !b.IncludeLogicalLeftEdge() {
		return 0
	}
	return b.borderLogicalLeft()
}

func (c *Context) edgeBorderLogicalRight(id BoxID) Fl {
	b := c.Box(id)
	if !b.IncludeLogicalRightEdge() {
		return 0
	}
	return b.borderLogicalRight()
}

func (c *Context) edgePaddingLogicalLeft(id BoxID) Fl {
	b := c.Box(id)
	if !b.IncludeLogicalLeftEdge() {
		return 0
	}
	return b.paddingLogicalLeft()
}

func (c *Context) edgePaddingLogicalRight(id BoxID) Fl {
	b := c.Box(id)
	if !b.IncludeLogicalRightEdge() {
		return 0
	}
	return b.paddingLogicalRight()
}

// MarginBorderPaddingLogicalLeft returns the spacing added
// on the start side of the flow box [id].
func (c *Context) MarginBorderPaddingLogicalLeft(id BoxID) Fl {
	return c.marginLogicalLeft(id) + c.edgeBorderLogicalLeft(id) + c.edgePaddingLogicalLeft(id)
}

func (c *Context) MarginBorderPaddingLogicalRight(id BoxID) Fl {
	return c.marginLogicalRight(id) + c.edgeBorderLogicalRight(id) + c.edgePaddingLogicalRight(id)
}

// GetFlowSpacingLogicalWidth returns the total width added by the
// margins, borders and paddings of [id] and its flow descendants.
func (c *Context) GetFlowSpacingLogicalWidth(id BoxID) Fl {
	total := c.MarginBorderPaddingLogicalLeft(id) + c.MarginBorderPaddingLogicalRight(id)
	for child := c.Box(id).FirstChild(); !child.IsNone(); child = c.Box(child).nextOnLine {
		if c.Box(child).Kind == Flow {
			total += c.GetFlowSpacingLogicalWidth(child)
		}
	}
	return total
}

func isLastChildForObject(ancestor, child *render.Object) bool {
	if child == nil {
		return false
	}
	if child == ancestor {
		return true
	}
	curr := child
	for parent := curr.Parent; parent != nil && !parent.IsBlock(); parent = curr.Parent {
		if len(parent.Children) == 0 || parent.Children[len(parent.Children)-1] != curr {
			return false
		}
		if parent == ancestor {
			return true
		}
		curr = parent
	}
	return true
}

func isAncestorAndWithinBlock(ancestor, child *render.Object) bool {
	for obj := child; obj != nil && !obj.IsBlock(); obj = obj.Parent {
		if obj == ancestor {
			return true
		}
	}
	return false
}

// DetermineSpacingForFlowBoxes decides which edges of the flow
// boxes of the line [id] carry their margins, borders and paddings.
// [logicallyLastRunObject] is the object of the last run of the line,
// in logical order.
func (c *Context) DetermineSpacingForFlowBoxes(id BoxID, lastLine, isLogicallyLastRunWrapped bool, logicallyLastRunObject *render.Object) {
	b := c.Box(id)
	includeLeft, includeRight := false, false

	// root boxes never have borders, margins or paddings
	if !b.parent.IsNone() {
		obj := b.Object
		ltr := obj.Style.IsLeftToRightDirection()
		clone := obj.Style.BoxDecorationBreak == pr.DecorationBreakClone
		first, last := c.FirstLineBox(obj), c.LastLineBox(obj)

		// the inline starts on this line when no previous line is constructed
		if !c.Box(first).constructed && !obj.IsContinuation {
			if clone {
				includeLeft, includeRight = true, true
			} else if ltr && first == id {
				includeLeft = true
			} else if !ltr && last == id {
				includeRight = true
			}
		}

		if !c.Box(last).constructed {
			isLastObjectOnLine := !isAncestorAndWithinBlock(obj, logicallyLastRunObject) ||
				(isLastChildForObject(obj, logicallyLastRunObject) && !isLogicallyLastRunWrapped)
			endsHere := (lastLine || isLastObjectOnLine) && obj.Continuation == nil
			if clone {
				includeLeft, includeRight = true, true
			} else if ltr {
				if b.nextLineBox.IsNone() && endsHere {
					includeRight = true
				}
			} else {
				if (b.prevLineBox.IsNone() || c.Box(b.prevLineBox).constructed) && endsHere {
					includeLeft = true
				}
			}
		}
	}

	b.SetEdges(includeLeft, includeRight)

	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		if c.Box(child).Kind == Flow {
			c.DetermineSpacingForFlowBoxes(child, lastLine, isLogicallyLastRunWrapped, logicallyLastRunObject)
		}
	}
}

func isSpaceOrNewline(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }

// runeAt returns the [i]-th character of the text of [b],
// or a newline for line breaks.
func (b *Box) runeAt(i int) rune {
	if b.Kind == LineBreakLeaf {
		return '\n'
	}
	for _, r := range b.Object.Text {
		if i == 0 {
			return r
		}
		i--
	}
	return 0
}

// PlaceBoxesInInlineDirection sets the logical left of [id] to [logicalLeft],
// places its children and returns the logical right of [id].
// [needsWordSpacing] is updated with the last character seen.
func (c *Context) PlaceBoxesInInlineDirection(id BoxID, logicalLeft Fl, needsWordSpacing *bool) Fl {
	b := c.Box(id)
	b.SetLogicalLeft(logicalLeft)

	startLogicalLeft := logicalLeft
	logicalLeft += c.edgeBorderLogicalLeft(id) + c.edgePaddingLogicalLeft(id)

	minLogicalLeft, maxLogicalRight := startLogicalLeft, logicalLeft

	logicalLeft = c.placeBoxRange(id, b.flow.firstChild, NoBox, logicalLeft, &minLogicalLeft, &maxLogicalRight, needsWordSpacing)

	logicalLeft += c.edgeBorderLogicalRight(id) + c.edgePaddingLogicalRight(id)

	b.LogicalWidth = logicalLeft - startLogicalLeft
	if b.knownToHaveNoOverflow && (minLogicalLeft < startLogicalLeft || maxLogicalRight > logicalLeft) {
		c.clearKnownToHaveNoOverflow(id)
	}
	return logicalLeft
}

func (c *Context) placeBoxRange(id, first, last BoxID, logicalLeft Fl, minLogicalLeft, maxLogicalRight *Fl, needsWordSpacing *bool) Fl {
	b := c.Box(id)
	for curr := first; !curr.IsNone() && curr != last; curr = c.Box(curr).nextOnLine {
		cb := c.Box(curr)
		obj := cb.Object
		if isTextObject(obj) && cb.Text != nil {
			if cb.Text.Len != 0 {
				if *needsWordSpacing && isSpaceOrNewline(cb.runeAt(cb.Text.Start)) {
					logicalLeft += obj.StyleFor(b.firstLine).WordSpacing
				}
				*needsWordSpacing = !isSpaceOrNewline(cb.runeAt(cb.Text.End()))
			}
			cb.SetLogicalLeft(logicalLeft)
			if b.knownToHaveNoOverflow {
				*minLogicalLeft = utils.MinF(logicalLeft, *minLogicalLeft)
			}
			logicalLeft += cb.LogicalWidth
			if b.knownToHaveNoOverflow {
				*maxLogicalRight = utils.MaxF(logicalLeft, *maxLogicalRight)
			}
			continue
		}

		if obj.IsOutOfFlowPositioned() {
			// the position cached for out of flow objects is relative
			// to the start edge of the block
			if obj.Parent.Style.IsLeftToRightDirection() {
				cb.SetLogicalLeft(logicalLeft)
			} else {
				cb.SetLogicalLeft(c.Block(id).LogicalWidth() - logicalLeft)
			}
			continue
		}

		switch {
		case obj.IsRenderInline():
			logicalLeft += c.marginLogicalLeft(curr)
			if b.knownToHaveNoOverflow {
				*minLogicalLeft = utils.MinF(logicalLeft, *minLogicalLeft)
			}
			logicalLeft = c.PlaceBoxesInInlineDirection(curr, logicalLeft, needsWordSpacing)
			if b.knownToHaveNoOverflow {
				*maxLogicalRight = utils.MaxF(logicalLeft, *maxLogicalRight)
			}
			logicalLeft += c.marginLogicalRight(curr)
		case !obj.IsListMarker() || obj.IsInsideListMarker():
			// the replaced box may have another writing mode than the line
			logicalLeft += obj.MarginLogicalLeft(b.isHorizontal)
			cb.SetLogicalLeft(logicalLeft)
			if b.knownToHaveNoOverflow {
				*minLogicalLeft = utils.MinF(logicalLeft, *minLogicalLeft)
			}
			logicalLeft += cb.LogicalWidth
			if b.knownToHaveNoOverflow {
				*maxLogicalRight = utils.MaxF(logicalLeft, *maxLogicalRight)
			}
			logicalLeft += obj.MarginLogicalRight(b.isHorizontal)
			// a space after an atomic inline is a word separator
			*needsWordSpacing = true
		}
	}
	return logicalLeft
}

// textOf returns the characters of the text box [b].
func (b *Box) textOf() string {
	if b.Kind == LineBreakLeaf {
		return "\n"
	}
	return runeSlice(b.Object.Text, b.Text.Start, b.Text.Start+b.Text.Len)
}

// runeSlice returns the characters [start, end) of [s].
func runeSlice(s string, start, end int) string {
	i, from, to := 0, len(s), len(s)
	for pos := range s {
		if i == start {
			from = pos
		}
		if i == end {
			to = pos
			break
		}
		i++
	}
	if from > to {
		return ""
	}
	return s[from:to]
}

// requiresIdeographicBaseline returns true for vertical lines
// containing characters set upright.
func (c *Context) requiresIdeographicBaseline(id BoxID) bool {
	b := c.Box(id)
	if b.isHorizontal {
		return false
	}
	if b.style().TextOrientation == pr.TextOrientationUpright {
		return true
	}
	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		cb := c.Box(child)
		if cb.Object.IsOutOfFlowPositioned() {
			continue
		}
		if cb.flow != nil {
			if c.requiresIdeographicBaseline(child) {
				return true
			}
		} else if cb.Kind == TextLeaf && text.HasVerticalGlyphs(cb.textOf()) {
			return true
		}
	}
	return false
}

// verticalAlignApplies returns false for text directly in a block,
// since vertical-align only applies to inline level elements.
func verticalAlignApplies(o *render.Object) bool {
	return !isTextObject(o) || o.Parent.IsInline()
}

func (b *Box) verticalAlign() pr.VerticalAlignKeyword { return b.style().VerticalAlign.Keyword }

func (c *Context) adjustMaxAscentAndDescent(id BoxID, maxAscent, maxDescent *Fl, maxPositionTop, maxPositionBottom Fl) {
	for child := c.Box(id).FirstChild(); !child.IsNone(); child = c.Box(child).nextOnLine {
		cb := c.Box(child)
		if cb.Object.IsOutOfFlowPositioned() {
			continue
		}
		if va := cb.verticalAlign(); (va == pr.VaTop || va == pr.VaBottom) && verticalAlignApplies(cb.Object) {
			lineHeight := c.LineHeight(child)
			if *maxAscent+*maxDescent < lineHeight {
				if va == pr.VaTop {
					*maxDescent = lineHeight - *maxAscent
				} else {
					*maxAscent = lineHeight - *maxDescent
				}
			}
			if *maxAscent+*maxDescent >= utils.MaxF(maxPositionTop, maxPositionBottom) {
				break
			}
		}
		if cb.flow != nil {
			c.adjustMaxAscentAndDescent(child, maxAscent, maxDescent, maxPositionTop, maxPositionBottom)
		}
	}
}

// usesSameLineHeightFastPath returns true when the children of [b]
// may simply be shifted with it.
func (c *Context) usesSameLineHeightFastPath(b *Box) bool {
	return b.flow.descendantsHaveSameLineHeightAndBaseline && !c.disableSameLineHeightFastPath
}

// boxHeights accumulates the extents of a line, relative to its baseline.
type boxHeights struct {
	maxPositionTop, maxPositionBottom Fl
	maxAscent, maxDescent             Fl
	setMaxAscent, setMaxDescent       bool
}

func (h *boxHeights) update(ascent, descent Fl, affectsAscent, affectsDescent bool) {
	if affectsAscent && (h.maxAscent < ascent || !h.setMaxAscent) {
		h.maxAscent = ascent
		h.setMaxAscent = true
	}
	if affectsDescent && (h.maxDescent < descent || !h.setMaxDescent) {
		h.maxDescent = descent
		h.setMaxDescent = true
	}
}

// computeLogicalBoxHeights computes the highest and lowest points
// of the boxes which must fit in the line, relative to the baseline
// of [root]. The offset of the baseline of each box from the root
// baseline is stored in its logical top.
func (c *Context) computeLogicalBoxHeights(root, id BoxID, h *boxHeights, strict bool) {
	b := c.Box(id)
	checkChildren := !c.usesSameLineHeightFastPath(b)

	if b.Kind == Root {
		ascent, descent, _, _ := c.ascentAndDescentForBox(root, root)
		if strict || b.flow.hasTextChildren || (!checkChildren && b.flow.hasTextDescendants) {
			h.update(ascent, descent, true, true)
		}
	}

	if !checkChildren {
		return
	}

	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		cb := c.Box(child)
		if cb.Object.IsOutOfFlowPositioned() {
			continue
		}

		// negative when the baseline of the child is above the root baseline
		cb.SetLogicalTop(c.verticalPositionForBox(root, child))

		ascent, descent, affectsAscent, affectsDescent := c.ascentAndDescentForBox(root, child)

		boxHeight := ascent + descent
		va := cb.verticalAlign()
		switch {
		case va == pr.VaTop && verticalAlignApplies(cb.Object):
			h.maxPositionTop = utils.MaxF(h.maxPositionTop, boxHeight)
		case va == pr.VaBottom && verticalAlignApplies(cb.Object):
			h.maxPositionBottom = utils.MaxF(h.maxPositionBottom, boxHeight)
		case cb.flow == nil || strict || cb.flow.hasTextChildren ||
			(cb.flow.descendantsHaveSameLineHeightAndBaseline && cb.flow.hasTextDescendants) ||
			cb.Object.Style.HasInlineBorderOrPadding():
			// the values may be negative once the leading is applied
			ascent -= cb.LogicalTop()
			descent += cb.LogicalTop()
			h.update(ascent, descent, affectsAscent, affectsDescent)
		}

		if cb.flow != nil {
			c.computeLogicalBoxHeights(root, child, h, strict)
		}
	}
}

// lineExtent accumulates the top and bottom of a line,
// with and without the margins of its replaced boxes.
type lineExtent struct {
	lineTop, lineBottom                                 Fl
	lineTopIncludingMargins, lineBottomIncludingMargins Fl
	setLineTop                                          bool

	hasAnnotationsBefore, hasAnnotationsAfter bool
}

func (c *Context) placeBoxesInBlockDirection(id BoxID, top, maxHeight, maxAscent Fl, strict bool, ext *lineExtent, baselineType text.Baseline) {
	b := c.Box(id)
	isRoot := b.Kind == Root
	if isRoot {
		fm := b.style().FontMetrics()
		// lines are placed on pixel boundaries, and their content follows
		exact := top + maxAscent - fm.Ascent(baselineType)
		snapped := utils.RoundToInt(exact)
		top += snapped - exact
		b.SetLogicalTop(snapped)
	}

	fastPath := c.usesSameLineHeightFastPath(b)
	var adjustment Fl
	if fastPath {
		adjustment = b.LogicalTop()
		if !isRoot {
			adjustment += b.Object.BorderAndPaddingBefore()
		}
	}

	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		cb := c.Box(child)
		obj := cb.Object
		if obj.IsOutOfFlowPositioned() {
			continue
		}

		if fastPath {
			if b.isHorizontal {
				c.AdjustPosition(child, 0, adjustment)
			} else {
				c.AdjustPosition(child, adjustment, 0)
			}
			continue
		}

		childAffectsTopBottomPos := true
		va := cb.verticalAlign()
		switch {
		case va == pr.VaTop && verticalAlignApplies(obj):
			cb.SetLogicalTop(top)
		case va == pr.VaBottom && verticalAlignApplies(obj):
			cb.SetLogicalTop(top + maxHeight - c.LineHeight(child))
		default:
			if !strict && cb.flow != nil && !cb.flow.hasTextChildren && !obj.Style.HasInlineBorderOrPadding() &&
				!(cb.flow.descendantsHaveSameLineHeightAndBaseline && cb.flow.hasTextDescendants) {
				childAffectsTopBottomPos = false
			}
			posAdjust := maxAscent - c.BaselinePosition(child, baselineType)
			cb.SetLogicalTop(cb.LogicalTop() + top + posAdjust)
		}

		newLogicalTop := cb.LogicalTop()
		newLogicalTopIncludingMargins := newLogicalTop
		boxHeight := c.LogicalHeight(child)
		boxHeightIncludingMargins := boxHeight

		if cb.IsText || cb.flow != nil {
			fm := obj.StyleFor(b.firstLine).FontMetrics()
			newLogicalTop += c.BaselinePosition(child, baselineType) - fm.Ascent(baselineType)
			if cb.flow != nil {
				st := obj.StyleFor(b.firstLine)
				if st.IsHorizontalWritingMode() {
					newLogicalTop -= st.Border.Top + st.Padding.Top
				} else {
					newLogicalTop -= st.Border.Right + st.Padding.Right
				}
			}
			newLogicalTopIncludingMargins = newLogicalTop
		} else if !obj.IsBR() {
			over, under := obj.MarginOver(cb.isHorizontal), obj.MarginUnder(cb.isHorizontal)
			newLogicalTop += over
			boxHeightIncludingMargins += over + under
		}

		cb.SetLogicalTop(newLogicalTop)

		if childAffectsTopBottomPos {
			if obj.IsRubyRun() {
				// the leading of the first and last lines of ruby runs
				// is not part of the line
				if b.Object.Style.IsFlippedLinesWritingMode() == (obj.Style.RubyPosition == pr.RubyAfter) {
					ext.hasAnnotationsBefore = true
				} else {
					ext.hasAnnotationsAfter = true
				}
				if obj.Ruby != nil && obj.Ruby.Base != nil {
					base := obj.Ruby.Base
					var lastLineBottom, firstLineTop Fl
					if base.HasLines {
						lastLineBottom, firstLineTop = base.LastLineBottom, base.FirstLineTop
					}
					bottomRubyBaseLeading := (c.LogicalHeight(child) - base.LogicalBottom()) + base.LogicalHeight - lastLineBottom
					topRubyBaseLeading := base.LogicalTop + firstLineTop
					if !b.Object.Style.IsFlippedLinesWritingMode() {
						newLogicalTop += topRubyBaseLeading
					} else {
						newLogicalTop += bottomRubyBaseLeading
					}
					boxHeight -= topRubyBaseLeading + bottomRubyBaseLeading
				}
			}
			if cb.Kind == TextLeaf {
				st := obj.StyleFor(b.firstLine)
				if pos, ok := c.emphasisMarkPosition(child, st); ok {
					if (pos == pr.EmphasisOver) != st.IsFlippedLinesWritingMode() {
						ext.hasAnnotationsBefore = true
					} else {
						ext.hasAnnotationsAfter = true
					}
				}
			}

			if !ext.setLineTop {
				ext.setLineTop = true
				ext.lineTop = newLogicalTop
				ext.lineTopIncludingMargins = utils.MinF(ext.lineTop, newLogicalTopIncludingMargins)
			} else {
				ext.lineTop = utils.MinF(ext.lineTop, newLogicalTop)
				ext.lineTopIncludingMargins = utils.MinF(ext.lineTop, utils.MinF(ext.lineTopIncludingMargins, newLogicalTopIncludingMargins))
			}
			ext.lineBottom = utils.MaxF(ext.lineBottom, newLogicalTop+boxHeight)
			ext.lineBottomIncludingMargins = utils.MaxF(ext.lineBottom, utils.MaxF(ext.lineBottomIncludingMargins, newLogicalTopIncludingMargins+boxHeightIncludingMargins))
		}

		// use the real position of the box, instead of
		// the one dictated by the line height
		if cb.flow != nil {
			c.placeBoxesInBlockDirection(child, top, maxHeight, maxAscent, strict, ext, baselineType)
		}
	}

	if isRoot {
		if strict || b.flow.hasTextChildren || (b.flow.descendantsHaveSameLineHeightAndBaseline && b.flow.hasTextDescendants) {
			snappedTop := b.PixelSnappedLogicalTop()
			if !ext.setLineTop {
				ext.setLineTop = true
				ext.lineTop = snappedTop
				ext.lineTopIncludingMargins = ext.lineTop
			} else {
				ext.lineTop = utils.MinF(ext.lineTop, snappedTop)
				ext.lineTopIncludingMargins = utils.MinF(ext.lineTop, ext.lineTopIncludingMargins)
			}
			ext.lineBottom = utils.MaxF(ext.lineBottom, c.pixelSnappedLogicalBottom(id))
			ext.lineBottomIncludingMargins = utils.MaxF(ext.lineBottom, ext.lineBottomIncludingMargins)
		}

		if b.Object.Style.IsFlippedLinesWritingMode() {
			c.flipLinesInBlockDirection(id, ext.lineTopIncludingMargins, ext.lineBottomIncludingMargins)
		}
	}
}

func (c *Context) pixelSnappedLogicalBottom(id BoxID) Fl {
	return utils.RoundToInt(c.LogicalBottom(id))
}

// flipLinesInBlockDirection makes the positions of the boxes
// relative to [lineBottom] instead of [lineTop].
func (c *Context) flipLinesInBlockDirection(id BoxID, lineTop, lineBottom Fl) {
	b := c.Box(id)
	b.SetLogicalTop(lineBottom - (b.LogicalTop() - lineTop) - c.LogicalHeight(id))
	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		cb := c.Box(child)
		if cb.Object.IsOutOfFlowPositioned() {
			continue
		}
		if cb.flow != nil {
			c.flipLinesInBlockDirection(child, lineTop, lineBottom)
		} else {
			cb.SetLogicalTop(lineBottom - (cb.LogicalTop() - lineTop) - c.LogicalHeight(child))
		}
	}
}

// computeOverAnnotationAdjustment returns how much the line must be
// moved down so that its ruby annotations and emphasis marks over
// the text do not go above [allowedPosition].
func (c *Context) computeOverAnnotationAdjustment(id BoxID, allowedPosition Fl) Fl {
	b := c.Box(id)
	var result Fl
	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		cb := c.Box(child)
		obj := cb.Object
		if obj.IsOutOfFlowPositioned() {
			continue
		}
		if cb.flow != nil {
			result = utils.MaxF(result, c.computeOverAnnotationAdjustment(child, allowedPosition))
		}

		if obj.IsRubyRun() && obj.Style.RubyPosition == pr.RubyBefore {
			if adj, ok := c.rubyTextAdjustment(child, allowedPosition, !obj.Style.IsFlippedLinesWritingMode()); ok {
				result = utils.MaxF(result, adj)
			}
			continue
		}

		if cb.Kind == TextLeaf {
			st := obj.StyleFor(b.firstLine)
			if pos, ok := c.emphasisMarkPosition(child, st); ok && pos == pr.EmphasisOver {
				markHeight := st.Font.EmphasisMarkHeight(st.TextEmphasisMark)
				if !st.IsFlippedLinesWritingMode() {
					result = utils.MaxF(result, allowedPosition-(cb.LogicalTop()-markHeight))
				} else {
					result = utils.MaxF(result, c.LogicalBottom(child)+markHeight-allowedPosition)
				}
			}
		}
	}
	return result
}

func (c *Context) computeUnderAnnotationAdjustment(id BoxID, allowedPosition Fl) Fl {
	b := c.Box(id)
	var result Fl
	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		cb := c.Box(child)
		obj := cb.Object
		if obj.IsOutOfFlowPositioned() {
			continue
		}
		if cb.flow != nil {
			result = utils.MaxF(result, c.computeUnderAnnotationAdjustment(child, allowedPosition))
		}

		if obj.IsRubyRun() && obj.Style.RubyPosition == pr.RubyAfter {
			if adj, ok := c.rubyTextAdjustment(child, allowedPosition, obj.Style.IsFlippedLinesWritingMode()); ok {
				result = utils.MaxF(result, adj)
			}
			continue
		}

		if cb.Kind == TextLeaf {
			st := obj.StyleFor(b.firstLine)
			if st.TextEmphasisMark != "" && st.TextEmphasisPosition == pr.EmphasisUnder {
				markHeight := st.Font.EmphasisMarkHeight(st.TextEmphasisMark)
				if !st.IsFlippedLinesWritingMode() {
					result = utils.MaxF(result, c.LogicalBottom(child)+markHeight-allowedPosition)
				} else {
					result = utils.MaxF(result, allowedPosition-(cb.LogicalTop()-markHeight))
				}
			}
		}
	}
	return result
}

// rubyTextAdjustment returns the overlap of the annotation of the ruby
// run [id] with [allowedPosition], checking the top of its first line
// when [checkTop] is true, the bottom of its last line otherwise.
func (c *Context) rubyTextAdjustment(id BoxID, allowedPosition Fl, checkTop bool) (Fl, bool) {
	cb := c.Box(id)
	ruby := cb.Object.Ruby
	if ruby == nil || ruby.Text == nil {
		return 0, false
	}
	rt := ruby.Text
	if checkTop {
		topOfFirstLine := rt.LogicalTop
		if rt.HasLines {
			topOfFirstLine += rt.FirstLineTop
		}
		if topOfFirstLine >= 0 {
			return 0, false
		}
		topOfFirstLine += cb.LogicalTop()
		return allowedPosition - topOfFirstLine, true
	}
	bottomOfLastLine := rt.LogicalTop + rt.LogicalHeight
	if rt.HasLines {
		bottomOfLastLine = rt.LogicalTop + rt.LastLineBottom
	}
	if bottomOfLastLine <= c.LogicalHeight(id) {
		return 0, false
	}
	bottomOfLastLine += cb.LogicalTop()
	return bottomOfLastLine - allowedPosition, true
}

// CollectLeafBoxesInLogicalOrder returns the leaves of [id] in logical
// order, reversing the runs of the visual order by decreasing bidi
// level. [customReverse] replaces the default in place reversal when
// not nil.
func (c *Context) CollectLeafBoxesInLogicalOrder(id BoxID, customReverse func(leaves []BoxID)) []BoxID {
	var (
		leaves             []BoxID
		minLevel, maxLevel uint8 = 128, 0
	)
	for leaf := c.FirstLeafChild(id); !leaf.IsNone(); leaf = c.NextLeafChild(leaf) {
		level := c.Box(leaf).BidiLevel
		minLevel = min(minLevel, level)
		maxLevel = max(maxLevel, level)
		leaves = append(leaves, leaf)
	}

	if c.Box(id).Object.Style.RTLOrdering == pr.VisualOrder {
		return leaves
	}

	reverse := customReverse
	if reverse == nil {
		reverse = func(s []BoxID) {
			for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
				s[i], s[j] = s[j], s[i]
			}
		}
	}

	// reverse the runs at odd levels and above, starting
	// with the lowest odd level
	if minLevel%2 == 0 {
		minLevel++
	}
	for ; minLevel <= maxLevel; minLevel++ {
		for i := 0; i < len(leaves); {
			for i < len(leaves) && c.Box(leaves[i]).BidiLevel < minLevel {
				i++
			}
			first := i
			for i < len(leaves) && c.Box(leaves[i]).BidiLevel >= minLevel {
				i++
			}
			if first < i {
				reverse(leaves[first:i])
			}
		}
	}
	return leaves
}

// placeEllipsisBox dispatches on the kind of [id], returning the position
// of the ellipsis when it falls in [id], or -1.
func (c *Context) placeEllipsisBox(id BoxID, ltr bool, visibleLeftEdge, visibleRightEdge, ellipsisWidth Fl, truncatedWidth *Fl, foundBox *bool) Fl {
	b := c.Box(id)
	switch b.Kind {
	case TextLeaf:
		return c.placeEllipsisInTextBox(id, ltr, visibleLeftEdge, visibleRightEdge, ellipsisWidth, truncatedWidth, foundBox)
	case Flow, Root:
		return c.placeEllipsisInFlowBox(id, ltr, visibleLeftEdge, visibleRightEdge, ellipsisWidth, truncatedWidth, foundBox)
	default:
		*truncatedWidth += b.LogicalWidth
		return -1
	}
}

func (c *Context) placeEllipsisInFlowBox(id BoxID, ltr bool, blockLeftEdge, blockRightEdge, ellipsisWidth Fl, truncatedWidth *Fl, foundBox *bool) Fl {
	b := c.Box(id)
	result := Fl(-1)
	// visible edges are whole pixels
	visibleLeftEdge, visibleRightEdge := truncInt(blockLeftEdge), truncInt(blockRightEdge)

	box := b.flow.firstChild
	if !ltr {
		box = b.flow.lastChild
	}
	for !box.IsNone() {
		currResult := c.placeEllipsisBox(box, ltr, visibleLeftEdge, visibleRightEdge, ellipsisWidth, truncatedWidth, foundBox)
		if currResult != -1 && result == -1 {
			result = truncInt(currResult)
		}
		bb := c.Box(box)
		if ltr {
			visibleLeftEdge = truncInt(visibleLeftEdge + bb.LogicalWidth)
			box = bb.nextOnLine
		} else {
			visibleRightEdge = truncInt(visibleRightEdge - bb.LogicalWidth)
			box = bb.prevOnLine
		}
	}
	return result
}

// clearTruncation resets the truncation of the text
// leaves of the flow box [id].
func (c *Context) clearTruncation(id BoxID) {
	b := c.Box(id)
	switch {
	case b.Kind == TextLeaf:
		b.Text.Truncation = NoTruncation
	case b.flow != nil:
		for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
			c.clearTruncation(child)
		}
	}
}
