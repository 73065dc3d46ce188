package inline

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

// PrevRootBox returns the previous line of the block, or [NoBox].
func (c *Context) PrevRootBox(root BoxID) BoxID { return c.Box(root).prevLineBox }

func (c *Context) NextRootBox(root BoxID) BoxID { return c.Box(root).nextLineBox }

// AlignBoxesInBlockDirection computes the vertical positions of the boxes
// of the line [root], whose top is [heightOfBlock]. It returns the
// height of the block after the line.
func (c *Context) AlignBoxesInBlockDirection(root BoxID, heightOfBlock Fl) Fl {
	b := c.Box(root)
	rd := b.rootData()
	strict := !b.Object.InQuirksMode()

	rd.baselineType = text.AlphabeticBaseline
	if c.requiresIdeographicBaseline(root) {
		rd.baselineType = text.IdeographicBaseline
	}

	var h boxHeights
	c.computeLogicalBoxHeights(root, root, &h, strict)

	if h.maxAscent+h.maxDescent < utils.MaxF(h.maxPositionTop, h.maxPositionBottom) {
		c.adjustMaxAscentAndDescent(root, &h.maxAscent, &h.maxDescent, h.maxPositionTop, h.maxPositionBottom)
	}

	maxHeight := h.maxAscent + h.maxDescent
	ext := lineExtent{
		lineTop:                    heightOfBlock,
		lineBottom:                 heightOfBlock,
		lineTopIncludingMargins:    heightOfBlock,
		lineBottomIncludingMargins: heightOfBlock,
	}
	c.placeBoxesInBlockDirection(root, heightOfBlock, maxHeight, h.maxAscent, strict, &ext, rd.baselineType)
	rd.hasAnnotationsBefore = ext.hasAnnotationsBefore
	rd.hasAnnotationsAfter = ext.hasAnnotationsAfter

	maxHeight = utils.MaxF(0, maxHeight)

	b.SetLineTopBottomPositions(ext.lineTop, ext.lineBottom, heightOfBlock, heightOfBlock+maxHeight)
	rd.paginatedLineWidth = b.Object.AvailableLogicalWidth()

	if adjustment := c.beforeAnnotationsAdjustment(root); adjustment != 0 {
		c.adjustBlockDirectionPosition(root, adjustment)
		heightOfBlock += adjustment
	}

	if adjustment := c.lineSnapAdjustment(root, 0); adjustment != 0 {
		c.adjustBlockDirectionPosition(root, adjustment)
		heightOfBlock += adjustment
	}

	return heightOfBlock + maxHeight
}

func (c *Context) adjustBlockDirectionPosition(id BoxID, delta Fl) {
	if c.Box(id).isHorizontal {
		c.AdjustPosition(id, 0, delta)
	} else {
		c.AdjustPosition(id, delta, 0)
	}
}

// beforeAnnotationsAdjustment returns the space needed by the annotations
// between the previous line and [root].
func (c *Context) beforeAnnotationsAdjustment(root BoxID) Fl {
	b := c.Box(root)
	prev := c.PrevRootBox(root)
	var result Fl

	if !b.Object.Style.IsFlippedLinesWritingMode() {
		// annotations under the previous line may push us down
		if !prev.IsNone() && c.Box(prev).root.hasAnnotationsAfter {
			result = c.computeUnderAnnotationAdjustment(prev, b.LineTop())
		}

		if !b.root.hasAnnotationsBefore {
			return result
		}

		// annotations over this line may push us further down
		highestAllowedPosition := b.Object.BorderBefore()
		if !prev.IsNone() {
			highestAllowedPosition = utils.MinF(c.Box(prev).LineBottom(), b.LineTop()) + result
		}
		return c.computeOverAnnotationAdjustment(root, highestAllowedPosition)
	}

	// annotations under this line may push us up
	if b.root.hasAnnotationsBefore {
		allowed := b.Object.BorderBefore()
		if !prev.IsNone() {
			allowed = c.Box(prev).LineBottom()
		}
		result = c.computeUnderAnnotationAdjustment(root, allowed)
	}

	if prev.IsNone() || !c.Box(prev).root.hasAnnotationsAfter {
		return result
	}

	lowestAllowedPosition := utils.MaxF(c.Box(prev).LineBottom(), b.LineTop()) - result
	return c.computeOverAnnotationAdjustment(prev, lowestAllowedPosition)
}

// lineSnapAdjustment returns the offset moving the baseline of [root]
// on the line grid of the layout state, when the block uses 'line-snap'.
func (c *Context) lineSnapAdjustment(root BoxID, delta Fl) Fl {
	b := c.Box(root)
	block := b.Object
	if block.Style.LineSnap == pr.LineSnapNone {
		return 0
	}

	state := &c.State
	lineGrid := state.LineGrid
	if lineGrid == nil || lineGrid.Style.WritingMode != block.Style.WritingMode {
		return 0
	}

	lineGridBox := c.LineGridBox(lineGrid)
	if lineGridBox.IsNone() {
		return 0
	}
	gb := c.Box(lineGridBox)

	lineGridBlockOffset, blockOffset := state.LineGridOffset.Y, state.LayoutOffset.Y
	lineGridPaginationOrigin := state.LineGridPaginationOrigin.Y
	if !lineGrid.Style.IsHorizontalWritingMode() {
		lineGridBlockOffset = state.LineGridOffset.X
	}
	if !block.Style.IsHorizontalWritingMode() {
		blockOffset = state.LayoutOffset.X
	}
	if !b.isHorizontal {
		lineGridPaginationOrigin = state.LineGridPaginationOrigin.X
	}

	// the baseline is moved to the nearest baseline
	// multiple established by the grid box
	gridLineHeight := gb.LineBottomWithLeading() - gb.LineTopWithLeading()
	gridStep := int(utils.RoundToInt(gridLineHeight))
	if gridStep == 0 {
		return 0
	}

	lineGridFontAscent := lineGrid.Style.FontMetrics().Ascent(b.root.baselineType)
	lineGridFontHeight := c.LogicalHeight(lineGridBox)
	firstTextTop := lineGridBlockOffset + gb.LogicalTop()
	firstLineTopWithLeading := lineGridBlockOffset + gb.LineTopWithLeading()

	currentTextTop := blockOffset + b.LogicalTop() + delta
	currentFontAscent := block.Style.FontMetrics().Ascent(b.root.baselineType)
	currentBaselinePosition := currentTextTop + currentFontAscent

	// the grid restarts on each page
	var pageLogicalTop Fl
	if state.IsPaginated() {
		pageLogicalTop = state.pageLogicalTopForOffset(blockOffset + b.LineTopWithLeading() + delta)
		if pageLogicalTop > firstLineTopWithLeading {
			firstTextTop = pageLogicalTop + gb.LogicalTop() - lineGrid.BorderBefore() - lineGrid.PaddingBefore() + lineGridPaginationOrigin
		}
	}

	var firstBaselinePosition Fl
	if block.Style.LineSnap == pr.LineSnapContain {
		// center the line in the smallest number of grid
		// lines enclosing it
		logicalHeight := c.LogicalHeight(root)
		if logicalHeight <= lineGridFontHeight {
			firstTextTop += (lineGridFontHeight - logicalHeight) / 2
		} else {
			numberOfLinesWithLeading := utils.Ceil((logicalHeight - lineGridFontHeight) / gridLineHeight)
			totalHeight := lineGridFontHeight + numberOfLinesWithLeading*gridLineHeight
			firstTextTop += (totalHeight - logicalHeight) / 2
		}
		firstBaselinePosition = firstTextTop + currentFontAscent
	} else {
		firstBaselinePosition = firstTextTop + lineGridFontAscent
	}

	// above the first line, just push to the first line
	if currentBaselinePosition < firstBaselinePosition {
		return delta + firstBaselinePosition - currentBaselinePosition
	}

	baselineOffset := currentBaselinePosition - firstBaselinePosition
	remainder := Fl(int(utils.RoundToInt(baselineOffset)) % gridStep)
	result := delta
	if remainder != 0 {
		result += gridLineHeight - remainder
	}

	if !state.IsPaginated() || result == delta {
		return result
	}

	// a line shifted to the next page is snapped
	// on the grid of this page
	newPageLogicalTop := state.pageLogicalTopForOffset(blockOffset + b.LineBottomWithLeading() + result)
	if newPageLogicalTop == pageLogicalTop {
		return result
	}
	return c.lineSnapAdjustment(root, newPageLogicalTop-(blockOffset+b.LineTopWithLeading()))
}

// verticalPositionForBox returns the offset of the baseline of [id] from
// the baseline of its parent, as required by 'vertical-align'.
// The values of inlines are cached for the lines other than the first one.
func (c *Context) verticalPositionForBox(root, id BoxID) Fl {
	b := c.Box(id)
	obj := b.Object
	if isTextObject(obj) {
		return c.Box(b.parent).LogicalTop()
	}
	if !obj.IsInline() {
		return 0
	}

	firstLine := b.firstLine && obj.FirstLineStyle != nil
	baselineType := c.Box(root).root.baselineType

	key := verticalPositionKey{object: obj, baseline: baselineType}
	isRenderInline := obj.IsRenderInline()
	if isRenderInline && !firstLine {
		if pos, ok := c.verticalPositions[key]; ok {
			return pos
		}
	}

	va := obj.Style.VerticalAlign
	if va.Keyword == pr.VaTop || va.Keyword == pr.VaBottom {
		return 0
	}

	var verticalPosition Fl
	parent := obj.Parent
	if parent.IsRenderInline() {
		if pva := parent.Style.VerticalAlign.Keyword; pva != pr.VaTop && pva != pr.VaBottom {
			verticalPosition = c.Box(b.parent).LogicalTop()
		}
	}

	if va.Keyword != pr.VaBaseline {
		parentStyle := parent.StyleFor(firstLine)
		fm := parentStyle.FontMetrics()
		fontSize := Fl(parentStyle.Font.PixelSize())
		horizontal := parent.Style.IsHorizontalWritingMode()
		lineHeight := func() Fl { return obj.LineHeight(firstLine, horizontal, render.PositionOnContainingLine) }
		baselinePosition := func() Fl {
			return obj.BaselinePosition(baselineType, firstLine, horizontal, render.PositionOnContainingLine)
		}

		switch va.Keyword {
		case pr.VaSub:
			verticalPosition += truncInt(fontSize/5) + 1
		case pr.VaSuper:
			verticalPosition -= truncInt(fontSize/3) + 1
		case pr.VaTextTop:
			verticalPosition += baselinePosition() - fm.Ascent(baselineType)
		case pr.VaMiddle:
			verticalPosition = utils.Round(verticalPosition - truncInt(fm.XHeight()/2) - lineHeight()/2 + baselinePosition())
		case pr.VaTextBottom:
			verticalPosition += fm.Descent(baselineType)
			// lineHeight - baselinePosition is zero for replaced objects
			if !obj.IsReplaced() || obj.IsInlineBlock {
				verticalPosition -= lineHeight() - baselinePosition()
			}
		case pr.VaBaselineMiddle:
			verticalPosition += -lineHeight()/2 + baselinePosition()
		case pr.VaLength:
			// percentages refer to the line-height of the element itself
			var reference Fl
			if va.Length.Unit == pr.Perc {
				reference = obj.Style.ComputedLineHeight()
			} else {
				reference = lineHeight()
			}
			verticalPosition -= va.Length.Resolve(reference, Fl(obj.Style.Font.PixelSize()))
		}
	}

	if isRenderInline && !firstLine {
		c.verticalPositions[key] = verticalPosition
	}
	return verticalPosition
}

// the include* predicates implement 'line-box-contain'

func (c *Context) excludedFromLineBoxContain(id BoxID) bool {
	b := c.Box(id)
	return b.Object.IsReplaced() || (isTextObject(b.Object) && !b.IsText)
}

func (c *Context) lineBoxContain(root BoxID) pr.LineBoxContain {
	return c.Box(root).Object.Style.LineBoxContain
}

func (c *Context) includeLeadingForBox(root, id BoxID) bool {
	if c.excludedFromLineBoxContain(id) {
		return false
	}
	lbc := c.lineBoxContain(root)
	return lbc&pr.ContainInline != 0 || (id == root && lbc&pr.ContainBlock != 0)
}

func (c *Context) includeFontForBox(root, id BoxID) bool {
	if c.excludedFromLineBoxContain(id) {
		return false
	}
	if b := c.Box(id); !b.IsText && b.flow != nil && !b.flow.hasTextChildren {
		return false
	}
	// glyph bounds are not reliable for vertical text, so
	// glyphs are mapped to font
	lbc := c.lineBoxContain(root)
	return lbc&pr.ContainFont != 0 || (!c.Box(root).isHorizontal && lbc&pr.ContainGlyphs != 0)
}

func (c *Context) includeGlyphsForBox(root, id BoxID) bool {
	if c.excludedFromLineBoxContain(id) {
		return false
	}
	if b := c.Box(id); !b.IsText && b.flow != nil && !b.flow.hasTextChildren {
		return false
	}
	return c.Box(root).isHorizontal && c.lineBoxContain(root)&pr.ContainGlyphs != 0
}

func (c *Context) includeMarginForBox(root, id BoxID) bool {
	if c.excludedFromLineBoxContain(id) {
		return false
	}
	return c.lineBoxContain(root)&pr.ContainInlineBox != 0
}

// ascentAndDescentForBox returns the extent of [id] above and below
// its baseline, and whether it should be taken into account
// for the ascent and descent of the line.
func (c *Context) ascentAndDescentForBox(root, id BoxID) (ascent, descent Fl, affectsAscent, affectsDescent bool) {
	rb, b := c.Box(root), c.Box(id)
	baselineType := rb.root.baselineType

	// replaced boxes are excluded by 'line-box-contain'
	if b.Object.IsReplaced() {
		if rb.style().LineBoxContain&pr.ContainReplaced != 0 {
			ascent = c.BaselinePosition(id, baselineType)
			descent = c.LineHeight(id) - ascent
			return ascent, descent, true, true
		}
		return 0, 0, false, false
	}

	set := false
	setAscentAndDescent := func(newAscent, newDescent Fl) {
		if !set {
			set = true
			ascent, descent = newAscent, newDescent
		} else {
			ascent = utils.MaxF(ascent, newAscent)
			descent = utils.MaxF(descent, newDescent)
		}
	}

	st := b.Object.StyleFor(rb.firstLine)
	fm := st.FontMetrics()
	logicalTop := b.LogicalTop()

	if c.includeLeadingForBox(root, id) {
		ascentWithLeading := c.BaselinePosition(id, baselineType)
		descentWithLeading := c.LineHeight(id) - ascentWithLeading
		setAscentAndDescent(ascentWithLeading, descentWithLeading)

		// the font box of the child contributes to the ascent of
		// the line if it is above the root baseline
		affectsAscent = fm.Ascent(baselineType)-logicalTop > 0
		affectsDescent = fm.Descent(baselineType)+logicalTop > 0
	}

	if c.includeFontForBox(root, id) {
		fontAscent, fontDescent := fm.Ascent(baselineType), fm.Descent(baselineType)
		setAscentAndDescent(fontAscent, fontDescent)
		affectsAscent = fontAscent-logicalTop > 0
		affectsDescent = fontDescent+logicalTop > 0
	}

	if glyphOverflow, has := c.glyphOverflows[id]; has && glyphOverflow.ComputeBounds && c.includeGlyphsForBox(root, id) {
		setAscentAndDescent(glyphOverflow.Top, glyphOverflow.Bottom)
		affectsAscent = glyphOverflow.Top-logicalTop > 0
		affectsDescent = glyphOverflow.Bottom+logicalTop > 0
		// only the part outside of the font box is kept as overflow
		glyphOverflow.Top = utils.MinF(glyphOverflow.Top, utils.MaxF(0, glyphOverflow.Top-fm.Ascent(text.AlphabeticBaseline)))
		glyphOverflow.Bottom = utils.MinF(glyphOverflow.Bottom, utils.MaxF(0, glyphOverflow.Bottom-fm.Descent(text.AlphabeticBaseline)))
		c.glyphOverflows[id] = glyphOverflow
	}

	if c.includeMarginForBox(root, id) {
		ascentWithMargin, descentWithMargin := fm.Ascent(baselineType), fm.Descent(baselineType)
		if !b.parent.IsNone() && !isTextObject(b.Object) {
			obj := b.Object
			wm := obj.Style.WritingMode
			ascentWithMargin += obj.Style.Border.Before(wm) + obj.Style.Padding.Before(wm) + obj.MarginOver(b.isHorizontal)
			descentWithMargin += obj.Style.Border.After(wm) + obj.Style.Padding.After(wm) + obj.MarginUnder(b.isHorizontal)
		}
		setAscentAndDescent(ascentWithMargin, descentWithMargin)

		// the margin box is treated like a replaced box
		affectsAscent, affectsDescent = true, true
	}

	return ascent, descent, affectsAscent, affectsDescent
}

// BlockDirectionPointInLine returns a block position inside the
// line [root], used to locate positions in the line.
func (c *Context) BlockDirectionPointInLine(root BoxID) Fl {
	b := c.Box(root)
	if !b.Object.Style.IsFlippedBlocksWritingMode() {
		return utils.MaxF(b.LineTop(), c.SelectionTop(root))
	}
	return utils.MinF(b.LineBottom(), c.SelectionBottom(root))
}

// ClosestLeafChildForLogicalLeftPosition returns the leaf of the line
// [root] containing the inline position [leftPosition], or the closest one,
// avoiding list markers when possible.
func (c *Context) ClosestLeafChildForLogicalLeftPosition(root BoxID, leftPosition Fl) BoxID {
	firstLeaf, lastLeaf := c.FirstLeafChild(root), c.LastLeafChild(root)
	if firstLeaf.IsNone() {
		return NoBox
	}

	if firstLeaf != lastLeaf {
		if c.IsLineBreak(firstLeaf) {
			firstLeaf = c.NextLeafChildIgnoringLineBreak(firstLeaf)
		} else if c.IsLineBreak(lastLeaf) {
			lastLeaf = c.PrevLeafChildIgnoringLineBreak(lastLeaf)
		}
	}
	if firstLeaf.IsNone() {
		return lastLeaf
	}
	if lastLeaf.IsNone() || firstLeaf == lastLeaf {
		return firstLeaf
	}

	fb, lb := c.Box(firstLeaf), c.Box(lastLeaf)
	if leftPosition <= fb.LogicalLeft() && !fb.Object.IsListMarker() {
		return firstLeaf
	}
	if leftPosition >= lb.LogicalRight() && !lb.Object.IsListMarker() {
		return lastLeaf
	}

	closestLeaf := NoBox
	for leaf := firstLeaf; !leaf.IsNone(); leaf = c.NextLeafChildIgnoringLineBreak(leaf) {
		l := c.Box(leaf)
		if l.Object.IsListMarker() {
			continue
		}
		closestLeaf = leaf
		if leftPosition < l.LogicalRight() {
			return leaf
		}
	}
	if !closestLeaf.IsNone() {
		return closestLeaf
	}
	return lastLeaf
}
