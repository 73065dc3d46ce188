package layout

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/utils"
)

// textAlignmentForLine returns the alignment of a line:
// a justified line not ending with a soft break is aligned on its start.
func textAlignmentForLine(block *render.Object, endsWithSoftBreak bool) pr.TextAlign {
	alignment := block.Style.TextAlign
	if !endsWithSoftBreak && alignment == pr.TaJustify {
		alignment = pr.TaStart
	}
	return alignment
}

// wide lines overflow on the end side of the block
func updateLogicalWidthForLeftAlignedBlock(ltr bool, trailingSpace *inline.Box, logicalLeft, totalLogicalWidth *Fl, availableLogicalWidth Fl) {
	if ltr {
		if *totalLogicalWidth > availableLogicalWidth && trailingSpace != nil {
			trailingSpace.LogicalWidth = utils.MaxF(0, trailingSpace.LogicalWidth-*totalLogicalWidth+availableLogicalWidth)
		}
		return
	}

	if trailingSpace != nil {
		trailingSpace.LogicalWidth = 0
	} else if *totalLogicalWidth > availableLogicalWidth {
		*logicalLeft -= *totalLogicalWidth - availableLogicalWidth
	}
}

func updateLogicalWidthForRightAlignedBlock(ltr bool, trailingSpace *inline.Box, logicalLeft, totalLogicalWidth *Fl, availableLogicalWidth Fl) {
	if ltr {
		if trailingSpace != nil {
			*totalLogicalWidth -= trailingSpace.LogicalWidth
			trailingSpace.LogicalWidth = 0
		}
		if *totalLogicalWidth < availableLogicalWidth {
			*logicalLeft += availableLogicalWidth - *totalLogicalWidth
		}
		return
	}

	if *totalLogicalWidth > availableLogicalWidth && trailingSpace != nil {
		trailingSpace.LogicalWidth = utils.MaxF(0, trailingSpace.LogicalWidth-*totalLogicalWidth+availableLogicalWidth)
		*totalLogicalWidth -= trailingSpace.LogicalWidth
	} else {
		*logicalLeft += availableLogicalWidth - *totalLogicalWidth
	}
}

func updateLogicalWidthForCenterAlignedBlock(ltr bool, trailingSpace *inline.Box, logicalLeft, totalLogicalWidth *Fl, availableLogicalWidth Fl) {
	var trailingSpaceWidth Fl
	if trailingSpace != nil {
		*totalLogicalWidth -= trailingSpace.LogicalWidth
		trailingSpaceWidth = utils.MinF(trailingSpace.LogicalWidth, (availableLogicalWidth-*totalLogicalWidth+1)/2)
		trailingSpace.LogicalWidth = utils.MaxF(0, trailingSpaceWidth)
	}
	if ltr {
		*logicalLeft += utils.MaxF((availableLogicalWidth-*totalLogicalWidth)/2, 0)
	} else if *totalLogicalWidth > availableLogicalWidth {
		*logicalLeft += availableLogicalWidth - *totalLogicalWidth
	} else {
		*logicalLeft += (availableLogicalWidth-*totalLogicalWidth)/2 - trailingSpaceWidth
	}
}

// updateLogicalWidthForAlignment moves [logicalLeft] according to [textAlign],
// given the width of the content of the line.
func updateLogicalWidthForAlignment(block *render.Object, textAlign pr.TextAlign, trailingSpace *inline.Box,
	logicalLeft, totalLogicalWidth *Fl, availableLogicalWidth Fl, expansionOpportunityCount int,
) {
	ltr := block.Style.IsLeftToRightDirection()
	switch textAlign {
	case pr.TaLeft:
		updateLogicalWidthForLeftAlignedBlock(ltr, trailingSpace, logicalLeft, totalLogicalWidth, availableLogicalWidth)
	case pr.TaRight:
		updateLogicalWidthForRightAlignedBlock(ltr, trailingSpace, logicalLeft, totalLogicalWidth, availableLogicalWidth)
	case pr.TaCenter:
		updateLogicalWidthForCenterAlignedBlock(ltr, trailingSpace, logicalLeft, totalLogicalWidth, availableLogicalWidth)
	case pr.TaJustify:
		if expansionOpportunityCount != 0 {
			if trailingSpace != nil {
				*totalLogicalWidth -= trailingSpace.LogicalWidth
				trailingSpace.LogicalWidth = 0
			}
			return
		}
		fallthrough
	case pr.TaStart:
		if ltr {
			updateLogicalWidthForLeftAlignedBlock(ltr, trailingSpace, logicalLeft, totalLogicalWidth, availableLogicalWidth)
		} else {
			updateLogicalWidthForRightAlignedBlock(ltr, trailingSpace, logicalLeft, totalLogicalWidth, availableLogicalWidth)
		}
	case pr.TaEnd:
		if ltr {
			updateLogicalWidthForRightAlignedBlock(ltr, trailingSpace, logicalLeft, totalLogicalWidth, availableLogicalWidth)
		} else {
			updateLogicalWidthForLeftAlignedBlock(ltr, trailingSpace, logicalLeft, totalLogicalWidth, availableLogicalWidth)
		}
	}
}

func isSpaceOrNewline(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }

func isExpansionOpportunity(r rune) bool { return isSpaceOrNewline(r) || r == '\u00a0' }

// expansionOpportunityCount returns the number of places of [chars]
// where justification may add space, that is the sequences of spaces.
// [isAfterExpansion] is updated with the last character seen, in
// visual order.
func expansionOpportunityCount(chars []rune, rtl bool, isAfterExpansion *bool) int {
	count := 0
	visit := func(r rune) {
		if isExpansionOpportunity(r) {
			if !*isAfterExpansion {
				count++
			}
			*isAfterExpansion = true
		} else {
			*isAfterExpansion = false
		}
	}
	if rtl {
		for i := len(chars) - 1; i >= 0; i-- {
			visit(chars[i])
		}
	} else {
		for _, r := range chars {
			visit(r)
		}
	}
	return count
}

// computeExpansionForJustifiedText distributes the free space of the line
// among the text boxes, proportionally to their expansion opportunities.
func computeExpansionForJustifiedText(c *inline.Context, runs []Run, trailingSpaceRun int, opportunities []int,
	expansionOpportunityCount int, totalLogicalWidth *Fl, availableLogicalWidth Fl,
) {
	if expansionOpportunityCount == 0 || availableLogicalWidth <= *totalLogicalWidth {
		return
	}
	i := 0
	for index, r := range runs {
		if r.Box.IsNone() || index == trailingSpaceRun || !r.Object.IsText() ||
			r.Object.IsOutOfFlowPositioned() || c.IsLineBreak(r.Box) {
			continue
		}
		opportunitiesInRun := opportunities[i]
		i++

		b := c.Box(r.Box)
		expansion := Fl(int((availableLogicalWidth - *totalLogicalWidth) * Fl(opportunitiesInRun) / Fl(expansionOpportunityCount)))
		b.LogicalWidth += expansion - b.Text.Expansion
		b.Text.Expansion = expansion
		*totalLogicalWidth += expansion

		expansionOpportunityCount -= opportunitiesInRun
		if expansionOpportunityCount == 0 {
			break
		}
	}
}

// requiresIndent returns true if 'text-indent' applies to the line.
// Only the first formatted line of an element is indented: the first line
// of an anonymous block is indented if the block is the first child of its parent.
func requiresIndent(block *render.Object, info LineInfo) bool {
	if !info.IsFirstLine {
		return false
	}
	if block.IsAnonymousBlock() && block.Parent != nil && len(block.Parent.Children) != 0 && block.Parent.Children[0] != block {
		return false
	}
	return true
}

// lineLogicalOffsets returns the pixel snapped edges of the line at [top].
func lineLogicalOffsets(block *render.Object, top Fl, indent bool) (left, right Fl) {
	left = utils.RoundToInt(block.LogicalLeftOffsetForLine(top, indent))
	right = utils.RoundToInt(block.LogicalRightOffsetForLine(top, indent))
	return left, right
}

// ComputeInlineDirectionPositionsForLine measures the runs of the line [root],
// whose top is at [top], applies 'text-indent' and 'text-align' and places
// the boxes in the inline direction.
// [trailingSpaceRun] is the index of the run holding the trailing spaces
// of the line, or -1, and [reachedEnd] is true for the last line of the block.
func ComputeInlineDirectionPositionsForLine(c *inline.Context, block *render.Object, root inline.BoxID, info LineInfo,
	top Fl, runs []Run, trailingSpaceRun int, reachedEnd bool,
) {
	rb := c.Box(root)
	textAlign := textAlignmentForLine(block, !reachedEnd && !rb.EndsWithBreak())

	indent := requiresIndent(block, info)
	lineLogicalLeft, lineLogicalRight := lineLogicalOffsets(block, top, indent)
	availableLogicalWidth := lineLogicalRight - lineLogicalLeft

	var trailingSpace *inline.Box
	if trailingSpaceRun >= 0 && !runs[trailingSpaceRun].Box.IsNone() {
		trailingSpace = c.Box(runs[trailingSpaceRun].Box)
	}

	fitsToGlyphs := block.Style.LineBoxContain&pr.ContainGlyphs != 0
	needsWordSpacing := false
	totalLogicalWidth := c.GetFlowSpacingLogicalWidth(root)
	expansionCount := 0
	isAfterExpansion := true
	var opportunities []int
	for i, r := range runs {
		// positioned objects and line breaks have no width
		if r.Box.IsNone() || r.Object.IsOutOfFlowPositioned() || c.IsLineBreak(r.Box) {
			continue
		}
		b := c.Box(r.Box)
		if r.Object.IsText() {
			chars := []rune(r.Object.Text)
			runChars := chars[r.Start:r.End]
			if textAlign == pr.TaJustify && i != trailingSpaceRun {
				n := expansionOpportunityCount(runChars, !b.IsLeftToRightDirection(), &isAfterExpansion)
				opportunities = append(opportunities, n)
				expansionCount += n
			}
			if len(chars) != 0 && r.End > r.Start {
				if r.Start == 0 && needsWordSpacing && isSpaceOrNewline(chars[r.Start]) {
					totalLogicalWidth += r.Object.StyleFor(info.IsFirstLine).WordSpacing
				}
				needsWordSpacing = !isSpaceOrNewline(chars[r.End-1]) && r.End == len(chars)
			}

			b.Text.Expansion = 0
			b.LogicalWidth = c.MeasureText(r.Box)
			font := r.Object.StyleFor(info.IsFirstLine).Font
			c.SetGlyphOverflow(r.Box, font.GlyphOverflow(string(runChars), fitsToGlyphs))
		} else {
			isAfterExpansion = false
			if !r.Object.IsRenderInline() {
				horizontal := b.IsHorizontal()
				b.LogicalWidth = r.Object.LogicalWidth()
				totalLogicalWidth += r.Object.MarginLogicalLeft(horizontal) + r.Object.MarginLogicalRight(horizontal)
			}
		}
		totalLogicalWidth += b.LogicalWidth
	}

	if isAfterExpansion && len(opportunities) != 0 && opportunities[len(opportunities)-1] != 0 {
		opportunities[len(opportunities)-1]--
		expansionCount--
	}

	updateLogicalWidthForAlignment(block, textAlign, trailingSpace, &lineLogicalLeft, &totalLogicalWidth, availableLogicalWidth, expansionCount)
	computeExpansionForJustifiedText(c, runs, trailingSpaceRun, opportunities, expansionCount, &totalLogicalWidth, availableLogicalWidth)

	// the widths of all the runs are known: place the boxes
	needsWordSpacing = false
	c.PlaceBoxesInInlineDirection(root, lineLogicalLeft, &needsWordSpacing)
}
