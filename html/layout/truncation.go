package layout

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/logger"
	"github.com/benoitkugler/linebox/utils"
)

// DefaultEllipsis is the string marking truncated lines.
const DefaultEllipsis = "…"

// adjustLogicalPosition moves the line [root] in logical coordinates.
func adjustLogicalPosition(c *inline.Context, root inline.BoxID, dLeft, dTop Fl) {
	if c.Box(root).IsHorizontal() {
		c.AdjustPosition(root, dLeft, dTop)
	} else {
		c.AdjustPosition(root, dTop, dLeft)
	}
}

func ellipsisWidth(str string, style *pr.Style) Fl {
	return Fl(int(render.ConstructTextRun(str, style, !style.IsLeftToRightDirection(), 0).Width()))
}

// CheckLinesForTextOverflow places an ellipsis on the lines of [block]
// overflowing its content box, and realigns them.
func CheckLinesForTextOverflow(c *inline.Context, block *render.Object, ellipsis string) {
	if ellipsis == "" {
		ellipsis = DefaultEllipsis
	}
	width := ellipsisWidth(ellipsis, block.Style)
	firstLineWidth := ellipsisWidth(ellipsis, block.StyleFor(true))

	ltr := block.Style.IsLeftToRightDirection()
	textAlign := block.Style.TextAlign
	firstLine := true
	index := 0
	for curr := c.FirstLineBox(block); !curr.IsNone(); curr = c.NextLineBox(curr) {
		rb := c.Box(curr)
		blockRightEdge := utils.RoundToInt(block.LogicalRightOffsetForLine(rb.LineTop(), firstLine))
		blockLeftEdge := utils.RoundToInt(block.LogicalLeftOffsetForLine(rb.LineTop(), firstLine))
		lineBoxEdge := utils.RoundToInt(rb.LogicalLeft())
		if ltr {
			lineBoxEdge = utils.RoundToInt(rb.LogicalLeft() + rb.LogicalWidth)
		}

		if (ltr && lineBoxEdge > blockRightEdge) || (!ltr && lineBoxEdge < blockLeftEdge) {
			w := width
			if firstLine {
				w = firstLineWidth
			}
			blockEdge := blockLeftEdge
			if ltr {
				blockEdge = blockRightEdge
			}
			if c.LineCanAccommodateEllipsis(curr, ltr, blockEdge, lineBoxEdge, w) {
				total := c.PlaceEllipsis(curr, ellipsis, ltr, blockLeftEdge, blockRightEdge, w, inline.NoBox)

				var logicalLeft Fl
				truncatedWidth := utils.RoundToInt(block.LogicalRightOffsetForLine(rb.LineTop(), firstLine))
				updateLogicalWidthForAlignment(block, textAlign, nil, &logicalLeft, &total, truncatedWidth, 0)
				if ltr {
					adjustLogicalPosition(c, curr, logicalLeft, 0)
				} else {
					adjustLogicalPosition(c, curr, -(truncatedWidth - (logicalLeft + total)), 0)
				}
			} else {
				logger.WarningLogger.Printf("no room for the ellipsis on line %d of %s", index, block)
			}
		}
		firstLine = false
		index++
	}
}

// DeleteEllipsisLineBoxes removes the ellipses of the lines of [block],
// restoring their alignment.
func DeleteEllipsisLineBoxes(c *inline.Context, block *render.Object) {
	textAlign := block.Style.TextAlign
	firstLine := true
	for curr := c.FirstLineBox(block); !curr.IsNone(); curr = c.NextLineBox(curr) {
		rb := c.Box(curr)
		if rb.HasEllipsisBox() {
			c.ClearTruncation(curr)

			logicalLeft := utils.RoundToInt(block.LogicalLeftOffsetForLine(rb.LineTop(), firstLine))
			available := block.LogicalRightOffsetForLine(rb.LineTop(), false) - logicalLeft
			total := rb.LogicalWidth
			updateLogicalWidthForAlignment(block, textAlign, nil, &logicalLeft, &total, available, 0)
			adjustLogicalPosition(c, curr, logicalLeft-rb.LogicalLeft(), 0)
		}
		firstLine = false
	}
}

// ApplyLineClamp keeps the first [n] lines of [block] visible,
// placing an ellipsis at the end of the last one. When the last line of
// the block ends with a link, the link is repeated after the ellipsis.
// It returns the logical height of the block showing [n] lines,
// and false if the block has no more than [n] lines.
func ApplyLineClamp(c *inline.Context, block *render.Object, n int, ellipsis string) (Fl, bool) {
	lineCount := c.LineCount(block)
	if n <= 0 || n >= lineCount {
		return 0, false
	}
	if ellipsis == "" {
		ellipsis = DefaultEllipsis
	}

	lastVisibleLine := c.LineAtIndex(block, n-1)
	lastLine := c.LineAtIndex(block, lineCount-1)
	lvb := c.Box(lastVisibleLine)

	height := lvb.LineBottomWithLeading() + block.Style.Border.After(block.Style.WritingMode) +
		block.Style.Padding.After(block.Style.WritingMode)

	if !block.Style.IsLeftToRightDirection() {
		// only the end of left to right lines is handled
		return height, true
	}

	style := block.StyleFor(n == 1)
	var totalWidth Fl
	anchorBox := c.Box(lastLine).LastChild()
	str := ellipsis
	if !anchorBox.IsNone() && c.Box(anchorBox).Object.IsLink() {
		str = ellipsis + " "
		totalWidth = c.Box(anchorBox).LogicalWidth + ellipsisWidth(str, style)
	} else {
		anchorBox = inline.NoBox
		totalWidth = ellipsisWidth(str, style)
	}

	top := lvb.LogicalTop()
	blockRightEdge := block.LogicalRightOffsetForLine(top, false)
	if !c.LineCanAccommodateEllipsis(lastVisibleLine, true, blockRightEdge, lvb.LogicalLeft()+lvb.LogicalWidth, totalWidth) {
		logger.WarningLogger.Printf("no room for the ellipsis clamping %s to %d lines", block, n)
		return height, true
	}
	blockLeftEdge := block.LogicalLeftOffsetForLine(top, false)
	c.PlaceEllipsis(lastVisibleLine, str, true, blockLeftEdge, blockRightEdge, totalWidth, anchorBox)
	return height, true
}
