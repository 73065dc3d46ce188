package inline

import (
	"github.com/benoitkugler/linebox/backend"
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

// EllipsisBox returns the ellipsis of the line [root], or [NoBox].
func (c *Context) EllipsisBox(root BoxID) BoxID {
	if !c.Box(root).HasEllipsisBox() {
		return NoBox
	}
	return c.ellipses[root]
}

// detachEllipsisBox destroys the ellipsis of [root], if any.
func (c *Context) detachEllipsisBox(root BoxID) {
	b := c.Box(root)
	if !b.HasEllipsisBox() {
		return
	}
	ellipsis := c.ellipses[root]
	delete(c.ellipses, root)
	b.root.hasEllipsisBox = false
	c.arena.release(ellipsis)
}

// ClearTruncation removes the ellipsis of the line [root] and
// displays the text of its boxes again.
func (c *Context) ClearTruncation(root BoxID) {
	b := c.Box(root)
	if !b.HasEllipsisBox() {
		return
	}
	c.detachEllipsisBox(root)
	b.root.wholeLineTruncated = false
	c.clearTruncation(root)
}

// LineCanAccommodateEllipsis returns true if the ellipsis may be placed
// on the line [root], whose content ends at [lineBoxEdge]: there is enough room
// and no replaced box is in the way.
func (c *Context) LineCanAccommodateEllipsis(root BoxID, ltr bool, blockEdge, lineBoxEdge, ellipsisWidth Fl) bool {
	// first check the width of the whole line
	delta := blockEdge - lineBoxEdge
	if ltr {
		delta = lineBoxEdge - blockEdge
	}
	if c.Box(root).LogicalWidth-delta < ellipsisWidth {
		return false
	}
	return c.CanAccommodateEllipsis(root, ltr, blockEdge, ellipsisWidth)
}

// PlaceEllipsis creates the ellipsis box of the line [root], truncating the
// boxes it overlaps. [markupBox] is a box painted after the ellipsis
// (see [Context.MarkupBox]), or [NoBox]; its width is included in [ellipsisWidth].
// It returns the width of the line up to the end of the ellipsis.
//
// A previous ellipsis of the line is replaced.
func (c *Context) PlaceEllipsis(root BoxID, str string, ltr bool, blockLeftEdge, blockRightEdge, ellipsisWidth Fl, markupBox BoxID) Fl {
	if c.Box(root).HasEllipsisBox() {
		c.ClearTruncation(root)
	}
	b := c.Box(root)

	boxWidth := ellipsisWidth
	if !markupBox.IsNone() {
		boxWidth -= c.Box(markupBox).LogicalWidth
	}
	id, eb := c.newBox(Ellipsis, b.Object)
	eb.ellipsis = &ellipsisData{
		str:                  str,
		height:               c.LogicalHeight(root),
		shouldPaintMarkupBox: !markupBox.IsNone(),
	}
	eb.LogicalWidth = boxWidth
	eb.isHorizontal = b.isHorizontal
	eb.firstLine = c.PrevRootBox(root).IsNone()
	eb.constructed = true
	eb.SetLogicalTop(b.LogicalTop())
	c.ellipses[root] = id
	b.root.hasEllipsisBox = true

	// the ellipsis simply follows the content when it fits
	if ltr && b.LogicalLeft()+b.LogicalWidth+ellipsisWidth <= blockRightEdge {
		eb.SetLogicalLeft(b.LogicalLeft() + b.LogicalWidth)
		return b.LogicalWidth + ellipsisWidth
	}

	// otherwise the ellipsis is placed after the last
	// visible character, truncating the boxes it overlaps
	foundBox := false
	var truncatedWidth Fl
	position := c.placeEllipsisBox(root, ltr, blockLeftEdge, blockRightEdge, ellipsisWidth, &truncatedWidth, &foundBox)
	if position == -1 {
		// no box accepted the truncation: the ellipsis
		// goes against the end of the block
		if ltr {
			position = blockRightEdge - ellipsisWidth
		} else {
			position = blockLeftEdge
		}
		truncatedWidth = blockRightEdge - blockLeftEdge
		b.root.wholeLineTruncated = true
	}
	eb.SetLogicalLeft(position)
	return truncatedWidth
}

// MarkupBox returns the box painted after the ellipsis [id]: the last
// box of the last line of the block, when it is a link.
func (c *Context) MarkupBox(id BoxID) BoxID {
	b := c.Box(id)
	if !b.ellipsis.shouldPaintMarkupBox || !b.Object.IsBlock() {
		return NoBox
	}
	lastLine := c.LastLineBox(b.Object)
	if lastLine.IsNone() {
		return NoBox
	}
	anchor := c.Box(lastLine).LastChild()
	if anchor.IsNone() || !c.Box(anchor).Object.IsLink() {
		return NoBox
	}
	return anchor
}

// markupBoxOffset returns the translation moving the markup box [markup]
// after the ellipsis [id], with the same baseline.
func (c *Context) markupBoxOffset(id, markup BoxID) utils.Point {
	b, mb := c.Box(id), c.Box(markup)
	ascent := b.style().FontMetrics().Ascent(text.AlphabeticBaseline)
	markupAscent := mb.Object.StyleFor(b.firstLine).FontMetrics().Ascent(text.AlphabeticBaseline)
	return utils.Point{
		X: b.X + b.LogicalWidth - mb.X,
		Y: b.Y + ascent - (mb.Y + markupAscent),
	}
}

func (c *Context) ellipsisSelectionState(id BoxID) render.SelectionState {
	return c.Box(id).ellipsis.selectionState
}

// EllipsisSelectionRect returns the area highlighted when the ellipsis [id]
// is selected.
func (c *Context) EllipsisSelectionRect(id BoxID) utils.Rect {
	b := c.Box(id)
	root := c.Root(id)
	st := b.style()
	run := render.ConstructTextRun(b.ellipsis.str, st, false, 0)
	return utils.Rect{X: b.X, Y: b.Y + c.SelectionTop(root), Width: run.Width(), Height: c.SelectionHeight(root)}.Enclosing()
}

func (c *Context) paintEllipsis(id BoxID, info *render.PaintInfo, paintOffset utils.Point, lineTop, lineBottom Fl) {
	b := c.Box(id)
	st := b.style()
	canvas := info.Canvas
	textColor := st.Color
	if info.ForceBlackText {
		textColor = pr.Black
	}

	fillColor := textColor
	if c.ellipsisSelectionState(id) != render.SelectionNone {
		c.paintEllipsisSelection(id, canvas, paintOffset, st)

		foreground := b.Object.SelectionForegroundColor()
		if info.ForceBlackText {
			foreground = pr.Black
		}
		if !foreground.IsNone() && foreground != textColor {
			fillColor = foreground
		}
	}

	origin := utils.Point{X: b.X + paintOffset.X, Y: b.Y + paintOffset.Y + st.FontMetrics().Ascent(text.AlphabeticBaseline)}
	if !info.ForceBlackText {
		for _, sh := range st.TextShadow {
			canvas.SetColorRgba(sh.Color, false)
			canvas.DrawText(backend.TextDrawing{Text: b.ellipsis.str, Font: st.Font, X: origin.X + sh.X, Y: origin.Y + sh.Y})
		}
	}
	canvas.SetColorRgba(fillColor, false)
	canvas.DrawText(backend.TextDrawing{Text: b.ellipsis.str, Font: st.Font, X: origin.X, Y: origin.Y})

	if markup := c.MarkupBox(id); !markup.IsNone() {
		offset := c.markupBoxOffset(id, markup)
		c.Paint(markup, info, paintOffset.Add(offset), lineTop, lineBottom)
	}
}

func (c *Context) paintEllipsisSelection(id BoxID, canvas backend.Canvas, paintOffset utils.Point, st *pr.Style) {
	b := c.Box(id)
	color := b.Object.SelectionBackgroundColor()
	if color.IsNone() {
		return
	}
	// a selection invisible on the text is inverted
	if color == st.Color {
		color = pr.RGBA{R: 1 - color.R, G: 1 - color.G, B: 1 - color.B, A: color.A}
	}

	root := c.Root(id)
	top, h := c.SelectionTop(root), c.SelectionHeight(root)
	var deltaY Fl
	if b.Object.Style.IsFlippedLinesWritingMode() {
		deltaY = utils.RoundToInt(c.SelectionBottom(root) - c.LogicalBottom(id))
	} else {
		deltaY = utils.RoundToInt(b.LogicalTop() - top)
	}
	localOrigin := utils.Point{X: paintOffset.X + b.X, Y: paintOffset.Y + b.Y - deltaY}
	clip := utils.Rect{X: localOrigin.X, Y: localOrigin.Y, Width: b.LogicalWidth, Height: h}.PixelSnapped()
	run := render.ConstructTextRun(b.ellipsis.str, st, false, 0)
	canvas.OnNewStack(func() {
		backend.ClipRect(canvas, clip)
		backend.FillRect(canvas, utils.Rect{X: utils.Round(localOrigin.X), Y: utils.Round(localOrigin.Y), Width: run.Width(), Height: h}, color)
	})
}

func (c *Context) ellipsisNodeAtPoint(id BoxID, request render.HitTestRequest, result *render.HitTestResult, location render.HitTestLocation,
	accumulatedOffset utils.Point, lineTop, lineBottom Fl,
) bool {
	b := c.Box(id)
	adjustedLocation := accumulatedOffset.Add(utils.Point{X: utils.Round(b.X), Y: utils.Round(b.Y)})

	// the markup box is tested first
	if markup := c.MarkupBox(id); !markup.IsNone() {
		offset := c.markupBoxOffset(id, markup)
		mt := accumulatedOffset.Add(offset)
		if c.NodeAtPoint(markup, request, result, location, mt, lineTop, lineBottom) {
			b.Object.UpdateHitTestResult(result, location.Point.Sub(mt))
			return true
		}
	}

	boundsRect := utils.Rect{X: adjustedLocation.X, Y: adjustedLocation.Y, Width: b.LogicalWidth, Height: b.ellipsis.height}
	if b.Object.Style.Visibility == pr.Visible && boundsRect.ContainsPoint(location.Point) {
		b.Object.UpdateHitTestResult(result, location.Point.Sub(adjustedLocation))
		if !result.AddNodeToRectBasedTestResult(b.Object.Node, request, location, boundsRect) {
			return true
		}
	}
	return false
}
