package inline

import (
	"github.com/benoitkugler/linebox/backend"
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/matrix"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

// PaintLines paints one phase of the lines of [block], located at [paintOffset].
// The lines outside of the damage rectangle are skipped.
// The outlines collected on the lines are painted in the outline phases.
func (c *Context) PaintLines(block *render.Object, info *render.PaintInfo, paintOffset utils.Point) {
	if info.Phase != render.PaintPhaseForeground && info.Phase != render.PaintPhaseSelection &&
		info.Phase != render.PaintPhaseOutline && info.Phase != render.PaintPhaseSelfOutline &&
		info.Phase != render.PaintPhaseChildOutlines && info.Phase != render.PaintPhaseTextClip &&
		info.Phase != render.PaintPhaseMask {
		return
	}

	outlinePhase := info.Phase == render.PaintPhaseOutline || info.Phase == render.PaintPhaseSelfOutline ||
		info.Phase == render.PaintPhaseChildOutlines
	if outlinePhase && info.OutlineObjects == nil {
		info.OutlineObjects = map[*render.Object]bool{}
	}

	horizontal := block.Style.IsHorizontalWritingMode()
	damageTop, damageBottom := info.Rect.Y, info.Rect.MaxY()
	offset := paintOffset.Y
	if !horizontal {
		damageTop, damageBottom = info.Rect.X, info.Rect.MaxX()
		offset = paintOffset.X
	}
	for root := c.FirstLineBox(block); !root.IsNone(); root = c.NextLineBox(root) {
		rd := c.Box(root).rootData()
		r := c.LogicalVisualOverflowRect(root, rd.lineTop, rd.lineBottom)
		top := utils.MinF(r.Y, rd.lineTop) + offset
		bottom := utils.MaxF(r.MaxY(), rd.lineBottom) + offset
		if bottom < damageTop || top > damageBottom {
			continue
		}
		c.Paint(root, info, paintOffset, rd.lineTop, rd.lineBottom)
	}

	if outlinePhase {
		for obj := range info.OutlineObjects {
			c.paintOutline(obj, info.Canvas, paintOffset)
		}
		clear(info.OutlineObjects)
	}
}

// paintOutline paints the outline of the inline [obj] around
// each of its flow boxes, clipped to their lines.
func (c *Context) paintOutline(obj *render.Object, canvas backend.Canvas, paintOffset utils.Point) {
	if !obj.HasOutline() {
		return
	}
	for id := c.FirstLineBox(obj); !id.IsNone(); id = c.NextLineBox(id) {
		b := c.Box(id)
		root := c.Box(c.Root(id))
		top := utils.MaxF(root.LineTop(), b.LogicalTop())
		bottom := utils.MinF(root.LineBottom(), c.LogicalBottom(id))
		rect := utils.Rect{X: b.LogicalLeft(), Y: top, Width: b.LogicalWidth, Height: bottom - top}
		if !b.isHorizontal {
			rect = rect.Transposed()
		}
		rect = c.FlipForWritingMode(id, rect).Moved(paintOffset.X, paintOffset.Y)
		render.PaintOutline(canvas, obj.Style, rect)
	}
}

// Paint paints one phase of the box [id] and its descendants.
// [paintOffset] is the position of the block of the line.
func (c *Context) Paint(id BoxID, info *render.PaintInfo, paintOffset utils.Point, lineTop, lineBottom Fl) {
	switch b := c.Box(id); b.Kind {
	case Flow:
		c.paintFlow(id, info, paintOffset, lineTop, lineBottom)
	case Root:
		c.paintFlow(id, info, paintOffset, lineTop, lineBottom)
		if b.HasEllipsisBox() && info.ShouldPaintWithinRoot(b.Object) &&
			b.Object.Style.Visibility == pr.Visible && info.Phase == render.PaintPhaseForeground {
			c.paintEllipsis(c.EllipsisBox(id), info, paintOffset, lineTop, lineBottom)
		}
	case TextLeaf:
		c.paintText(id, info, paintOffset)
	case ReplacedLeaf:
		if !c.hiddenByEllipsis(id) {
			c.paintReplaced(id, info, paintOffset)
		}
	case Ellipsis:
		c.paintEllipsis(id, info, paintOffset, lineTop, lineBottom)
	case LineBreakLeaf:
		// nothing to paint
	}
}

// hiddenByEllipsis returns true for the leaf [id] of a line whose ellipsis
// could not truncate any text, when the leaf runs under the ellipsis.
func (c *Context) hiddenByEllipsis(id BoxID) bool {
	root := c.Root(id)
	rb := c.Box(root)
	if !rb.IsWholeLineTruncated() {
		return false
	}
	b, eb := c.Box(id), c.Box(c.EllipsisBox(root))
	if rb.Object.Style.IsLeftToRightDirection() {
		return b.LogicalRight() > eb.LogicalLeft()
	}
	return b.LogicalLeft() < eb.LogicalRight()
}

func maximalOutlineSize(o *render.Object, phase render.PaintPhase) Fl {
	if phase != render.PaintPhaseOutline && phase != render.PaintPhaseSelfOutline && phase != render.PaintPhaseChildOutlines {
		return 0
	}
	return o.Style.OutlineWidth
}

// paintsWithLine returns true for the children painted by their line,
// as opposed to the ones with their own painting layer.
func paintsWithLine(o *render.Object) bool { return o.IsText() || !o.SelfPaintingLayer }

func (c *Context) paintFlow(id BoxID, info *render.PaintInfo, paintOffset utils.Point, lineTop, lineBottom Fl) {
	b := c.Box(id)
	overflowRect := c.VisualOverflowRect(id, lineTop, lineBottom)
	outline := maximalOutlineSize(b.Object, info.Phase)
	overflowRect = overflowRect.Expanded(outline, outline, outline, outline)
	overflowRect = c.FlipForWritingMode(id, overflowRect).Moved(paintOffset.X, paintOffset.Y)
	if !info.Rect.Intersects(overflowRect.PixelSnapped()) {
		return
	}

	if info.Phase != render.PaintPhaseChildOutlines {
		switch info.Phase {
		case render.PaintPhaseOutline, render.PaintPhaseSelfOutline:
			// the outline is painted around all the boxes of the inline
			// once the lines are painted
			if b.Object.Style.Visibility == pr.Visible && b.Object.HasOutline() && b.Kind != Root {
				if info.OutlineObjects == nil {
					info.OutlineObjects = map[*render.Object]bool{}
				}
				info.OutlineObjects[b.Object] = true
			}
		case render.PaintPhaseMask:
			return
		default:
			c.paintBoxDecorations(id, info, paintOffset)
		}
	}

	childInfo := *info
	if info.Phase == render.PaintPhaseChildOutlines {
		childInfo.Phase = render.PaintPhaseOutline
	}
	childInfo.UpdateSubtreePaintRootForChildren(b.Object)

	if childInfo.Phase == render.PaintPhaseSelfOutline {
		return
	}
	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		if paintsWithLine(c.Box(child).Object) {
			c.Paint(child, &childInfo, paintOffset, lineTop, lineBottom)
		}
	}
	if childInfo.OutlineObjects != nil && info.OutlineObjects == nil {
		info.OutlineObjects = childInfo.OutlineObjects
	}
}

// paintBoxDecorations paints the shadows, background and borders of the flow box [id].
// Root boxes only paint the background given by a first line style.
func (c *Context) paintBoxDecorations(id BoxID, info *render.PaintInfo, paintOffset utils.Point) {
	b := c.Box(id)
	if !info.ShouldPaintWithinRoot(b.Object) || b.Object.Style.Visibility != pr.Visible || info.Phase != render.PaintPhaseForeground {
		return
	}

	frameRect := c.constrainToLineTopAndBottomIfNeeded(id, c.roundedFrameRect(id))
	localRect := c.FlipForWritingMode(id, frameRect)
	paintRect := utils.Rect{
		X: paintOffset.X + localRect.X, Y: paintOffset.Y + localRect.Y,
		Width: frameRect.Width, Height: frameRect.Height,
	}

	hasFirstLineStyle := b.firstLine && b.Object.FirstLineStyle != nil
	if (b.parent.IsNone() && hasFirstLineStyle) || (!b.parent.IsNone() && b.Object.HasBoxDecorations()) {
		render.PaintBoxDecorations(info.Canvas, b.style(), paintRect, b.isHorizontal,
			b.IncludeLogicalLeftEdge(), b.IncludeLogicalRightEdge())
	}
}

func (c *Context) paintReplaced(id BoxID, info *render.PaintInfo, paintOffset utils.Point) {
	b := c.Box(id)
	if !info.ShouldPaintWithinRoot(b.Object) || (info.Phase != render.PaintPhaseForeground && info.Phase != render.PaintPhaseSelection) {
		return
	}
	childPoint := paintOffset
	if parent := c.Box(b.parent).Object; parent.Style.IsFlippedBlocksWritingMode() {
		if cb := b.Object.ContainingBlock(); cb != nil {
			childPoint = cb.FlipForWritingModeForChild(b.Object, childPoint)
		}
	}

	// all the phases of replaced objects are painted at once,
	// as if they were a stacking context
	childInfo := *info
	if info.Phase == render.PaintPhaseSelection || info.Phase == render.PaintPhaseTextClip {
		b.Object.PaintReplaced(&childInfo, childPoint)
		return
	}
	for _, phase := range [...]render.PaintPhase{
		render.PaintPhaseBlockBackground, render.PaintPhaseChildBlockBackgrounds,
		render.PaintPhaseFloat, render.PaintPhaseForeground, render.PaintPhaseOutline,
	} {
		childInfo.Phase = phase
		b.Object.PaintReplaced(&childInfo, childPoint)
	}
}

// paintedText returns the run of the characters of [id] displayed
// before the ellipsis, with their number.
func (c *Context) paintedText(id BoxID) (render.TextRun, int) {
	b := c.Box(id)
	run := c.textRun(id)
	length := b.Text.Len
	if t := b.Text.Truncation; t != NoTruncation {
		length = t
		run.Text = text.Prefix(run.Text, length)
	}
	return run, length
}

func (c *Context) paintText(id BoxID, info *render.PaintInfo, paintOffset utils.Point) {
	b := c.Box(id)
	tf := b.Text
	if c.IsLineBreak(id) || !info.ShouldPaintWithinRoot(b.Object) || b.Object.Style.Visibility != pr.Visible ||
		tf.Truncation == FullTruncation || info.Phase == render.PaintPhaseOutline || tf.Len == 0 {
		return
	}

	logicalOverflow := c.LogicalOverflowRect(id)
	logicalStart := logicalOverflow.X + paintOffset.X
	paintStart, paintEnd := info.Rect.X, info.Rect.MaxX()
	if !b.isHorizontal {
		logicalStart = logicalOverflow.X + paintOffset.Y
		paintStart, paintEnd = info.Rect.Y, info.Rect.MaxY()
	}
	if logicalStart >= paintEnd || logicalStart+logicalOverflow.Width <= paintStart {
		return
	}

	haveSelection := info.Phase != render.PaintPhaseTextClip && c.SelectionState(id) != render.SelectionNone
	if !haveSelection && info.Phase == render.PaintPhaseSelection {
		return
	}

	adjustedPaintOffset := paintOffset
	if tf.Truncation != NoTruncation {
		if cb := b.Object.ContainingBlock(); cb != nil && cb.Style.IsLeftToRightDirection() != b.IsLeftToRightDirection() {
			// the visible part hugs the edge closest to the rest of the line
			widthOfHiddenText := b.LogicalWidth - c.widthOfVisibleText(id)
			if !b.IsLeftToRightDirection() {
				widthOfHiddenText = -widthOfHiddenText
			}
			if b.isHorizontal {
				adjustedPaintOffset.X += widthOfHiddenText
			} else {
				adjustedPaintOffset.Y += widthOfHiddenText
			}
		}
	}

	st := b.style()
	logicalHeight := c.LogicalHeight(id)
	if !st.IsHorizontalWritingMode() {
		adjustedPaintOffset.Y -= logicalHeight
	}
	boxOrigin := c.LocationIncludingFlipping(id).Add(adjustedPaintOffset)
	boxRect := utils.Rect{X: boxOrigin.X, Y: boxOrigin.Y, Width: b.LogicalWidth, Height: logicalHeight}

	canvas := info.Canvas
	canvas.OnNewStack(func() {
		if !b.isHorizontal {
			canvas.Transform(matrix.QuarterTurn(boxRect, true))
		}
		c.paintTextContent(id, info, st, boxOrigin, haveSelection)
	})
}

func (c *Context) paintTextContent(id BoxID, info *render.PaintInfo, st *pr.Style, boxOrigin utils.Point, haveSelection bool) {
	b := c.Box(id)
	canvas := info.Canvas

	textFillColor, emphasisMarkColor := st.Color, st.Color
	textShadow := st.TextShadow
	if info.ForceBlackText {
		textFillColor, emphasisMarkColor = pr.Black, pr.Black
		textShadow = nil
	}

	paintSelectedTextOnly := info.Phase == render.PaintPhaseSelection
	paintSelectedTextSeparately := false
	selectionFillColor := textFillColor
	if haveSelection {
		foreground := b.Object.SelectionForegroundColor()
		if info.ForceBlackText {
			foreground = pr.Black
		}
		if !foreground.IsNone() && foreground != selectionFillColor {
			if !paintSelectedTextOnly {
				paintSelectedTextSeparately = true
			}
			selectionFillColor = foreground
		}
	}

	fm := st.FontMetrics()
	textOrigin := utils.Point{X: boxOrigin.X, Y: boxOrigin.Y + fm.Ascent(text.AlphabeticBaseline)}

	// 1. the selection background
	if info.Phase != render.PaintPhaseSelection && info.Phase != render.PaintPhaseTextClip && haveSelection {
		c.paintSelectionBackground(id, canvas, boxOrigin, st, selectionFillColor)
	}

	// 2. the text and the emphasis marks
	run, length := c.paintedText(id)
	var sPos, ePos int
	if paintSelectedTextOnly || paintSelectedTextSeparately {
		sPos, ePos = c.selectionStartEnd(id)
	}
	if b.Text.Truncation != NoTruncation {
		sPos, ePos = min(sPos, length), min(ePos, length)
	}

	var emphasisMarkOffset Fl
	emphasisMark := ""
	if pos, ok := c.emphasisMarkPosition(id, st); ok {
		emphasisMark = st.TextEmphasisMark
		markHeight := st.Font.EmphasisMarkHeight(emphasisMark)
		if pos == pr.EmphasisOver {
			emphasisMarkOffset = -fm.Ascent(text.AlphabeticBaseline) - markHeight/2
		} else {
			emphasisMarkOffset = fm.Descent(text.AlphabeticBaseline) + markHeight/2
		}
	}

	if !paintSelectedTextOnly {
		startOffset, endOffset := 0, length
		if paintSelectedTextSeparately && ePos > sPos {
			// the selected part is painted afterwards
			startOffset, endOffset = ePos, sPos
		}
		paintTextWithShadows(canvas, run, st, "", 0, startOffset, endOffset, length, textOrigin, textFillColor, textShadow)
		if emphasisMark != "" {
			paintTextWithShadows(canvas, run, st, emphasisMark, emphasisMarkOffset, startOffset, endOffset, length, textOrigin, emphasisMarkColor, textShadow)
		}
	}

	if (paintSelectedTextOnly || paintSelectedTextSeparately) && sPos < ePos {
		paintTextWithShadows(canvas, run, st, "", 0, sPos, ePos, length, textOrigin, selectionFillColor, textShadow)
		if emphasisMark != "" {
			paintTextWithShadows(canvas, run, st, emphasisMark, emphasisMarkOffset, sPos, ePos, length, textOrigin, selectionFillColor, textShadow)
		}
	}
}

// paintTextWithShadows paints the characters [startOffset, endOffset) of [run],
// or, when startOffset > endOffset, the characters outside of [endOffset, startOffset).
// When [emphasisMark] is not empty, the mark is painted over each character instead.
func paintTextWithShadows(canvas backend.Canvas, run render.TextRun, st *pr.Style, emphasisMark string, emphasisMarkOffset Fl,
	startOffset, endOffset, length int, textOrigin utils.Point, fillColor pr.RGBA, shadows []pr.Shadow,
) {
	draw := func(origin utils.Point) {
		if startOffset <= endOffset {
			drawTextRange(canvas, run, st, emphasisMark, emphasisMarkOffset, origin, startOffset, endOffset)
		} else {
			drawTextRange(canvas, run, st, emphasisMark, emphasisMarkOffset, origin, 0, endOffset)
			drawTextRange(canvas, run, st, emphasisMark, emphasisMarkOffset, origin, startOffset, length)
		}
	}
	for _, sh := range shadows {
		canvas.SetColorRgba(sh.Color, false)
		draw(textOrigin.Add(utils.Point{X: sh.X, Y: sh.Y}))
	}
	canvas.SetColorRgba(fillColor, false)
	draw(textOrigin)
}

func drawTextRange(canvas backend.Canvas, run render.TextRun, st *pr.Style, emphasisMark string, emphasisMarkOffset Fl,
	origin utils.Point, from, to int,
) {
	if from >= to {
		return
	}
	if emphasisMark == "" {
		x, _ := selectionRectForText(run, origin.X, from, to)
		canvas.DrawText(backend.TextDrawing{
			Text: runeSlice(run.Text, from, to), Font: st.Font,
			X: x, Y: origin.Y,
			LetterSpacing: run.LetterSpacing, WordSpacing: run.WordSpacing,
		})
		return
	}
	markWidth := st.Font.Width(emphasisMark, 0, 0)
	for i, r := range []rune(runeSlice(run.Text, from, to)) {
		if isSpaceOrNewline(r) {
			continue
		}
		x, w := selectionRectForText(run, origin.X, from+i, from+i+1)
		canvas.DrawText(backend.TextDrawing{
			Text: emphasisMark, Font: st.Font,
			X: x + (w-markWidth)/2, Y: origin.Y + emphasisMarkOffset,
		})
	}
}

// paintSelectionBackground highlights the selected characters of [id],
// over the selection height of its line.
func (c *Context) paintSelectionBackground(id BoxID, canvas backend.Canvas, boxOrigin utils.Point, st *pr.Style, textColor pr.RGBA) {
	sPos, ePos := c.selectionStartEnd(id)
	if sPos >= ePos {
		return
	}
	b := c.Box(id)
	color := b.Object.SelectionBackgroundColor()
	if color.IsNone() {
		return
	}
	if color == textColor {
		color = pr.RGBA{R: 1 - color.R, G: 1 - color.G, B: 1 - color.B, A: color.A}
	}

	// the characters after the truncation are highlighted with the ellipsis
	run, length := c.paintedText(id)
	ePos = min(ePos, length)
	if sPos >= ePos {
		return
	}

	root := c.Root(id)
	selectionBottom := c.SelectionBottom(root)
	selectionTop := c.SelectionTop(root)
	var deltaY Fl
	if b.Object.Style.IsFlippedLinesWritingMode() {
		deltaY = utils.RoundToInt(selectionBottom - c.LogicalBottom(id))
	} else {
		deltaY = utils.RoundToInt(b.LogicalTop() - selectionTop)
	}
	selHeight := utils.MaxF(0, utils.RoundToInt(selectionBottom-selectionTop))
	localOrigin := utils.Point{X: boxOrigin.X, Y: boxOrigin.Y - deltaY}
	clip := utils.Rect{X: localOrigin.X, Y: localOrigin.Y, Width: b.LogicalWidth, Height: selHeight}.PixelSnapped()

	x, w := selectionRectForText(run, localOrigin.X, sPos, ePos)
	canvas.OnNewStack(func() {
		backend.ClipRect(canvas, clip)
		backend.FillRect(canvas, utils.Rect{X: x, Y: localOrigin.Y, Width: w, Height: selHeight}, color)
	})
}
