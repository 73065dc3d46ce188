package render

import (
	"github.com/benoitkugler/linebox/backend"
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

// PaintPhase follows the painting order of CSS 2.1 Appendix E.
type PaintPhase uint8

const (
	PaintPhaseBlockBackground PaintPhase = iota
	PaintPhaseChildBlockBackground
	PaintPhaseChildBlockBackgrounds
	PaintPhaseFloat
	PaintPhaseForeground
	PaintPhaseOutline
	PaintPhaseChildOutlines
	PaintPhaseSelfOutline
	PaintPhaseSelection
	PaintPhaseTextClip
	PaintPhaseMask
)

// PaintInfo is the state passed down while painting.
type PaintInfo struct {
	Canvas backend.Canvas
	Rect   utils.Rect // damage rectangle
	Phase  PaintPhase

	// OutlineObjects collects the inlines whose outline
	// is painted after their lines.
	OutlineObjects map[*Object]bool

	ForceBlackText bool

	// PaintRoot restricts painting to the given object, if not nil.
	PaintRoot *Object
}

func (pi *PaintInfo) ShouldPaintWithinRoot(o *Object) bool {
	return pi.PaintRoot == nil || pi.PaintRoot == o
}

// UpdateSubtreePaintRootForChildren lifts the restriction once
// the root is reached.
func (pi *PaintInfo) UpdateSubtreePaintRootForChildren(o *Object) {
	if pi.PaintRoot == o {
		pi.PaintRoot = nil
	}
}

// PaintBoxDecorations paints the background, box shadows and borders
// of a box in [rect], only including the given inline edges.
func PaintBoxDecorations(canvas backend.Canvas, style *pr.Style, rect utils.Rect, horizontal, includeLogicalLeftEdge, includeLogicalRightEdge bool) {
	for _, sh := range style.BoxShadow {
		if sh.Inset {
			continue
		}
		backend.FillRect(canvas, rect.Moved(sh.X, sh.Y).Expanded(sh.Spread, sh.Spread, sh.Spread, sh.Spread), sh.Color)
	}
	backend.FillRect(canvas, rect, style.BackgroundColor)
	paintBorder(canvas, style, rect, horizontal, includeLogicalLeftEdge, includeLogicalRightEdge)
}

func paintBorder(canvas backend.Canvas, style *pr.Style, rect utils.Rect, horizontal, includeLogicalLeftEdge, includeLogicalRightEdge bool) {
	b := style.Border
	if b.IsZero() || style.BorderColor.IsNone() {
		return
	}
	if horizontal {
		if !includeLogicalLeftEdge {
			b.Left = 0
		}
		if !includeLogicalRightEdge {
			b.Right = 0
		}
	} else {
		if !includeLogicalLeftEdge {
			b.Top = 0
		}
		if !includeLogicalRightEdge {
			b.Bottom = 0
		}
	}
	sides := [4]utils.Rect{
		{X: rect.X, Y: rect.Y, Width: rect.Width, Height: b.Top},
		{X: rect.MaxX() - b.Right, Y: rect.Y, Width: b.Right, Height: rect.Height},
		{X: rect.X, Y: rect.MaxY() - b.Bottom, Width: rect.Width, Height: b.Bottom},
		{X: rect.X, Y: rect.Y, Width: b.Left, Height: rect.Height},
	}
	for _, side := range sides {
		backend.FillRect(canvas, side, style.BorderColor)
	}
}

// PaintOutline strokes the outline around [rect].
func PaintOutline(canvas backend.Canvas, style *pr.Style, rect utils.Rect) {
	w := style.OutlineWidth
	if w <= 0 || style.Visibility != pr.Visible {
		return
	}
	canvas.OnNewStack(func() {
		canvas.SetColorRgba(style.OutlineColor, true)
		canvas.SetLineWidth(w)
		canvas.Rectangle(rect.X-w/2, rect.Y-w/2, rect.Width+w, rect.Height+w)
		canvas.Paint(backend.Stroke)
	})
}

// PaintReplaced paints one phase of a replaced object,
// whose containing block is at [paintOffset].
func (o *Object) PaintReplaced(info *PaintInfo, paintOffset utils.Point) {
	if !info.ShouldPaintWithinRoot(o) || o.Style.Visibility != pr.Visible {
		return
	}
	borderBox := o.Frame.Moved(paintOffset.X, paintOffset.Y)
	horizontal := o.Style.IsHorizontalWritingMode()
	switch info.Phase {
	case PaintPhaseBlockBackground, PaintPhaseChildBlockBackground:
		PaintBoxDecorations(info.Canvas, o.Style, borderBox, horizontal, true, true)
	case PaintPhaseForeground:
		if o.Kind == ListMarkerKind && o.Text != "" {
			fm := o.Style.FontMetrics()
			info.Canvas.SetColorRgba(o.Style.Color, false)
			info.Canvas.DrawText(backend.TextDrawing{
				Text: o.Text, Font: o.Style.Font,
				X: borderBox.X, Y: borderBox.Y + fm.Ascent(text.AlphabeticBaseline),
			})
		}
		if o.Draw != nil {
			info.Canvas.OnNewStack(func() {
				backend.ClipRect(info.Canvas, borderBox)
				o.Draw(info.Canvas, borderBox)
			})
		}
	case PaintPhaseOutline, PaintPhaseSelfOutline:
		PaintOutline(info.Canvas, o.Style, borderBox)
	case PaintPhaseSelection:
		if o.Selection.State != SelectionNone {
			c := o.SelectionBackgroundColor()
			c.A *= 0.5
			backend.FillRect(info.Canvas, borderBox, c)
		}
	}
}
