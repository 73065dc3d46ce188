// Package backend defines a common interface, providing the graphics primitives
// used to paint lines.
//
// It aims at supporting the painting of inline content in an output-agnostic manner,
// so that various output formats may be generated (GUI canvas, raster image or PDF files for instance).
package backend

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/matrix"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

type Fl = utils.Fl

// TextDrawing is a run of text to draw with one font.
type TextDrawing struct {
	Text string
	Font *text.Font
	X, Y Fl // origin of the text, on the baseline

	LetterSpacing, WordSpacing Fl
}

// PaintOp specifies the graphic operation applied to the current path
type PaintOp uint8

const (
	Stroke PaintOp = 1 << iota
	FillEvenOdd
	FillNonZero // mutually exclusive with FillEvenOdd
)

// Canvas represents a 2D surface which is the target of graphic operations.
type Canvas interface {
	// OnNewStack save the current graphic stack,
	// execute the given closure, and restore the stack.
	OnNewStack(func())

	// Establishes a new clip region
	// by intersecting the current clip region
	// with the current path as it would be filled by `Paint`
	// and according to the fill rule given in `evenOdd`.
	//
	// After `Clip`, the current path will be cleared.
	//
	// Calling `Clip` can only make the clip region smaller,
	// never larger, but you can call it in the `OnNewStack` closure argument,
	// so that the previous clip region is restored afterwards.
	Clip(evenOdd bool)

	// Sets the color which will be used for any subsequent drawing operation.
	//
	// `stroke` controls whether stroking or filling operations are concerned.
	SetColorRgba(color pr.RGBA, stroke bool)

	// Sets the current line width to be used by `Stroke`.
	SetLineWidth(width Fl)

	// Paint actually shows the current path on the target,
	// either stroking, filling or doing both, according to `op`.
	// After this call, the current path will be cleared.
	Paint(op PaintOp)

	// Modifies the current transformation matrix (CTM)
	// by applying `mt` as an additional transformation.
	// The new transformation of user space takes place
	// after any existing transformation.
	Transform(mt matrix.Transform)

	// Adds a rectangle of the given size to the current path,
	// at position ``(x, y)`` in user-space coordinates.
	// (X,Y) coordinates are the top left corner of the rectangle.
	Rectangle(x Fl, y Fl, width Fl, height Fl)

	// DrawText draws the given text using the current fill color.
	DrawText(TextDrawing)
}

// FillRect is a convenience function filling [rect] with [color].
func FillRect(canvas Canvas, rect utils.Rect, color pr.RGBA) {
	if rect.IsEmpty() || color.IsNone() {
		return
	}
	canvas.SetColorRgba(color, false)
	canvas.Rectangle(rect.X, rect.Y, rect.Width, rect.Height)
	canvas.Paint(FillNonZero)
}

// ClipRect restricts the drawing area to [rect].
func ClipRect(canvas Canvas, rect utils.Rect) {
	canvas.Rectangle(rect.X, rect.Y, rect.Width, rect.Height)
	canvas.Clip(false)
}
