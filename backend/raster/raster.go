// Package raster implements backend.Canvas on top of an in-memory
// image, using the gg drawing library.
package raster

import (
	"image"

	"github.com/fogleman/gg"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/backend"
	"github.com/benoitkugler/linebox/matrix"
)

var _ backend.Canvas = (*Canvas)(nil)

// Canvas draws on an RGBA image.
type Canvas struct {
	dc *gg.Context

	fill, stroke pr.RGBA

	// gg keeps the clip mask when popping a state,
	// so the active mask is tracked here and restored by OnNewStack.
	mask *image.Alpha
}

// NewCanvas returns a canvas of the given size (in pixels),
// filled with [background].
func NewCanvas(width, height int, background pr.RGBA) *Canvas {
	dc := gg.NewContext(width, height)
	if !background.IsNone() {
		dc.SetRGBA(float64(background.R), float64(background.G), float64(background.B), float64(background.A))
		dc.Clear()
	}
	return &Canvas{dc: dc, fill: pr.Black, stroke: pr.Black}
}

// Image returns the current content of the canvas.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// SavePNG writes the content of the canvas as a PNG file.
func (c *Canvas) SavePNG(path string) error { return c.dc.SavePNG(path) }

func (c *Canvas) OnNewStack(f func()) {
	c.dc.Push()
	fill, stroke, mask := c.fill, c.stroke, c.mask
	f()
	c.fill, c.stroke = fill, stroke
	c.dc.Pop()
	if c.mask != mask {
		c.mask = mask
		if mask == nil {
			c.dc.ResetClip()
		} else {
			_ = c.dc.SetMask(mask) // same bounds as the context
		}
	}
}

func (c *Canvas) Clip(evenOdd bool) {
	c.setFillRule(evenOdd)
	clip := c.dc.AsMask()
	if c.mask != nil {
		intersectMasks(clip, c.mask)
	}
	c.mask = clip
	_ = c.dc.SetMask(clip)
	c.dc.ClearPath()
}

// intersectMasks multiplies [dst] by [other], pixel per pixel.
func intersectMasks(dst, other *image.Alpha) {
	for i, a := range dst.Pix {
		dst.Pix[i] = uint8(uint16(a) * uint16(other.Pix[i]) / 255)
	}
}

func (c *Canvas) setFillRule(evenOdd bool) {
	if evenOdd {
		c.dc.SetFillRuleEvenOdd()
	} else {
		c.dc.SetFillRuleWinding()
	}
}

func (c *Canvas) SetColorRgba(color pr.RGBA, stroke bool) {
	if stroke {
		c.stroke = color
	} else {
		c.fill = color
	}
}

func (c *Canvas) setColor(color pr.RGBA) {
	c.dc.SetRGBA(float64(color.R), float64(color.G), float64(color.B), float64(color.A))
}

func (c *Canvas) SetLineWidth(width backend.Fl) { c.dc.SetLineWidth(float64(width)) }

func (c *Canvas) Paint(op backend.PaintOp) {
	fill := op&(backend.FillEvenOdd|backend.FillNonZero) != 0
	stroke := op&backend.Stroke != 0
	if fill {
		c.setFillRule(op&backend.FillEvenOdd != 0)
		c.setColor(c.fill)
		if stroke {
			c.dc.FillPreserve()
		} else {
			c.dc.Fill()
		}
	}
	if stroke {
		c.setColor(c.stroke)
		c.dc.Stroke()
	}
	if !fill && !stroke {
		c.dc.ClearPath()
	}
}

// Transform decomposes [mt] into the elementary transformations
// supported by gg.
func (c *Canvas) Transform(mt matrix.Transform) {
	d := mt.Decompose()
	if d.TX != 0 || d.TY != 0 {
		c.dc.Translate(float64(d.TX), float64(d.TY))
	}
	if d.Angle != 0 {
		c.dc.Rotate(float64(d.Angle))
	}
	if d.Shear != 0 {
		c.dc.Shear(float64(d.Shear), 0)
	}
	if d.ScaleX != 1 || d.ScaleY != 1 {
		c.dc.Scale(float64(d.ScaleX), float64(d.ScaleY))
	}
}

func (c *Canvas) Rectangle(x, y, width, height backend.Fl) {
	c.dc.DrawRectangle(float64(x), float64(y), float64(width), float64(height))
}

func (c *Canvas) DrawText(td backend.TextDrawing) {
	if td.Font == nil || td.Text == "" {
		return
	}
	c.dc.SetFontFace(td.Font.Face())
	c.setColor(c.fill)
	if td.LetterSpacing == 0 && td.WordSpacing == 0 {
		c.dc.DrawString(td.Text, float64(td.X), float64(td.Y))
		return
	}
	// draw each character at its own position
	x := float64(td.X)
	i := 0
	for _, r := range td.Text {
		s := string(r)
		c.dc.DrawString(s, x, float64(td.Y))
		w, _ := c.dc.MeasureString(s)
		x += w + float64(td.LetterSpacing)
		if i > 0 && r == ' ' {
			x += float64(td.WordSpacing)
		}
		i++
	}
}
