package backend

import (
	"fmt"
	"strings"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/matrix"
)

var _ Canvas = (*Recorder)(nil)

// Recorder is a [Canvas] which stores a textual description of
// the operations, and keeps track of the current transformation.
// It is used to inspect the output of painting.
type Recorder struct {
	Ops []string

	transform matrix.Transform
	stack     []matrix.Transform
}

func NewRecorder() *Recorder { return &Recorder{transform: matrix.Identity()} }

func (r *Recorder) record(format string, args ...interface{}) {
	r.Ops = append(r.Ops, fmt.Sprintf(format, args...))
}

func (r *Recorder) OnNewStack(f func()) {
	r.stack = append(r.stack, r.transform)
	r.record("save")
	f()
	r.transform = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.record("restore")
}

func (r *Recorder) Clip(evenOdd bool) { r.record("clip") }

func (r *Recorder) SetColorRgba(color pr.RGBA, stroke bool) {
	if stroke {
		r.record("stroke-color %g %g %g %g", color.R, color.G, color.B, color.A)
	} else {
		r.record("fill-color %g %g %g %g", color.R, color.G, color.B, color.A)
	}
}

func (r *Recorder) SetLineWidth(width Fl) { r.record("line-width %g", width) }

func (r *Recorder) Paint(op PaintOp) {
	switch {
	case op&Stroke != 0:
		r.record("stroke")
	default:
		r.record("fill")
	}
}

func (r *Recorder) Transform(mt matrix.Transform) {
	r.transform.RightMultBy(mt)
	r.record("transform %g %g %g %g %g %g", mt.A, mt.B, mt.C, mt.D, mt.E, mt.F)
}

// Rectangle records the rectangle in device space.
func (r *Recorder) Rectangle(x, y, width, height Fl) {
	x0, y0 := r.transform.Apply(x, y)
	x1, y1 := r.transform.Apply(x+width, y+height)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	r.record("rect %g %g %g %g", x0, y0, x1-x0, y1-y0)
}

// DrawText records the text origin in device space.
func (r *Recorder) DrawText(td TextDrawing) {
	x, y := r.transform.Apply(td.X, td.Y)
	r.record("text %q %g %g", td.Text, x, y)
}

// Filter returns the recorded operations starting with [prefix].
func (r *Recorder) Filter(prefix string) []string {
	var out []string
	for _, op := range r.Ops {
		if strings.HasPrefix(op, prefix) {
			out = append(out, op)
		}
	}
	return out
}
