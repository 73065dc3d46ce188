// Package matrix provides the 2D affine transformations
// applied by line painting.
package matrix

import (
	"errors"
	"math"

	"github.com/benoitkugler/linebox/utils"
)

type fl = utils.Fl

// Transform encode a (2D) linear transformation
//
// The encoded transformation is given by :
//
//	x_new = a * x + c * y + e
//	y_new = b * x + d * y + f
type Transform struct {
	A, B, C, D, E, F fl
}

func New(a, b, c, d, e, f fl) Transform {
	return Transform{A: a, B: b, C: c, D: d, E: e, F: f}
}

// Identity returns a new matrix initialized to the identity.
func Identity() Transform {
	return New(1, 0, 0, 1, 0, 0)
}

// Translation returns the translation by (tx, ty).
func Translation(tx, ty fl) Transform {
	return Transform{1, 0, 0, 1, tx, ty}
}

// Rotation returns a rotation.
//
// Positive angles rotate from the positive X axis
// toward the positive Y axis.
func Rotation(radians fl) Transform {
	cos, sin := fl(math.Cos(float64(radians))), fl(math.Sin(float64(radians)))
	return Transform{cos, sin, -sin, cos, 0, 0}
}

// QuarterTurn returns the transform painting horizontal text
// inside the vertical box `box`, turning it clockwise (or counter clockwise)
// around the box.
func QuarterTurn(box utils.Rect, clockwise bool) Transform {
	if clockwise {
		return Transform{0, 1, -1, 0, box.X + box.MaxY(), box.MaxY() - box.X}
	}
	return Transform{0, -1, 1, 0, box.X - box.MaxY(), box.X + box.MaxY()}
}

// Determinant returns the determinant of the matrix, which is
// non zero if and only if the transformation is reversible.
func (t Transform) Determinant() fl {
	return t.A*t.D - t.B*t.C
}

// write t1 * t2 in out
func mult(t1, t2 Transform, out *Transform) {
	a := t1.A*t2.A + t1.C*t2.B
	b := t1.B*t2.A + t1.D*t2.B
	c := t1.A*t2.C + t1.C*t2.D
	d := t1.B*t2.C + t1.D*t2.D
	e := t1.A*t2.E + t1.C*t2.F + t1.E
	f := t1.B*t2.E + t1.D*t2.F + t1.F
	*out = Transform{a, b, c, d, e, f}
}

// Mul returns the transform T * U,
// which apply U then T.
func Mul(T, U Transform) Transform {
	out := Transform{}
	mult(T, U, &out)
	return out
}

// RightMultBy update T in place with the result of T * U
func (T *Transform) RightMultBy(U Transform) { mult(*T, U, T) }

// Invert modify the matrix in place. Return an error
// if the transformation is not bijective.
func (T *Transform) Invert() error {
	det := T.Determinant()
	if det == 0 {
		return errors.New("transformation is not invertible")
	}
	a, b, c, d := T.D/det, -T.B/det, -T.C/det, T.A/det
	e := -(a*T.E + c*T.F)
	f := -(b*T.E + d*T.F)
	*T = Transform{a, b, c, d, e, f}
	return nil
}

// Apply transforms the point `(x, y)` by this matrix, that is
// compute AX + B
func (T Transform) Apply(x, y fl) (outX, outY fl) {
	outX = T.A*x + T.C*y + T.E
	outY = T.B*x + T.D*y + T.F
	return
}

// Translate applies a translation by `tx`, `ty`
// before the transformation in this matrix.
//
// This is equivalent to computing T x Translation(tx, ty)
func (T *Transform) Translate(tx, ty fl) {
	T.E += T.A*tx + T.C*ty
	T.F += T.B*tx + T.D*ty
}

// Decomposition splits an invertible transform into
// Translation * Rotation * ShearX * Scaling.
type Decomposition struct {
	TX, TY         fl
	Angle          fl // radians
	Shear          fl // x shear factor
	ScaleX, ScaleY fl
}

// Decompose returns the decomposition of T, whose
// linear part must be invertible.
func (T Transform) Decompose() Decomposition {
	sx := utils.Hypot(T.A, T.B)
	out := Decomposition{TX: T.E, TY: T.F, ScaleX: sx}
	if sx == 0 {
		return out
	}
	out.Angle = fl(math.Atan2(float64(T.B), float64(T.A)))
	out.ScaleY = T.Determinant() / sx
	if out.ScaleY != 0 {
		out.Shear = (T.A*T.C + T.B*T.D) / sx / out.ScaleY
	}
	return out
}
