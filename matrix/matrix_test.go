package matrix

import (
	"math"
	"testing"

	"github.com/benoitkugler/linebox/utils"
)

func almost(a, b fl) bool { return math.Abs(float64(a-b)) < 1e-4 }

func TestQuarterTurn(t *testing.T) {
	box := utils.Rect{X: 10, Y: 20, Width: 15, Height: 40}
	m := QuarterTurn(box, true)
	x, y := m.Apply(box.X, box.Y)
	if !almost(x, 50) || !almost(y, 60) {
		t.Fatalf("unexpected %g %g", x, y)
	}
	back := QuarterTurn(box, false)
	p := Mul(back, m)
	if !almost(p.A, 1) || !almost(p.D, 1) || !almost(p.E, 0) || !almost(p.F, 0) {
		t.Fatalf("expected identity, got %v", p)
	}
}

func TestInvert(t *testing.T) {
	m := New(2, 1, -1, 3, 5, 7)
	inv := m
	if err := inv.Invert(); err != nil {
		t.Fatal(err)
	}
	p := Mul(m, inv)
	if !almost(p.A, 1) || !almost(p.B, 0) || !almost(p.C, 0) || !almost(p.D, 1) || !almost(p.E, 0) || !almost(p.F, 0) {
		t.Fatalf("expected identity, got %v", p)
	}
	singular := New(1, 2, 2, 4, 0, 0)
	if err := singular.Invert(); err == nil {
		t.Fatal("expected error for a singular matrix")
	}
}

func TestDecompose(t *testing.T) {
	for _, m := range []Transform{
		Translation(3, 4),
		Rotation(math.Pi / 2),
		New(2, 0, 1, 3, 5, 6),
		Mul(Rotation(0.3), New(1.5, 0, 0.4, 0.5, 0, 0)),
	} {
		d := m.Decompose()
		r := Translation(d.TX, d.TY)
		r.RightMultBy(Rotation(d.Angle))
		r.RightMultBy(New(1, 0, d.Shear, 1, 0, 0))
		r.RightMultBy(New(d.ScaleX, 0, 0, d.ScaleY, 0, 0))
		if !almost(r.A, m.A) || !almost(r.B, m.B) || !almost(r.C, m.C) || !almost(r.D, m.D) || !almost(r.E, m.E) || !almost(r.F, m.F) {
			t.Fatalf("decomposition of %v rebuilds %v", m, r)
		}
	}
}
