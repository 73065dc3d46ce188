package utils

import "fmt"

// Point is a location in physical coordinates.
type Point struct {
	X, Y Fl
}

func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// Rect is an axis aligned rectangle. A rectangle with
// a non positive width or height is empty.
type Rect struct {
	X, Y, Width, Height Fl
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

func (r Rect) MaxX() Fl { return r.X + r.Width }
func (r Rect) MaxY() Fl { return r.Y + r.Height }

func (r Rect) Location() Point { return Point{r.X, r.Y} }

func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains returns true if other lies inside r (edges included).
func (r Rect) Contains(other Rect) bool {
	return r.X <= other.X && r.MaxX() >= other.MaxX() &&
		r.Y <= other.Y && r.MaxY() >= other.MaxY()
}

// ContainsPoint returns true if p is inside r, with
// the right and bottom edges excluded.
func (r Rect) ContainsPoint(p Point) bool {
	return r.X <= p.X && p.X < r.MaxX() && r.Y <= p.Y && p.Y < r.MaxY()
}

// Intersects returns true if the two rectangles
// share a non empty area.
func (r Rect) Intersects(other Rect) bool {
	return !r.IsEmpty() && !other.IsEmpty() &&
		r.X < other.MaxX() && other.X < r.MaxX() &&
		r.Y < other.MaxY() && other.Y < r.MaxY()
}

// Intersect returns the common area of the two rectangles,
// or an empty rectangle.
func (r Rect) Intersect(other Rect) Rect {
	left, top := MaxF(r.X, other.X), MaxF(r.Y, other.Y)
	right, bottom := MinF(r.MaxX(), other.MaxX()), MinF(r.MaxY(), other.MaxY())
	if left >= right || top >= bottom {
		return Rect{}
	}
	return Rect{left, top, right - left, bottom - top}
}

// Unite returns the smallest rectangle containing r and other.
// Empty rectangles are ignored.
func (r Rect) Unite(other Rect) Rect {
	if other.IsEmpty() {
		return r
	}
	if r.IsEmpty() {
		return other
	}
	left, top := MinF(r.X, other.X), MinF(r.Y, other.Y)
	right, bottom := MaxF(r.MaxX(), other.MaxX()), MaxF(r.MaxY(), other.MaxY())
	return Rect{left, top, right - left, bottom - top}
}

func (r Rect) Moved(dx, dy Fl) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Expanded grows each side by the given (possibly negative) amounts.
func (r Rect) Expanded(top, right, bottom, left Fl) Rect {
	return Rect{r.X - left, r.Y - top, r.Width + left + right, r.Height + top + bottom}
}

// Transposed swaps the horizontal and vertical axis.
func (r Rect) Transposed() Rect {
	return Rect{r.Y, r.X, r.Height, r.Width}
}

// Enclosing returns the smallest rectangle with integer
// coordinates containing r.
func (r Rect) Enclosing() Rect {
	left, top := Floor(r.X), Floor(r.Y)
	return Rect{left, top, Ceil(r.MaxX()) - left, Ceil(r.MaxY()) - top}
}

// PixelSnapped rounds the edges of r to the nearest integer.
func (r Rect) PixelSnapped() Rect {
	left, top := RoundToInt(r.X), RoundToInt(r.Y)
	return Rect{left, top, RoundToInt(r.MaxX()) - left, RoundToInt(r.MaxY()) - top}
}
