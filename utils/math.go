package utils

import (
	"math"
)

type Fl = float32

func MinF(x, y Fl) Fl {
	if x < y {
		return x
	}
	return y
}

func MaxF(x, y Fl) Fl {
	if x > y {
		return x
	}
	return y
}

func Floor(x Fl) Fl {
	return Fl(math.Floor(float64(x)))
}

func Ceil(x Fl) Fl {
	return Fl(math.Ceil(float64(x)))
}

// RoundToInt rounds half away from zero, the way
// pixel snapping of line positions expects.
func RoundToInt(x Fl) Fl {
	return Fl(math.Round(float64(x)))
}

// HalfInt returns x / 2 truncated toward zero, mimicking
// integer division on whole pixel values.
func HalfInt(x Fl) Fl {
	return Fl(int(x) / 2)
}

// RoundPrec rounds f with n digits precision
func RoundPrec(f Fl, n int) Fl {
	n10 := math.Pow10(n)
	return Fl(math.Round(float64(f)*n10) / n10)
}

// Round rounds f with 6 digits precision
func Round(f Fl) Fl {
	return RoundPrec(f, 6)
}

// Hypot returns SQRT(a^2 + b^2)
func Hypot(a, b Fl) Fl {
	return Fl(math.Hypot(float64(a), float64(b)))
}
