package text

import (
	"golang.org/x/text/unicode/bidi"
)

// BidiRun is a maximal range of characters sharing
// the same embedding level. Start and End are rune indices,
// End is exclusive.
type BidiRun struct {
	Start, End int
	Level      uint8
}

// BidiRuns resolves the embedding levels of [s], for a paragraph
// whose base direction is right to left if [rtl] is true.
// The returned runs are in logical order.
//
// The implicit rules of the Unicode bidi algorithm are applied (W1 to W7,
// N1, N2, I1 and I2, and L1 at the end of the paragraph); explicit
// embedding and isolate controls are treated as neutral characters.
func BidiRuns(s string, rtl bool) []BidiRun {
	classes := bidiClasses(s)
	if len(classes) == 0 {
		return nil
	}
	base := uint8(0)
	if rtl {
		base = 1
	}
	levels := resolveLevels(classes, base)

	var out []BidiRun
	for i, l := range levels {
		if len(out) == 0 || out[len(out)-1].Level != l {
			out = append(out, BidiRun{Start: i, End: i + 1, Level: l})
		} else {
			out[len(out)-1].End = i + 1
		}
	}
	return out
}

func bidiClasses(s string) []bidi.Class {
	var out []bidi.Class
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		cl := p.Class()
		switch cl {
		case bidi.LRO, bidi.RLO, bidi.LRE, bidi.RLE, bidi.PDF,
			bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI, bidi.BN, bidi.Control:
			cl = bidi.ON
		}
		out = append(out, cl)
	}
	return out
}

func isNeutral(cl bidi.Class) bool {
	return cl == bidi.B || cl == bidi.S || cl == bidi.WS || cl == bidi.ON
}

// strongOf returns the direction taken by [cl] for the neutral rules,
// where numbers count as right to left.
func strongOf(cl bidi.Class) bidi.Class {
	switch cl {
	case bidi.R, bidi.EN, bidi.AN:
		return bidi.R
	}
	return cl
}

func resolveLevels(types []bidi.Class, base uint8) []uint8 {
	n := len(types)
	initial := append([]bidi.Class(nil), types...)
	sos := bidi.L
	if base%2 == 1 {
		sos = bidi.R
	}

	// W1: non spacing marks take the type of the previous character
	for i, t := range types {
		if t == bidi.NSM {
			if i == 0 {
				types[i] = sos
			} else {
				types[i] = types[i-1]
			}
		}
	}

	// W2, W3: numbers after Arabic letters are Arabic numbers
	lastStrong := sos
	for i, t := range types {
		switch t {
		case bidi.L, bidi.R, bidi.AL:
			lastStrong = t
		case bidi.EN:
			if lastStrong == bidi.AL {
				types[i] = bidi.AN
			}
		}
	}
	for i, t := range types {
		if t == bidi.AL {
			types[i] = bidi.R
		}
	}

	// W4: single separators between numbers of the same kind
	for i := 1; i < n-1; i++ {
		prev, next := types[i-1], types[i+1]
		switch types[i] {
		case bidi.ES:
			if prev == bidi.EN && next == bidi.EN {
				types[i] = bidi.EN
			}
		case bidi.CS:
			if prev == next && (prev == bidi.EN || prev == bidi.AN) {
				types[i] = prev
			}
		}
	}

	// W5: terminators adjacent to European numbers
	for i := 0; i < n; {
		if types[i] != bidi.ET {
			i++
			continue
		}
		end := i
		for end < n && types[end] == bidi.ET {
			end++
		}
		if (i > 0 && types[i-1] == bidi.EN) || (end < n && types[end] == bidi.EN) {
			for j := i; j < end; j++ {
				types[j] = bidi.EN
			}
		}
		i = end
	}

	// W6: remaining separators and terminators are neutral
	for i, t := range types {
		if t == bidi.ES || t == bidi.ET || t == bidi.CS {
			types[i] = bidi.ON
		}
	}

	// W7: European numbers in a left to right context
	lastStrong = sos
	for i, t := range types {
		switch t {
		case bidi.L, bidi.R:
			lastStrong = t
		case bidi.EN:
			if lastStrong == bidi.L {
				types[i] = bidi.L
			}
		}
	}

	// N1, N2: neutrals take the direction of their surroundings,
	// or the embedding direction
	for i := 0; i < n; {
		if !isNeutral(types[i]) {
			i++
			continue
		}
		end := i
		for end < n && isNeutral(types[end]) {
			end++
		}
		before, after := sos, sos // sos and eos are equal in a single paragraph
		if i > 0 {
			before = strongOf(types[i-1])
		}
		if end < n {
			after = strongOf(types[end])
		}
		resolved := sos
		if before == after {
			resolved = before
		}
		for j := i; j < end; j++ {
			types[j] = resolved
		}
		i = end
	}

	// I1, I2
	levels := make([]uint8, n)
	for i, t := range types {
		level := base
		if base%2 == 0 {
			switch t {
			case bidi.R:
				level++
			case bidi.AN, bidi.EN:
				level += 2
			}
		} else if t == bidi.L || t == bidi.EN || t == bidi.AN {
			level++
		}
		levels[i] = level
	}

	// L1: separators, and the whitespace before them or
	// at the end of the paragraph, are reset to the paragraph level
	trailing := true
	for i := n - 1; i >= 0; i-- {
		switch initial[i] {
		case bidi.S, bidi.B:
			levels[i] = base
			trailing = true
		case bidi.WS:
			if trailing {
				levels[i] = base
			}
		default:
			trailing = false
		}
	}

	return levels
}
