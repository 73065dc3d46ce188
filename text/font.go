package text

import (
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/linebox/utils"
)

// emphasis marks are drawn with a font half the size of the text
const emphasisMarkSizeMultiplier = 0.5

// Font is a face at a given size, with its metrics.
type Font struct {
	face    font.Face
	metrics FontMetrics
	size    Fl
}

func fixedToFl(v fixed.Int26_6) Fl { return Fl(v) / 64 }

// NewFont wraps [face], used at [size] pixels.
func NewFont(face font.Face, size Fl) *Font {
	m := face.Metrics()
	ascent, descent := fixedToFl(m.Ascent), fixedToFl(m.Descent)
	lineGap := utils.MaxF(0, fixedToFl(m.Height)-ascent-descent)
	xHeight := fixedToFl(m.XHeight)
	if xHeight <= 0 {
		if bounds, _, ok := face.GlyphBounds('x'); ok {
			xHeight = -fixedToFl(bounds.Min.Y)
		}
	}
	if xHeight <= 0 {
		xHeight = ascent / 2
	}
	return &Font{face: face, metrics: NewFontMetrics(ascent, descent, lineGap, xHeight), size: size}
}

func (f *Font) Face() font.Face { return f.face }

func (f *Font) Metrics() FontMetrics { return f.metrics }

// PixelSize returns the font size rounded to whole pixels.
func (f *Font) PixelSize() int { return int(f.size + 0.5) }

// Size returns the font size, in pixels.
func (f *Font) Size() Fl { return f.size }

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\u00a0' }

// Width returns the advance of [s], with [letterSpacing] added after
// each character and [wordSpacing] added to each space which is not the first
// character.
func (f *Font) Width(s string, letterSpacing, wordSpacing Fl) Fl {
	w := fixedToFl(font.MeasureString(f.face, s))
	i := 0
	for _, r := range s {
		w += letterSpacing
		if wordSpacing != 0 && i > 0 && isSpace(r) {
			w += wordSpacing
		}
		i++
	}
	return w
}

// OffsetForPosition returns the number of characters of [s]
// entirely visible before [x], measured from the start edge of the run:
// from the left for left to right text, from the right otherwise.
func (f *Font) OffsetForPosition(s string, x Fl, rtl bool, letterSpacing, wordSpacing Fl) int {
	if rtl {
		x = f.Width(s, letterSpacing, wordSpacing) - x
	}
	var (
		advance Fl
		prev    rune = -1
		i       int
	)
	for _, r := range s {
		if prev >= 0 {
			advance += fixedToFl(f.face.Kern(prev, r))
		}
		a, _ := f.face.GlyphAdvance(r)
		advance += fixedToFl(a) + letterSpacing
		if wordSpacing != 0 && i > 0 && isSpace(r) {
			advance += wordSpacing
		}
		if advance > x {
			return i
		}
		prev = r
		i++
	}
	return i
}

// Prefix returns the first [n] characters of [s].
func Prefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// RuneCount is a shortcut for utf8.RuneCountInString
func RuneCount(s string) int { return utf8.RuneCountInString(s) }

// GlyphOverflow returns the ink extent of [s] outside
// of its advance box. When [computeBounds] is true, Top and Bottom
// are the ink extents above and below the baseline.
func (f *Font) GlyphOverflow(s string, computeBounds bool) GlyphOverflow {
	bounds, advance := font.BoundString(f.face, s)
	out := GlyphOverflow{ComputeBounds: computeBounds}
	out.Top = utils.Ceil(-fixedToFl(bounds.Min.Y))
	out.Bottom = utils.Ceil(fixedToFl(bounds.Max.Y))
	if !computeBounds {
		out.Top = utils.MaxF(0, out.Top-f.metrics.Ascent(AlphabeticBaseline))
		out.Bottom = utils.MaxF(0, out.Bottom-f.metrics.Descent(AlphabeticBaseline))
	}
	out.Left = utils.MaxF(0, utils.Ceil(-fixedToFl(bounds.Min.X)))
	out.Right = utils.MaxF(0, utils.Ceil(fixedToFl(bounds.Max.X-advance)))
	return out
}

// EmphasisMarkHeight returns the height taken by emphasis marks
// drawn over or under the text, 0 for an empty mark.
func (f *Font) EmphasisMarkHeight(mark string) Fl {
	if mark == "" {
		return 0
	}
	m := f.metrics
	return utils.RoundToInt(m.ascent*emphasisMarkSizeMultiplier) + utils.RoundToInt(m.descent*emphasisMarkSizeMultiplier)
}
