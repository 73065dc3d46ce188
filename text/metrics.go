package text

import "github.com/benoitkugler/linebox/utils"

// Baseline is the baseline used to align the boxes of a line.
type Baseline uint8

const (
	AlphabeticBaseline Baseline = iota
	IdeographicBaseline
)

func (b Baseline) String() string {
	if b == IdeographicBaseline {
		return "ideographic"
	}
	return "alphabetic"
}

// FontMetrics stores the vertical metrics of a font.
// The accessors return values rounded to whole pixels, which
// is what the line layout works with.
type FontMetrics struct {
	ascent, descent, lineGap, xHeight Fl
}

func NewFontMetrics(ascent, descent, lineGap, xHeight Fl) FontMetrics {
	return FontMetrics{ascent: ascent, descent: descent, lineGap: lineGap, xHeight: xHeight}
}

// Ascent returns the distance from the baseline to the top of the font box.
// For the ideographic baseline the font box is centered on the baseline.
func (fm FontMetrics) Ascent(baseline Baseline) Fl {
	if baseline == AlphabeticBaseline {
		return utils.RoundToInt(fm.ascent)
	}
	h := fm.Height()
	return h - utils.HalfInt(h)
}

func (fm FontMetrics) Descent(baseline Baseline) Fl {
	if baseline == AlphabeticBaseline {
		return utils.RoundToInt(fm.descent)
	}
	return utils.HalfInt(fm.Height())
}

func (fm FontMetrics) Height() Fl {
	return fm.Ascent(AlphabeticBaseline) + fm.Descent(AlphabeticBaseline)
}

func (fm FontMetrics) LineGap() Fl { return utils.RoundToInt(fm.lineGap) }

// LineSpacing is the used value of 'line-height: normal'.
func (fm FontMetrics) LineSpacing() Fl {
	return utils.RoundToInt(fm.ascent) + utils.RoundToInt(fm.descent) + utils.RoundToInt(fm.lineGap)
}

func (fm FontMetrics) XHeight() Fl { return fm.xHeight }

// HasIdenticalAscentDescentAndLineGap compares the rounded metrics.
func (fm FontMetrics) HasIdenticalAscentDescentAndLineGap(other FontMetrics) bool {
	return fm.Ascent(AlphabeticBaseline) == other.Ascent(AlphabeticBaseline) &&
		fm.Descent(AlphabeticBaseline) == other.Descent(AlphabeticBaseline) &&
		fm.LineGap() == other.LineGap()
}

// GlyphOverflow is the extent of the glyph ink outside
// of the font box (or the ink box itself when ComputeBounds is set).
type GlyphOverflow struct {
	Left, Right, Top, Bottom Fl
	ComputeBounds            bool
}

func (g GlyphOverflow) IsZero() bool {
	return g.Left == 0 && g.Right == 0 && g.Top == 0 && g.Bottom == 0
}
