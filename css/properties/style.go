// Package properties defines the computed style of the content
// laid out in lines: the subset of CSS properties consumed by line layout.
//
// Values are computed: lengths are resolved to pixels, except the
// ones whose percentages depend on the line (line-height, vertical-align
// and text-indent).
package properties

import (
	"fmt"

	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

type Fl = utils.Fl

type Unit uint8

const (
	Scalar Unit = iota // a number, multiplying the font size
	Px
	Perc
	Em
)

func (u Unit) String() string {
	switch u {
	case Scalar:
		return ""
	case Px:
		return "px"
	case Perc:
		return "%"
	case Em:
		return "em"
	default:
		return fmt.Sprintf("<unit %d>", u)
	}
}

type Dimension struct {
	Value Fl
	Unit  Unit
}

func (d Dimension) String() string { return fmt.Sprintf("%g%s", d.Value, d.Unit) }

func (d Dimension) IsNegative() bool { return d.Value < 0 }

// Resolve returns the length in pixels, with percentages
// refering to [reference].
func (d Dimension) Resolve(reference, fontSize Fl) Fl {
	switch d.Unit {
	case Perc:
		return d.Value * reference / 100
	case Em, Scalar:
		return d.Value * fontSize
	default:
		return d.Value
	}
}

// NormalLineHeight is the computed value of 'line-height: normal'.
var NormalLineHeight = Dimension{Value: -100, Unit: Perc}

type RGBA struct {
	R, G, B, A Fl
}

func (c RGBA) IsNone() bool { return c.A == 0 }

var (
	Black       = RGBA{0, 0, 0, 1}
	Transparent = RGBA{}
)

type VerticalAlignKeyword uint8

const (
	VaBaseline VerticalAlignKeyword = iota
	VaMiddle
	VaSub
	VaSuper
	VaTextTop
	VaTextBottom
	VaTop
	VaBottom
	VaBaselineMiddle // used by vertical text
	VaLength
)

type VerticalAlign struct {
	Keyword VerticalAlignKeyword
	Length  Dimension // for VaLength, pixels or percentage of the line-height
}

type Direction uint8

const (
	LTR Direction = iota
	RTL
)

type WritingMode uint8

const (
	HorizontalTB WritingMode = iota
	VerticalRL
	VerticalLR
	HorizontalBT
)

func (wm WritingMode) IsHorizontal() bool { return wm == HorizontalTB || wm == HorizontalBT }

// IsFlippedBlocks is true when the block direction goes
// toward decreasing physical coordinates.
func (wm WritingMode) IsFlippedBlocks() bool { return wm == VerticalRL || wm == HorizontalBT }

// IsFlippedLines is true when the "over" side of lines
// is not the block start side.
func (wm WritingMode) IsFlippedLines() bool { return wm == VerticalLR || wm == HorizontalBT }

type TextOrientation uint8

const (
	TextOrientationMixed TextOrientation = iota
	TextOrientationUpright
	TextOrientationSideways
)

type TextAlign uint8

const (
	TaStart TextAlign = iota
	TaEnd
	TaLeft
	TaRight
	TaCenter
	TaJustify
)

// LineBoxContain is a set of flags selecting what
// contributes to the height of lines.
type LineBoxContain uint8

const (
	ContainBlock LineBoxContain = 1 << iota
	ContainInline
	ContainFont
	ContainGlyphs
	ContainReplaced
	ContainInlineBox
)

const InitialLineBoxContain = ContainBlock | ContainInline | ContainReplaced

type LineSnap uint8

const (
	LineSnapNone LineSnap = iota
	LineSnapBaseline
	LineSnapContain
)

type BoxDecorationBreak uint8

const (
	DecorationBreakSlice BoxDecorationBreak = iota
	DecorationBreakClone
)

type TextEmphasisPosition uint8

const (
	EmphasisOver TextEmphasisPosition = iota
	EmphasisUnder
)

type Visibility uint8

const (
	Visible Visibility = iota
	Hidden
	Collapse
)

type RubyPosition uint8

const (
	RubyBefore RubyPosition = iota
	RubyAfter
)

type RTLOrdering uint8

const (
	LogicalOrder RTLOrdering = iota
	VisualOrder
)

type Position uint8

const (
	Static Position = iota
	Relative
	Absolute
	Fixed
	Sticky
)

type ListStylePosition uint8

const (
	Outside ListStylePosition = iota
	Inside
)

type TextOverflow uint8

const (
	TextOverflowClip TextOverflow = iota
	TextOverflowEllipsis
)

// Shadow is a box-shadow or text-shadow layer.
type Shadow struct {
	X, Y, Blur, Spread Fl
	Inset              bool
	Color              RGBA
}

// paintingExtent is the distance covered by the blur
const blurExtentMultiplier = 1.4

func (s Shadow) PaintingExtent() Fl { return utils.Ceil(s.Blur * blurExtentMultiplier) }

// Edges stores the physical values of a four sided property.
type Edges struct {
	Top, Right, Bottom, Left Fl
}

// LogicalLeft returns the side where lines start in the
// horizontal direction, top in vertical modes.
func (e Edges) LogicalLeft(wm WritingMode) Fl {
	if wm.IsHorizontal() {
		return e.Left
	}
	return e.Top
}

func (e Edges) LogicalRight(wm WritingMode) Fl {
	if wm.IsHorizontal() {
		return e.Right
	}
	return e.Bottom
}

// Before returns the side where the block flow starts.
func (e Edges) Before(wm WritingMode) Fl {
	switch wm {
	case HorizontalBT:
		return e.Bottom
	case VerticalRL:
		return e.Right
	case VerticalLR:
		return e.Left
	default:
		return e.Top
	}
}

func (e Edges) After(wm WritingMode) Fl {
	switch wm {
	case HorizontalBT:
		return e.Top
	case VerticalRL:
		return e.Left
	case VerticalLR:
		return e.Right
	default:
		return e.Bottom
	}
}

func (e Edges) IsZero() bool { return e == Edges{} }

// Style is the computed style of a content object.
type Style struct {
	Font *text.Font // resolved font, used for metrics and measures

	Color, BackgroundColor     RGBA
	SelectionBackgroundColor   RGBA
	SelectionForegroundColor   RGBA
	BorderColor                RGBA
	OutlineColor               RGBA
	Margin, Padding, Border    Edges // Border stores the widths
	BorderImageOutsets         Edges
	OutlineWidth               Fl
	BoxShadow, TextShadow      []Shadow
	LineHeight                 Dimension
	VerticalAlign              VerticalAlign
	TextIndent                 Dimension
	LetterSpacing, WordSpacing Fl
	TextStrokeWidth            Fl
	TextEmphasisMark           string // empty for none
	TextEmphasisPosition       TextEmphasisPosition
	TextCombine                bool
	Direction                  Direction
	WritingMode                WritingMode
	TextOrientation            TextOrientation
	TextAlign                  TextAlign
	TextOverflow               TextOverflow
	LineBoxContain             LineBoxContain
	LineSnap                   LineSnap
	LineGrid                   string // empty for none
	BoxDecorationBreak         BoxDecorationBreak
	RubyPosition               RubyPosition
	RTLOrdering                RTLOrdering
	Visibility                 Visibility
	Position                   Position
	ListStylePosition          ListStylePosition
}

// NewStyle returns the initial style, using [font].
func NewStyle(font *text.Font) *Style {
	return &Style{
		Font:                     font,
		Color:                    Black,
		OutlineColor:             Black,
		BorderColor:              Black,
		SelectionBackgroundColor: RGBA{0.7, 0.84, 1, 1},
		LineHeight:               NormalLineHeight,
		LineBoxContain:           InitialLineBoxContain,
	}
}

// Copy returns a shallow copy, suitable to derive a child style.
func (s *Style) Copy() *Style {
	out := *s
	return &out
}

// Inherit returns a new style with the inherited properties
// of [s] and the initial value for the others.
func (s *Style) Inherit() *Style {
	out := NewStyle(s.Font)
	out.Color = s.Color
	out.SelectionBackgroundColor = s.SelectionBackgroundColor
	out.SelectionForegroundColor = s.SelectionForegroundColor
	out.LineHeight = s.LineHeight
	out.TextIndent = s.TextIndent
	out.LetterSpacing = s.LetterSpacing
	out.WordSpacing = s.WordSpacing
	out.TextStrokeWidth = s.TextStrokeWidth
	out.TextEmphasisMark = s.TextEmphasisMark
	out.TextEmphasisPosition = s.TextEmphasisPosition
	out.TextShadow = s.TextShadow
	out.Direction = s.Direction
	out.WritingMode = s.WritingMode
	out.TextOrientation = s.TextOrientation
	out.TextAlign = s.TextAlign
	out.LineBoxContain = s.LineBoxContain
	out.LineSnap = s.LineSnap
	out.LineGrid = s.LineGrid
	out.RubyPosition = s.RubyPosition
	out.RTLOrdering = s.RTLOrdering
	out.Visibility = s.Visibility
	out.ListStylePosition = s.ListStylePosition
	return out
}

func (s *Style) FontMetrics() text.FontMetrics { return s.Font.Metrics() }

func (s *Style) IsLeftToRightDirection() bool { return s.Direction == LTR }

func (s *Style) IsHorizontalWritingMode() bool { return s.WritingMode.IsHorizontal() }

func (s *Style) IsFlippedBlocksWritingMode() bool { return s.WritingMode.IsFlippedBlocks() }

func (s *Style) IsFlippedLinesWritingMode() bool { return s.WritingMode.IsFlippedLines() }

func (s *Style) IsOutOfFlowPositioned() bool { return s.Position == Absolute || s.Position == Fixed }

// ComputedLineHeight resolves the line-height property.
func (s *Style) ComputedLineHeight() Fl {
	lh := s.LineHeight
	if lh.IsNegative() {
		return s.FontMetrics().LineSpacing()
	}
	if lh.Unit == Perc {
		return utils.Floor(lh.Value * Fl(s.Font.PixelSize()) / 100)
	}
	return lh.Resolve(0, Fl(s.Font.PixelSize()))
}

// BoxShadowExtent returns how much the outer box shadows
// overflow each side of the border box.
func (s *Style) BoxShadowExtent() Edges {
	var out Edges
	for _, sh := range s.BoxShadow {
		if sh.Inset {
			continue
		}
		extentAndSpread := sh.PaintingExtent() + sh.Spread
		out.Top = utils.MaxF(out.Top, -sh.Y+extentAndSpread)
		out.Right = utils.MaxF(out.Right, sh.X+extentAndSpread)
		out.Bottom = utils.MaxF(out.Bottom, sh.Y+extentAndSpread)
		out.Left = utils.MaxF(out.Left, -sh.X+extentAndSpread)
	}
	return out
}

// TextShadowExtent returns how much the text shadows
// overflow each side of the text box. Text shadows have no spread.
func (s *Style) TextShadowExtent() Edges {
	var out Edges
	for _, sh := range s.TextShadow {
		extent := sh.PaintingExtent()
		out.Top = utils.MaxF(out.Top, -sh.Y+extent)
		out.Right = utils.MaxF(out.Right, sh.X+extent)
		out.Bottom = utils.MaxF(out.Bottom, sh.Y+extent)
		out.Left = utils.MaxF(out.Left, -sh.X+extent)
	}
	return out
}

// HasBorderOrPadding returns true if one of the
// inline direction sides has a border or padding.
func (s *Style) HasInlineBorderOrPadding() bool {
	wm := s.WritingMode
	return s.Border.LogicalLeft(wm) != 0 || s.Border.LogicalRight(wm) != 0 ||
		s.Padding.LogicalLeft(wm) != 0 || s.Padding.LogicalRight(wm) != 0
}

func (s *Style) HasBorderOrPadding() bool { return !s.Border.IsZero() || !s.Padding.IsZero() }

// HasBoxDecorations returns true if the box paints something
// on its own: background, border, shadow or outline.
func (s *Style) HasBoxDecorations() bool {
	return !s.BackgroundColor.IsNone() || !s.Border.IsZero() || len(s.BoxShadow) != 0 || s.OutlineWidth > 0
}
