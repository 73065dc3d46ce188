// Package render defines the content objects laid out in lines:
// blocks, inlines, text, line breaks and replaced elements.
//
// Objects are produced by the caller (see [FromHTML] for a simple
// loader) with their computed style and, for replaced elements, their
// size. The line boxes built by the inline layout keep a reference
// to the object they were generated for.
package render

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/benoitkugler/linebox/backend"
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

type Fl = utils.Fl

type Kind uint8

const (
	BlockKind Kind = iota
	InlineKind
	TextKind
	LineBreakKind
	ReplacedKind   // images, widgets, inline-blocks
	ListMarkerKind // inside or outside list marker
	RubyRunKind
)

func (k Kind) String() string {
	switch k {
	case BlockKind:
		return "Block"
	case InlineKind:
		return "Inline"
	case TextKind:
		return "Text"
	case LineBreakKind:
		return "BR"
	case ReplacedKind:
		return "Replaced"
	case ListMarkerKind:
		return "ListMarker"
	case RubyRunKind:
		return "RubyRun"
	default:
		return fmt.Sprintf("<kind %d>", k)
	}
}

// LinePositionMode distinguishes the metrics of an object
// placed on the line of its parent from the ones used for its own lines.
type LinePositionMode uint8

const (
	PositionOnContainingLine LinePositionMode = iota
	PositionOfInteriorLineBoxes
)

type SelectionState uint8

const (
	SelectionNone SelectionState = iota
	SelectionStart
	SelectionInside
	SelectionEnd
	SelectionBoth
)

func (s SelectionState) String() string {
	switch s {
	case SelectionStart:
		return "start"
	case SelectionInside:
		return "inside"
	case SelectionEnd:
		return "end"
	case SelectionBoth:
		return "both"
	default:
		return "none"
	}
}

// Selection stores the selection state of an object.
// For text, Start and End are character offsets, used
// with the SelectionStart, SelectionEnd and SelectionBoth states.
type Selection struct {
	State      SelectionState
	Start, End int
}

// RubyPart stores the geometry of the base or the annotation
// of a ruby run, in the logical coordinates of the run.
type RubyPart struct {
	LogicalTop, LogicalHeight Fl
	// FirstLineTop and LastLineBottom are relative to LogicalTop
	FirstLineTop, LastLineBottom Fl
	HasLines                     bool
}

func (rp *RubyPart) LogicalBottom() Fl { return rp.LogicalTop + rp.LogicalHeight }

// RubyData is the layout of a ruby run, computed by the caller.
type RubyData struct {
	Base, Text *RubyPart // nil if missing
}

// Object is a node of the content tree.
type Object struct {
	Kind Kind
	Node *html.Node // source node, nil for anonymous objects

	Parent   *Object
	Children []*Object

	Style          *pr.Style
	FirstLineStyle *pr.Style // nil when the first line has no specific style

	// Text is the content of text objects, and the
	// marker of list markers.
	Text string

	// Frame is the border box of blocks and replaced objects,
	// relative to the border box of their containing block.
	Frame utils.Rect

	// IsInlineBlock is true for replaced objects
	// whose content is laid out in lines, with Baseline
	// the offset of their first baseline from the top of their border box.
	IsInlineBlock bool
	Baseline      Fl

	// VisualOverflow and LayoutOverflow are relative to the border box.
	// They are empty when the object does not overflow.
	VisualOverflow, LayoutOverflow utils.Rect

	SelfPaintingLayer bool
	Selection         Selection

	// Continuation links the parts of an inline split by a block.
	Continuation   *Object
	IsContinuation bool

	// AlwaysCreateLineBoxes forces the creation of flow boxes
	// for inlines without decorations.
	AlwaysCreateLineBoxes bool

	Ruby  *RubyData  // for ruby runs
	Block *BlockData // for blocks

	// Draw paints the content of replaced objects in the given border box.
	Draw func(canvas backend.Canvas, borderBox utils.Rect)
}

func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	tag := ""
	if o.Node != nil {
		tag = " <" + o.Node.Data + ">"
	}
	if o.Kind == TextKind {
		return fmt.Sprintf("%s%s %q", o.Kind, tag, o.Text)
	}
	return o.Kind.String() + tag
}

// AppendChild sets the parent of [child].
func (o *Object) AppendChild(child *Object) {
	if child.Parent != nil {
		panic(fmt.Sprintf("%s already has a parent", child))
	}
	child.Parent = o
	o.Children = append(o.Children, child)
}

func (o *Object) IsText() bool { return o.Kind == TextKind }

func (o *Object) IsBR() bool { return o.Kind == LineBreakKind }

func (o *Object) IsRenderInline() bool { return o.Kind == InlineKind }

func (o *Object) IsBlock() bool { return o.Kind == BlockKind }

func (o *Object) IsListMarker() bool { return o.Kind == ListMarkerKind }

func (o *Object) IsRubyRun() bool { return o.Kind == RubyRunKind }

// IsReplaced returns true for atomic inline-level objects.
func (o *Object) IsReplaced() bool {
	return o.Kind == ReplacedKind || o.Kind == ListMarkerKind || o.Kind == RubyRunKind
}

func (o *Object) IsInline() bool { return o.Kind != BlockKind }

func (o *Object) IsOutOfFlowPositioned() bool { return o.Style.IsOutOfFlowPositioned() }

func (o *Object) IsRubyBase() bool { return o.Block != nil && o.Block.IsRubyBase }

// IsInsideListMarker returns false for outside markers, which
// are placed out of the line.
func (o *Object) IsInsideListMarker() bool {
	return o.Kind == ListMarkerKind && o.Style.ListStylePosition == pr.Inside
}

// IsLink returns true for <a href> elements.
func (o *Object) IsLink() bool {
	if o.Node == nil || o.Node.DataAtom != atom.A {
		return false
	}
	for _, attr := range o.Node.Attr {
		if attr.Key == "href" {
			return true
		}
	}
	return false
}

// StyleFor returns the style to use on the first line if [firstLine] is true.
func (o *Object) StyleFor(firstLine bool) *pr.Style {
	if firstLine && o.FirstLineStyle != nil {
		return o.FirstLineStyle
	}
	return o.Style
}

func (o *Object) IsDescendantOf(ancestor *Object) bool {
	if ancestor == nil {
		return false
	}
	for curr := o; curr != nil; curr = curr.Parent {
		if curr == ancestor {
			return true
		}
	}
	return false
}

// ContainingBlock returns the block used as reference to
// position [o]: the nearest block ancestor for in-flow objects.
func (o *Object) ContainingBlock() *Object {
	switch o.Style.Position {
	case pr.Fixed:
		return o.View()
	case pr.Absolute:
		curr := o.Parent
		for curr != nil && curr.Parent != nil && curr.Style.Position == pr.Static {
			curr = curr.Parent
		}
		for curr != nil && !curr.IsBlock() {
			curr = curr.Parent
		}
		return curr
	}
	curr := o.Parent
	for curr != nil && !curr.IsBlock() {
		curr = curr.Parent
	}
	return curr
}

// View returns the root of the tree.
func (o *Object) View() *Object {
	curr := o
	for curr.Parent != nil {
		curr = curr.Parent
	}
	return curr
}

// InQuirksMode returns true if the document containing [o] is
// not rendered in strict mode.
func (o *Object) InQuirksMode() bool {
	view := o.View()
	return view.Block != nil && view.Block.Quirks
}

// NodeForHitTest returns the nearest node, walking up anonymous objects.
func (o *Object) NodeForHitTest() *html.Node {
	for curr := o; curr != nil; curr = curr.Parent {
		if curr.Node != nil {
			return curr.Node
		}
	}
	return nil
}

func (o *Object) HasOutline() bool { return o.Style.OutlineWidth > 0 }

func (o *Object) HasBoxDecorations() bool { return o.Style.HasBoxDecorations() }

func (o *Object) SelectionBackgroundColor() pr.RGBA { return o.Style.SelectionBackgroundColor }

func (o *Object) SelectionForegroundColor() pr.RGBA { return o.Style.SelectionForegroundColor }

// SelectionStartEnd returns the selected range of a text object.
func (o *Object) SelectionStartEnd() (start, end int) {
	switch o.Selection.State {
	case SelectionNone:
		return 0, 0
	case SelectionInside:
		return 0, text.RuneCount(o.Text)
	default:
		return o.Selection.Start, o.Selection.End
	}
}

// HasRenderOverflow returns true if the object has
// some content outside of its border box.
func (o *Object) HasRenderOverflow() bool {
	return !o.VisualOverflow.IsEmpty() || !o.LayoutOverflow.IsEmpty()
}

// Margin box helpers, in the writing mode of the line.

func (o *Object) MarginLogicalLeft(horizontal bool) Fl {
	if horizontal {
		return o.Style.Margin.Left
	}
	return o.Style.Margin.Top
}

func (o *Object) MarginLogicalRight(horizontal bool) Fl {
	if horizontal {
		return o.Style.Margin.Right
	}
	return o.Style.Margin.Bottom
}

// MarginOver returns the margin on the over side of a line.
func (o *Object) MarginOver(horizontal bool) Fl {
	if horizontal {
		return o.Style.Margin.Top
	}
	return o.Style.Margin.Right
}

func (o *Object) MarginUnder(horizontal bool) Fl {
	if horizontal {
		return o.Style.Margin.Bottom
	}
	return o.Style.Margin.Left
}

func (o *Object) LogicalLeft() Fl {
	if o.Style.IsHorizontalWritingMode() {
		return o.Frame.X
	}
	return o.Frame.Y
}

func (o *Object) LogicalTop() Fl {
	if o.Style.IsHorizontalWritingMode() {
		return o.Frame.Y
	}
	return o.Frame.X
}

func (o *Object) LogicalWidth() Fl {
	if o.Style.IsHorizontalWritingMode() {
		return o.Frame.Width
	}
	return o.Frame.Height
}

func (o *Object) LogicalHeight() Fl {
	if o.Style.IsHorizontalWritingMode() {
		return o.Frame.Height
	}
	return o.Frame.Width
}

// SetLogicalLocation moves the frame, using the writing mode of [o].
func (o *Object) SetLogicalLocation(logicalLeft, logicalTop Fl) {
	if o.Style.IsHorizontalWritingMode() {
		o.Frame.X, o.Frame.Y = logicalLeft, logicalTop
	} else {
		o.Frame.X, o.Frame.Y = logicalTop, logicalLeft
	}
}

// BorderAndPaddingBefore returns the sum of the border
// and padding on the block start side.
func (o *Object) BorderAndPaddingBefore() Fl {
	wm := o.Style.WritingMode
	return o.Style.Border.Before(wm) + o.Style.Padding.Before(wm)
}

func (o *Object) BorderBefore() Fl { return o.Style.Border.Before(o.Style.WritingMode) }

func (o *Object) PaddingBefore() Fl { return o.Style.Padding.Before(o.Style.WritingMode) }

// lineHeight returns the used line height of the object, for
// replaced objects on a line, the height of their margin box.
func (o *Object) LineHeight(firstLine, horizontal bool, mode LinePositionMode) Fl {
	if o.IsReplaced() && mode == PositionOnContainingLine {
		if o.Kind == ListMarkerKind {
			return o.StyleFor(firstLine).ComputedLineHeight()
		}
		if horizontal {
			return o.Style.Margin.Top + o.Frame.Height + o.Style.Margin.Bottom
		}
		return o.Style.Margin.Left + o.Frame.Width + o.Style.Margin.Right
	}
	return o.StyleFor(firstLine).ComputedLineHeight()
}

// BaselinePosition returns the distance from the top of the
// line box of the object to its baseline.
func (o *Object) BaselinePosition(baseline text.Baseline, firstLine, horizontal bool, mode LinePositionMode) Fl {
	if o.IsReplaced() && mode == PositionOnContainingLine {
		if o.Kind == ListMarkerKind {
			fm := o.StyleFor(firstLine).FontMetrics()
			return fm.Ascent(baseline) + utils.HalfInt(o.LineHeight(firstLine, horizontal, mode)-fm.Height())
		}
		if o.IsInlineBlock && o.Baseline >= 0 {
			return o.MarginOver(horizontal) + o.Baseline
		}
		h := o.LineHeight(firstLine, horizontal, mode)
		if baseline == text.AlphabeticBaseline {
			return h
		}
		return h - utils.HalfInt(h)
	}
	fm := o.StyleFor(firstLine).FontMetrics()
	return fm.Ascent(baseline) + utils.HalfInt(o.LineHeight(firstLine, horizontal, mode)-fm.Height())
}

// VisualOverflowRect returns the border box united with the visual
// overflow, relative to the border box origin.
func (o *Object) VisualOverflowRect() utils.Rect {
	return utils.Rect{Width: o.Frame.Width, Height: o.Frame.Height}.Unite(o.VisualOverflow)
}

func (o *Object) LayoutOverflowRect() utils.Rect {
	return utils.Rect{Width: o.Frame.Width, Height: o.Frame.Height}.Unite(o.LayoutOverflow)
}

// LogicalVisualOverflowRectForPropagation returns the visual overflow
// in the logical coordinates of a parent line.
func (o *Object) LogicalVisualOverflowRectForPropagation(horizontal bool) utils.Rect {
	r := o.VisualOverflowRect()
	if horizontal {
		return r
	}
	return r.Transposed()
}

func (o *Object) LogicalLayoutOverflowRectForPropagation(horizontal bool) utils.Rect {
	r := o.LayoutOverflowRect()
	if horizontal {
		return r
	}
	return r.Transposed()
}
