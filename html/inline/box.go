// Package inline implements the boxes generated by the inline
// content of a block: one root box per line, with flow boxes for
// the inline elements and leaf boxes for text, line breaks and
// replaced objects.
//
// Boxes are stored in an [Arena] owned by a [Context], and are
// referenced by [BoxID] handles. The algorithms placing, painting
// and hit testing the boxes are methods of [Context], dispatching
// on the [Kind] of each box.
package inline

import (
	"fmt"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

type Fl = utils.Fl

// Kind is the variant of a box.
type Kind uint8

const (
	TextLeaf Kind = iota
	ReplacedLeaf
	LineBreakLeaf
	Flow     // generated by an inline element
	Root     // one per line, generated by the block
	Ellipsis // the truncation string of a line
)

func (k Kind) String() string {
	switch k {
	case TextLeaf:
		return "Text"
	case ReplacedLeaf:
		return "Replaced"
	case LineBreakLeaf:
		return "LineBreak"
	case Flow:
		return "Flow"
	case Root:
		return "Root"
	case Ellipsis:
		return "Ellipsis"
	default:
		return fmt.Sprintf("<kind %d>", k)
	}
}

// IsFlow returns true for the boxes which may have children.
func (k Kind) IsFlow() bool { return k == Flow || k == Root }

func (k Kind) IsLeaf() bool { return !k.IsFlow() }

// BoxState is the life cycle of a box.
type BoxState uint8

const (
	Unattached BoxState = iota // created, not yet added to a line
	Attached
	Extracted // removed from the list of its object, waiting to be reused
	Destroyed
)

func (s BoxState) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case Attached:
		return "attached"
	case Extracted:
		return "extracted"
	default:
		return "destroyed"
	}
}

// cachedFlag is a lazily computed boolean.
type cachedFlag struct {
	determined, value bool
}

func (f *cachedFlag) get(compute func() bool) bool {
	if !f.determined {
		f.value = compute()
		f.determined = true
	}
	return f.value
}

func (f *cachedFlag) invalidate() { f.determined = false }

// Truncation values of text boxes which are not character offsets.
const (
	NoTruncation   = -1
	FullTruncation = -2
)

// TextFields stores the range of a text box in the text of its object.
type TextFields struct {
	Start, Len int // in runes
	// Truncation is the number of characters displayed
	// before the ellipsis, or one of [NoTruncation] and [FullTruncation]
	Truncation int
	// Expansion is the space added by justification
	Expansion Fl
}

// End returns the offset of the last character of the box.
func (tf *TextFields) End() int {
	if tf.Len == 0 {
		return tf.Start
	}
	return tf.Start + tf.Len - 1
}

type overflowRects struct {
	layout, visual utils.Rect
}

type flowData struct {
	firstChild, lastChild BoxID

	hasTextChildren    bool
	hasTextDescendants bool

	descendantsHaveSameLineHeightAndBaseline bool

	includeLogicalLeftEdge, includeLogicalRightEdge bool

	overflow *overflowRects // nil when equal to the frame rect
}

// LineBreakInfo is the position where the next line starts.
type LineBreakInfo struct {
	Object *render.Object // nil at the end of the block
	Pos    int
	// Level is the bidi embedding level in effect at the break
	Level uint8
}

type rootData struct {
	lineTop, lineBottom                       Fl
	lineTopWithLeading, lineBottomWithLeading Fl

	paginationStrut    Fl
	paginatedLineWidth Fl

	lineBreak     LineBreakInfo
	endsWithBreak bool

	baselineType text.Baseline

	hasAnnotationsBefore, hasAnnotationsAfter bool

	hasEllipsisBox     bool
	wholeLineTruncated bool
}

type ellipsisData struct {
	str    string
	height Fl
	// the last child of the last line, painted after the ellipsis
	shouldPaintMarkupBox bool
	selectionState       render.SelectionState
}

// Box is one rectangle of a line.
//
// The links between boxes and the flags derived from the shape of
// the tree are maintained by the [Context] methods, and only exposed
// read-only here.
type Box struct {
	id     BoxID
	Kind   Kind
	Object *render.Object // the block for root and ellipsis boxes

	parent, prevOnLine, nextOnLine BoxID

	// links with the boxes generated by the same object
	// on the other lines (text and flow boxes only)
	prevLineBox, nextLineBox BoxID

	// X and Y are the physical coordinates of the top left corner,
	// relative to the block.
	X, Y         Fl
	LogicalWidth Fl
	BidiLevel    uint8

	// IsText is set for text and line break boxes
	// which contribute their font to the line.
	IsText bool

	isHorizontal          bool
	firstLine             bool
	extracted             bool
	constructed           bool
	dirty                 bool
	knownToHaveNoOverflow bool

	nextOnLineExists, prevOnLineExists cachedFlag

	Text *TextFields // for text and line break leaves

	flow     *flowData     // for flow and root boxes
	root     *rootData     // for root boxes
	ellipsis *ellipsisData // for ellipsis boxes
}

func (b *Box) ID() BoxID { return b.id }

func (b *Box) Parent() BoxID { return b.parent }

func (b *Box) PrevOnLine() BoxID { return b.prevOnLine }

func (b *Box) NextOnLine() BoxID { return b.nextOnLine }

// FirstChild returns [NoBox] for leaves.
func (b *Box) FirstChild() BoxID {
	if b.flow == nil {
		return NoBox
	}
	return b.flow.firstChild
}

func (b *Box) LastChild() BoxID {
	if b.flow == nil {
		return NoBox
	}
	return b.flow.lastChild
}

func (b *Box) IsHorizontal() bool { return b.isHorizontal }

func (b *Box) IsFirstLineStyle() bool { return b.firstLine }

// SetFirstLineStyle must be called on root boxes before adding
// children, which inherit the flag.
func (b *Box) SetFirstLineStyle(firstLine bool) { b.firstLine = firstLine }

func (b *Box) Extracted() bool { return b.extracted }

func (b *Box) IsConstructed() bool { return b.constructed }

func (b *Box) SetConstructed() { b.constructed = true }

func (b *Box) IsDirty() bool { return b.dirty }

func (b *Box) KnownToHaveNoOverflow() bool { return b.knownToHaveNoOverflow }

func (b *Box) IsLeftToRightDirection() bool { return b.BidiLevel%2 == 0 }

// style returns the style of the object of the box, taking the
// first line into account.
func (b *Box) style() *pr.Style { return b.Object.StyleFor(b.firstLine) }

func (b *Box) LogicalLeft() Fl {
	if b.isHorizontal {
		return b.X
	}
	return b.Y
}

func (b *Box) SetLogicalLeft(left Fl) {
	if b.isHorizontal {
		b.X = left
	} else {
		b.Y = left
	}
}

func (b *Box) LogicalRight() Fl { return b.LogicalLeft() + b.LogicalWidth }

func (b *Box) LogicalTop() Fl {
	if b.isHorizontal {
		return b.Y
	}
	return b.X
}

func (b *Box) SetLogicalTop(top Fl) {
	if b.isHorizontal {
		b.Y = top
	} else {
		b.X = top
	}
}

func (b *Box) PixelSnappedLogicalLeft() Fl { return utils.RoundToInt(b.LogicalLeft()) }

func (b *Box) PixelSnappedLogicalRight() Fl { return utils.Ceil(b.LogicalRight()) }

func (b *Box) PixelSnappedLogicalTop() Fl { return utils.RoundToInt(b.LogicalTop()) }

// flow boxes fields

func (b *Box) HasTextChildren() bool { return b.flow != nil && b.flow.hasTextChildren }

func (b *Box) HasTextDescendants() bool { return b.flow != nil && b.flow.hasTextDescendants }

// SetHasTextChildren marks a flow box as holding text, which is used
// for detached roots measuring the strut of a block.
func (b *Box) SetHasTextChildren() {
	b.flow.hasTextChildren = true
	b.flow.hasTextDescendants = true
}

func (b *Box) DescendantsHaveSameLineHeightAndBaseline() bool {
	return b.flow != nil && b.flow.descendantsHaveSameLineHeightAndBaseline
}

// IncludeLogicalLeftEdge returns true if the border, padding and margin
// of the start side apply to this fragment of the inline.
func (b *Box) IncludeLogicalLeftEdge() bool { return b.flow != nil && b.flow.includeLogicalLeftEdge }

func (b *Box) IncludeLogicalRightEdge() bool { return b.flow != nil && b.flow.includeLogicalRightEdge }

// SetEdges overrides the edges computed by DetermineSpacingForFlowBoxes.
func (b *Box) SetEdges(includeLeft, includeRight bool) {
	b.flow.includeLogicalLeftEdge = includeLeft
	b.flow.includeLogicalRightEdge = includeRight
}

// root boxes fields

func (b *Box) rootData() *rootData {
	if b.root == nil {
		panic(fmt.Sprintf("inline: %s box %s is not a root box", b.Kind, b.id))
	}
	return b.root
}

func (b *Box) LineTop() Fl { return b.rootData().lineTop }

func (b *Box) LineBottom() Fl { return b.rootData().lineBottom }

func (b *Box) LineTopWithLeading() Fl { return b.rootData().lineTopWithLeading }

func (b *Box) LineBottomWithLeading() Fl { return b.rootData().lineBottomWithLeading }

// SetLineTopBottomPositions sets the extent of the line,
// without and with leading.
func (b *Box) SetLineTopBottomPositions(top, bottom, topWithLeading, bottomWithLeading Fl) {
	rd := b.rootData()
	rd.lineTop, rd.lineBottom = top, bottom
	rd.lineTopWithLeading, rd.lineBottomWithLeading = topWithLeading, bottomWithLeading
}

func (b *Box) BaselineType() text.Baseline { return b.rootData().baselineType }

func (b *Box) HasAnnotationsBefore() bool { return b.rootData().hasAnnotationsBefore }

func (b *Box) HasAnnotationsAfter() bool { return b.rootData().hasAnnotationsAfter }

func (b *Box) HasEllipsisBox() bool { return b.root != nil && b.root.hasEllipsisBox }

func (b *Box) PaginationStrut() Fl { return b.rootData().paginationStrut }

func (b *Box) SetPaginationStrut(strut Fl) { b.rootData().paginationStrut = strut }

func (b *Box) PaginatedLineWidth() Fl { return b.rootData().paginatedLineWidth }

func (b *Box) LineBreakInfo() LineBreakInfo { return b.rootData().lineBreak }

func (b *Box) SetLineBreakInfo(info LineBreakInfo) { b.rootData().lineBreak = info }

func (b *Box) EndsWithBreak() bool { return b.rootData().endsWithBreak }

func (b *Box) SetEndsWithBreak(endsWithBreak bool) { b.rootData().endsWithBreak = endsWithBreak }

// IsWholeLineTruncated is true when the ellipsis of the line could
// not be placed after a visible part of the content.
func (b *Box) IsWholeLineTruncated() bool { return b.root != nil && b.root.wholeLineTruncated }

// ellipsis boxes fields

func (b *Box) EllipsisString() string { return b.ellipsis.str }

func (b *Box) EllipsisSelectionState() render.SelectionState { return b.ellipsis.selectionState }
