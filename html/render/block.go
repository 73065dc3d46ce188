package render

import (
	"github.com/benoitkugler/linebox/backend"
	"github.com/benoitkugler/linebox/utils"
)

// Float is a floating object placed in a block.
type Float struct {
	Object *Object
	Right  bool
	// LogicalRect is the margin box of the float, in
	// the logical coordinates of the block.
	LogicalRect utils.Rect
}

func (f Float) logicalTop() Fl    { return f.LogicalRect.Y }
func (f Float) logicalBottom() Fl { return f.LogicalRect.MaxY() }

// BlockData stores the block specific fields.
type BlockData struct {
	Floats []Float

	IsRubyBase  bool
	IsAnonymous bool
	IsView      bool // root of the tree
	Quirks      bool // only used on the view
}

// NewBlockData is a convenience constructor.
func NewBlockData() *BlockData { return &BlockData{} }

func (o *Object) ContainsFloats() bool { return o.Block != nil && len(o.Block.Floats) != 0 }

// ChildrenInline returns true if the children of the block
// are laid out in lines.
func (o *Object) ChildrenInline() bool {
	for _, child := range o.Children {
		if child.IsBlock() && !child.IsOutOfFlowPositioned() {
			return false
		}
	}
	return true
}

func (o *Object) IsAnonymousBlock() bool { return o.Block != nil && o.Block.IsAnonymous }

func (o *Object) IsView() bool { return o.Block != nil && o.Block.IsView }

// LogicalLeftOffsetForContent returns the start of the content box,
// relative to the border box.
func (o *Object) LogicalLeftOffsetForContent() Fl {
	wm := o.Style.WritingMode
	return o.Style.Border.LogicalLeft(wm) + o.Style.Padding.LogicalLeft(wm)
}

func (o *Object) LogicalRightOffsetForContent() Fl {
	return o.LogicalLeftOffsetForContent() + o.AvailableLogicalWidth()
}

// AvailableLogicalWidth is the logical width of the content box.
func (o *Object) AvailableLogicalWidth() Fl {
	wm := o.Style.WritingMode
	w := o.LogicalWidth() - o.Style.Border.LogicalLeft(wm) - o.Style.Border.LogicalRight(wm) -
		o.Style.Padding.LogicalLeft(wm) - o.Style.Padding.LogicalRight(wm)
	return utils.MaxF(0, w)
}

// TextIndentOffset resolves text-indent, with percentages
// relative to the containing block.
func (o *Object) TextIndentOffset() Fl {
	ti := o.Style.TextIndent
	var cw Fl
	if cb := o.ContainingBlock(); cb != nil {
		cw = cb.AvailableLogicalWidth()
	} else {
		cw = o.AvailableLogicalWidth()
	}
	return ti.Resolve(cw, o.Style.Font.Size())
}

// LogicalLeftOffsetForLine returns the start of the lines at [logicalTop],
// taking the left floats into account.
func (o *Object) LogicalLeftOffsetForLine(logicalTop Fl, applyTextIndent bool) Fl {
	left := o.LogicalLeftOffsetForContent()
	if o.Block != nil {
		for i := len(o.Block.Floats) - 1; i >= 0; i-- {
			f := o.Block.Floats[i]
			if f.Right || f.logicalTop() > logicalTop || f.logicalBottom() <= logicalTop {
				continue
			}
			left = utils.MaxF(left, f.LogicalRect.MaxX())
		}
	}
	if applyTextIndent && o.Style.IsLeftToRightDirection() {
		left += o.TextIndentOffset()
	}
	return left
}

func (o *Object) LogicalRightOffsetForLine(logicalTop Fl, applyTextIndent bool) Fl {
	right := o.LogicalRightOffsetForContent()
	if o.Block != nil {
		for i := len(o.Block.Floats) - 1; i >= 0; i-- {
			f := o.Block.Floats[i]
			if !f.Right || f.logicalTop() > logicalTop || f.logicalBottom() <= logicalTop {
				continue
			}
			right = utils.MinF(right, f.LogicalRect.X)
		}
	}
	if applyTextIndent && !o.Style.IsLeftToRightDirection() {
		right -= o.TextIndentOffset()
	}
	return right
}

// AvailableLogicalWidthForLine returns the space left by the floats.
func (o *Object) AvailableLogicalWidthForLine(logicalTop Fl, applyTextIndent bool) Fl {
	return utils.MaxF(0, o.LogicalRightOffsetForLine(logicalTop, applyTextIndent)-o.LogicalLeftOffsetForLine(logicalTop, applyTextIndent))
}

// NextFloatBottomBelow returns the lowest float bottom strictly below [logicalTop],
// or -1 if there is none.
func (o *Object) NextFloatBottomBelow(logicalTop Fl) Fl {
	out := Fl(-1)
	if o.Block == nil {
		return out
	}
	for _, f := range o.Block.Floats {
		if b := f.logicalBottom(); b > logicalTop && (out == -1 || b < out) {
			out = b
		}
	}
	return out
}

// FlipForWritingMode converts a rectangle between the flipped
// and the physical coordinates of the block.
func (o *Object) FlipForWritingMode(rect utils.Rect) utils.Rect {
	if !o.Style.IsFlippedBlocksWritingMode() {
		return rect
	}
	if o.Style.IsHorizontalWritingMode() {
		rect.Y = o.Frame.Height - rect.MaxY()
	} else {
		rect.X = o.Frame.Width - rect.MaxX()
	}
	return rect
}

func (o *Object) FlipPointForWritingMode(p utils.Point) utils.Point {
	if !o.Style.IsFlippedBlocksWritingMode() {
		return p
	}
	if o.Style.IsHorizontalWritingMode() {
		p.Y = o.Frame.Height - p.Y
	} else {
		p.X = o.Frame.Width - p.X
	}
	return p
}

// FlipForWritingModeForChild adjusts the paint offset of [child]
// in flipped blocks writing modes.
func (o *Object) FlipForWritingModeForChild(child *Object, point utils.Point) utils.Point {
	if !o.Style.IsFlippedBlocksWritingMode() {
		return point
	}
	if o.Style.IsHorizontalWritingMode() {
		return utils.Point{X: point.X, Y: point.Y + o.Frame.Height - child.Frame.Height - 2*child.Frame.Y}
	}
	return utils.Point{X: point.X + o.Frame.Width - child.Frame.Width - 2*child.Frame.X, Y: point.Y}
}

// LogicalRectToPhysicalRect converts a rectangle in the logical
// coordinates of the block.
func (o *Object) LogicalRectToPhysicalRect(rootBlockPhysicalPosition utils.Point, logicalRect utils.Rect) utils.Rect {
	result := logicalRect
	if !o.Style.IsHorizontalWritingMode() {
		result = logicalRect.Transposed()
	}
	result = o.FlipForWritingMode(result)
	return result.Moved(rootBlockPhysicalPosition.X, rootBlockPhysicalPosition.Y)
}

func blockDirectionOffset(rootBlock *Object, offsetFromRootBlock utils.Point) Fl {
	if rootBlock.Style.IsHorizontalWritingMode() {
		return offsetFromRootBlock.Y
	}
	return offsetFromRootBlock.X
}

func inlineDirectionOffset(rootBlock *Object, offsetFromRootBlock utils.Point) Fl {
	if rootBlock.Style.IsHorizontalWritingMode() {
		return offsetFromRootBlock.X
	}
	return offsetFromRootBlock.Y
}

// GetSelectionGapInfo returns which sides of a line
// should be filled for the given selection state.
func (o *Object) GetSelectionGapInfo(state SelectionState) (leftGap, rightGap bool) {
	ltr := o.Style.IsLeftToRightDirection()
	leftGap = state == SelectionInside || (state == SelectionEnd && ltr) || (state == SelectionStart && !ltr)
	rightGap = state == SelectionInside || (state == SelectionStart && ltr) || (state == SelectionEnd && !ltr)
	return leftGap, rightGap
}

// LogicalLeftSelectionGap returns the rectangle filling the selection between
// the start of the line and [logicalLeft]. If [canvas] is not nil,
// the rectangle is painted with the selection color of [selObj].
func (o *Object) LogicalLeftSelectionGap(rootBlock *Object, rootBlockPhysicalPosition, offsetFromRootBlock utils.Point,
	selObj *Object, logicalLeft, logicalTop, logicalHeight Fl, cache *LogicalSelectionOffsetCaches, canvas backend.Canvas,
) utils.Rect {
	rootBlockLogicalTop := blockDirectionOffset(rootBlock, offsetFromRootBlock) + logicalTop
	rootBlockLogicalLeft := utils.MaxF(o.LogicalLeftSelectionOffset(rootBlock, logicalTop, cache), o.LogicalLeftSelectionOffset(rootBlock, logicalTop+logicalHeight, cache))
	rootBlockLogicalRight := utils.MinF(inlineDirectionOffset(rootBlock, offsetFromRootBlock)+utils.Floor(logicalLeft),
		utils.MinF(o.LogicalRightSelectionOffset(rootBlock, logicalTop, cache), o.LogicalRightSelectionOffset(rootBlock, logicalTop+logicalHeight, cache)))
	rootBlockLogicalWidth := rootBlockLogicalRight - rootBlockLogicalLeft
	if rootBlockLogicalWidth <= 0 {
		return utils.Rect{}
	}

	gapRect := rootBlock.LogicalRectToPhysicalRect(rootBlockPhysicalPosition, utils.Rect{X: rootBlockLogicalLeft, Y: rootBlockLogicalTop, Width: rootBlockLogicalWidth, Height: logicalHeight})
	if canvas != nil {
		backend.FillRect(canvas, gapRect, selObj.SelectionBackgroundColor())
	}
	return gapRect
}

// LogicalRightSelectionGap is the same as [LogicalLeftSelectionGap],
// for the end of the line.
func (o *Object) LogicalRightSelectionGap(rootBlock *Object, rootBlockPhysicalPosition, offsetFromRootBlock utils.Point,
	selObj *Object, logicalRight, logicalTop, logicalHeight Fl, cache *LogicalSelectionOffsetCaches, canvas backend.Canvas,
) utils.Rect {
	rootBlockLogicalTop := blockDirectionOffset(rootBlock, offsetFromRootBlock) + logicalTop
	rootBlockLogicalLeft := utils.MaxF(inlineDirectionOffset(rootBlock, offsetFromRootBlock)+utils.Floor(logicalRight),
		utils.MaxF(o.LogicalLeftSelectionOffset(rootBlock, logicalTop, cache), o.LogicalLeftSelectionOffset(rootBlock, logicalTop+logicalHeight, cache)))
	rootBlockLogicalRight := utils.MinF(o.LogicalRightSelectionOffset(rootBlock, logicalTop, cache), o.LogicalRightSelectionOffset(rootBlock, logicalTop+logicalHeight, cache))
	rootBlockLogicalWidth := rootBlockLogicalRight - rootBlockLogicalLeft
	if rootBlockLogicalWidth <= 0 {
		return utils.Rect{}
	}

	gapRect := rootBlock.LogicalRectToPhysicalRect(rootBlockPhysicalPosition, utils.Rect{X: rootBlockLogicalLeft, Y: rootBlockLogicalTop, Width: rootBlockLogicalWidth, Height: logicalHeight})
	if canvas != nil {
		backend.FillRect(canvas, gapRect, selObj.SelectionBackgroundColor())
	}
	return gapRect
}
