// Package layout builds the lines of a render tree: it breaks the inline
// content of the blocks, constructs their line boxes and places them in
// the inline and block directions.
//
// The blocks themselves are simply stacked; floats are placed at the top
// of their block, side by side.
//
// Truncation with an ellipsis ('text-overflow' and line clamping) and the
// line grid used by 'line-snap' are also handled here.
package layout

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/logger"
	"github.com/benoitkugler/linebox/utils"
)

type Fl = utils.Fl

// Options configures the layout.
type Options struct {
	// Ellipsis is the string marking truncated lines.
	// [DefaultEllipsis] is used if empty.
	Ellipsis string

	// LineClamp, if positive, is the maximum number of
	// visible lines of each block.
	LineClamp int

	// PageHeight, if positive, paginates the layout:
	// lines never straddle two pages.
	PageHeight Fl
}

// Layout lays out the tree rooted at [root], whose logical width
// must be set, and returns the context holding the line boxes.
func Layout(root *render.Object, opts Options) *inline.Context {
	c := inline.NewContext()
	c.State.PageLogicalHeight = opts.PageHeight
	c.State.LayoutOffset = utils.Point{X: root.Frame.X, Y: root.Frame.Y}
	LayoutBlock(c, root, opts)
	logger.ProgressLogger.Printf("Layout done: %d boxes", c.Arena().Len())
	return c
}

// LayoutBlock lays out the content of [block] and sets its logical height.
// The logical width of [block] must be set, and c.State.LayoutOffset
// must be its position.
func LayoutBlock(c *inline.Context, block *render.Object, opts Options) {
	state := &c.State
	savedGrid, savedGridOffset, savedOrigin := state.LineGrid, state.LineGridOffset, state.LineGridPaginationOrigin
	defer func() {
		state.LineGrid, state.LineGridOffset, state.LineGridPaginationOrigin = savedGrid, savedGridOffset, savedOrigin
	}()

	if establishesLineGrid(state, block) {
		LayoutLineGridBox(c, block)
		state.LineGrid = block
		state.LineGridOffset = state.LayoutOffset
		state.LineGridPaginationOrigin = utils.Point{}
	} else {
		c.SetLineGridBox(block, inline.NoBox)
	}

	height := block.BorderAndPaddingBefore()
	if block.ChildrenInline() {
		height = layoutInlineChildren(c, block, opts, height)
	} else {
		height = layoutBlockChildren(c, block, opts, height)
	}
	wm := block.Style.WritingMode
	height += block.Style.Border.After(wm) + block.Style.Padding.After(wm)
	setLogicalHeight(block, height)
}

func setLogicalHeight(o *render.Object, h Fl) {
	if o.Style.IsHorizontalWritingMode() {
		o.Frame.Height = h
	} else {
		o.Frame.Width = h
	}
}

func setLogicalWidth(o *render.Object, w Fl) {
	if o.Style.IsHorizontalWritingMode() {
		o.Frame.Width = w
	} else {
		o.Frame.Height = w
	}
}

// layoutBlockChildren stacks the children of [block], starting at [height],
// and returns the height after the last one.
func layoutBlockChildren(c *inline.Context, block *render.Object, opts Options, height Fl) Fl {
	state := &c.State
	horizontal := block.Style.IsHorizontalWritingMode()
	blockOffset := state.LayoutOffset
	for _, child := range block.Children {
		if !child.IsBlock() || child.IsOutOfFlowPositioned() {
			continue
		}
		height += child.MarginOver(horizontal)
		marginLeft, marginRight := child.MarginLogicalLeft(horizontal), child.MarginLogicalRight(horizontal)
		setLogicalWidth(child, utils.MaxF(0, block.AvailableLogicalWidth()-marginLeft-marginRight))
		child.SetLogicalLocation(block.LogicalLeftOffsetForContent()+marginLeft, height)

		state.LayoutOffset = utils.Point{X: blockOffset.X + child.Frame.X, Y: blockOffset.Y + child.Frame.Y}
		LayoutBlock(c, child, opts)
		state.LayoutOffset = blockOffset

		height += child.LogicalHeight() + child.MarginUnder(horizontal)
	}
	return height
}

// placeFloats positions the floats of [block] at [top]: left floats
// are stacked from the start of the content box, right floats from its end.
// A float not fitting in the remaining space starts a new row.
func placeFloats(block *render.Object, top Fl) {
	if block.Block == nil {
		return
	}
	horizontal := block.Style.IsHorizontalWritingMode()
	contentLeft, contentRight := block.LogicalLeftOffsetForContent(), block.LogicalRightOffsetForContent()
	left, right, rowTop, rowBottom := contentLeft, contentRight, top, top
	for i := range block.Block.Floats {
		f := &block.Block.Floats[i]
		obj := f.Object
		marginLeft, marginRight := obj.MarginLogicalLeft(horizontal), obj.MarginLogicalRight(horizontal)
		w := obj.LogicalWidth() + marginLeft + marginRight
		h := obj.LogicalHeight() + obj.MarginOver(horizontal) + obj.MarginUnder(horizontal)
		if w > right-left && (left != contentLeft || right != contentRight) {
			left, right, rowTop = contentLeft, contentRight, rowBottom
		}
		x := left
		if f.Right {
			x = right - w
			right = x
		} else {
			left += w
		}
		f.LogicalRect = utils.Rect{X: x, Y: rowTop, Width: w, Height: h}
		rowBottom = utils.MaxF(rowBottom, rowTop+h)
		obj.SetLogicalLocation(x+marginLeft, rowTop+obj.MarginOver(horizontal))
	}
}

// floatsBottom returns the logical bottom of the lowest float of [block].
func floatsBottom(block *render.Object) Fl {
	var bottom Fl
	if block.Block != nil {
		for _, f := range block.Block.Floats {
			bottom = utils.MaxF(bottom, f.LogicalRect.MaxY())
		}
	}
	return bottom
}

// layoutInlineChildren breaks the content of [block] in lines, the first
// one at [height], and returns the height after the last line.
func layoutInlineChildren(c *inline.Context, block *render.Object, opts Options, height Fl) Fl {
	c.DeleteLines(block)
	placeFloats(block, height)

	ltr := block.Style.IsLeftToRightDirection()
	breaker := newLineBreaker(block)
	info := LineInfo{IsFirstLine: true}
	for !breaker.atEnd() {
		line := breaker.nextLine(height, info)
		info.IsLastLine = line.reachedEnd
		info.IsEmpty = len(line.items) == 0
		if info.IsEmpty {
			continue
		}

		runs := ItemsToRuns(line.items, !ltr)
		trailingSpaceRun := -1
		if !line.endsWithBreak {
			runs, trailingSpaceRun = handleTrailingSpaces(runs, ltr)
		}
		root := ConstructLine(c, block, runs, info)
		rb := c.Box(root)
		rb.SetEndsWithBreak(line.endsWithBreak)
		rb.SetLineBreakInfo(line.next)

		ComputeInlineDirectionPositionsForLine(c, block, root, info, height, runs, trailingSpaceRun, line.reachedEnd)
		height = ComputeBlockDirectionPositionsForLine(c, root, runs, height)
		height += adjustLinePositionForPagination(c, root)

		info.IsFirstLine = false
	}

	if block.Style.TextOverflow == pr.TextOverflowEllipsis {
		CheckLinesForTextOverflow(c, block, opts.Ellipsis)
	}
	if opts.LineClamp > 0 {
		if clamped, ok := ApplyLineClamp(c, block, opts.LineClamp, opts.Ellipsis); ok {
			wm := block.Style.WritingMode
			height = clamped - block.Style.Border.After(wm) - block.Style.Padding.After(wm)
		}
	}
	height = utils.MaxF(height, floatsBottom(block))

	logger.ProgressLogger.Printf("Laid out %s: %d line(s)", block, c.LineCount(block))
	return height
}
