package layout

import (
	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/utils"
)

// positionLineBox moves the atomic [obj] to the location of its box.
// Positioned objects only record their static position: their
// placeholder box is removed from the line.
func positionLineBox(c *inline.Context, obj *render.Object, box inline.BoxID) inline.BoxID {
	b := c.Box(box)
	if obj.IsOutOfFlowPositioned() {
		obj.Frame.X, obj.Frame.Y = b.X, b.Y
		c.Remove(box)
		c.Destroy(box)
		return inline.NoBox
	}
	obj.Frame.X, obj.Frame.Y = utils.RoundToInt(b.X), utils.RoundToInt(b.Y)
	return box
}

// ComputeBlockDirectionPositionsForLine places the boxes of the line [root]
// in the block direction, the line starting at [height]. It moves the
// replaced objects of the line, computes its overflow and returns the height
// of the block after the line.
func ComputeBlockDirectionPositionsForLine(c *inline.Context, root inline.BoxID, runs []Run, height Fl) Fl {
	height = c.AlignBoxesInBlockDirection(root, height)

	for i, r := range runs {
		if r.Box.IsNone() {
			continue
		}
		// a reasonable approximation of the position of positioned
		// objects is the bottom of the line
		if r.Object.IsOutOfFlowPositioned() {
			c.Box(r.Box).SetLogicalTop(height)
		}
		if !r.Object.IsText() && !r.Object.IsBR() {
			runs[i].Box = positionLineBox(c, r.Object, r.Box)
		}
	}
	// removing the placeholders of positioned objects
	// does not require a new layout
	c.MarkDirty(root, false)

	rb := c.Box(root)
	c.ComputeOverflow(root, rb.LineTop(), rb.LineBottom())
	return height
}

// adjustLinePositionForPagination pushes the line [root] to the next page
// when it straddles a page boundary, recording the offset as its
// pagination strut. It returns the offset.
func adjustLinePositionForPagination(c *inline.Context, root inline.BoxID) Fl {
	state := &c.State
	if !state.IsPaginated() {
		return 0
	}
	rb := c.Box(root)
	pageHeight := state.PageLogicalHeight
	lineHeight := rb.LineBottomWithLeading() - rb.LineTopWithLeading()
	blockOffset := state.LayoutOffset.Y
	if !rb.IsHorizontal() {
		blockOffset = state.LayoutOffset.X
	}
	offset := blockOffset + rb.LineTopWithLeading()

	// lines taller than a page are never moved
	if lineHeight > pageHeight {
		return 0
	}
	pageTop := utils.Floor(offset/pageHeight) * pageHeight
	remaining := pageTop + pageHeight - offset
	if remaining >= lineHeight || remaining <= 0 {
		return 0
	}

	if rb.IsHorizontal() {
		c.AdjustPosition(root, 0, remaining)
	} else {
		c.AdjustPosition(root, remaining, 0)
	}
	rb.SetPaginationStrut(remaining)
	return remaining
}
