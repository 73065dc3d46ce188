package layout

import (
	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/render"
)

// LayoutLineGridBox builds the line defining the grid of [block]:
// an empty line of the block's font, placed at the top of its content.
// Blocks without 'line-grid' have no grid box.
func LayoutLineGridBox(c *inline.Context, block *render.Object) {
	c.SetLineGridBox(block, inline.NoBox)
	if block.Style.LineGrid == "" {
		return
	}

	root := c.NewDetachedRootBox(block)
	c.Box(root).SetHasTextChildren()
	c.SetConstructed(root)
	c.AlignBoxesInBlockDirection(root, block.BorderAndPaddingBefore())
	c.SetLineGridBox(block, root)
}

// establishesLineGrid returns true if [block] defines a grid
// which is not the one in effect.
func establishesLineGrid(state *inline.LayoutState, block *render.Object) bool {
	if block.Style.LineGrid == "" {
		return false
	}
	return state.LineGrid == nil || state.LineGrid.Style.LineGrid != block.Style.LineGrid
}
