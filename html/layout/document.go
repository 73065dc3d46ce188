package layout

import (
	"io"

	"github.com/benoitkugler/linebox/backend"
	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/utils"
)

// paintPhases are the phases painted for each block, in order.
var paintPhases = [...]render.PaintPhase{
	render.PaintPhaseBlockBackground,
	render.PaintPhaseFloat,
	render.PaintPhaseForeground,
	render.PaintPhaseOutline,
}

// Paint draws the laid out tree rooted at [root] on [canvas],
// restricted to [damage].
func Paint(c *inline.Context, root *render.Object, canvas backend.Canvas, damage utils.Rect) {
	for _, phase := range paintPhases {
		if phase == render.PaintPhaseForeground {
			SelectionGaps(c, root, canvas)
		}
		info := render.PaintInfo{Canvas: canvas, Rect: damage, Phase: phase}
		paintBlock(c, root, &info, utils.Point{})
	}
}

// SelectionGaps returns the area filling the selection of the lines of
// the tree rooted at [root] outside of their selected boxes. The gaps are
// painted when [canvas] is not nil.
func SelectionGaps(c *inline.Context, root *render.Object, canvas backend.Canvas) utils.Rect {
	cache := render.NewLogicalSelectionOffsetCaches(root)
	return selectionGaps(c, root, root, root.Frame.Location(), utils.Point{}, cache, canvas)
}

func selectionGaps(c *inline.Context, root, block *render.Object, rootPosition, offsetFromRoot utils.Point,
	cache *render.LogicalSelectionOffsetCaches, canvas backend.Canvas,
) utils.Rect {
	var out utils.Rect
	if block.ChildrenInline() {
		for line := c.FirstLineBox(block); !line.IsNone(); line = c.NextLineBox(line) {
			if c.SelectionState(line) == render.SelectionNone {
				continue
			}
			gaps := c.LineSelectionGap(line, root, rootPosition, offsetFromRoot,
				c.SelectionTop(line), c.SelectionHeight(line), cache, canvas)
			out = out.Unite(gaps.Unite())
		}
		return out
	}
	childCache := render.NewChildLogicalSelectionOffsetCaches(block, cache)
	for _, child := range block.Children {
		if child.IsBlock() && !child.IsOutOfFlowPositioned() {
			out = out.Unite(selectionGaps(c, root, child, rootPosition, offsetFromRoot.Add(child.Frame.Location()), childCache, canvas))
		}
	}
	return out
}

// paintBlock paints one phase of [block], whose containing
// block is at [offset].
func paintBlock(c *inline.Context, block *render.Object, info *render.PaintInfo, offset utils.Point) {
	adjusted := utils.Point{X: offset.X + block.Frame.X, Y: offset.Y + block.Frame.Y}
	switch info.Phase {
	case render.PaintPhaseBlockBackground:
		if block.HasBoxDecorations() {
			render.PaintBoxDecorations(info.Canvas, block.Style, block.Frame.Moved(offset.X, offset.Y),
				block.Style.IsHorizontalWritingMode(), true, true)
		}
	case render.PaintPhaseFloat:
		if block.Block != nil {
			for _, f := range block.Block.Floats {
				for _, phase := range []render.PaintPhase{render.PaintPhaseBlockBackground, render.PaintPhaseForeground} {
					floatInfo := *info
					floatInfo.Phase = phase
					f.Object.PaintReplaced(&floatInfo, adjusted)
				}
			}
		}
	case render.PaintPhaseOutline:
		if block.HasOutline() {
			render.PaintOutline(info.Canvas, block.Style, block.Frame.Moved(offset.X, offset.Y))
		}
	}

	if block.ChildrenInline() {
		c.PaintLines(block, info, adjusted)
		return
	}
	for _, child := range block.Children {
		if child.IsBlock() && !child.IsOutOfFlowPositioned() {
			paintBlock(c, child, info, adjusted)
		}
	}
}

// Dump writes the lines of all the blocks of the tree rooted at [root].
func Dump(c *inline.Context, w io.Writer, root *render.Object) {
	if root.ChildrenInline() {
		c.Dump(w, root)
		return
	}
	for _, child := range root.Children {
		if child.IsBlock() && !child.IsOutOfFlowPositioned() {
			Dump(c, w, child)
		}
	}
}

// HitTest returns the object at [point], given in the coordinates
// of the parent of [root], or nil.
func HitTest(c *inline.Context, root *render.Object, point utils.Point) *render.Object {
	var result render.HitTestResult
	location := render.NewPointLocation(point)
	if hitTestBlock(c, root, render.HitTestReadOnly, &result, location, utils.Point{}) {
		return result.InnerObject
	}
	return nil
}

func hitTestBlock(c *inline.Context, block *render.Object, request render.HitTestRequest, result *render.HitTestResult,
	location render.HitTestLocation, offset utils.Point,
) bool {
	adjusted := utils.Point{X: offset.X + block.Frame.X, Y: offset.Y + block.Frame.Y}
	if !location.Intersects(block.Frame.Moved(offset.X, offset.Y)) {
		return false
	}
	if block.Block != nil {
		for i := len(block.Block.Floats) - 1; i >= 0; i-- {
			if block.Block.Floats[i].Object.HitTestReplaced(request, result, location, adjusted) {
				return true
			}
		}
	}
	if block.ChildrenInline() {
		if c.HitTestLines(block, request, result, location, adjusted) {
			return true
		}
	} else {
		for i := len(block.Children) - 1; i >= 0; i-- {
			child := block.Children[i]
			if child.IsBlock() && !child.IsOutOfFlowPositioned() && hitTestBlock(c, child, request, result, location, adjusted) {
				return true
			}
		}
	}
	block.UpdateHitTestResult(result, location.Point.Sub(adjusted))
	return true
}
