package inline

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/utils"
)

// HitTestLines tests the lines of [block], located at [accumulatedOffset],
// from the last one to the first one.
func (c *Context) HitTestLines(block *render.Object, request render.HitTestRequest, result *render.HitTestResult,
	location render.HitTestLocation, accumulatedOffset utils.Point,
) bool {
	for root := c.LastLineBox(block); !root.IsNone(); root = c.PrevLineBox(root) {
		rd := c.Box(root).rootData()
		if c.NodeAtPoint(root, request, result, location, accumulatedOffset, rd.lineTop, rd.lineBottom) {
			block.UpdateHitTestResult(result, location.Point.Sub(accumulatedOffset))
			return true
		}
	}
	return false
}

// NodeAtPoint returns true if the hit test of [location] stops on
// the box [id] or one of its descendants, filling [result].
// [accumulatedOffset] is the position of the block of the line.
func (c *Context) NodeAtPoint(id BoxID, request render.HitTestRequest, result *render.HitTestResult, location render.HitTestLocation,
	accumulatedOffset utils.Point, lineTop, lineBottom Fl,
) bool {
	switch b := c.Box(id); b.Kind {
	case Root:
		if b.HasEllipsisBox() && visibleToHitTesting(b.Object) {
			if c.ellipsisNodeAtPoint(c.EllipsisBox(id), request, result, location, accumulatedOffset, lineTop, lineBottom) {
				b.Object.UpdateHitTestResult(result, location.Point.Sub(accumulatedOffset))
				return true
			}
		}
		return c.flowNodeAtPoint(id, request, result, location, accumulatedOffset, lineTop, lineBottom)
	case Flow:
		return c.flowNodeAtPoint(id, request, result, location, accumulatedOffset, lineTop, lineBottom)
	case TextLeaf:
		return c.textNodeAtPoint(id, request, result, location, accumulatedOffset)
	case ReplacedLeaf:
		if c.hiddenByEllipsis(id) {
			return false
		}
		childPoint := accumulatedOffset
		if c.Box(b.parent).Object.Style.IsFlippedBlocksWritingMode() {
			if cb := b.Object.ContainingBlock(); cb != nil {
				childPoint = cb.FlipForWritingModeForChild(b.Object, childPoint)
			}
		}
		return b.Object.HitTestReplaced(request, result, location, childPoint)
	case Ellipsis:
		return c.ellipsisNodeAtPoint(id, request, result, location, accumulatedOffset, lineTop, lineBottom)
	default:
		return false
	}
}

func visibleToHitTesting(o *render.Object) bool { return o.Style.Visibility == pr.Visible }

func (c *Context) textNodeAtPoint(id BoxID, request render.HitTestRequest, result *render.HitTestResult,
	location render.HitTestLocation, accumulatedOffset utils.Point,
) bool {
	if c.IsLineBreak(id) {
		return false
	}
	b := c.Box(id)
	origin := c.LocationIncludingFlipping(id).Add(accumulatedOffset)
	rect := utils.Rect{X: origin.X, Y: origin.Y, Width: c.Width(id), Height: c.Height(id)}
	if b.Text.Truncation != FullTruncation && visibleToHitTesting(b.Object) && location.Intersects(rect) {
		b.Object.UpdateHitTestResult(result, c.flipPointForWritingMode(id, location.Point.Sub(accumulatedOffset)))
		if !result.AddNodeToRectBasedTestResult(b.Object.Node, request, location, rect) {
			return true
		}
	}
	return false
}

func (c *Context) flowNodeAtPoint(id BoxID, request render.HitTestRequest, result *render.HitTestResult, location render.HitTestLocation,
	accumulatedOffset utils.Point, lineTop, lineBottom Fl,
) bool {
	b := c.Box(id)
	overflowRect := c.FlipForWritingMode(id, c.VisualOverflowRect(id, lineTop, lineBottom)).Moved(accumulatedOffset.X, accumulatedOffset.Y)
	if !location.Intersects(overflowRect) {
		return false
	}

	// Inlines without boxes are only relevant for area based tests: they are
	// tested once all their children have been.
	var culledParent *render.Object
	testCulledAncestors := func(stop *render.Object) bool {
		for culledParent != nil && culledParent != b.Object && culledParent != stop {
			if culledParent.IsRenderInline() && c.hitTestCulledInline(id, culledParent, request, result, location, accumulatedOffset) {
				return true
			}
			culledParent = culledParent.Parent
		}
		return false
	}
	for child := b.LastChild(); !child.IsNone(); child = c.Box(child).prevOnLine {
		childObj := c.Box(child).Object
		if !paintsWithLine(childObj) {
			continue
		}
		var newParent *render.Object
		if location.IsRectBasedTest() {
			newParent = childObj.Parent
			if newParent == b.Object {
				newParent = nil
			}
		}
		if newParent != culledParent {
			if newParent == nil || !newParent.IsDescendantOf(culledParent) {
				if testCulledAncestors(newParent) {
					return true
				}
			}
			culledParent = newParent
		}
		if c.NodeAtPoint(child, request, result, location, accumulatedOffset, lineTop, lineBottom) {
			b.Object.UpdateHitTestResult(result, location.Point.Sub(accumulatedOffset))
			return true
		}
	}
	if testCulledAncestors(nil) {
		return true
	}

	if !visibleToHitTesting(b.Object) {
		return false
	}

	// the content hidden by the ellipsis is not hit
	if b.Kind == Root && b.HasEllipsisBox() {
		eb := c.Box(c.EllipsisBox(id))
		boundsRect := c.roundedFrameRect(id)
		switch {
		case !b.isHorizontal:
			delta := eb.LogicalRight() - boundsRect.Y
			boundsRect.Y += delta
			boundsRect.Height -= delta
		case b.Object.Style.IsLeftToRightDirection():
			delta := eb.LogicalRight() - boundsRect.X
			boundsRect.X += delta
			boundsRect.Width -= delta
		default:
			boundsRect.Width = eb.LogicalLeft() - b.LogicalLeft()
		}
		boundsRect = c.FlipForWritingMode(id, boundsRect).Moved(accumulatedOffset.X, accumulatedOffset.Y)
		if location.Intersects(boundsRect) {
			return false
		}
	}

	rect := c.constrainToLineTopAndBottomIfNeeded(id, c.roundedFrameRect(id))
	rect = c.FlipForWritingMode(id, rect).Moved(accumulatedOffset.X, accumulatedOffset.Y)
	if location.Intersects(rect) {
		b.Object.UpdateHitTestResult(result, c.flipPointForWritingMode(id, location.Point.Sub(accumulatedOffset)))
		if !result.AddNodeToRectBasedTestResult(b.Object.Node, request, location, rect) {
			return true
		}
	}
	return false
}

// hitTestCulledInline tests the inline [culled], which has no box, against the
// area covered by the boxes of its descendants on the line of [id].
func (c *Context) hitTestCulledInline(id BoxID, culled *render.Object, request render.HitTestRequest, result *render.HitTestResult,
	location render.HitTestLocation, accumulatedOffset utils.Point,
) bool {
	if !visibleToHitTesting(culled) {
		return false
	}
	var (
		region      utils.Rect
		intersected bool
	)
	for leaf := c.FirstLeafChild(c.Root(id)); !leaf.IsNone(); leaf = c.NextLeafChild(leaf) {
		if !c.Box(leaf).Object.IsDescendantOf(culled) {
			continue
		}
		rect := c.FrameRect(leaf).Moved(accumulatedOffset.X, accumulatedOffset.Y)
		region = region.Unite(rect)
		if location.Intersects(rect) {
			intersected = true
		}
	}
	if !intersected {
		return false
	}
	culled.UpdateHitTestResult(result, location.Point.Sub(accumulatedOffset))
	result.AddNodeToRectBasedTestResult(culled.Node, request, location, region)
	return region.Contains(location.BoundingBox())
}
