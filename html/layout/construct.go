package layout

import (
	"fmt"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/render"
)

// maxLineDepth bounds the number of nested flow boxes of a line.
// Deeper inlines are attached directly to the root box.
const maxLineDepth = 200

// LineInfo describes the line being built.
type LineInfo struct {
	IsFirstLine bool
	IsLastLine  bool
	// IsEmpty is true for lines without content,
	// for which no box is created.
	IsEmpty bool
}

// createInlineBoxForObject creates the leaf box of a run.
// A line break counts as text in strict mode, or when it is
// alone on its line.
func createInlineBoxForObject(c *inline.Context, obj *render.Object, isOnlyRun bool) inline.BoxID {
	switch {
	case obj.IsText():
		return c.NewTextBox(obj, 0, 0)
	case obj.IsBR():
		return c.NewLineBreakBox(obj, isOnlyRun || !obj.InQuirksMode())
	default:
		return c.NewReplacedBox(obj)
	}
}

// alwaysCreateLineBoxes returns true for the inlines which need
// a flow box even when the block uses the default 'line-box-contain':
// the ones whose box affects the painting or the height of the line.
func alwaysCreateLineBoxes(obj *render.Object) bool {
	if obj.AlwaysCreateLineBoxes {
		return true
	}
	st := obj.Style
	if obj.HasBoxDecorations() || obj.HasOutline() || !st.Margin.IsZero() || st.HasBorderOrPadding() {
		return true
	}
	parent := obj.Parent
	if parent == nil {
		return false
	}
	ps := parent.Style
	if !st.FontMetrics().HasIdenticalAscentDescentAndLineGap(ps.FontMetrics()) || st.LineHeight != ps.LineHeight {
		return true
	}
	if st.VerticalAlign != ps.VerticalAlign && st.VerticalAlign.Keyword != pr.VaBaseline {
		return true
	}
	// the first line style may use other metrics
	if obj.FirstLineStyle != nil && parent.FirstLineStyle != nil &&
		!obj.FirstLineStyle.FontMetrics().HasIdenticalAscentDescentAndLineGap(parent.FirstLineStyle.FontMetrics()) {
		return true
	}
	return false
}

// parentIsConstructedOrHaveNext returns true if [id] or one of its
// ancestors belongs to a previous line, or is followed by other boxes.
func parentIsConstructedOrHaveNext(c *inline.Context, id inline.BoxID) bool {
	for curr := id; !curr.IsNone(); curr = c.Box(curr).Parent() {
		b := c.Box(curr)
		if b.IsConstructed() || !b.NextOnLine().IsNone() {
			return true
		}
	}
	return false
}

// createLineBoxes walks up from [obj] to [block], appending [childBox]
// to the last flow box of each inline, created if needed, and returns the
// parent of [childBox].
func createLineBoxes(c *inline.Context, block, obj *render.Object, info LineInfo, childBox inline.BoxID) inline.BoxID {
	lineDepth := 1
	result := inline.NoBox
	hasDefaultLineBoxContain := block.Style.LineBoxContain == pr.InitialLineBoxContain
	for {
		isBlock := obj == block
		if !isBlock && !obj.IsRenderInline() {
			panic(fmt.Sprintf("layout: unexpected %s in the inline content of %s", obj, block))
		}
		parentBox := c.LastLineBox(obj)

		constructedNewBox := false
		allowedToConstructNewBox := !hasDefaultLineBoxContain || isBlock || alwaysCreateLineBoxes(obj)
		canUseExistingParentBox := !parentBox.IsNone() && !parentIsConstructedOrHaveNext(c, parentBox)
		if allowedToConstructNewBox && !canUseExistingParentBox {
			if isBlock {
				parentBox = c.NewRootBox(block)
			} else {
				parentBox = c.NewFlowBox(obj)
			}
			c.Box(parentBox).SetFirstLineStyle(info.IsFirstLine)
			if !hasDefaultLineBoxContain {
				c.ClearDescendantsHaveSameLineHeightAndBaseline(parentBox)
			}
			constructedNewBox = true
		}

		if constructedNewBox || canUseExistingParentBox {
			if result.IsNone() {
				result = parentBox
			}
			if !childBox.IsNone() {
				c.AddToLine(parentBox, childBox)
			}
			if !constructedNewBox || isBlock {
				break
			}
			childBox = parentBox
		}

		lineDepth++
		if lineDepth >= maxLineDepth {
			obj = block
		} else {
			obj = obj.Parent
		}
	}
	return result
}

// reachedEndOfText returns true if the run [r] ends its text object,
// ignoring trailing spaces.
func reachedEndOfText(r Run) bool {
	if !r.Object.IsText() {
		return false
	}
	chars := []rune(r.Object.Text)
	for pos := r.End; pos < len(chars); pos++ {
		if !isCollapsibleSpace(chars[pos]) && chars[pos] != '\n' {
			return false
		}
	}
	return true
}

// ConstructLine creates the boxes of a new line of [block] from
// [runs], given in visual order, and returns its root box.
// The boxes of the runs are stored in [Run.Box].
func ConstructLine(c *inline.Context, block *render.Object, runs []Run, info LineInfo) inline.BoxID {
	if len(runs) == 0 || info.IsEmpty {
		return inline.NoBox
	}

	ltr := block.Style.IsLeftToRightDirection()
	parentBox := inline.NoBox
	for i := range runs {
		r := &runs[i]
		isOnlyRun := len(runs) == 1
		if len(runs) == 2 && !r.Object.IsListMarker() {
			first := runs[0]
			if !ltr {
				first = runs[1]
			}
			isOnlyRun = first.Object.IsListMarker()
		}

		box := createInlineBoxForObject(c, r.Object, isOnlyRun)
		r.Box = box

		if parentBox.IsNone() || c.Box(parentBox).Object != r.Object.Parent {
			parentBox = createLineBoxes(c, block, r.Object.Parent, info, box)
		} else {
			c.AddToLine(parentBox, box)
		}

		b := c.Box(box)
		b.BidiLevel = r.Level
		if b.Kind == inline.TextLeaf {
			b.Text.Start = r.Start
			b.Text.Len = r.End - r.Start
		}
	}

	root := c.LastLineBox(block)
	if root.IsNone() || c.Box(root).IsConstructed() {
		panic(fmt.Sprintf("layout: no line under construction for %s", block))
	}

	last := runs[logicallyLastRun(runs)]
	isLogicallyLastRunWrapped := true
	if last.Object.IsText() {
		isLogicallyLastRunWrapped = !reachedEndOfText(last)
	}
	c.DetermineSpacingForFlowBoxes(root, info.IsLastLine, isLogicallyLastRunWrapped, last.Object)
	c.SetConstructed(root)
	return root
}
