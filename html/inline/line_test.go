package inline

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/benoitkugler/linebox/backend"
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/utils"
	tu "github.com/benoitkugler/linebox/utils/testutils"
)

func TestSingleTextLine(t *testing.T) {
	block := newBlock(200)
	txt := newText(block, "hello world")
	c := NewContext()
	root := c.NewRootBox(block)
	tb := addText(c, root, txt)
	tu.AssertEqual(t, c.Box(tb).LogicalWidth, Fl(77))

	height := layoutLine(c, root, 0)
	tu.AssertEqual(t, height, Fl(13))
	rb := c.Box(root)
	tu.AssertEqual(t, rb.LineTop(), Fl(0))
	tu.AssertEqual(t, rb.LineBottom(), Fl(13))
	tu.AssertEqual(t, c.Box(tb).Y, Fl(0))
	tu.AssertEqual(t, c.Box(tb).X, Fl(0))
	tu.AssertEqual(t, rb.LogicalWidth, Fl(77))
}

func TestLineOffsetByBlockHeight(t *testing.T) {
	block := newBlock(200)
	span := newInline(block)
	txt := newText(span, "hello")
	c := NewContext()
	root := c.NewRootBox(block)
	flow := c.NewFlowBox(span)
	c.AddToLine(root, flow)
	tb := addText(c, flow, txt)

	height := layoutLine(c, root, 20)
	tu.AssertEqual(t, height, Fl(33))
	for _, id := range []BoxID{root, flow, tb} {
		tu.AssertEqual(t, c.Box(id).Y, Fl(20))
	}
	tu.AssertEqual(t, c.Box(root).LineTop(), Fl(20))
}

// randomLine builds a line of nested inlines sharing the block font,
// the same for a given [seed].
func randomLine(seed int64, disableFastPath bool) (*Context, []BoxID) {
	rng := rand.New(rand.NewSource(seed))
	block := newBlock(400)
	c := NewContext()
	c.disableSameLineHeightFastPath = disableFastPath
	root := c.NewRootBox(block)
	boxes := []BoxID{root}

	var fill func(parent BoxID, obj *render.Object, depth int)
	fill = func(parent BoxID, obj *render.Object, depth int) {
		for i, n := 0, 1+rng.Intn(3); i < n; i++ {
			if depth < 3 && rng.Intn(3) == 0 {
				span := newInline(obj)
				flow := c.NewFlowBox(span)
				c.AddToLine(parent, flow)
				boxes = append(boxes, flow)
				fill(flow, span, depth+1)
				continue
			}
			word := strings.Repeat("x", 1+rng.Intn(4)) + " "
			boxes = append(boxes, addText(c, parent, newText(obj, word)))
		}
	}
	fill(root, block, 0)
	return c, boxes
}

// the fast path taken when all the boxes share the same font
// must give the same positions as the general algorithm
func TestSameLineHeightFastPath(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		top := Fl(seed%7) + Fl(seed%4)*0.25

		fast, fastBoxes := randomLine(seed, false)
		tu.AssertEqual(t, fast.Box(fastBoxes[0]).DescendantsHaveSameLineHeightAndBaseline(), true)
		fastHeight := layoutLine(fast, fastBoxes[0], top)

		slow, slowBoxes := randomLine(seed, true)
		slowHeight := layoutLine(slow, slowBoxes[0], top)

		tu.AssertEqual(t, fastHeight, slowHeight)
		for i := range fastBoxes {
			fb, sb := fast.Box(fastBoxes[i]), slow.Box(slowBoxes[i])
			if fb.X != sb.X || fb.Y != sb.Y {
				t.Fatalf("seed %d, top %g, box %d: fast (%g, %g), general (%g, %g)", seed, top, i, fb.X, fb.Y, sb.X, sb.Y)
			}
		}
		fr, sr := fast.Box(fastBoxes[0]), slow.Box(slowBoxes[0])
		tu.AssertEqual(t, fr.LineTop(), sr.LineTop())
		tu.AssertEqual(t, fr.LineBottom(), sr.LineBottom())
	}
}

func TestFractionalLineTop(t *testing.T) {
	block := newBlock(200)
	txt := newText(block, "abc")
	c := NewContext()
	root := c.NewRootBox(block)
	tb := addText(c, root, txt)
	layoutLine(c, root, 10.5)
	// the line and its content are snapped together
	tu.AssertEqual(t, c.Box(root).Y, Fl(11))
	tu.AssertEqual(t, c.Box(tb).Y, Fl(11))
}

func TestReplacedPlacement(t *testing.T) {
	block := newBlock(200)
	img1 := newReplaced(block, 40, 10)
	img2 := newReplaced(block, 60, 10)
	c := NewContext()
	root := c.NewRootBox(block)
	b1 := addReplaced(c, root, img1)
	b2 := addReplaced(c, root, img2)
	tu.AssertEqual(t, c.Box(root).DescendantsHaveSameLineHeightAndBaseline(), false)

	var needsWordSpacing bool
	right := c.PlaceBoxesInInlineDirection(root, 0, &needsWordSpacing)
	tu.AssertEqual(t, right, Fl(100))
	tu.AssertEqual(t, c.Box(b1).X, Fl(0))
	tu.AssertEqual(t, c.Box(b2).X, Fl(40))
	tu.AssertEqual(t, c.Box(root).LogicalWidth, Fl(100))
}

func TestCanAccommodateEllipsis(t *testing.T) {
	block := newBlock(100)
	txt := newText(block, "abc")
	img := newReplaced(block, 20, 10)
	c := NewContext()
	root := c.NewRootBox(block)
	tb := addText(c, root, txt)
	ib := addReplaced(c, root, img)

	// text never prevents the ellipsis
	tu.AssertEqual(t, c.CanAccommodateEllipsis(tb, true, 100, 20), true)

	c.Box(ib).X = 70
	tu.AssertEqual(t, c.CanAccommodateEllipsis(ib, true, 100, 20), false)
	tu.AssertEqual(t, c.CanAccommodateEllipsis(root, true, 100, 20), false)

	c.Box(ib).X = 0
	tu.AssertEqual(t, c.CanAccommodateEllipsis(ib, true, 100, 20), true)
	tu.AssertEqual(t, c.CanAccommodateEllipsis(root, true, 100, 20), true)
}

func TestSelectionHeight(t *testing.T) {
	block := newBlock(200)
	txt := newText(block, "abc")
	c := NewContext()
	root := c.NewRootBox(block)
	addText(c, root, txt)
	c.Box(root).SetLineTopBottomPositions(10, 30, 10, 30)
	tu.AssertEqual(t, c.SelectionTop(root), Fl(10))
	tu.AssertEqual(t, c.SelectionBottom(root), Fl(30))
	tu.AssertEqual(t, c.SelectionHeight(root), Fl(20))

	// never negative
	c.Box(root).SetLineTopBottomPositions(30, 10, 30, 10)
	tu.AssertEqual(t, c.SelectionHeight(root), Fl(0))
}

// logicalOrder is a straightforward version of the reordering,
// returning the visual index of each logical position.
func logicalOrder(levels []uint8) []int {
	out := make([]int, len(levels))
	for i := range out {
		out[i] = i
	}
	var maxLevel, minOdd uint8 = 0, 255
	for _, l := range levels {
		maxLevel = max(maxLevel, l)
		if l%2 == 1 {
			minOdd = min(minOdd, l)
		}
	}
	for level := maxLevel; level >= minOdd && level > 0; level-- {
		for i := 0; i < len(out); {
			if levels[out[i]] < level {
				i++
				continue
			}
			j := i
			for j < len(out) && levels[out[j]] >= level {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				out[a], out[b] = out[b], out[a]
			}
			i = j
		}
	}
	return out
}

func TestCollectLeafBoxesInLogicalOrder(t *testing.T) {
	block := newBlock(200)
	c := NewContext()
	root := c.NewRootBox(block)

	// logical runs L0 to L5, with levels 0 1 2 2 1 0,
	// are displayed as L0 L4 L2 L3 L1 L5
	logicalLevels := []uint8{0, 1, 2, 2, 1, 0}
	visual := []int{0, 4, 2, 3, 1, 5}
	logical := make([]BoxID, 6)
	visualLevels := make([]uint8, 6)
	for i, index := range visual {
		txt := newText(block, "x")
		id := addText(c, root, txt)
		c.Box(id).BidiLevel = logicalLevels[index]
		logical[index] = id
		visualLevels[i] = logicalLevels[index]
	}

	tu.AssertEqual(t, c.CollectLeafBoxesInLogicalOrder(root, nil), logical)

	// agrees with the reference algorithm
	leaves := c.Children(root)
	var expected []BoxID
	for _, visualIndex := range logicalOrder(visualLevels) {
		expected = append(expected, leaves[visualIndex])
	}
	tu.AssertEqual(t, expected, logical)

	var reversed int
	c.CollectLeafBoxesInLogicalOrder(root, func(s []BoxID) { reversed++ })
	tu.AssertEqual(t, reversed, 2)

	// visual ordering keeps the leaves as they are
	block.Style.RTLOrdering = pr.VisualOrder
	tu.AssertEqual(t, c.CollectLeafBoxesInLogicalOrder(root, nil), leaves)
}

func TestOverflowFlags(t *testing.T) {
	block := newBlock(200)
	span := newInline(block)
	plain := newText(span, "ab")
	c := NewContext()
	root := c.NewRootBox(block)
	flow := c.NewFlowBox(span)
	c.AddToLine(root, flow)
	b1 := addText(c, flow, plain)
	for _, id := range []BoxID{root, flow, b1} {
		tu.AssertEqual(t, c.Box(id).KnownToHaveNoOverflow(), true)
	}

	shadowed := newText(span, "cd")
	shadowed.Style.TextShadow = []pr.Shadow{{X: 4, Y: 4, Color: pr.Black}}
	b2 := addText(c, flow, shadowed)
	for _, id := range []BoxID{root, flow, b2} {
		tu.AssertEqual(t, c.Box(id).KnownToHaveNoOverflow(), false)
	}
	tu.AssertEqual(t, c.Box(b1).KnownToHaveNoOverflow(), true)

	layoutLine(c, root, 0)
	rb := c.Box(root)
	c.ComputeOverflow(root, rb.LineTop(), rb.LineBottom())
	frame := c.FrameRect(root)
	visual := c.VisualOverflowRect(root, rb.LineTop(), rb.LineBottom())
	tu.AssertEqual(t, visual.Contains(frame), true)
	tu.AssertEqual(t, visual.MaxX() > frame.MaxX(), true)
	tu.AssertEqual(t, visual.MaxY() > frame.MaxY(), true)

	c.ClearOverflow(root)
	tu.AssertEqual(t, c.VisualOverflowRect(root, rb.LineTop(), rb.LineBottom()), frame)
}

func TestOffsetForPosition(t *testing.T) {
	block := newBlock(200)
	txt := newText(block, "hello")
	c := NewContext()
	root := c.NewRootBox(block)
	tb := addText(c, root, txt)
	layoutLine(c, root, 0)

	tu.AssertEqual(t, c.OffsetForPosition(tb, 0), 0)
	tu.AssertEqual(t, c.OffsetForPosition(tb, 15), 2)
	tu.AssertEqual(t, c.PositionForOffset(tb, 3), Fl(21))
	tu.AssertEqual(t, c.ContainsCaretOffset(tb, 5), true)
	tu.AssertEqual(t, c.ContainsCaretOffset(tb, 6), false)
	tu.AssertEqual(t, c.LocalSelectionRect(tb, 2, 5), utils.Rect{X: 14, Y: 0, Width: 21, Height: 13})
}

func TestLineSnapTinyGrid(t *testing.T) {
	grid := newBlock(100)
	c := NewContext()
	gridRoot := c.NewDetachedRootBox(grid)
	c.Box(gridRoot).SetLineTopBottomPositions(0, 0.4, 0, 0.4)
	c.SetLineGridBox(grid, gridRoot)
	c.State.LineGrid = grid

	block := newBlock(100)
	block.Style.LineSnap = pr.LineSnapBaseline
	txt := newText(block, "snapped")
	root := c.NewRootBox(block)
	addText(c, root, txt)
	layoutLine(c, root, 3)

	// a grid narrower than a pixel does not move the line
	tu.AssertEqual(t, c.lineSnapAdjustment(root, 0), Fl(0))
}

func TestWordSpacingAcrossBoxes(t *testing.T) {
	block := newBlock(200)
	span := newInline(block)
	span.Style.Margin = pr.Edges{Left: 5, Right: 3}
	first := newText(span, "ab")
	second := newText(block, " cd")
	second.Style.WordSpacing = 4
	img := newReplaced(block, 10, 10)
	third := newText(block, " ef")
	third.Style.WordSpacing = 4

	c := NewContext()
	root := c.NewRootBox(block)
	flow := c.NewFlowBox(span)
	c.AddToLine(root, flow)
	b1 := addText(c, flow, first)
	b2 := addText(c, root, second)
	b3 := addReplaced(c, root, img)
	b4 := addText(c, root, third)
	c.DetermineSpacingForFlowBoxes(flow, true, false, third)
	tu.AssertEqual(t, c.Box(flow).IncludeLogicalLeftEdge(), true)
	tu.AssertEqual(t, c.Box(flow).IncludeLogicalRightEdge(), true)

	var needsWordSpacing bool
	right := c.PlaceBoxesInInlineDirection(root, 0, &needsWordSpacing)
	tu.AssertEqual(t, c.Box(flow).X, Fl(5))
	tu.AssertEqual(t, c.Box(b1).X, Fl(5))
	// a space following a word is widened, even in another box
	tu.AssertEqual(t, c.Box(b2).X, Fl(26))
	tu.AssertEqual(t, c.Box(b3).X, Fl(47))
	// atomic inlines separate words too
	tu.AssertEqual(t, c.Box(b4).X, Fl(61))
	tu.AssertEqual(t, right, Fl(82))
	tu.AssertEqual(t, needsWordSpacing, true)
}

func TestLineSelectionGap(t *testing.T) {
	block := newBlock(200)
	before := newText(block, "aaa")
	span := newInline(block)
	span.Style.Margin = pr.Edges{Left: 20}
	after := newText(span, "bbb")
	before.Selection = render.Selection{State: render.SelectionInside}
	after.Selection = render.Selection{State: render.SelectionInside}

	c := NewContext()
	root := c.NewRootBox(block)
	b1 := addText(c, root, before)
	flow := c.NewFlowBox(span)
	c.AddToLine(root, flow)
	b2 := addText(c, flow, after)
	c.DetermineSpacingForFlowBoxes(flow, true, false, after)
	var needsWordSpacing bool
	c.PlaceBoxesInInlineDirection(root, 10, &needsWordSpacing)
	c.AlignBoxesInBlockDirection(root, 0)
	tu.AssertEqual(t, c.Box(b1).X, Fl(10))
	tu.AssertEqual(t, c.Box(b2).X, Fl(51))
	tu.AssertEqual(t, c.SelectionState(root), render.SelectionInside)

	cache := render.NewLogicalSelectionOffsetCaches(block)
	rec := backend.NewRecorder()
	gaps := c.LineSelectionGap(root, block, utils.Point{}, utils.Point{}, 0, 13, cache, rec)
	tu.AssertEqual(t, gaps.Left, utils.Rect{Width: 10, Height: 13})
	tu.AssertEqual(t, gaps.Right, utils.Rect{X: 72, Width: 128, Height: 13})
	// the space between the two selected boxes
	tu.AssertEqual(t, gaps.Center, utils.Rect{X: 31, Width: 20, Height: 13})
	tu.AssertEqual(t, rec.Filter("rect"), []string{"rect 0 0 10 13", "rect 72 0 128 13", "rect 31 0 20 13"})

	// a selection ending on the first box fills no gap
	before.Selection = render.Selection{State: render.SelectionStart, Start: 0}
	after.Selection = render.Selection{State: render.SelectionNone}
	gaps = c.LineSelectionGap(root, block, utils.Point{}, utils.Point{}, 0, 13, cache, nil)
	tu.AssertEqual(t, gaps.Center.IsEmpty(), true)
}
