package inline

import (
	"testing"

	"golang.org/x/image/font/basicfont"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
	tu "github.com/benoitkugler/linebox/utils/testutils"
)

// with basicfont.Face7x13, each character is 7 pixels wide,
// with an ascent of 11 and a descent of 2

func basicStyle() *pr.Style { return pr.NewStyle(text.NewFont(basicfont.Face7x13, 13)) }

func newBlock(width Fl) *render.Object {
	block := &render.Object{Kind: render.BlockKind, Style: basicStyle(), Block: &render.BlockData{IsView: true}}
	block.Frame = utils.Rect{Width: width, Height: 100}
	return block
}

func newText(parent *render.Object, s string) *render.Object {
	txt := &render.Object{Kind: render.TextKind, Text: s, Style: parent.Style.Inherit()}
	parent.AppendChild(txt)
	return txt
}

func newInline(parent *render.Object) *render.Object {
	span := &render.Object{Kind: render.InlineKind, Style: parent.Style.Inherit()}
	parent.AppendChild(span)
	return span
}

func newReplaced(parent *render.Object, width, height Fl) *render.Object {
	img := &render.Object{Kind: render.ReplacedKind, Style: parent.Style.Inherit(), Baseline: -1}
	img.Frame = utils.Rect{Width: width, Height: height}
	parent.AppendChild(img)
	return img
}

// addText appends a box with all the characters of [txt] to [parent].
func addText(c *Context, parent BoxID, txt *render.Object) BoxID {
	tb := c.NewTextBox(txt, 0, text.RuneCount(txt.Text))
	c.AddToLine(parent, tb)
	c.Box(tb).LogicalWidth = c.MeasureText(tb)
	return tb
}

func addReplaced(c *Context, parent BoxID, obj *render.Object) BoxID {
	id := c.NewReplacedBox(obj)
	c.AddToLine(parent, id)
	c.Box(id).LogicalWidth = obj.Frame.Width
	return id
}

// layoutLine places the boxes of [root] on a line at [top].
func layoutLine(c *Context, root BoxID, top Fl) Fl {
	var needsWordSpacing bool
	c.PlaceBoxesInInlineDirection(root, 0, &needsWordSpacing)
	return c.AlignBoxesInBlockDirection(root, top)
}

func assertPanics(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic")
		}
	}()
	f()
}

func TestArenaRecycling(t *testing.T) {
	var a Arena
	id1 := a.alloc(&Box{})
	id2 := a.alloc(&Box{})
	tu.AssertEqual(t, a.Len(), 2)
	a.release(id1)
	tu.AssertEqual(t, a.IsLive(id1), false)
	tu.AssertEqual(t, a.IsLive(id2), true)

	// the slot is reused with a new generation
	id3 := a.alloc(&Box{})
	tu.AssertEqual(t, id3.index, id1.index)
	tu.AssertEqual(t, id3 == id1, false)
	tu.AssertEqual(t, a.Len(), 2)

	assertPanics(t, func() { a.Get(id1) })
	assertPanics(t, func() { a.release(id1) })
	assertPanics(t, func() { a.Get(NoBox) })
}

func TestBoxStates(t *testing.T) {
	block := newBlock(200)
	txt := newText(block, "abc")
	c := NewContext()

	root := c.NewRootBox(block)
	tb := c.NewTextBox(txt, 0, 3)
	tu.AssertEqual(t, c.BoxState(tb), Unattached)
	tu.AssertEqual(t, c.BoxState(root), Attached)

	c.AddToLine(root, tb)
	tu.AssertEqual(t, c.BoxState(tb), Attached)

	c.ExtractLine(root)
	tu.AssertEqual(t, c.BoxState(tb), Extracted)
	tu.AssertEqual(t, c.FirstLineBox(txt), NoBox)
	tu.AssertEqual(t, c.FirstLineBox(block), NoBox)

	c.AttachLine(root)
	tu.AssertEqual(t, c.BoxState(tb), Attached)
	tu.AssertEqual(t, c.FirstLineBox(txt), tb)
	tu.AssertEqual(t, c.LineBoxes(block), []BoxID{root})

	c.DeleteLine(root)
	tu.AssertEqual(t, c.BoxState(tb), Destroyed)
	tu.AssertEqual(t, c.BoxState(root), Destroyed)
	tu.AssertEqual(t, c.Arena().Len(), 0)
	tu.AssertEqual(t, c.LineCount(block), 0)

	// stale handles are rejected
	assertPanics(t, func() { c.Box(tb) })
	assertPanics(t, func() { c.Destroy(tb) })
}

func TestAddToLineTwice(t *testing.T) {
	block := newBlock(200)
	txt := newText(block, "abc")
	c := NewContext()
	root := c.NewRootBox(block)
	tb := addText(c, root, txt)
	assertPanics(t, func() { c.AddToLine(root, tb) })
	// leaves have no children
	other := c.NewTextBox(txt, 0, 1)
	assertPanics(t, func() { c.AddToLine(tb, other) })
}

func checkSiblings(t *testing.T, c *Context, id BoxID, exp []BoxID) {
	t.Helper()
	c.CheckConsistency(id)
	tu.AssertEqual(t, c.Children(id), exp)
	b := c.Box(id)
	if len(exp) == 0 {
		tu.AssertEqual(t, b.FirstChild(), NoBox)
		tu.AssertEqual(t, b.LastChild(), NoBox)
		return
	}
	tu.AssertEqual(t, b.FirstChild(), exp[0])
	tu.AssertEqual(t, b.LastChild(), exp[len(exp)-1])
	for i, child := range exp {
		cb := c.Box(child)
		tu.AssertEqual(t, cb.Parent(), id)
		if i > 0 {
			tu.AssertEqual(t, cb.PrevOnLine(), exp[i-1])
		}
	}
}

func TestSiblingConsistency(t *testing.T) {
	block := newBlock(200)
	t1, t2, t3 := newText(block, "a"), newText(block, "b"), newText(block, "c")
	c := NewContext()
	root := c.NewRootBox(block)
	b1, b2, b3 := addText(c, root, t1), addText(c, root, t2), addText(c, root, t3)
	checkSiblings(t, c, root, []BoxID{b1, b2, b3})

	c.RemoveChild(root, b2)
	checkSiblings(t, c, root, []BoxID{b1, b3})
	tu.AssertEqual(t, c.BoxState(b2), Unattached)
	tu.AssertEqual(t, c.Box(root).IsDirty(), true)

	c.Remove(b1)
	checkSiblings(t, c, root, []BoxID{b3})
	c.AddToLine(root, b1)
	checkSiblings(t, c, root, []BoxID{b3, b1})
	c.Remove(b3)
	c.Remove(b1)
	checkSiblings(t, c, root, nil)

	assertPanics(t, func() { c.RemoveChild(root, b1) })
}

func TestSiblingPredicates(t *testing.T) {
	block := newBlock(200)
	span := newInline(block)
	t1, t2 := newText(span, "a"), newText(block, "b")
	c := NewContext()
	root := c.NewRootBox(block)
	flow := c.NewFlowBox(span)
	c.AddToLine(root, flow)
	b1 := addText(c, flow, t1)

	tu.AssertEqual(t, c.NextOnLineExists(b1), false)
	tu.AssertEqual(t, c.PrevOnLineExists(b1), false)

	// the cached value is invalidated when a box follows the flow
	b2 := addText(c, root, t2)
	tu.AssertEqual(t, c.NextOnLineExists(b1), true)
	tu.AssertEqual(t, c.PrevOnLineExists(b2), true)
	tu.AssertEqual(t, c.NextLeafChild(b1), b2)
	tu.AssertEqual(t, c.PrevLeafChild(b2), b1)
	tu.AssertEqual(t, c.FirstLeafChild(root), b1)
	tu.AssertEqual(t, c.LastLeafChild(root), b2)

	c.Remove(b2)
	tu.AssertEqual(t, c.NextOnLineExists(b1), false)
}

func TestRootResolution(t *testing.T) {
	block := newBlock(30)
	span := newInline(block)
	inner := newInline(span)
	txt := newText(inner, "hello world")
	c := NewContext()

	root := c.NewRootBox(block)
	flow := c.NewFlowBox(span)
	c.AddToLine(root, flow)
	innerFlow := c.NewFlowBox(inner)
	c.AddToLine(flow, innerFlow)
	tb := addText(c, innerFlow, txt)
	layoutLine(c, root, 0)

	for _, id := range []BoxID{root, flow, innerFlow, tb} {
		tu.AssertEqual(t, c.Root(id), root)
		tu.AssertEqual(t, c.Block(id), block)
	}

	c.PlaceEllipsis(root, "...", true, 0, 30, 21, NoBox)
	ellipsis := c.EllipsisBox(root)
	tu.AssertEqual(t, ellipsis.IsNone(), false)
	tu.AssertEqual(t, c.Root(ellipsis), root)

	detached := c.NewTextBox(txt, 0, 1)
	assertPanics(t, func() { c.Root(detached) })
}

func TestLineBoxLists(t *testing.T) {
	block := newBlock(200)
	span := newInline(block)
	txt := newText(span, "abcdef")
	c := NewContext()

	var roots, flows, texts []BoxID
	for i := 0; i < 3; i++ {
		root := c.NewRootBox(block)
		flow := c.NewFlowBox(span)
		c.AddToLine(root, flow)
		tb := c.NewTextBox(txt, 2*i, 2)
		c.AddToLine(flow, tb)
		roots, flows, texts = append(roots, root), append(flows, flow), append(texts, tb)
	}
	tu.AssertEqual(t, c.LineBoxes(block), roots)
	tu.AssertEqual(t, c.LineBoxes(span), flows)
	tu.AssertEqual(t, c.LineBoxes(txt), texts)
	tu.AssertEqual(t, c.LineCount(block), 3)
	tu.AssertEqual(t, c.LineAtIndex(block, 1), roots[1])
	tu.AssertEqual(t, c.LineAtIndex(block, 5), NoBox)
	tu.AssertEqual(t, c.PrevRootBox(roots[1]), roots[0])
	tu.AssertEqual(t, c.NextRootBox(roots[1]), roots[2])

	c.DeleteLine(roots[1])
	tu.AssertEqual(t, c.LineBoxes(block), []BoxID{roots[0], roots[2]})
	tu.AssertEqual(t, c.LineBoxes(span), []BoxID{flows[0], flows[2]})
	tu.AssertEqual(t, c.LineBoxes(txt), []BoxID{texts[0], texts[2]})

	// extracting a line also extracts the following ones
	c.ExtractLine(roots[0])
	tu.AssertEqual(t, c.LineBoxes(txt), []BoxID(nil))
	c.AttachLine(roots[0])
	tu.AssertEqual(t, c.LineBoxes(txt), []BoxID{texts[0], texts[2]})

	c.DeleteLines(block)
	tu.AssertEqual(t, c.Arena().Len(), 0)
}

func TestLineBreakBookkeeping(t *testing.T) {
	block := newBlock(200)
	t1, t2 := newText(block, "ab"), newText(block, "cd")
	c := NewContext()
	first := c.NewRootBox(block)
	addText(c, first, t1)
	c.Box(first).SetLineBreakInfo(LineBreakInfo{Object: t2, Pos: 0})
	second := c.NewRootBox(block)
	b2 := addText(c, second, t2)

	c.Remove(b2)
	tu.AssertEqual(t, c.Box(first).LineBreakInfo(), LineBreakInfo{})
	tu.AssertEqual(t, c.Box(first).IsDirty(), true)
}

func TestReplacedWrapper(t *testing.T) {
	block := newBlock(200)
	img := newReplaced(block, 20, 10)
	c := NewContext()
	root := c.NewRootBox(block)
	id := addReplaced(c, root, img)
	tu.AssertEqual(t, c.InlineBoxWrapper(img), id)

	// moving the box moves the object
	c.AdjustPosition(root, 5, 7)
	tu.AssertEqual(t, img.Frame, utils.Rect{X: 5, Y: 7, Width: 20, Height: 10})

	c.DeleteLine(root)
	tu.AssertEqual(t, c.InlineBoxWrapper(img), NoBox)
}

func TestSetConstructed(t *testing.T) {
	block := newBlock(200)
	span := newInline(block)
	txt := newText(span, "ab")
	c := NewContext()
	root := c.NewRootBox(block)
	flow := c.NewFlowBox(span)
	c.AddToLine(root, flow)
	tb := addText(c, flow, txt)
	c.SetConstructed(root)
	for _, id := range []BoxID{root, flow, tb} {
		tu.AssertEqual(t, c.Box(id).IsConstructed(), true)
	}

	c.DirtyLineBoxes(tb)
	for _, id := range []BoxID{root, flow, tb} {
		tu.AssertEqual(t, c.Box(id).IsDirty(), true)
	}
	c.MarkDirty(flow, false)
	tu.AssertEqual(t, c.Box(flow).IsDirty(), false)
}
