package inline

import (
	"testing"

	"github.com/benoitkugler/linebox/html/render"
	tu "github.com/benoitkugler/linebox/utils/testutils"
)

// helloLine lays out "hello world" (77 pixels wide) in a block of width [width].
func helloLine(width Fl) (*Context, *render.Object, *render.Object, BoxID, BoxID) {
	block := newBlock(width)
	txt := newText(block, "hello world")
	c := NewContext()
	root := c.NewRootBox(block)
	c.Box(root).SetFirstLineStyle(true)
	tb := addText(c, root, txt)
	layoutLine(c, root, 0)
	return c, block, txt, root, tb
}

func TestPlaceEllipsis(t *testing.T) {
	c, _, _, root, tb := helloLine(50)

	tu.AssertEqual(t, c.LineCanAccommodateEllipsis(root, true, 50, 77, 21), true)

	width := c.PlaceEllipsis(root, "...", true, 0, 50, 21, NoBox)
	tu.AssertEqual(t, width, Fl(49))
	tu.AssertEqual(t, c.Box(tb).Text.Truncation, 4)

	ellipsis := c.EllipsisBox(root)
	eb := c.Box(ellipsis)
	tu.AssertEqual(t, eb.Kind, Ellipsis)
	tu.AssertEqual(t, eb.X, Fl(28))
	tu.AssertEqual(t, eb.LogicalWidth, Fl(21))
	tu.AssertEqual(t, eb.EllipsisString(), "...")
	tu.AssertEqual(t, c.LogicalHeight(ellipsis), Fl(13))
	tu.AssertEqual(t, c.Box(root).IsWholeLineTruncated(), false)
}

func TestPlaceEllipsisTwice(t *testing.T) {
	c, _, _, root, tb := helloLine(50)

	c.PlaceEllipsis(root, "...", true, 0, 50, 21, NoBox)
	first := c.EllipsisBox(root)
	c.PlaceEllipsis(root, "...", true, 0, 50, 21, NoBox)

	// the previous ellipsis is replaced, not leaked
	tu.AssertEqual(t, len(c.ellipses), 1)
	tu.AssertEqual(t, c.Arena().Len(), 3)
	tu.AssertEqual(t, c.Arena().IsLive(first), false)
	tu.AssertEqual(t, c.Box(tb).Text.Truncation, 4)

	// a wider placement resets the truncation of the text
	second := c.EllipsisBox(root)
	width := c.PlaceEllipsis(root, "...", true, 0, 200, 21, NoBox)
	tu.AssertEqual(t, width, Fl(98))
	tu.AssertEqual(t, c.Arena().IsLive(second), false)
	tu.AssertEqual(t, c.Arena().Len(), 3)
	tu.AssertEqual(t, c.Box(tb).Text.Truncation, NoTruncation)
	tu.AssertEqual(t, c.Box(c.EllipsisBox(root)).X, Fl(77))

	c.ClearTruncation(root)
	tu.AssertEqual(t, c.Arena().Len(), 2)
	tu.AssertEqual(t, c.EllipsisBox(root), NoBox)
	tu.AssertEqual(t, c.Box(tb).Text.Truncation, NoTruncation)

	// nothing to clear
	c.ClearTruncation(root)
	tu.AssertEqual(t, c.Arena().Len(), 2)
}

func TestEllipsisFollowsShortLine(t *testing.T) {
	c, _, _, root, tb := helloLine(200)

	width := c.PlaceEllipsis(root, "...", true, 0, 200, 21, NoBox)
	tu.AssertEqual(t, width, Fl(98))
	tu.AssertEqual(t, c.Box(c.EllipsisBox(root)).X, Fl(77))
	tu.AssertEqual(t, c.Box(tb).Text.Truncation, NoTruncation)
}

func TestDeleteLineWithEllipsis(t *testing.T) {
	c, block, _, root, _ := helloLine(50)
	c.PlaceEllipsis(root, "...", true, 0, 50, 21, NoBox)
	ellipsis := c.EllipsisBox(root)
	tu.AssertEqual(t, c.Root(ellipsis), root)

	c.DeleteLines(block)
	tu.AssertEqual(t, c.Arena().Len(), 0)
	tu.AssertEqual(t, len(c.ellipses), 0)
	tu.AssertEqual(t, c.Arena().IsLive(ellipsis), false)
}

func TestEllipsisNoRoom(t *testing.T) {
	c, _, _, root, _ := helloLine(50)
	// the whole line is narrower than the ellipsis
	tu.AssertEqual(t, c.LineCanAccommodateEllipsis(root, true, 50, 77, 100), false)
}

func TestEllipsisVisibleEdgesArePixels(t *testing.T) {
	block := newBlock(52)
	img := newReplaced(block, 10.5, 10)
	txt := newText(block, "hello world")
	c := NewContext()
	root := c.NewRootBox(block)
	c.Box(root).SetFirstLineStyle(true)
	addReplaced(c, root, img)
	tb := addText(c, root, txt)
	c.Box(tb).BidiLevel = 1
	layoutLine(c, root, 0)
	tu.AssertEqual(t, c.Box(tb).X, Fl(10.5))

	// the visible left edge after the image is 10, leaving 21 pixels
	// of right to left text before the ellipsis
	c.PlaceEllipsis(root, "...", true, 0, 52, 21, NoBox)
	tu.AssertEqual(t, c.Box(tb).Text.Truncation, 3)
	tu.AssertEqual(t, c.Box(c.EllipsisBox(root)).X, Fl(45))
}

func TestEllipsisWholeLineTruncated(t *testing.T) {
	block := newBlock(30)
	img := newReplaced(block, 40, 10)
	txt := newText(block, "ab")
	c := NewContext()
	root := c.NewRootBox(block)
	c.Box(root).SetFirstLineStyle(true)
	addReplaced(c, root, img)
	tb := addText(c, root, txt)
	layoutLine(c, root, 0)

	// no box can hold the ellipsis: it goes against the block end
	width := c.PlaceEllipsis(root, "...", true, 0, 30, 21, NoBox)
	tu.AssertEqual(t, width, Fl(30))
	tu.AssertEqual(t, c.Box(c.EllipsisBox(root)).X, Fl(9))
	tu.AssertEqual(t, c.Box(tb).Text.Truncation, FullTruncation)
	tu.AssertEqual(t, c.Box(root).IsWholeLineTruncated(), true)

	c.ClearTruncation(root)
	tu.AssertEqual(t, c.Box(root).IsWholeLineTruncated(), false)
	tu.AssertEqual(t, c.Box(tb).Text.Truncation, NoTruncation)
}
