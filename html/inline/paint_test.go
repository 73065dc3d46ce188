package inline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/benoitkugler/linebox/backend"
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/utils"
	tu "github.com/benoitkugler/linebox/utils/testutils"
)

func paintForeground(c *Context, block *render.Object) *backend.Recorder {
	rec := backend.NewRecorder()
	info := render.PaintInfo{Canvas: rec, Rect: utils.Rect{Width: 200, Height: 100}, Phase: render.PaintPhaseForeground}
	c.PaintLines(block, &info, utils.Point{X: 10, Y: 20})
	return rec
}

func TestPaintText(t *testing.T) {
	c, block, _, _, _ := helloLine(200)
	rec := paintForeground(c, block)
	// the baseline is at 20 + 11
	tu.AssertEqual(t, rec.Filter("text"), []string{`text "hello world" 10 31`})
	tu.AssertEqual(t, rec.Filter("fill-color"), []string{"fill-color 0 0 0 1"})
}

func TestPaintTruncatedText(t *testing.T) {
	c, block, _, root, _ := helloLine(50)
	c.PlaceEllipsis(root, "...", true, 0, 50, 21, NoBox)
	rec := paintForeground(c, block)
	tu.AssertEqual(t, rec.Filter("text"), []string{`text "hell" 10 31`, `text "..." 38 31`})
}

func TestPaintDamageRect(t *testing.T) {
	c, block, _, _, _ := helloLine(200)
	rec := backend.NewRecorder()

	// below the line
	info := render.PaintInfo{Canvas: rec, Rect: utils.Rect{Y: 100, Width: 200, Height: 100}, Phase: render.PaintPhaseForeground}
	c.PaintLines(block, &info, utils.Point{X: 10, Y: 20})
	tu.AssertEqual(t, len(rec.Ops), 0)

	// on the right of the text
	info = render.PaintInfo{Canvas: rec, Rect: utils.Rect{X: 150, Width: 50, Height: 100}, Phase: render.PaintPhaseForeground}
	c.PaintLines(block, &info, utils.Point{X: 10, Y: 20})
	tu.AssertEqual(t, len(rec.Filter("text")), 0)

	// phases without inline content
	info = render.PaintInfo{Canvas: rec, Rect: utils.Rect{Width: 200, Height: 100}, Phase: render.PaintPhaseBlockBackground}
	c.PaintLines(block, &info, utils.Point{X: 10, Y: 20})
	tu.AssertEqual(t, len(rec.Ops), 0)
}

func TestPaintSelection(t *testing.T) {
	c, block, txt, _, tb := helloLine(200)
	txt.Selection = render.Selection{State: render.SelectionBoth, Start: 2, End: 5}
	tu.AssertEqual(t, c.SelectionState(tb), render.SelectionBoth)

	rec := paintForeground(c, block)
	// clip to the box, then highlight "llo"
	tu.AssertEqual(t, rec.Filter("rect"), []string{"rect 10 20 77 13", "rect 24 20 21 13"})
	tu.AssertEqual(t, rec.Filter("fill-color")[0], "fill-color 0.7 0.84 1 1")
	tu.AssertEqual(t, rec.Filter("text")[0], `text "hello world" 10 31`)
}

func TestPaintInvisibleText(t *testing.T) {
	c, block, txt, _, _ := helloLine(200)
	txt.Style.Visibility = pr.Hidden
	rec := paintForeground(c, block)
	tu.AssertEqual(t, len(rec.Filter("text")), 0)
}

func hitTest(c *Context, block *render.Object, x, y Fl) (render.HitTestResult, bool) {
	var result render.HitTestResult
	location := render.NewPointLocation(utils.Point{X: x, Y: y})
	ok := c.HitTestLines(block, render.HitTestReadOnly, &result, location, utils.Point{X: 10, Y: 20})
	return result, ok
}

func TestHitTestText(t *testing.T) {
	c, block, txt, _, _ := helloLine(200)

	result, ok := hitTest(c, block, 15, 25)
	tu.AssertEqual(t, ok, true)
	tu.AssertEqual(t, result.InnerObject, txt)
	tu.AssertEqual(t, result.LocalPoint, utils.Point{X: 5, Y: 5})

	// below the line
	_, ok = hitTest(c, block, 15, 40)
	tu.AssertEqual(t, ok, false)
}

func TestHitTestEllipsis(t *testing.T) {
	c, block, _, root, _ := helloLine(50)
	c.PlaceEllipsis(root, "...", true, 0, 50, 21, NoBox)

	// the ellipsis starts at 10 + 28
	result, ok := hitTest(c, block, 45, 25)
	tu.AssertEqual(t, ok, true)
	tu.AssertEqual(t, result.InnerObject, block)
	tu.AssertEqual(t, result.LocalPoint, utils.Point{X: 7, Y: 5})
}

func TestPaintWholeLineTruncated(t *testing.T) {
	block := newBlock(30)
	img := newReplaced(block, 40, 10)
	drawn := 0
	img.Draw = func(backend.Canvas, utils.Rect) { drawn++ }
	txt := newText(block, "ab")
	c := NewContext()
	root := c.NewRootBox(block)
	c.Box(root).SetFirstLineStyle(true)
	addReplaced(c, root, img)
	addText(c, root, txt)
	layoutLine(c, root, 0)

	paintForeground(c, block)
	tu.AssertEqual(t, drawn, 1)
	result, _ := hitTest(c, block, 12, 25)
	tu.AssertEqual(t, result.InnerObject, img)

	c.PlaceEllipsis(root, "...", true, 0, 30, 21, NoBox)
	rec := paintForeground(c, block)
	tu.AssertEqual(t, drawn, 1)
	tu.AssertEqual(t, rec.Filter("text"), []string{`text "..." 19 31`})

	// the image under the ellipsis is not hit
	result, _ = hitTest(c, block, 12, 25)
	tu.AssertEqual(t, result.InnerObject, block)
}

func TestDump(t *testing.T) {
	c, block, _, root, _ := helloLine(50)
	c.PlaceEllipsis(root, "...", true, 0, 50, 21, NoBox)

	var buf bytes.Buffer
	c.Dump(&buf, block)
	out := buf.String()
	for _, part := range []string{
		"Block: 1 line(s)",
		"line 0 [top 0 bottom 13",
		`"hello world" truncated at 4`,
		`Ellipsis #3.0 (28, 0) w=21 h=13 "..."`,
	} {
		tu.AssertEqual(t, strings.Contains(out, part), true)
	}
}
