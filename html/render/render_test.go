package render

import (
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/benoitkugler/linebox/backend"
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
	tu "github.com/benoitkugler/linebox/utils/testutils"
)

func basicStyle() *pr.Style { return pr.NewStyle(text.NewFont(basicfont.Face7x13, 13)) }

func newView(width Fl) *Object {
	view := &Object{Kind: BlockKind, Style: basicStyle(), Block: &BlockData{IsView: true}}
	view.Frame = utils.Rect{Width: width, Height: 100}
	return view
}

func TestLineMetrics(t *testing.T) {
	style := basicStyle()
	txt := &Object{Kind: TextKind, Text: "abc", Style: style}
	tu.AssertEqual(t, txt.LineHeight(false, true, PositionOnContainingLine), Fl(13))
	tu.AssertEqual(t, txt.BaselinePosition(text.AlphabeticBaseline, false, true, PositionOnContainingLine), Fl(11))

	style = basicStyle()
	style.LineHeight = pr.Dimension{Value: 21, Unit: pr.Px}
	txt.Style = style
	// the half leading is added above the ascent
	tu.AssertEqual(t, txt.BaselinePosition(text.AlphabeticBaseline, false, true, PositionOnContainingLine), Fl(15))

	img := &Object{Kind: ReplacedKind, Style: basicStyle(), Baseline: -1}
	img.Style.Margin.Top = 2
	img.Frame = utils.Rect{Width: 20, Height: 10}
	tu.AssertEqual(t, img.LineHeight(false, true, PositionOnContainingLine), Fl(12))
	tu.AssertEqual(t, img.BaselinePosition(text.AlphabeticBaseline, false, true, PositionOnContainingLine), Fl(12))
	tu.AssertEqual(t, img.BaselinePosition(text.IdeographicBaseline, false, true, PositionOnContainingLine), Fl(6))

	img.IsInlineBlock, img.Baseline = true, 7
	tu.AssertEqual(t, img.BaselinePosition(text.AlphabeticBaseline, false, true, PositionOnContainingLine), Fl(9))
}

func TestFirstLineStyle(t *testing.T) {
	obj := &Object{Kind: InlineKind, Style: basicStyle()}
	tu.AssertEqual(t, obj.StyleFor(true), obj.Style)
	obj.FirstLineStyle = obj.Style.Copy()
	obj.FirstLineStyle.LineHeight = pr.Dimension{Value: 30, Unit: pr.Px}
	tu.AssertEqual(t, obj.LineHeight(true, true, PositionOnContainingLine), Fl(30))
	tu.AssertEqual(t, obj.LineHeight(false, true, PositionOnContainingLine), Fl(13))
}

func TestFloatsOffsets(t *testing.T) {
	block := newView(200)
	block.Block.Floats = []Float{
		{LogicalRect: utils.Rect{Width: 50, Height: 30}},
		{Right: true, LogicalRect: utils.Rect{X: 170, Y: 10, Width: 30, Height: 30}},
	}
	tu.AssertEqual(t, block.LogicalLeftOffsetForLine(0, false), Fl(50))
	tu.AssertEqual(t, block.LogicalRightOffsetForLine(0, false), Fl(200))
	tu.AssertEqual(t, block.AvailableLogicalWidthForLine(15, false), Fl(120))
	tu.AssertEqual(t, block.LogicalLeftOffsetForLine(30, false), Fl(0))
	tu.AssertEqual(t, block.NextFloatBottomBelow(0), Fl(30))
	tu.AssertEqual(t, block.NextFloatBottomBelow(30), Fl(40))
	tu.AssertEqual(t, block.NextFloatBottomBelow(40), Fl(-1))

	block.Style.TextIndent = pr.Dimension{Value: 10, Unit: pr.Px}
	tu.AssertEqual(t, block.LogicalLeftOffsetForLine(40, true), Fl(10))
}

func TestSelectionOffsets(t *testing.T) {
	view := newView(200)
	child := &Object{Kind: BlockKind, Style: basicStyle(), Block: &BlockData{}}
	child.Frame = utils.Rect{X: 10, Y: 20, Width: 100, Height: 40}
	view.AppendChild(child)

	cache := NewChildLogicalSelectionOffsetCaches(view, NewLogicalSelectionOffsetCaches(view))
	// lines starting at the content edge extend to the edge of the root
	tu.AssertEqual(t, child.LogicalLeftSelectionOffset(view, 5, cache), Fl(0))
	tu.AssertEqual(t, child.LogicalRightSelectionOffset(view, 5, cache), Fl(200))

	child.Block.Floats = []Float{{LogicalRect: utils.Rect{Width: 20, Height: 10}}}
	cache = NewChildLogicalSelectionOffsetCaches(view, NewLogicalSelectionOffsetCaches(view))
	tu.AssertEqual(t, child.LogicalLeftSelectionOffset(view, 5, cache), Fl(30))
	tu.AssertEqual(t, child.LogicalLeftSelectionOffset(view, 15, cache), Fl(0))
}

func TestSelectionOffsetCachesConsistency(t *testing.T) {
	checkSelectionOffsetCaches = true
	defer func() { checkSelectionOffsetCaches = false }()

	view := newView(200)
	child := &Object{Kind: BlockKind, Style: basicStyle(), Block: &BlockData{}}
	child.Frame = utils.Rect{X: 10, Y: 20, Width: 100, Height: 40}
	view.AppendChild(child)

	cache := NewChildLogicalSelectionOffsetCaches(view, NewLogicalSelectionOffsetCaches(view))
	tu.AssertEqual(t, child.LogicalLeftSelectionOffset(view, 5, cache), Fl(0))
	tu.AssertEqual(t, child.LogicalLeftSelectionOffset(view, 5, cache), Fl(0))

	// a float added after the offset was cached
	view.Block.Floats = []Float{{LogicalRect: utils.Rect{Width: 20, Height: 100}}}
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic for a stale offset")
		}
	}()
	child.LogicalLeftSelectionOffset(view, 5, cache)
}

func TestSelectionGaps(t *testing.T) {
	view := newView(200)
	cache := NewLogicalSelectionOffsetCaches(view)
	rec := backend.NewRecorder()

	gap := view.LogicalLeftSelectionGap(view, utils.Point{}, utils.Point{}, view, 30.5, 0, 13, cache, rec)
	tu.AssertEqual(t, gap, utils.Rect{Width: 30, Height: 13})
	tu.AssertEqual(t, rec.Filter("rect"), []string{"rect 0 0 30 13"})

	gap = view.LogicalRightSelectionGap(view, utils.Point{X: 5}, utils.Point{}, view, 150, 13, 13, cache, nil)
	tu.AssertEqual(t, gap, utils.Rect{X: 155, Y: 13, Width: 50, Height: 13})

	gap = view.LogicalRightSelectionGap(view, utils.Point{}, utils.Point{}, view, 250, 0, 13, cache, nil)
	tu.AssertEqual(t, gap.IsEmpty(), true)

	left, right := view.GetSelectionGapInfo(SelectionStart)
	tu.AssertEqual(t, [2]bool{left, right}, [2]bool{false, true})
	view.Style.Direction = pr.RTL
	left, right = view.GetSelectionGapInfo(SelectionStart)
	tu.AssertEqual(t, [2]bool{left, right}, [2]bool{true, false})
}

func TestContainingBlock(t *testing.T) {
	view := newView(200)
	div := &Object{Kind: BlockKind, Style: basicStyle(), Block: &BlockData{}}
	span := &Object{Kind: InlineKind, Style: basicStyle()}
	abs := &Object{Kind: ReplacedKind, Style: basicStyle()}
	abs.Style.Position = pr.Absolute
	view.AppendChild(div)
	div.AppendChild(span)
	span.AppendChild(abs)

	tu.AssertEqual(t, span.ContainingBlock(), div)
	tu.AssertEqual(t, abs.ContainingBlock(), view)
	div.Style.Position = pr.Relative
	tu.AssertEqual(t, abs.ContainingBlock(), div)
	tu.AssertEqual(t, abs.IsDescendantOf(view), true)
	tu.AssertEqual(t, abs.View(), view)
}

func TestRectBasedHitTest(t *testing.T) {
	var result HitTestResult
	node := &html.Node{Type: html.ElementNode, DataAtom: atom.Img, Data: "img"}
	img := &Object{Kind: ReplacedKind, Node: node, Style: basicStyle()}
	img.Frame = utils.Rect{Width: 20, Height: 20}

	// the area is contained in the image: the test stops
	loc := NewRectLocation(utils.Point{X: 10, Y: 10}, 2)
	tu.AssertEqual(t, img.HitTestReplaced(0, &result, loc, utils.Point{}), true)
	tu.AssertEqual(t, result.InnerObject, img)
	tu.AssertEqual(t, len(result.RectBasedNodes), 1)

	// the area overlaps: the test continues
	result = HitTestResult{}
	loc = NewRectLocation(utils.Point{X: 19, Y: 10}, 2)
	tu.AssertEqual(t, img.HitTestReplaced(0, &result, loc, utils.Point{}), false)
	tu.AssertEqual(t, len(result.RectBasedNodes), 1)

	// anonymous content never stops an area based test
	result = HitTestResult{}
	anonymous := &Object{Kind: ReplacedKind, Style: basicStyle()}
	anonymous.Frame = img.Frame
	loc = NewRectLocation(utils.Point{X: 10, Y: 10}, 2)
	tu.AssertEqual(t, anonymous.HitTestReplaced(0, &result, loc, utils.Point{}), false)
	tu.AssertEqual(t, len(result.RectBasedNodes), 0)

	result = HitTestResult{}
	loc = NewPointLocation(utils.Point{X: 25, Y: 10})
	tu.AssertEqual(t, img.HitTestReplaced(0, &result, loc, utils.Point{}), false)
	tu.AssertEqual(t, img.HitTestReplaced(0, &result, loc, utils.Point{X: 10}), true)
	tu.AssertEqual(t, result.LocalPoint, utils.Point{X: 15, Y: 10})
}

func TestTextRun(t *testing.T) {
	style := basicStyle()
	run := ConstructTextRun("ab cd", style, false, 0)
	tu.AssertEqual(t, run.Width(), Fl(35))
	tu.AssertEqual(t, run.WidthOfPrefix(2), Fl(14))
	tu.AssertEqual(t, run.OffsetForPosition(15), 2)
}

func loadHTML(t *testing.T, input string) *Object {
	t.Helper()
	root, err := FromHTML(strings.NewReader(input), LoadOptions{Width: 300})
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestFromHTML(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	root := loadHTML(t, `<p>Hello <b>world</b><br><img width=20 height=10></p>`)
	tu.AssertEqual(t, root.IsView(), true)
	tu.AssertEqual(t, root.Frame.Width, Fl(300))
	tu.AssertEqual(t, len(root.Children), 1)
	p := root.Children[0]
	tu.AssertEqual(t, p.Kind, BlockKind)
	tu.AssertEqual(t, p.ChildrenInline(), true)

	var kinds []Kind
	for _, c := range p.Children {
		kinds = append(kinds, c.Kind)
	}
	tu.AssertEqual(t, kinds, []Kind{TextKind, InlineKind, LineBreakKind, ReplacedKind})
	tu.AssertEqual(t, p.Children[0].Text, "Hello ")
	tu.AssertEqual(t, p.Children[3].Frame, utils.Rect{Width: 20, Height: 10})
	// the text inherits the style of its element
	b := p.Children[1]
	tu.AssertEqual(t, b.Children[0].Style, b.Style)
	tu.AssertEqual(t, p.Children[0].Style, p.Style)
}

func TestFromHTMLAnonymousBlocks(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	root := loadHTML(t, `<div>
		some <i>text</i>
		<p>para</p>
	</div>`)
	div := root.Children[0]
	tu.AssertEqual(t, len(div.Children), 2)
	anon := div.Children[0]
	tu.AssertEqual(t, anon.IsAnonymousBlock(), true)
	tu.AssertEqual(t, anon.Parent, div)
	tu.AssertEqual(t, anon.Children[0].Text, " some ")
	tu.AssertEqual(t, div.Children[1].Children[0].Text, "para")
}

func TestFromHTMLStyleAttribute(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	root := loadHTML(t, `<p style="text-align: center; line-height: 20px; padding: 1px 2px; color: #f00">
		<span style="vertical-align: -3px; font-size: 2em; text-overflow: ellipsis">a</span>
		<img style="float: right" width=10 height=10>
	</p>`)
	p := root.Children[0]
	tu.AssertEqual(t, p.Style.TextAlign, pr.TaCenter)
	tu.AssertEqual(t, p.Style.LineHeight, pr.Dimension{Value: 20, Unit: pr.Px})
	tu.AssertEqual(t, p.Style.Padding, pr.Edges{Top: 1, Right: 2, Bottom: 1, Left: 2})
	tu.AssertEqual(t, p.Style.Color, pr.RGBA{R: 1, A: 1})

	span := p.Children[0]
	tu.AssertEqual(t, span.Kind, InlineKind)
	tu.AssertEqual(t, span.Style.VerticalAlign, pr.VerticalAlign{Keyword: pr.VaLength, Length: pr.Dimension{Value: -3, Unit: pr.Px}})
	tu.AssertEqual(t, span.Style.Font.Size(), Fl(32))
	tu.AssertEqual(t, span.Style.TextOverflow, pr.TextOverflowEllipsis)
	// inherited
	tu.AssertEqual(t, span.Style.Color, pr.RGBA{R: 1, A: 1})

	tu.AssertEqual(t, len(p.Block.Floats), 1)
	tu.AssertEqual(t, p.Block.Floats[0].Right, true)
	tu.AssertEqual(t, p.Block.Floats[0].Object.IsFloating(), true)
}

func TestFromHTMLInvalidStyle(t *testing.T) {
	logs := tu.CaptureLogs()
	root := loadHTML(t, `<p style="colour: red; line-height: big"><span style="direction: up">x</span></p>`)
	tu.AssertEqual(t, len(logs.Logs()), 3)
	logs.CheckContains(t, `unsupported CSS property "colour"`)
	logs.CheckContains(t, `invalid value "big" for line-height`)
	logs.CheckContains(t, `invalid value "up" for direction`)
	// invalid values are ignored
	tu.AssertEqual(t, root.Children[0].Style.LineHeight, pr.NormalLineHeight)
}

func TestFromHTMLList(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	root := loadHTML(t, `<ul><li>one</li></ul>`)
	li := root.Children[0].Children[0]
	tu.AssertEqual(t, li.Kind, BlockKind)
	marker := li.Children[0]
	tu.AssertEqual(t, marker.IsInsideListMarker(), true)
	tu.AssertEqual(t, marker.IsReplaced(), true)
	tu.AssertEqual(t, li.Children[1].Text, "one")
}
