package layout

import (
	"testing"

	"github.com/benoitkugler/linebox/html/render"
	tu "github.com/benoitkugler/linebox/utils/testutils"
)

type runSpan struct {
	start, end int
	level      uint8
}

func spans(runs []Run) []runSpan {
	out := make([]runSpan, len(runs))
	for i, r := range runs {
		out[i] = runSpan{r.Start, r.End, r.Level}
	}
	return out
}

func TestItemsToRunsLTR(t *testing.T) {
	view := newView(100)
	txt := newText(view, "abc def")
	runs := ItemsToRuns([]Item{{Object: txt, Start: 0, End: 7}}, false)
	tu.AssertEqual(t, spans(runs), []runSpan{{0, 7, 0}})
}

func TestItemsToRunsNumbersInRTL(t *testing.T) {
	view := newView(200)
	txt := newText(view, "אבג 123 דה")
	runs := ItemsToRuns([]Item{{Object: txt, Start: 0, End: 10}}, false)
	// the number keeps its place inside the right to left sequence
	tu.AssertEqual(t, spans(runs), []runSpan{{7, 10, 1}, {4, 7, 2}, {0, 4, 1}})
}

func TestItemsToRunsAtomic(t *testing.T) {
	view := newView(100)
	txt := newText(view, "ab")
	img := newReplaced(view, 10, 10)
	runs := ItemsToRuns([]Item{{Object: txt, Start: 0, End: 2}, {Object: img}}, false)
	tu.AssertEqual(t, len(runs), 2)
	tu.AssertEqual(t, runs[1].Object, img)
	tu.AssertEqual(t, logicallyLastRun(runs), 1)
}

func TestReorderRuns(t *testing.T) {
	runs := []Run{
		{Start: 0, Level: 0},
		{Start: 1, Level: 1},
		{Start: 2, Level: 2},
		{Start: 3, Level: 1},
		{Start: 4, Level: 0},
	}
	reorderRuns(runs)
	var starts []int
	for _, r := range runs {
		starts = append(starts, r.Start)
	}
	tu.AssertEqual(t, starts, []int{0, 3, 2, 1, 4})
}

func textRuns(obj *render.Object, bounds ...[2]int) []Run {
	var runs []Run
	for i, b := range bounds {
		runs = append(runs, Run{Object: obj, Start: b[0], End: b[1], logical: i})
	}
	return runs
}

func TestHandleTrailingSpaces(t *testing.T) {
	view := newView(100)
	txt := newText(view, "ab  ")

	runs, index := handleTrailingSpaces(textRuns(txt, [2]int{0, 4}), true)
	tu.AssertEqual(t, index, 1)
	tu.AssertEqual(t, spans(runs), []runSpan{{0, 2, 0}, {2, 4, 0}})

	// right to left lines get the spaces on their left
	runs, index = handleTrailingSpaces(textRuns(txt, [2]int{0, 4}), false)
	tu.AssertEqual(t, index, 0)
	tu.AssertEqual(t, spans(runs), []runSpan{{2, 4, 1}, {0, 2, 0}})

	runs, index = handleTrailingSpaces(textRuns(txt, [2]int{0, 2}), true)
	tu.AssertEqual(t, index, -1)
	tu.AssertEqual(t, len(runs), 1)
}

func TestHandleTrailingSpacesWholeRun(t *testing.T) {
	view := newView(100)
	txt := newText(view, "ab  ")
	// in visual order, the space run is not at the end
	runs := []Run{
		{Object: txt, Start: 2, End: 4, logical: 1},
		{Object: txt, Start: 0, End: 2, logical: 0},
	}
	runs, index := handleTrailingSpaces(runs, true)
	tu.AssertEqual(t, index, 1)
	tu.AssertEqual(t, spans(runs), []runSpan{{0, 2, 0}, {2, 4, 0}})
}

func TestBreakerPositions(t *testing.T) {
	view := newView(50)
	txt := newText(view, "  aaa bbb ccc")
	lb := newLineBreaker(view)

	line := lb.nextLine(0, LineInfo{IsFirstLine: true})
	// leading spaces are skipped
	tu.AssertEqual(t, line.items, []Item{{Object: txt, Start: 2, End: 10}})
	tu.AssertEqual(t, line.reachedEnd, false)
	tu.AssertEqual(t, line.next.Pos, 10)

	line = lb.nextLine(13, LineInfo{})
	tu.AssertEqual(t, line.items, []Item{{Object: txt, Start: 10, End: 13}})
	tu.AssertEqual(t, line.reachedEnd, true)
	tu.AssertEqual(t, lb.atEnd(), true)
}

func TestBreakerOpportunities(t *testing.T) {
	view := newView(30)
	txt := newText(view, "日本語のテキスト")
	lb := newLineBreaker(view)

	// ideographs may be broken anywhere
	line := lb.nextLine(0, LineInfo{IsFirstLine: true})
	tu.AssertEqual(t, line.items, []Item{{Object: txt, Start: 0, End: 4}})
	line = lb.nextLine(13, LineInfo{})
	tu.AssertEqual(t, line.items, []Item{{Object: txt, Start: 4, End: 8}})
	tu.AssertEqual(t, line.reachedEnd, true)

	view = newView(35)
	txt = newText(view, "foo-bar")
	lb = newLineBreaker(view)
	line = lb.nextLine(0, LineInfo{IsFirstLine: true})
	tu.AssertEqual(t, line.items, []Item{{Object: txt, Start: 0, End: 4}})
	tu.AssertEqual(t, line.next.Pos, 4)
}

func TestBreakerSkipsFloats(t *testing.T) {
	view := newView(50)
	img := newReplaced(view, 10, 10)
	view.Block.Floats = append(view.Block.Floats, render.Float{Object: img})
	txt := newText(view, "ab")
	tu.AssertEqual(t, collectItems(view), []Item{{Object: txt, End: 2}})
}
