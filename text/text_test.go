package text

import (
	"testing"

	"golang.org/x/image/font/basicfont"

	tu "github.com/benoitkugler/linebox/utils/testutils"
)

func basicFont() *Font { return NewFont(basicfont.Face7x13, 13) }

func TestFontMetrics(t *testing.T) {
	m := basicFont().Metrics()
	tu.AssertEqual(t, m.Ascent(AlphabeticBaseline), Fl(11))
	tu.AssertEqual(t, m.Descent(AlphabeticBaseline), Fl(2))
	tu.AssertEqual(t, m.Height(), Fl(13))
	tu.AssertEqual(t, m.LineSpacing(), Fl(13))
	// the ideographic baseline centers the font box
	tu.AssertEqual(t, m.Ascent(IdeographicBaseline), Fl(7))
	tu.AssertEqual(t, m.Descent(IdeographicBaseline), Fl(6))
}

func TestIdenticalMetrics(t *testing.T) {
	a := NewFontMetrics(10.2, 3, 1, 5)
	b := NewFontMetrics(9.8, 3.1, 0.9, 4)
	if !a.HasIdenticalAscentDescentAndLineGap(b) {
		t.Fatal("rounded metrics should be equal")
	}
	c := NewFontMetrics(12, 3, 1, 5)
	if a.HasIdenticalAscentDescentAndLineGap(c) {
		t.Fatal("ascents differ")
	}
}

func TestWidth(t *testing.T) {
	f := basicFont()
	tu.AssertEqual(t, f.Width("abcd", 0, 0), Fl(28))
	tu.AssertEqual(t, f.Width("ab", 1, 0), Fl(16))
	// the leading space does not receive word spacing
	tu.AssertEqual(t, f.Width(" a b", 0, 3), Fl(28+3))
}

func TestOffsetForPosition(t *testing.T) {
	f := basicFont()
	tu.AssertEqual(t, f.OffsetForPosition("hello", 0, false, 0, 0), 0)
	tu.AssertEqual(t, f.OffsetForPosition("hello", 6.9, false, 0, 0), 0)
	tu.AssertEqual(t, f.OffsetForPosition("hello", 7, false, 0, 0), 1)
	tu.AssertEqual(t, f.OffsetForPosition("hello", 20, false, 0, 0), 2)
	tu.AssertEqual(t, f.OffsetForPosition("hello", 100, false, 0, 0), 5)
	// measured from the right edge
	tu.AssertEqual(t, f.OffsetForPosition("hello", 21, true, 0, 0), 2)
}

func TestPrefix(t *testing.T) {
	tu.AssertEqual(t, Prefix("héllo", 2), "hé")
	tu.AssertEqual(t, Prefix("abc", 0), "")
	tu.AssertEqual(t, Prefix("abc", 5), "abc")
}

func TestEmphasisMarkHeight(t *testing.T) {
	f := basicFont()
	tu.AssertEqual(t, f.EmphasisMarkHeight(""), Fl(0))
	tu.AssertEqual(t, f.EmphasisMarkHeight("•"), Fl(6+1))
}

func TestBidiRuns(t *testing.T) {
	tu.AssertEqual(t, BidiRuns("", false), []BidiRun(nil))
	tu.AssertEqual(t, BidiRuns("abc", false), []BidiRun{{Start: 0, End: 3, Level: 0}})
	tu.AssertEqual(t, BidiRuns("abc", true), []BidiRun{{Start: 0, End: 3, Level: 2}})

	// neutrals between opposite directions take the paragraph direction
	tu.AssertEqual(t, BidiRuns("ab אב cd", false), []BidiRun{
		{Start: 0, End: 3, Level: 0},
		{Start: 3, End: 5, Level: 1},
		{Start: 5, End: 8, Level: 0},
	})
	tu.AssertEqual(t, BidiRuns("אב cd", true), []BidiRun{
		{Start: 0, End: 3, Level: 1},
		{Start: 3, End: 5, Level: 2},
	})
}

func TestBidiRunsNumbers(t *testing.T) {
	// numbers inside a right to left run are embedded one level deeper
	tu.AssertEqual(t, BidiRuns("אבג 123 דה", false), []BidiRun{
		{Start: 0, End: 4, Level: 1},
		{Start: 4, End: 7, Level: 2},
		{Start: 7, End: 10, Level: 1},
	})
	// the separator between two numbers joins them
	tu.AssertEqual(t, BidiRuns("א 1.5", false), []BidiRun{
		{Start: 0, End: 2, Level: 1},
		{Start: 2, End: 5, Level: 2},
	})
	// numbers following latin text stay left to right
	tu.AssertEqual(t, BidiRuns("ab 12", false), []BidiRun{{Start: 0, End: 5, Level: 0}})
	// after Arabic letters, numbers are Arabic numbers
	tu.AssertEqual(t, BidiRuns("ب 12", false), []BidiRun{
		{Start: 0, End: 2, Level: 1},
		{Start: 2, End: 4, Level: 2},
	})
	// trailing whitespace gets the paragraph level
	tu.AssertEqual(t, BidiRuns("אב  ", false), []BidiRun{
		{Start: 0, End: 2, Level: 1},
		{Start: 2, End: 4, Level: 0},
	})
}

func TestHasVerticalGlyphs(t *testing.T) {
	if HasVerticalGlyphs("latin text") {
		t.Fatal("latin is not vertical")
	}
	if !HasVerticalGlyphs("abc 漢字") {
		t.Fatal("han is set upright")
	}
}

func TestFontConfiguration(t *testing.T) {
	fc := NewFontConfiguration()
	f1, err := fc.Font(FontDescription{Family: []string{"serif"}, Size: 16, Weight: 400})
	if err != nil {
		t.Fatal(err)
	}
	f2, _ := fc.Font(FontDescription{Family: []string{"serif"}, Size: 16, Weight: 400})
	if f1 != f2 {
		t.Fatal("fonts should be cached")
	}
	if f1.Metrics().Ascent(AlphabeticBaseline) <= 0 || f1.Width("abc", 0, 0) <= 0 {
		t.Fatal("invalid metrics")
	}

	logs := tu.CaptureLogs()
	_, err = fc.Font(FontDescription{Family: []string{"unknown"}, Size: 12})
	if err != nil {
		t.Fatal(err)
	}
	logs.CheckContains(t, "no font face")

	if err := fc.AddFontFace("broken", FSyNormal, 400, []byte("not a font")); err == nil {
		t.Fatal("expected an error for an invalid font file")
	}
}
