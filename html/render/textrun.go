package render

import (
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/text"
)

// TextRun is a piece of text measured with one font.
type TextRun struct {
	Text                       string
	Font                       *text.Font
	RTL                        bool
	LetterSpacing, WordSpacing Fl
	// Expansion is the extra space distributed
	// on the spaces of the run by justification.
	Expansion Fl
}

// ConstructTextRun returns the run of [s] drawn with [style].
func ConstructTextRun(s string, style *pr.Style, rtl bool, expansion Fl) TextRun {
	return TextRun{
		Text:          s,
		Font:          style.Font,
		RTL:           rtl,
		LetterSpacing: style.LetterSpacing,
		WordSpacing:   style.WordSpacing,
		Expansion:     expansion,
	}
}

func (tr TextRun) spaces() int {
	n := 0
	for _, r := range tr.Text {
		if r == ' ' {
			n++
		}
	}
	return n
}

// expansionPerSpace returns the extra advance of each space.
func (tr TextRun) expansionPerSpace() Fl {
	if tr.Expansion == 0 {
		return 0
	}
	if n := tr.spaces(); n != 0 {
		return tr.Expansion / Fl(n)
	}
	return 0
}

// Width returns the advance of the whole run.
func (tr TextRun) Width() Fl {
	return tr.Font.Width(tr.Text, tr.LetterSpacing, tr.WordSpacing) + tr.Expansion
}

// WidthOfPrefix returns the advance of the first [n] characters.
func (tr TextRun) WidthOfPrefix(n int) Fl {
	prefix := text.Prefix(tr.Text, n)
	w := tr.Font.Width(prefix, tr.LetterSpacing, tr.WordSpacing)
	if exp := tr.expansionPerSpace(); exp != 0 {
		w += exp * Fl(TextRun{Text: prefix}.spaces())
	}
	return w
}

// OffsetForPosition returns the number of characters
// entirely visible before [x], measured from the start of the run.
func (tr TextRun) OffsetForPosition(x Fl) int {
	if tr.Expansion == 0 {
		return tr.Font.OffsetForPosition(tr.Text, x, tr.RTL, tr.LetterSpacing, tr.WordSpacing)
	}
	if tr.RTL {
		x = tr.Width() - x
	}
	n := text.RuneCount(tr.Text)
	for i := 1; i <= n; i++ {
		if tr.WidthOfPrefix(i) > x {
			return i - 1
		}
	}
	return n
}
