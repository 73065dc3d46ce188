package layout

import (
	"strings"

	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/text"
)

// objectReplacementChar stands for the atomic objects
// when resolving the bidi levels of a line.
const objectReplacementChar = '\ufffc'

// Item is a piece of the inline content of a block:
// the characters [Start, End) of a text object, or a whole
// line break, replaced or positioned object.
type Item struct {
	Object     *render.Object
	Start, End int // in runes, for text objects
}

func (it Item) String() string {
	if it.Object.IsText() {
		return it.Object.Text[runeOffset(it.Object.Text, it.Start):runeOffset(it.Object.Text, it.End)]
	}
	return string(objectReplacementChar)
}

// Run is a part of an [Item] with a single bidi embedding level.
// Runs of a line are stored in visual order.
type Run struct {
	Object     *render.Object
	Start, End int
	Level      uint8

	// logical is the index of the run in logical order
	logical int

	// Box is the box created for the run by [ConstructLine].
	Box inline.BoxID
}

// runeOffset returns the byte offset of the [n]-th rune of [s].
func runeOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}

// ItemsToRuns resolves the bidi levels of the items of a line,
// splitting them at the level changes, and returns the runs in visual order.
// [rtl] is the base direction of the paragraph.
func ItemsToRuns(items []Item, rtl bool) []Run {
	var (
		paragraph strings.Builder
		offsets   = make([]int, len(items)) // rune offset of each item in the paragraph
		offset    int
	)
	for i, it := range items {
		offsets[i] = offset
		s := it.String()
		paragraph.WriteString(s)
		offset += text.RuneCount(s)
	}

	levels := text.BidiRuns(paragraph.String(), rtl)
	levelAt := func(pos int) uint8 {
		for _, l := range levels {
			if pos >= l.Start && pos < l.End {
				return l.Level
			}
		}
		if rtl {
			return 1
		}
		return 0
	}

	var runs []Run
	for i, it := range items {
		if !it.Object.IsText() || it.End == it.Start {
			runs = append(runs, Run{Object: it.Object, Start: it.Start, End: it.End, Level: levelAt(offsets[i])})
			continue
		}
		start := it.Start
		for start < it.End {
			level := levelAt(offsets[i] + start - it.Start)
			end := start + 1
			for end < it.End && levelAt(offsets[i]+end-it.Start) == level {
				end++
			}
			runs = append(runs, Run{Object: it.Object, Start: start, End: end, Level: level})
			start = end
		}
	}
	for i := range runs {
		runs[i].logical = i
	}

	reorderRuns(runs)
	return runs
}

// reorderRuns applies the rule L2 of the Unicode bidi algorithm:
// from the highest level to the lowest odd level, any
// sequence of runs at that level or higher is reversed.
func reorderRuns(runs []Run) {
	var maxLevel, minOddLevel uint8 = 0, 255
	for _, r := range runs {
		maxLevel = max(maxLevel, r.Level)
		if r.Level%2 == 1 {
			minOddLevel = min(minOddLevel, r.Level)
		}
	}
	for level := maxLevel; level >= minOddLevel && level > 0; level-- {
		for i := 0; i < len(runs); {
			if runs[i].Level < level {
				i++
				continue
			}
			j := i
			for j < len(runs) && runs[j].Level >= level {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				runs[a], runs[b] = runs[b], runs[a]
			}
			i = j
		}
	}
}

// logicallyLastRun returns the index of the last run in logical order.
func logicallyLastRun(runs []Run) int {
	last := -1
	for i, r := range runs {
		if last == -1 || r.logical > runs[last].logical {
			last = i
		}
	}
	return last
}

func isCollapsibleSpace(r rune) bool { return r == ' ' || r == '\t' }

// handleTrailingSpaces isolates the trailing spaces of the logically last run
// in a run of their own, placed at the end of the line, and returns its index,
// or -1 if the line has no trailing spaces.
func handleTrailingSpaces(runs []Run, ltr bool) ([]Run, int) {
	if len(runs) == 0 {
		return runs, -1
	}
	lastIndex := logicallyLastRun(runs)
	last := runs[lastIndex]
	if !last.Object.IsText() {
		return runs, -1
	}

	chars := []rune(last.Object.Text)
	firstSpace := last.End
	for firstSpace > last.Start && isCollapsibleSpace(chars[firstSpace-1]) {
		firstSpace--
	}
	if firstSpace == last.End {
		return runs, -1
	}

	var baseLevel uint8
	if !ltr {
		baseLevel = 1
	}
	if firstSpace != last.Start {
		trailing := Run{Object: last.Object, Start: firstSpace, End: last.End, Level: baseLevel, logical: last.logical + 1}
		runs[lastIndex].End = firstSpace
		if ltr {
			runs = append(runs, trailing)
			return runs, len(runs) - 1
		}
		runs = append([]Run{trailing}, runs...)
		return runs, 0
	}

	// the whole run is made of spaces: move it to the end of the line
	visualEnd := len(runs) - 1
	if !ltr {
		visualEnd = 0
	}
	if lastIndex == visualEnd {
		return runs, lastIndex
	}
	trailing := runs[lastIndex]
	trailing.Level = baseLevel
	runs = append(runs[:lastIndex], runs[lastIndex+1:]...)
	if ltr {
		runs = append(runs, trailing)
		return runs, len(runs) - 1
	}
	runs = append([]Run{trailing}, runs...)
	return runs, 0
}
