package layout

import (
	"github.com/go-text/typesetting/segmenter"

	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/render"
)

// collectItems returns the inline content of [block], in logical order.
// Floats are placed out of the lines and are skipped.
func collectItems(block *render.Object) []Item {
	var items []Item
	var walk func(parent *render.Object)
	walk = func(parent *render.Object) {
		for _, child := range parent.Children {
			switch {
			case child.IsFloating():
			case child.IsRenderInline():
				walk(child)
			case child.IsText():
				if child.Text != "" {
					items = append(items, Item{Object: child, End: len([]rune(child.Text))})
				}
			case child.IsBlock() && !child.IsOutOfFlowPositioned():
				// not expected in an inline formatting context
			default:
				items = append(items, Item{Object: child})
			}
		}
	}
	walk(block)
	return items
}

// brokenLine is the content of one line, as chosen by [lineBreaker].
type brokenLine struct {
	items []Item
	// endsWithBreak is true for lines ended by a <br>
	endsWithBreak bool
	// reachedEnd is true for the last line of the block
	reachedEnd bool
	// next is the start of the next line
	next inline.LineBreakInfo
}

// lineBreaker splits the inline content of a block in lines,
// greedily filling each line. Text is broken at the UAX#14 line break
// opportunities; between two objects, a break is only allowed after
// a space or an atomic object.
// A segment wider than the line is not split, and overflows.
type lineBreaker struct {
	block *render.Object
	items []Item

	item   int // index of the current item
	offset int // rune offset in the current text item

	seg    segmenter.Segmenter
	breaks map[*render.Object][]int
}

func newLineBreaker(block *render.Object) *lineBreaker {
	return &lineBreaker{block: block, items: collectItems(block), breaks: make(map[*render.Object][]int)}
}

// breakOpportunities returns the rune offsets of the text of [obj]
// where a line may end, in increasing order.
func (lb *lineBreaker) breakOpportunities(obj *render.Object, chars []rune) []int {
	if out, ok := lb.breaks[obj]; ok {
		return out
	}
	var out []int
	lb.seg.Init(chars)
	iter := lb.seg.LineIterator()
	for iter.Next() {
		line := iter.Line()
		out = append(out, line.Offset+len(line.Text))
	}
	lb.breaks[obj] = out
	return out
}

// nextBreak returns the first opportunity after [pos], or [limit].
func nextBreak(breaks []int, pos, limit int) int {
	for _, b := range breaks {
		if b > pos {
			return min(b, limit)
		}
	}
	return limit
}

func (lb *lineBreaker) atEnd() bool { return lb.item >= len(lb.items) }

func (lb *lineBreaker) position() inline.LineBreakInfo {
	if lb.atEnd() {
		return inline.LineBreakInfo{}
	}
	return inline.LineBreakInfo{Object: lb.items[lb.item].Object, Pos: lb.offset}
}

func (lb *lineBreaker) finish(line brokenLine) brokenLine {
	line.reachedEnd = lb.atEnd()
	line.next = lb.position()
	return line
}

// nextLine returns the content of the line starting at [top],
// and advances the breaker after it.
func (lb *lineBreaker) nextLine(top Fl, info LineInfo) brokenLine {
	var (
		line       brokenLine
		available  = lb.block.AvailableLogicalWidthForLine(top, requiresIndent(lb.block, info))
		width      Fl
		hasContent bool
		// canBreak is true after a space or an atomic object
		canBreak bool
	)
	horizontal := lb.block.Style.IsHorizontalWritingMode()
	for !lb.atEnd() {
		it := lb.items[lb.item]
		obj := it.Object
		switch {
		case obj.IsBR():
			line.items = append(line.items, it)
			line.endsWithBreak = true
			lb.item++
			return lb.finish(line)
		case obj.IsOutOfFlowPositioned():
			line.items = append(line.items, it)
			lb.item++
		case obj.IsText():
			chars := []rune(obj.Text)
			style := obj.StyleFor(info.IsFirstLine)
			measure := func(start, end int) Fl {
				return style.Font.Width(string(chars[start:end]), style.LetterSpacing, style.WordSpacing)
			}

			breaks := lb.breakOpportunities(obj, chars)

			start := max(it.Start, lb.offset)
			if !hasContent {
				for start < it.End && isCollapsibleSpace(chars[start]) {
					start++
				}
			}
			end := start
			for end < it.End {
				segmentEnd := nextBreak(breaks, end, it.End)
				// trailing spaces may hang past the end of the line
				wordEnd := segmentEnd
				for wordEnd > end && isCollapsibleSpace(chars[wordEnd-1]) {
					wordEnd--
				}
				wordWidth := measure(end, wordEnd)
				if hasContent && (canBreak || end > start) && width+wordWidth > available {
					if end > start {
						line.items = append(line.items, Item{Object: obj, Start: start, End: end})
					}
					lb.offset = end
					return lb.finish(line)
				}
				width += wordWidth + measure(wordEnd, segmentEnd)
				hasContent = hasContent || wordEnd > end
				canBreak = segmentEnd > wordEnd
				end = segmentEnd
			}
			if end > start {
				line.items = append(line.items, Item{Object: obj, Start: start, End: end})
			}
			lb.item++
			lb.offset = 0
		default:
			w := obj.LogicalWidth() + obj.MarginLogicalLeft(horizontal) + obj.MarginLogicalRight(horizontal)
			if hasContent && width+w > available {
				return lb.finish(line)
			}
			line.items = append(line.items, it)
			width += w
			hasContent = true
			canBreak = true
			lb.item++
		}
	}
	return lb.finish(line)
}
