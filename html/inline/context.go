package inline

import (
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

// LayoutState stores the state of the layout of a block,
// shared by all its lines.
type LayoutState struct {
	// LayoutOffset is the position of the block being laid out,
	// relative to the first page.
	LayoutOffset utils.Point

	// PageLogicalHeight is zero when the layout is not paginated.
	PageLogicalHeight Fl

	// LineGrid is the block defining the grid used by
	// 'line-snap', or nil.
	LineGrid *render.Object
	// LineGridOffset is the position of the line grid,
	// relative to the first page.
	LineGridOffset utils.Point
	// LineGridPaginationOrigin is the offset of the grid
	// in the page where it starts.
	LineGridPaginationOrigin utils.Point
}

func (ls *LayoutState) IsPaginated() bool { return ls.PageLogicalHeight > 0 }

// pageLogicalTopForOffset returns the top of the page containing [offset].
func (ls *LayoutState) pageLogicalTopForOffset(offset Fl) Fl {
	if !ls.IsPaginated() {
		return 0
	}
	return utils.Floor(offset/ls.PageLogicalHeight) * ls.PageLogicalHeight
}

type lineBoxList struct {
	first, last BoxID
}

type verticalPositionKey struct {
	object   *render.Object
	baseline text.Baseline
}

// Context stores the boxes built for the lines of
// one document, with the side tables linking them to the
// content objects.
//
// A Context is not safe for concurrent use.
type Context struct {
	arena Arena

	// per object list of boxes, one per line,
	// for inlines, texts and blocks (root boxes)
	lineBoxes map[*render.Object]*lineBoxList
	// box wrapping a replaced object, or a line break
	replacedBoxes map[*render.Object]BoxID

	// root box -> ellipsis box
	ellipses map[BoxID]BoxID

	// the glyph overflow of text boxes, when not zero
	glyphOverflows map[BoxID]text.GlyphOverflow
	// the logical overflow of text boxes not known
	// to have no overflow
	textOverflows map[BoxID]utils.Rect

	verticalPositions map[verticalPositionKey]Fl

	// block -> root box of the line grid
	lineGridBoxes map[*render.Object]BoxID

	State LayoutState

	// disables the shortcut used when all the boxes
	// of a flow share the same metrics
	disableSameLineHeightFastPath bool
}

func NewContext() *Context {
	return &Context{
		lineBoxes:         make(map[*render.Object]*lineBoxList),
		replacedBoxes:     make(map[*render.Object]BoxID),
		ellipses:          make(map[BoxID]BoxID),
		glyphOverflows:    make(map[BoxID]text.GlyphOverflow),
		textOverflows:     make(map[BoxID]utils.Rect),
		verticalPositions: make(map[verticalPositionKey]Fl),
		lineGridBoxes:     make(map[*render.Object]BoxID),
	}
}

// Box returns the box for [id], panicking if it has been destroyed.
func (c *Context) Box(id BoxID) *Box { return c.arena.Get(id) }

// Arena returns the storage of the boxes.
func (c *Context) Arena() *Arena { return &c.arena }

// BoxState returns the life cycle state of [id].
func (c *Context) BoxState(id BoxID) BoxState {
	b, ok := c.arena.lookup(id)
	if !ok {
		return Destroyed
	}
	if b.extracted {
		return Extracted
	}
	if b.Kind == Root || !b.parent.IsNone() {
		return Attached
	}
	return Unattached
}

// ClearVerticalPositionCache must be called when the styles
// of the objects change.
func (c *Context) ClearVerticalPositionCache() {
	c.verticalPositions = make(map[verticalPositionKey]Fl)
}

func (c *Context) newBox(kind Kind, obj *render.Object) (BoxID, *Box) {
	b := &Box{
		Kind:                  kind,
		Object:                obj,
		isHorizontal:          true,
		knownToHaveNoOverflow: true,
	}
	if obj.Style != nil {
		b.isHorizontal = obj.Style.IsHorizontalWritingMode()
	}
	return c.arena.alloc(b), b
}

func (c *Context) appendLineBox(obj *render.Object, id BoxID) {
	list := c.lineBoxes[obj]
	if list == nil {
		list = &lineBoxList{}
		c.lineBoxes[obj] = list
	}
	b := c.Box(id)
	b.extracted = false
	if list.first.IsNone() {
		list.first, list.last = id, id
		return
	}
	c.Box(list.last).nextLineBox = id
	b.prevLineBox = list.last
	list.last = id
}

// NewTextBox creates a box for the characters [start, start+length)
// of the text object [obj].
func (c *Context) NewTextBox(obj *render.Object, start, length int) BoxID {
	id, b := c.newBox(TextLeaf, obj)
	b.IsText = true
	b.Text = &TextFields{Start: start, Len: length, Truncation: NoTruncation}
	c.appendLineBox(obj, id)
	return id
}

// NewLineBreakBox creates the box of a <br> element. [isText] is true
// when the break contributes its font to the line, that is in strict
// mode or when the break is alone on its line.
func (c *Context) NewLineBreakBox(obj *render.Object, isText bool) BoxID {
	id, b := c.newBox(LineBreakLeaf, obj)
	b.IsText = isText
	b.Text = &TextFields{Len: 1, Truncation: NoTruncation}
	c.replacedBoxes[obj] = id
	return id
}

// NewReplacedBox creates the box of an atomic inline, which becomes its
// inline box wrapper.
func (c *Context) NewReplacedBox(obj *render.Object) BoxID {
	id, _ := c.newBox(ReplacedLeaf, obj)
	c.replacedBoxes[obj] = id
	return id
}

// NewFlowBox creates a box for the inline element [obj] on a new line.
func (c *Context) NewFlowBox(obj *render.Object) BoxID {
	id, b := c.newBox(Flow, obj)
	b.flow = &flowData{descendantsHaveSameLineHeightAndBaseline: true}
	c.appendLineBox(obj, id)
	return id
}

// NewRootBox creates a new line for [block], appended to its lines.
func (c *Context) NewRootBox(block *render.Object) BoxID {
	id := c.NewDetachedRootBox(block)
	c.appendLineBox(block, id)
	return id
}

// NewDetachedRootBox creates a root box which is not one
// of the lines of [block], like the line grid box.
func (c *Context) NewDetachedRootBox(block *render.Object) BoxID {
	id, b := c.newBox(Root, block)
	b.flow = &flowData{descendantsHaveSameLineHeightAndBaseline: true}
	b.root = &rootData{}
	return id
}

// InlineBoxWrapper returns the box of a replaced object or a line break,
// or [NoBox].
func (c *Context) InlineBoxWrapper(obj *render.Object) BoxID { return c.replacedBoxes[obj] }

// FirstLineBox returns the box of [obj] on its first line, that
// is the first root box when [obj] is a block.
func (c *Context) FirstLineBox(obj *render.Object) BoxID {
	if list := c.lineBoxes[obj]; list != nil {
		return list.first
	}
	return NoBox
}

func (c *Context) LastLineBox(obj *render.Object) BoxID {
	if list := c.lineBoxes[obj]; list != nil {
		return list.last
	}
	return NoBox
}

// NextLineBox returns the box generated by the same object on the next line.
func (c *Context) NextLineBox(id BoxID) BoxID { return c.Box(id).nextLineBox }

func (c *Context) PrevLineBox(id BoxID) BoxID { return c.Box(id).prevLineBox }

// LineBoxes returns the boxes of [obj], one per line.
func (c *Context) LineBoxes(obj *render.Object) []BoxID {
	var out []BoxID
	for curr := c.FirstLineBox(obj); !curr.IsNone(); curr = c.Box(curr).nextLineBox {
		out = append(out, curr)
	}
	return out
}

// LineCount returns the number of lines of [block].
func (c *Context) LineCount(block *render.Object) int {
	n := 0
	for curr := c.FirstLineBox(block); !curr.IsNone(); curr = c.Box(curr).nextLineBox {
		n++
	}
	return n
}

// LineAtIndex returns the root box of the [i]-th line of [block], or [NoBox].
func (c *Context) LineAtIndex(block *render.Object, i int) BoxID {
	curr := c.FirstLineBox(block)
	for ; !curr.IsNone() && i > 0; i-- {
		curr = c.Box(curr).nextLineBox
	}
	return curr
}

// removeLineBox removes [id] from the list of its object.
func (c *Context) removeLineBox(id BoxID) {
	b := c.Box(id)
	list := c.lineBoxes[b.Object]
	if list == nil {
		return
	}
	if list.first == id {
		list.first = b.nextLineBox
	}
	if list.last == id {
		list.last = b.prevLineBox
	}
	if !b.nextLineBox.IsNone() {
		c.Box(b.nextLineBox).prevLineBox = b.prevLineBox
	}
	if !b.prevLineBox.IsNone() {
		c.Box(b.prevLineBox).nextLineBox = b.nextLineBox
	}
	b.prevLineBox, b.nextLineBox = NoBox, NoBox
	if list.first.IsNone() {
		delete(c.lineBoxes, b.Object)
	}
}

// extractLineBoxesFrom removes [id] and the boxes following it
// in the list of its object, marking them as extracted.
func (c *Context) extractLineBoxesFrom(id BoxID) {
	b := c.Box(id)
	list := c.lineBoxes[b.Object]
	if list == nil {
		return
	}
	if list.first == id {
		list.first, list.last = NoBox, NoBox
		delete(c.lineBoxes, b.Object)
	} else {
		list.last = b.prevLineBox
		c.Box(b.prevLineBox).nextLineBox = NoBox
	}
	b.prevLineBox = NoBox
	for curr := id; !curr.IsNone(); curr = c.Box(curr).nextLineBox {
		c.Box(curr).extracted = true
	}
}

// attachLineBoxesFrom appends the extracted chain starting at [id]
// to the list of its object.
func (c *Context) attachLineBoxesFrom(id BoxID) {
	b := c.Box(id)
	list := c.lineBoxes[b.Object]
	if list == nil {
		list = &lineBoxList{}
		c.lineBoxes[b.Object] = list
	}
	if list.last.IsNone() {
		list.first = id
	} else {
		c.Box(list.last).nextLineBox = id
		b.prevLineBox = list.last
	}
	last := id
	for curr := id; !curr.IsNone(); curr = c.Box(curr).nextLineBox {
		c.Box(curr).extracted = false
		last = curr
	}
	list.last = last
}

// Destroy releases the storage of [id]. The box must already be
// detached from its line: the links pointing to it are not updated.
// Destroying a box twice panics.
func (c *Context) Destroy(id BoxID) {
	b := c.Box(id)
	switch b.Kind {
	case Root:
		c.detachEllipsisBox(id)
		for obj, grid := range c.lineGridBoxes {
			if grid == id {
				delete(c.lineGridBoxes, obj)
			}
		}
	case ReplacedLeaf, LineBreakLeaf:
		if c.replacedBoxes[b.Object] == id {
			delete(c.replacedBoxes, b.Object)
		}
	}
	delete(c.glyphOverflows, id)
	delete(c.textOverflows, id)
	c.arena.release(id)
}

// DeleteLines destroys all the lines of [block].
func (c *Context) DeleteLines(block *render.Object) {
	for curr := c.FirstLineBox(block); !curr.IsNone(); {
		next := c.Box(curr).nextLineBox
		c.DeleteLine(curr)
		curr = next
	}
}

// SetGlyphOverflow stores the bounds of the glyphs of the text box [id],
// when they exceed its font metrics.
func (c *Context) SetGlyphOverflow(id BoxID, overflow text.GlyphOverflow) {
	if overflow.IsZero() {
		delete(c.glyphOverflows, id)
		return
	}
	c.glyphOverflows[id] = overflow
	c.clearKnownToHaveNoOverflow(id)
}

func (c *Context) GlyphOverflow(id BoxID) text.GlyphOverflow { return c.glyphOverflows[id] }

// LineGridBox returns the root box used as line grid by [block], or [NoBox].
func (c *Context) LineGridBox(block *render.Object) BoxID { return c.lineGridBoxes[block] }

// SetLineGridBox registers [root] as the line grid of [block],
// destroying the previous one.
func (c *Context) SetLineGridBox(block *render.Object, root BoxID) {
	if old, has := c.lineGridBoxes[block]; has && old != root {
		delete(c.lineGridBoxes, block)
		c.DeleteLine(old)
	}
	if root.IsNone() {
		return
	}
	c.lineGridBoxes[block] = root
}
