package inline

import (
	"fmt"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/render"
)

// isTextObject returns true for the objects
// generating text boxes, line breaks included.
func isTextObject(o *render.Object) bool { return o.IsText() || o.IsBR() }

// Root returns the root box of the line containing [id].
// It panics if [id] is not attached to a line.
func (c *Context) Root(id BoxID) BoxID {
	curr := id
	for {
		b := c.Box(curr)
		if b.parent.IsNone() {
			if b.Kind != Root && b.Kind != Ellipsis {
				panic(fmt.Sprintf("inline: box %s is not attached to a line", id))
			}
			if b.Kind == Ellipsis {
				return c.ellipsisRoot(curr)
			}
			return curr
		}
		curr = b.parent
	}
}

func (c *Context) ellipsisRoot(ellipsis BoxID) BoxID {
	for root, e := range c.ellipses {
		if e == ellipsis {
			return root
		}
	}
	panic(fmt.Sprintf("inline: ellipsis box %s has no line", ellipsis))
}

// Block returns the block containing the line of [id].
func (c *Context) Block(id BoxID) *render.Object { return c.Box(c.Root(id)).Object }

// Children returns the children of a flow box, in visual order.
func (c *Context) Children(id BoxID) []BoxID {
	var out []BoxID
	for child := c.Box(id).FirstChild(); !child.IsNone(); child = c.Box(child).nextOnLine {
		out = append(out, child)
	}
	return out
}

func setHasTextDescendantsOnAncestors(c *Context, id BoxID) {
	for curr := id; !curr.IsNone(); {
		b := c.Box(curr)
		if b.flow.hasTextDescendants {
			return
		}
		b.flow.hasTextDescendants = true
		curr = b.parent
	}
}

// ClearDescendantsHaveSameLineHeightAndBaseline disables the fast vertical
// alignment path for [id] and its ancestors.
func (c *Context) ClearDescendantsHaveSameLineHeightAndBaseline(id BoxID) {
	for curr := id; !curr.IsNone(); {
		b := c.Box(curr)
		b.flow.descendantsHaveSameLineHeightAndBaseline = false
		curr = b.parent
		if curr.IsNone() || !c.Box(curr).flow.descendantsHaveSameLineHeightAndBaseline {
			return
		}
	}
}

func (c *Context) clearKnownToHaveNoOverflow(id BoxID) {
	for curr := id; !curr.IsNone(); {
		b := c.Box(curr)
		b.knownToHaveNoOverflow = false
		curr = b.parent
		if curr.IsNone() || !c.Box(curr).knownToHaveNoOverflow {
			return
		}
	}
}

// invalidateSpine resets the cached sibling predicates of [id] and
// of its last (or first) descendants, whose value depends on [id].
func (c *Context) invalidateSpine(id BoxID, last bool) {
	for curr := id; !curr.IsNone(); {
		b := c.Box(curr)
		if last {
			b.nextOnLineExists.invalidate()
			curr = b.LastChild()
		} else {
			b.prevOnLineExists.invalidate()
			curr = b.FirstChild()
		}
	}
}

func sameLineHeight(parentStyle, childStyle *pr.Style) bool {
	return parentStyle.FontMetrics().HasIdenticalAscentDescentAndLineGap(childStyle.FontMetrics()) &&
		parentStyle.LineHeight == childStyle.LineHeight
}

// AddToLine appends [child] to the children of the flow box [parent],
// updating the cached flags of the ancestors.
func (c *Context) AddToLine(parent, child BoxID) {
	p, ch := c.Box(parent), c.Box(child)
	if p.flow == nil {
		panic(fmt.Sprintf("inline: can't add a child to the %s box %s", p.Kind, parent))
	}
	if !ch.parent.IsNone() || !ch.nextOnLine.IsNone() || !ch.prevOnLine.IsNone() {
		panic(fmt.Sprintf("inline: box %s is already on a line", child))
	}
	ch.parent = parent
	if p.flow.firstChild.IsNone() {
		p.flow.firstChild, p.flow.lastChild = child, child
	} else {
		c.Box(p.flow.lastChild).nextOnLine = child
		ch.prevOnLine = p.flow.lastChild
		c.invalidateSpine(p.flow.lastChild, true)
		p.flow.lastChild = child
	}
	ch.nextOnLineExists.invalidate()
	ch.prevOnLineExists.invalidate()
	ch.firstLine = p.firstLine
	ch.isHorizontal = p.isHorizontal

	if ch.IsText {
		if ch.Object.Parent == p.Object {
			p.flow.hasTextChildren = true
		}
		setHasTextDescendantsOnAncestors(c, parent)
	} else if ch.flow != nil && ch.flow.hasTextDescendants {
		setHasTextDescendantsOnAncestors(c, parent)
	}

	childObj := ch.Object
	if p.flow.descendantsHaveSameLineHeightAndBaseline && !childObj.IsOutOfFlowPositioned() {
		parentStyle, childStyle := p.style(), childObj.StyleFor(p.firstLine)
		alignedWithParent := (parentStyle.VerticalAlign.Keyword == pr.VaBaseline || p.Kind == Root) &&
			childStyle.VerticalAlign.Keyword == pr.VaBaseline
		shouldClear := false
		switch {
		case childObj.IsReplaced():
			shouldClear = true
		case ch.IsText:
			if childObj.IsBR() || childObj.Parent != p.Object {
				if !sameLineHeight(parentStyle, childStyle) || !alignedWithParent {
					shouldClear = true
				}
			}
			if childStyle.TextCombine || childStyle.TextEmphasisMark != "" {
				shouldClear = true
			}
		case childObj.IsBR():
			// a <br> without text is kept with a zero height on the baseline
			shouldClear = true
		default:
			if !ch.flow.descendantsHaveSameLineHeightAndBaseline || !sameLineHeight(parentStyle, childStyle) ||
				!alignedWithParent || !childStyle.Border.IsZero() || !childStyle.Padding.IsZero() || childStyle.TextCombine {
				shouldClear = true
			}
		}
		if shouldClear {
			c.ClearDescendantsHaveSameLineHeightAndBaseline(parent)
		}
	}

	if !childObj.IsOutOfFlowPositioned() {
		childStyle := childObj.StyleFor(p.firstLine)
		switch {
		case ch.IsText:
			if childStyle.LetterSpacing < 0 || len(childStyle.TextShadow) != 0 ||
				childStyle.TextEmphasisMark != "" || childStyle.TextStrokeWidth != 0 {
				c.clearKnownToHaveNoOverflow(child)
			}
		case childObj.IsReplaced():
			if childObj.HasRenderOverflow() || childObj.SelfPaintingLayer ||
				(childObj.IsListMarker() && !childObj.IsInsideListMarker()) {
				c.clearKnownToHaveNoOverflow(child)
			}
		case !childObj.IsBR():
			if len(childStyle.BoxShadow) != 0 || childObj.SelfPaintingLayer || !childStyle.BorderImageOutsets.IsZero() {
				c.clearKnownToHaveNoOverflow(child)
			}
		}
		if p.knownToHaveNoOverflow && ch.flow != nil && !ch.knownToHaveNoOverflow {
			c.clearKnownToHaveNoOverflow(parent)
		}
	}
}

// RemoveChild detaches [child] from the flow box [parent],
// marking the line as dirty.
func (c *Context) RemoveChild(parent, child BoxID) {
	p, ch := c.Box(parent), c.Box(child)
	if ch.parent != parent {
		panic(fmt.Sprintf("inline: box %s is not a child of %s", child, parent))
	}
	if !p.dirty {
		c.DirtyLineBoxes(parent)
	}
	c.childRemoved(c.Root(parent), child)

	if p.flow.firstChild == child {
		p.flow.firstChild = ch.nextOnLine
		if !ch.nextOnLine.IsNone() {
			c.invalidateSpine(ch.nextOnLine, false)
		}
	}
	if p.flow.lastChild == child {
		p.flow.lastChild = ch.prevOnLine
		if !ch.prevOnLine.IsNone() {
			c.invalidateSpine(ch.prevOnLine, true)
		}
	}
	if !ch.nextOnLine.IsNone() {
		c.Box(ch.nextOnLine).prevOnLine = ch.prevOnLine
	}
	if !ch.prevOnLine.IsNone() {
		c.Box(ch.prevOnLine).nextOnLine = ch.nextOnLine
	}
	ch.parent, ch.prevOnLine, ch.nextOnLine = NoBox, NoBox, NoBox
	ch.nextOnLineExists.invalidate()
	ch.prevOnLineExists.invalidate()
}

// Remove detaches [id] from its parent, if any.
func (c *Context) Remove(id BoxID) {
	if parent := c.Box(id).parent; !parent.IsNone() {
		c.RemoveChild(parent, id)
	}
}

// childRemoved resets the line break positions pointing to
// the object of the removed box.
func (c *Context) childRemoved(root, child BoxID) {
	obj := c.Box(child).Object
	rb := c.Box(root)
	if rb.root.lineBreak.Object == obj {
		rb.root.lineBreak = LineBreakInfo{}
	}
	for prev := rb.prevLineBox; !prev.IsNone(); prev = c.Box(prev).prevLineBox {
		pb := c.Box(prev)
		if pb.root.lineBreak.Object != obj {
			break
		}
		pb.root.lineBreak = LineBreakInfo{}
		pb.dirty = true
	}
}

// DeleteLine destroys [id] and its descendants.
func (c *Context) DeleteLine(id BoxID) {
	b := c.Box(id)
	switch b.Kind {
	case Flow, Root:
		for child := b.flow.firstChild; !child.IsNone(); {
			next := c.Box(child).nextOnLine
			c.Box(child).parent = NoBox
			c.DeleteLine(child)
			child = next
		}
		b.flow.firstChild, b.flow.lastChild = NoBox, NoBox
		c.removeLineBox(id)
	case TextLeaf:
		c.removeLineBox(id)
	case ReplacedLeaf, LineBreakLeaf:
		if !b.extracted && c.replacedBoxes[b.Object] == id {
			delete(c.replacedBoxes, b.Object)
		}
	}
	c.Destroy(id)
}

// ExtractLine detaches the boxes of a line from their objects,
// so that they may be attached again later.
func (c *Context) ExtractLine(id BoxID) {
	b := c.Box(id)
	switch b.Kind {
	case Flow, Root:
		if !b.extracted {
			c.extractLineBoxesFrom(id)
		}
		for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
			c.ExtractLine(child)
		}
	case TextLeaf:
		if !b.extracted {
			c.extractLineBoxesFrom(id)
		}
	default:
		b.extracted = true
		if c.replacedBoxes[b.Object] == id {
			delete(c.replacedBoxes, b.Object)
		}
	}
}

// AttachLine is the inverse of [Context.ExtractLine].
func (c *Context) AttachLine(id BoxID) {
	b := c.Box(id)
	switch b.Kind {
	case Flow, Root:
		if b.extracted {
			c.attachLineBoxesFrom(id)
		}
		for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
			c.AttachLine(child)
		}
	case TextLeaf:
		if b.extracted {
			c.attachLineBoxesFrom(id)
		}
	default:
		b.extracted = false
		c.replacedBoxes[b.Object] = id
	}
}

// MarkDirty sets the dirty flag of [id] only.
func (c *Context) MarkDirty(id BoxID, dirty bool) { c.Box(id).dirty = dirty }

// DirtyLineBoxes marks [id] and its ancestors as dirty.
func (c *Context) DirtyLineBoxes(id BoxID) {
	b := c.Box(id)
	b.dirty = true
	for curr := b.parent; !curr.IsNone(); {
		pb := c.Box(curr)
		if pb.dirty {
			return
		}
		pb.dirty = true
		curr = pb.parent
	}
}

// SetConstructed marks [id] and its descendants as constructed.
func (c *Context) SetConstructed(id BoxID) {
	b := c.Box(id)
	b.constructed = true
	for child := b.FirstChild(); !child.IsNone(); child = c.Box(child).nextOnLine {
		c.SetConstructed(child)
	}
}

// CheckConsistency panics if the child list of [id] is corrupted.
func (c *Context) CheckConsistency(id BoxID) {
	b := c.Box(id)
	if b.flow == nil {
		return
	}
	prev := NoBox
	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		cb := c.Box(child)
		if cb.parent != id {
			panic(fmt.Sprintf("inline: child %s of %s has parent %s", child, id, cb.parent))
		}
		if cb.prevOnLine != prev {
			panic(fmt.Sprintf("inline: child %s of %s has previous sibling %s, expected %s", child, id, cb.prevOnLine, prev))
		}
		prev = child
	}
	if prev != b.flow.lastChild {
		panic(fmt.Sprintf("inline: last child of %s is %s, expected %s", id, b.flow.lastChild, prev))
	}
}
