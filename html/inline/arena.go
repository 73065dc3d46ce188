package inline

import "fmt"

// BoxID is a stable handle to a box stored in an [Arena].
// The zero value is [NoBox].
type BoxID struct {
	index      uint32 // 1-based, 0 means no box
	generation uint32
}

// NoBox is the invalid handle, used for missing links.
var NoBox = BoxID{}

func (id BoxID) IsNone() bool { return id.index == 0 }

func (id BoxID) String() string {
	if id.IsNone() {
		return "#none"
	}
	return fmt.Sprintf("#%d.%d", id.index, id.generation)
}

type slot struct {
	box        *Box
	generation uint32
}

// Arena stores the boxes of one layout pass.
// Destroying a box recycles its slot: the handles
// pointing to the old box become stale, and using them panics.
type Arena struct {
	slots []slot
	free  []uint32 // indices of recycled slots
	live  int
}

func (a *Arena) alloc(b *Box) BoxID {
	var index uint32
	if L := len(a.free); L != 0 {
		index = a.free[L-1]
		a.free = a.free[:L-1]
	} else {
		a.slots = append(a.slots, slot{})
		index = uint32(len(a.slots))
	}
	s := &a.slots[index-1]
	s.box = b
	a.live++
	id := BoxID{index: index, generation: s.generation}
	b.id = id
	return id
}

func (a *Arena) lookup(id BoxID) (*Box, bool) {
	if id.index == 0 || int(id.index) > len(a.slots) {
		return nil, false
	}
	s := a.slots[id.index-1]
	if s.box == nil || s.generation != id.generation {
		return nil, false
	}
	return s.box, true
}

// Get returns the box for [id]. It panics if [id] is
// invalid or refers to a destroyed box.
func (a *Arena) Get(id BoxID) *Box {
	b, ok := a.lookup(id)
	if !ok {
		panic(fmt.Sprintf("inline: access to invalid or destroyed box %s", id))
	}
	return b
}

// IsLive returns true if [id] refers to a box not yet destroyed.
func (a *Arena) IsLive(id BoxID) bool {
	_, ok := a.lookup(id)
	return ok
}

// release recycles the slot of [id]. Freeing twice is
// a programming error and panics.
func (a *Arena) release(id BoxID) {
	if _, ok := a.lookup(id); !ok {
		panic(fmt.Sprintf("inline: box %s destroyed twice", id))
	}
	s := &a.slots[id.index-1]
	s.box = nil
	s.generation++
	a.free = append(a.free, id.index)
	a.live--
}

// Len returns the number of live boxes.
func (a *Arena) Len() int { return a.live }
