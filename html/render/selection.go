package render

import (
	"fmt"

	pr "github.com/benoitkugler/linebox/css/properties"
)

// ContainingBlockInfo caches the selection offsets of a containing block.
type ContainingBlockInfo struct {
	block *Object
	cache *LogicalSelectionOffsetCaches

	hasFloatsOrFlowThreads bool

	cachedLeft, cachedRight bool
	left, right             Fl
}

func (info *ContainingBlockInfo) setBlock(block *Object, cache *LogicalSelectionOffsetCaches, parentCacheHasFloatsOrFlowThreads bool) {
	info.block = block
	blockHasFloats := block != nil && block.ContainsFloats()
	info.hasFloatsOrFlowThreads = parentCacheHasFloatsOrFlowThreads || info.hasFloatsOrFlowThreads || blockHasFloats
	info.cache = cache
	info.cachedLeft = false
	info.cachedRight = false
}

func (info *ContainingBlockInfo) Block() *Object { return info.block }

func (info *ContainingBlockInfo) HasFloatsOrFlowThreads() bool { return info.hasFloatsOrFlowThreads }

func (info *ContainingBlockInfo) blockCache() *LogicalSelectionOffsetCaches {
	if info.cache != nil {
		return info.cache
	}
	if info.block == nil {
		return &LogicalSelectionOffsetCaches{}
	}
	return NewLogicalSelectionOffsetCaches(info.block)
}

// checkSelectionOffsetCaches makes the cached selection offsets
// be compared with a fresh computation, panicking on mismatch.
var checkSelectionOffsetCaches = false

// LogicalLeftSelectionOffset is only computed once, unless the
// block contains floats, in which case the value depends on [position].
func (info *ContainingBlockInfo) LogicalLeftSelectionOffset(rootBlock *Object, position Fl) Fl {
	if info.hasFloatsOrFlowThreads || !info.cachedLeft {
		info.cachedLeft = true
		info.left = info.computeLeft(rootBlock, position)
	} else if checkSelectionOffsetCaches {
		if v := info.computeLeft(rootBlock, position); v != info.left {
			panic(fmt.Sprintf("stale left selection offset: cached %g, computed %g", info.left, v))
		}
	}
	return info.left
}

func (info *ContainingBlockInfo) LogicalRightSelectionOffset(rootBlock *Object, position Fl) Fl {
	if info.hasFloatsOrFlowThreads || !info.cachedRight {
		info.cachedRight = true
		info.right = info.computeRight(rootBlock, position)
	} else if checkSelectionOffsetCaches {
		if v := info.computeRight(rootBlock, position); v != info.right {
			panic(fmt.Sprintf("stale right selection offset: cached %g, computed %g", info.right, v))
		}
	}
	return info.right
}

func (info *ContainingBlockInfo) computeLeft(rootBlock *Object, position Fl) Fl {
	if info.block == nil {
		return 0
	}
	return info.block.LogicalLeftSelectionOffset(rootBlock, position, info.blockCache())
}

func (info *ContainingBlockInfo) computeRight(rootBlock *Object, position Fl) Fl {
	if info.block == nil {
		return 0
	}
	return info.block.LogicalRightSelectionOffset(rootBlock, position, info.blockCache())
}

// LogicalSelectionOffsetCaches memoizes the containing blocks of
// a selection root and their selection offsets, for the duration
// of one selection gap computation.
type LogicalSelectionOffsetCaches struct {
	forFixedPosition    ContainingBlockInfo
	forAbsolutePosition ContainingBlockInfo
	forInflowPosition   ContainingBlockInfo
}

func canContainFixedPositionObjects(o *Object) bool { return o.IsView() }

func isContainingBlockCandidateForAbsolutelyPositionedObject(o *Object) bool {
	return o.Style.Position != pr.Static || o.IsView()
}

func containingBlockForFixedPosition(parent *Object) *Object {
	object := parent
	for object != nil && !canContainFixedPositionObjects(object) {
		object = object.Parent
	}
	return object
}

func containingBlockForAbsolutePosition(parent *Object) *Object {
	object := parent
	for object != nil && !isContainingBlockCandidateForAbsolutelyPositionedObject(object) {
		object = object.Parent
	}
	// for inlines, use their containing block
	if object != nil && !object.IsBlock() {
		return object.ContainingBlock()
	}
	return object
}

func containingBlockForObjectInFlow(parent *Object) *Object {
	object := parent
	for object != nil && !object.IsBlock() {
		object = object.Parent
	}
	return object
}

// NewLogicalSelectionOffsetCaches returns the caches used for
// the selection root [rootBlock].
func NewLogicalSelectionOffsetCaches(rootBlock *Object) *LogicalSelectionOffsetCaches {
	var out LogicalSelectionOffsetCaches
	parent := rootBlock.Parent
	out.forFixedPosition.setBlock(containingBlockForFixedPosition(parent), nil, false)
	out.forAbsolutePosition.setBlock(containingBlockForAbsolutePosition(parent), nil, false)
	out.forInflowPosition.setBlock(containingBlockForObjectInFlow(parent), nil, false)
	return &out
}

// NewChildLogicalSelectionOffsetCaches returns the caches for
// the descendants of [block], given the caches of [block].
func NewChildLogicalSelectionOffsetCaches(block *Object, cache *LogicalSelectionOffsetCaches) *LogicalSelectionOffsetCaches {
	out := LogicalSelectionOffsetCaches{
		forFixedPosition:    cache.forFixedPosition,
		forAbsolutePosition: cache.forAbsolutePosition,
	}
	if canContainFixedPositionObjects(block) {
		out.forFixedPosition.setBlock(block, cache, cache.forFixedPosition.hasFloatsOrFlowThreads)
	}
	if isContainingBlockCandidateForAbsolutelyPositionedObject(block) && !block.IsRenderInline() && !block.IsAnonymousBlock() {
		out.forAbsolutePosition.setBlock(block, cache, cache.forAbsolutePosition.hasFloatsOrFlowThreads)
	}
	out.forInflowPosition.setBlock(block, cache, cache.forInflowPosition.hasFloatsOrFlowThreads)
	return &out
}

// ContainingBlockInfo returns the info for the containing block of [block].
func (c *LogicalSelectionOffsetCaches) ContainingBlockInfo(block *Object) *ContainingBlockInfo {
	switch block.Style.Position {
	case pr.Fixed:
		return &c.forFixedPosition
	case pr.Absolute:
		return &c.forAbsolutePosition
	default:
		return &c.forInflowPosition
	}
}

// LogicalLeftSelectionOffset returns the start of the selection
// at [position], in the coordinates of [rootBlock].
// When the line starts at the content edge, the selection may extend
// up to the edge of an ancestor.
func (o *Object) LogicalLeftSelectionOffset(rootBlock *Object, position Fl, cache *LogicalSelectionOffsetCaches) Fl {
	logicalLeft := o.LogicalLeftOffsetForLine(position, false)
	if logicalLeft == o.LogicalLeftOffsetForContent() {
		if rootBlock != o {
			// the border may be further extended by our containing block
			return cache.ContainingBlockInfo(o).LogicalLeftSelectionOffset(rootBlock, position+o.LogicalTop())
		}
		return logicalLeft
	}

	cb, currentCache := o, cache
	for cb != nil && cb != rootBlock {
		logicalLeft += cb.LogicalLeft()
		info := currentCache.ContainingBlockInfo(cb)
		cb, currentCache = info.block, info.blockCache()
	}
	return logicalLeft
}

func (o *Object) LogicalRightSelectionOffset(rootBlock *Object, position Fl, cache *LogicalSelectionOffsetCaches) Fl {
	logicalRight := o.LogicalRightOffsetForLine(position, false)
	if logicalRight == o.LogicalRightOffsetForContent() {
		if rootBlock != o {
			return cache.ContainingBlockInfo(o).LogicalRightSelectionOffset(rootBlock, position+o.LogicalTop())
		}
		return logicalRight
	}

	cb, currentCache := o, cache
	for cb != nil && cb != rootBlock {
		logicalRight += cb.LogicalLeft()
		info := currentCache.ContainingBlockInfo(cb)
		cb, currentCache = info.block, info.blockCache()
	}
	return logicalRight
}
