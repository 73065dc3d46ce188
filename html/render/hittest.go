package render

import (
	"golang.org/x/net/html"

	"github.com/benoitkugler/linebox/utils"
)

// HitTestRequest stores the options of a hit test.
type HitTestRequest uint8

const (
	HitTestReadOnly HitTestRequest = 1 << iota
	HitTestActive
	HitTestIgnoreInvisible
)

func (r HitTestRequest) Has(flag HitTestRequest) bool { return r&flag != 0 }

// HitTestLocation is either a point or an area.
type HitTestLocation struct {
	Point       utils.Point
	boundingBox utils.Rect
	isRectBased bool
}

// NewPointLocation returns a location testing [p].
func NewPointLocation(p utils.Point) HitTestLocation {
	return HitTestLocation{Point: p, boundingBox: utils.Rect{X: p.X, Y: p.Y, Width: 1, Height: 1}}
}

// NewRectLocation returns an area based location, centered on [p].
func NewRectLocation(p utils.Point, padding Fl) HitTestLocation {
	box := utils.Rect{X: p.X - padding, Y: p.Y - padding, Width: 2*padding + 1, Height: 2*padding + 1}
	return HitTestLocation{Point: p, boundingBox: box, isRectBased: true}
}

func (l HitTestLocation) IsRectBasedTest() bool { return l.isRectBased }

func (l HitTestLocation) BoundingBox() utils.Rect { return l.boundingBox }

func (l HitTestLocation) Intersects(rect utils.Rect) bool { return rect.Intersects(l.boundingBox) }

// HitTestResult accumulates the result of a hit test.
type HitTestResult struct {
	InnerNode   *html.Node
	InnerObject *Object
	LocalPoint  utils.Point

	// RectBasedNodes is filled by area based tests
	RectBasedNodes []*html.Node
}

// AddNodeToRectBasedTestResult returns true if the test should
// continue, that is when [location] is not entirely contained in [rect].
func (r *HitTestResult) AddNodeToRectBasedTestResult(node *html.Node, request HitTestRequest, location HitTestLocation, rect utils.Rect) bool {
	if !location.IsRectBasedTest() {
		return false
	}
	if node == nil {
		return true
	}
	found := false
	for _, n := range r.RectBasedNodes {
		if n == node {
			found = true
			break
		}
	}
	if !found {
		r.RectBasedNodes = append(r.RectBasedNodes, node)
	}
	return !rect.Contains(location.BoundingBox())
}

// UpdateHitTestResult records [o] as inner object if none is already set.
func (o *Object) UpdateHitTestResult(result *HitTestResult, point utils.Point) {
	if result.InnerNode != nil || result.InnerObject != nil {
		return
	}
	result.InnerObject = o
	result.InnerNode = o.NodeForHitTest()
	result.LocalPoint = point
}

// HitTestReplaced tests the border box of a replaced object
// located at [accumulatedOffset].
func (o *Object) HitTestReplaced(request HitTestRequest, result *HitTestResult, location HitTestLocation, accumulatedOffset utils.Point) bool {
	rect := o.Frame.Moved(accumulatedOffset.X, accumulatedOffset.Y)
	if !location.Intersects(rect) {
		return false
	}
	o.UpdateHitTestResult(result, location.Point.Sub(rect.Location()))
	return !result.AddNodeToRectBasedTestResult(o.Node, request, location, rect)
}
