package backend

import (
	"testing"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/matrix"
	"github.com/benoitkugler/linebox/utils"
	tu "github.com/benoitkugler/linebox/utils/testutils"
)

func TestRecorderTransform(t *testing.T) {
	rec := NewRecorder()
	rec.OnNewStack(func() {
		rec.Transform(matrix.Translation(10, 20))
		rec.Rectangle(0, 0, 5, 5)
		rec.DrawText(TextDrawing{Text: "ab", X: 1, Y: 2})
	})
	rec.Rectangle(0, 0, 5, 5)

	tu.AssertEqual(t, rec.Filter("rect"), []string{"rect 10 20 5 5", "rect 0 0 5 5"})
	tu.AssertEqual(t, rec.Filter("text"), []string{`text "ab" 11 22`})
	tu.AssertEqual(t, rec.Ops[0], "save")
	tu.AssertEqual(t, rec.Ops[len(rec.Ops)-2], "restore")
}

func TestFillRect(t *testing.T) {
	rec := NewRecorder()
	FillRect(rec, utils.Rect{X: 1, Y: 2, Width: 3, Height: 4}, pr.Black)
	FillRect(rec, utils.Rect{Width: 3}, pr.Black)                  // empty
	FillRect(rec, utils.Rect{Width: 3, Height: 4}, pr.Transparent) // invisible
	tu.AssertEqual(t, rec.Ops, []string{"fill-color 0 0 0 1", "rect 1 2 3 4", "fill"})
}
