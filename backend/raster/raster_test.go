package raster

import (
	"image/color"
	"path/filepath"
	"testing"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/backend"
	"github.com/benoitkugler/linebox/matrix"
	"github.com/benoitkugler/linebox/utils"
	tu "github.com/benoitkugler/linebox/utils/testutils"
)

var white = pr.RGBA{R: 1, G: 1, B: 1, A: 1}

func rgba(c color.Color) [4]uint32 {
	r, g, b, a := c.RGBA()
	return [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8}
}

func TestFillRect(t *testing.T) {
	canvas := NewCanvas(20, 20, white)
	backend.FillRect(canvas, utils.Rect{X: 5, Y: 5, Width: 10, Height: 10}, pr.RGBA{R: 1, A: 1})

	img := canvas.Image()
	tu.AssertEqual(t, rgba(img.At(10, 10)), [4]uint32{255, 0, 0, 255})
	tu.AssertEqual(t, rgba(img.At(2, 2)), [4]uint32{255, 255, 255, 255})
}

func TestClipAndTransform(t *testing.T) {
	canvas := NewCanvas(20, 20, white)
	canvas.OnNewStack(func() {
		backend.ClipRect(canvas, utils.Rect{Width: 10, Height: 20})
		canvas.Transform(matrix.Translation(5, 0))
		backend.FillRect(canvas, utils.Rect{Width: 10, Height: 10}, pr.Black)
	})
	// outside of the clip after the restore
	backend.FillRect(canvas, utils.Rect{Y: 15, Width: 20, Height: 5}, pr.Black)

	img := canvas.Image()
	tu.AssertEqual(t, rgba(img.At(7, 5)), [4]uint32{0, 0, 0, 255})
	tu.AssertEqual(t, rgba(img.At(12, 5)), [4]uint32{255, 255, 255, 255})
	tu.AssertEqual(t, rgba(img.At(2, 5)), [4]uint32{255, 255, 255, 255})
	tu.AssertEqual(t, rgba(img.At(18, 17)), [4]uint32{0, 0, 0, 255})
}

func TestNestedClips(t *testing.T) {
	canvas := NewCanvas(20, 20, white)
	canvas.OnNewStack(func() {
		backend.ClipRect(canvas, utils.Rect{Width: 10, Height: 20})
		canvas.OnNewStack(func() {
			backend.ClipRect(canvas, utils.Rect{Width: 20, Height: 10})
			backend.FillRect(canvas, utils.Rect{Width: 20, Height: 20}, pr.Black)
		})
		// the outer clip is active again
		backend.FillRect(canvas, utils.Rect{Y: 15, Width: 20, Height: 5}, pr.RGBA{R: 1, A: 1})
	})

	img := canvas.Image()
	tu.AssertEqual(t, rgba(img.At(5, 5)), [4]uint32{0, 0, 0, 255})
	tu.AssertEqual(t, rgba(img.At(15, 5)), [4]uint32{255, 255, 255, 255})
	tu.AssertEqual(t, rgba(img.At(5, 12)), [4]uint32{255, 255, 255, 255})
	tu.AssertEqual(t, rgba(img.At(5, 17)), [4]uint32{255, 0, 0, 255})
	tu.AssertEqual(t, rgba(img.At(15, 17)), [4]uint32{255, 255, 255, 255})
}

func TestSavePNG(t *testing.T) {
	canvas := NewCanvas(4, 4, white)
	if err := canvas.SavePNG(filepath.Join(t.TempDir(), "out.png")); err != nil {
		t.Fatal(err)
	}
}
