package suggest

import (
	"image"
	"image/color"
	"testing"
)

// sceneWithSquares draws bright squares on a dark background.
func sceneWithSquares(squares ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	dark := color.RGBA{R: 20, G: 20, B: 20, A: 255}
	bright := color.RGBA{R: 230, G: 230, B: 230, A: 255}
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, dark)
		}
	}
	for _, sq := range squares {
		for y := sq.Min.Y; y < sq.Max.Y; y++ {
			for x := sq.Min.X; x < sq.Max.X; x++ {
				img.Set(x, y, bright)
			}
		}
	}
	return img
}

func TestPropose(t *testing.T) {
	t.Run("finds a bright square on a dark field", func(t *testing.T) {
		img := sceneWithSquares(image.Rect(50, 50, 110, 110))
		proposals, err := Propose(img, DefaultOptions())
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if len(proposals) == 0 {
			t.Fatal("no proposals for an obvious object")
		}

		best := proposals[0]
		if !best.Bounds.InUnitSquare() {
			t.Errorf("proposal escapes the unit square: %+v", best.Bounds)
		}
		// The square spans 0.25..0.55 in both axes; allow slack for blur
		// and morphology.
		if best.Bounds.X > 0.3 || best.Bounds.X+best.Bounds.Width < 0.5 {
			t.Errorf("proposal misses the object horizontally: %+v", best.Bounds)
		}
		if best.Bounds.Y > 0.3 || best.Bounds.Y+best.Bounds.Height < 0.5 {
			t.Errorf("proposal misses the object vertically: %+v", best.Bounds)
		}
	})

	t.Run("larger regions score higher", func(t *testing.T) {
		img := sceneWithSquares(image.Rect(10, 10, 90, 90), image.Rect(140, 140, 170, 170))
		proposals, err := Propose(img, DefaultOptions())
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if len(proposals) < 2 {
			t.Fatalf("got %d proposals, want 2", len(proposals))
		}
		if proposals[0].Score < proposals[1].Score {
			t.Error("proposals not sorted by score")
		}
		if proposals[0].Bounds.Width < proposals[1].Bounds.Width {
			t.Error("the larger square should rank first")
		}
	})

	t.Run("respects the proposal cap", func(t *testing.T) {
		var squares []image.Rectangle
		for i := 0; i < 8; i++ {
			x := 10 + (i%4)*48
			y := 10 + (i/4)*100
			squares = append(squares, image.Rect(x, y, x+30, y+30))
		}
		opts := DefaultOptions()
		opts.MaxProposals = 3
		proposals, err := Propose(sceneWithSquares(squares...), opts)
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if len(proposals) > 3 {
			t.Errorf("got %d proposals, cap is 3", len(proposals))
		}
	})

	t.Run("nil image errors", func(t *testing.T) {
		if _, err := Propose(nil, DefaultOptions()); err == nil {
			t.Error("expected an error")
		}
	})
}
