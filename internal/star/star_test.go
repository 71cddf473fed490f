package star

import (
	"testing"

	"github.com/mlnoga/stacker/internal/image"
)

// Single 8x8 one-channel mask, all zero except (2,2)=1.
func TestExtractCoarseSinglePixel(t *testing.T) {
	mask := image.New(8, 8, 1)
	mask.Pixel(2, 2)[0] = 1

	stars := ExtractCoarse(mask, 0.5)
	if len(stars) != 1 {
		t.Fatalf("got %d stars, want 1", len(stars))
	}
	s := stars[0]
	if s.X != 2 || s.Y != 2 || s.Size != 1 {
		t.Fatalf("star=%+v, want {2,2,1}", s)
	}
}

// 32x32 image with two 3x3 blocks of value 1 at top-left corners
// (4,4) and (20,20).
func TestExtractCoarseTwoBlobs(t *testing.T) {
	mask := image.New(32, 32, 1)
	fillBlock := func(x0, y0 int32) {
		for y := y0; y < y0+3; y++ {
			for x := x0; x < x0+3; x++ {
				mask.Pixel(x, y)[0] = 1
			}
		}
	}
	fillBlock(4, 4)
	fillBlock(20, 20)

	stars := ExtractCoarse(mask, 0.5)
	if len(stars) != 2 {
		t.Fatalf("got %d stars, want 2", len(stars))
	}
	want := []CoarseStar{{X: 5, Y: 5, Size: 9}, {X: 21, Y: 21, Size: 9}}
	for i, w := range want {
		if stars[i] != w {
			t.Fatalf("star[%d]=%+v, want %+v", i, stars[i], w)
		}
	}
}

func TestExtractCoarseEmptyMask(t *testing.T) {
	mask := image.New(16, 16, 1)
	stars := ExtractCoarse(mask, 0.5)
	if len(stars) != 0 {
		t.Fatalf("got %d stars, want 0", len(stars))
	}
}

func TestExtractFineRejectsNearEdge(t *testing.T) {
	img := image.New(8, 8, 1)
	coarse := []CoarseStar{{X: 2, Y: 2, Size: 1}}
	fine := ExtractFine(img, coarse)
	if len(fine) != 0 {
		t.Fatalf("expected edge-adjacent star to be rejected, got %d", len(fine))
	}
}

func TestExtractFineCentroid(t *testing.T) {
	const size = 64
	img := image.New(size, size, 1)
	cx, cy := int32(32), int32(32)
	img.Pixel(cx, cy)[0] = 1
	coarse := []CoarseStar{{X: float32(cx), Y: float32(cy), Size: 1}}
	fine := ExtractFine(img, coarse)
	if len(fine) != 1 {
		t.Fatalf("got %d fine stars, want 1", len(fine))
	}
	if got := fine[0].X; got != float32(cx) {
		t.Fatalf("X=%v, want %v", got, cx)
	}
	if got := fine[0].Y; got != float32(cy) {
		t.Fatalf("Y=%v, want %v", got, cy)
	}
}
