package preview

import (
	"testing"

	"github.com/mlnoga/stacker/internal/constellation"
	"github.com/mlnoga/stacker/internal/image"
	"github.com/mlnoga/stacker/internal/star"
)

func TestRenderProducesRGBOfInputShape(t *testing.T) {
	blurred := image.New(32, 32, 1)
	stars := []star.FineStar{{X: 10, Y: 10}, {X: 20, Y: 20}}
	cons := []constellation.Constellation{{Stars: [3]int32{0, 1, 0}}}

	out := Render(blurred, stars, cons)
	if out.Width != 32 || out.Height != 32 || out.Components != 3 {
		t.Fatalf("shape = %dx%dx%d, want 32x32x3", out.Width, out.Height, out.Components)
	}
}

func TestColorForIndexVariesAcrossIndices(t *testing.T) {
	r0, g0, b0 := colorForIndex(0, 4)
	r1, g1, b1 := colorForIndex(1, 4)
	if r0 == r1 && g0 == g1 && b0 == b1 {
		t.Fatal("expected distinct colors for different constellation indices")
	}
}

func TestColorForIndexHandlesZeroCount(t *testing.T) {
	// Must not divide by zero when no constellations exist.
	colorForIndex(0, 0)
}
