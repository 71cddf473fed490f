package align

import (
	"errors"
	"math"
	"testing"

	"github.com/mlnoga/stacker/internal/constellation"
	"github.com/mlnoga/stacker/internal/errs"
	"github.com/mlnoga/stacker/internal/frame"
	"github.com/mlnoga/stacker/internal/star"
)

// buildStack constructs a frame.Stack directly from per-frame star point
// lists, bypassing image extraction, so alignment can be tested in
// isolation against exact synthetic coordinates.
func buildStack(t *testing.T, framesPoints [][]constellation.Point, k int) *frame.Stack {
	t.Helper()
	s := &frame.Stack{}
	for idx, pts := range framesPoints {
		starBase := int32(len(s.Stars))
		conBase := int32(len(s.Constellations))
		for _, p := range pts {
			s.Stars = append(s.Stars, star.FineStar{X: p.X, Y: p.Y})
		}
		cons := constellation.Extract(pts, k)
		if len(cons) == 0 {
			s.Stars = s.Stars[:starBase]
			continue
		}
		s.Constellations = append(s.Constellations, cons...)
		s.Frames = append(s.Frames, frame.Record{
			ImageIndex:         idx,
			FirstStar:          starBase,
			FirstConstellation: conBase,
		})
	}
	return s
}

func baseStars() []constellation.Point {
	return []constellation.Point{
		{10, 10}, {90, 20}, {40, 90}, {150, 150}, {200, 40},
	}
}

func shift(pts []constellation.Point, dx, dy float32) []constellation.Point {
	out := make([]constellation.Point, len(pts))
	for i, p := range pts {
		out[i] = constellation.Point{X: p.X - dx, Y: p.Y - dy}
	}
	return out
}

// Frame B is frame A translated by (Δx,Δy) — i.e. B's own pixel
// coordinates read A's stars shifted by -Δ, the same way a telescope
// pointing move by Δ shifts the apparent star field by -Δ in the new
// frame. The aligner should recover offset A=(0,0), offset B=(Δx,Δy).
func TestRunRecoversTranslationOffset(t *testing.T) {
	a := baseStars()
	dx, dy := float32(7), float32(-3)
	b := shift(a, dx, dy)

	stack := buildStack(t, [][]constellation.Point{a, b}, constellation.DefaultK)
	offsets, err := Run(stack, DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(offsets) != 2 {
		t.Fatalf("got %d offsets, want 2", len(offsets))
	}
	if offsets[0].DX != 0 || offsets[0].DY != 0 {
		t.Fatalf("reference offset=%+v, want (0,0)", offsets[0])
	}
	const tol = 1.0
	if d := math.Abs(float64(offsets[1].DX - dx)); d > tol {
		t.Fatalf("offset B DX=%v, want ~%v", offsets[1].DX, dx)
	}
	if d := math.Abs(float64(offsets[1].DY - dy)); d > tol {
		t.Fatalf("offset B DY=%v, want ~%v", offsets[1].DY, dy)
	}
}

// Every frame gets exactly one offset, and the reference frame's is (0,0).
func TestEveryFrameGetsOneOffset(t *testing.T) {
	a := baseStars()
	b := shift(a, 3, 4)
	c := shift(a, -5, 2)
	stack := buildStack(t, [][]constellation.Point{a, b, c}, constellation.DefaultK)

	offsets, err := Run(stack, DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(offsets) != len(stack.Frames) {
		t.Fatalf("got %d offsets, want %d", len(offsets), len(stack.Frames))
	}
	if ref := pickReference(stack); offsets[ref] != (Offset{}) {
		t.Fatalf("reference offset=%+v, want (0,0)", offsets[ref])
	}
}

// An empty frame stack (no frames survived extraction) is rejected with
// InsufficientStars before the aligner touches any data.
func TestRunRejectsEmptyStack(t *testing.T) {
	stack := &frame.Stack{}
	_, err := Run(stack, DefaultOptions())
	if err == nil {
		t.Fatal("expected error for empty frame stack")
	}
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InsufficientStars {
		t.Fatalf("err=%v, want InsufficientStars", err)
	}
}

func TestPickReferenceTiesLowestIndex(t *testing.T) {
	a := baseStars()
	b := append([]constellation.Point(nil), a...) // identical star count
	stack := buildStack(t, [][]constellation.Point{a, b}, constellation.DefaultK)
	if got := pickReference(stack); got != 0 {
		t.Fatalf("pickReference=%d, want 0 (tie -> lowest index)", got)
	}
}
