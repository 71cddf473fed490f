package frame

import (
	"testing"

	"github.com/mlnoga/stacker/internal/image"
)

func makeStarField(w, h int32, centers [][2]int32) *image.Image {
	img := image.New(w, h, 1)
	for _, c := range centers {
		img.Pixel(c[0], c[1])[0] = 1
	}
	return img
}

// A blank frame (no stars at all) produces zero constellations and is
// not appended to the stack; the stack's arrays are left untouched.
func TestExtractFrameRejectsBlankImage(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	stack := &Stack{}
	blank := image.New(64, 64, 1)

	accepted := e.ExtractFrame(stack, 0, blank)
	if accepted {
		t.Fatal("expected blank frame to be rejected")
	}
	if len(stack.Frames) != 0 || len(stack.Stars) != 0 || len(stack.Constellations) != 0 {
		t.Fatalf("stack not left empty: %+v", stack)
	}
}

// A frame with enough widely spaced bright stars produces at least one
// accepted frame record whose star/constellation ranges are consistent.
func TestExtractFrameAcceptsStarField(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	stack := &Stack{}

	centers := [][2]int32{{40, 40}, {160, 60}, {90, 180}, {200, 200}}
	img := makeStarField(256, 256, centers)

	accepted := e.ExtractFrame(stack, 3, img)
	if !accepted {
		t.Fatal("expected star field frame to be accepted")
	}
	if len(stack.Frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(stack.Frames))
	}
	if stack.Frames[0].ImageIndex != 3 {
		t.Fatalf("ImageIndex=%d, want 3", stack.Frames[0].ImageIndex)
	}
	start, end := stack.StarRange(0)
	if start != 0 || int(end) != len(stack.Stars) {
		t.Fatalf("star range [%d,%d) inconsistent with len %d", start, end, len(stack.Stars))
	}
	cstart, cend := stack.ConstellationRange(0)
	if cstart != 0 || int(cend) != len(stack.Constellations) {
		t.Fatalf("constellation range [%d,%d) inconsistent with len %d", cstart, cend, len(stack.Constellations))
	}
	if len(stack.Constellations) == 0 {
		t.Fatal("expected at least one constellation")
	}
}

// Backing arrays across two accepted frames stay non-decreasing in
// FirstStar/FirstConstellation, and a rejected frame in between leaves no
// footprint.
func TestExtractFrameSequenceWithRejection(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	stack := &Stack{}

	centers := [][2]int32{{40, 40}, {160, 60}, {90, 180}, {200, 200}}
	img1 := makeStarField(256, 256, centers)
	blank := image.New(256, 256, 1)
	img2 := makeStarField(256, 256, centers)

	if !e.ExtractFrame(stack, 0, img1) {
		t.Fatal("expected img1 accepted")
	}
	if e.ExtractFrame(stack, 1, blank) {
		t.Fatal("expected blank rejected")
	}
	if !e.ExtractFrame(stack, 2, img2) {
		t.Fatal("expected img2 accepted")
	}

	if len(stack.Frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(stack.Frames))
	}
	if stack.Frames[0].FirstStar > stack.Frames[1].FirstStar {
		t.Fatalf("FirstStar not non-decreasing: %+v", stack.Frames)
	}
	if stack.Frames[1].ImageIndex != 2 {
		t.Fatalf("second accepted frame ImageIndex=%d, want 2", stack.Frames[1].ImageIndex)
	}
}
