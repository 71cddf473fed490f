// Package frame runs the per-image extraction stage chain (grayscale →
// gaussian → binarize → coarse stars → fine stars → constellations) and
// aggregates the results of every input frame into one columnar
// FrameStack. Grounded on nightlight's internal/ops/pre/preprocess.go
// (operator sequencing) and internal/ops/stack/stackbatch.go (building a
// batch in place, rolling back a short one).
package frame

import (
	"github.com/mlnoga/stacker/internal/constellation"
	"github.com/mlnoga/stacker/internal/image"
	"github.com/mlnoga/stacker/internal/star"
)

// Record locates one frame's slice of Stars and Constellations within the
// FrameStack's flat arrays.
type Record struct {
	ImageIndex         int
	FirstStar          int32
	FirstConstellation int32
}

// Stack is a columnar aggregate: one Frames list plus flat
// Stars/Constellations arrays. The stars for frame i
// occupy [Frames[i].FirstStar, next frame's FirstStar) (or the end of
// Stars for the last frame); same for constellations. FirstStar is
// non-decreasing, and frames with zero constellations are never appended.
//
// Constellation.Stars indices are frame-local (0-based within the
// frame's own star slice); a consumer resolves a global star by adding
// the owning frame's FirstStar.
type Stack struct {
	Frames         []Record
	Stars          []star.FineStar
	Constellations []constellation.Constellation
}

// StarRange returns the [start, end) slice bounds of frame i's stars.
func (s *Stack) StarRange(frameIdx int) (start, end int32) {
	start = s.Frames[frameIdx].FirstStar
	if frameIdx+1 < len(s.Frames) {
		end = s.Frames[frameIdx+1].FirstStar
	} else {
		end = int32(len(s.Stars))
	}
	return start, end
}

// ConstellationRange returns the [start, end) slice bounds of frame i's
// constellations.
func (s *Stack) ConstellationRange(frameIdx int) (start, end int32) {
	start = s.Frames[frameIdx].FirstConstellation
	if frameIdx+1 < len(s.Frames) {
		end = s.Frames[frameIdx+1].FirstConstellation
	} else {
		end = int32(len(s.Constellations))
	}
	return start, end
}

// FrameStars returns frame i's stars as a plain slice (no copy).
func (s *Stack) FrameStars(frameIdx int) []star.FineStar {
	start, end := s.StarRange(frameIdx)
	return s.Stars[start:end]
}

// FrameConstellations returns frame i's constellations (no copy).
func (s *Stack) FrameConstellations(frameIdx int) []constellation.Constellation {
	start, end := s.ConstellationRange(frameIdx)
	return s.Constellations[start:end]
}

// Options configures the extraction stage chain.
type Options struct {
	GaussianSigma  float32
	BinarizeK      float32
	MaskCutoff     float32
	ConstellationK int
}

// DefaultOptions picks cutoff 0.5, binarize k=2, constellation
// neighborhood K=5, and a conservative Gaussian sigma of 1.5 as a
// smoothing radius for star-sized blobs.
func DefaultOptions() Options {
	return Options{
		GaussianSigma:  1.5,
		BinarizeK:      image.DefaultBinarizeK,
		MaskCutoff:     0.5,
		ConstellationK: constellation.DefaultK,
	}
}

// Extractor runs the stage chain once per input image into a shared
// Stack, reusing scratch images across frames (their backing storage
// only grows): grayscale, blurred, and mask, plus the Gaussian's own
// internal vertical-pass scratch (see DESIGN.md for why two named
// scratch buffers weren't enough to carry the pipeline unambiguously).
type Extractor struct {
	opts Options

	grayscale *image.Image
	blurred   *image.Image
	scratch   *image.Image
	mask      *image.Image
}

// NewExtractor creates an extractor with the given options.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{
		opts:      opts,
		grayscale: image.New(0, 0, 0),
		blurred:   image.New(0, 0, 0),
		scratch:   image.New(0, 0, 0),
		mask:      image.New(0, 0, 0),
	}
}

// ExtractFrame runs the stage chain for one image and appends its
// results to stack, unless zero constellations were produced, in which
// case the partially-pushed stars/constellations are truncated back so
// the stack's invariants hold on the no-op path too.
func (e *Extractor) ExtractFrame(stack *Stack, imageIndex int, src *image.Image) (accepted bool) {
	starBase := int32(len(stack.Stars))
	conBase := int32(len(stack.Constellations))

	image.Grayscale(e.grayscale, src)
	image.Gaussian(e.blurred, e.scratch, e.grayscale, e.opts.GaussianSigma)
	image.Binarize(e.mask, e.blurred, e.opts.BinarizeK)

	coarse := star.ExtractCoarse(e.mask, e.opts.MaskCutoff)
	fine := star.ExtractFine(e.blurred, coarse)

	points := make([]constellation.Point, len(fine))
	for i, f := range fine {
		points[i] = constellation.Point{X: f.X, Y: f.Y}
	}
	cons := constellation.Extract(points, e.opts.ConstellationK)

	if len(cons) == 0 {
		stack.Stars = stack.Stars[:starBase]
		stack.Constellations = stack.Constellations[:conBase]
		return false
	}

	stack.Stars = append(stack.Stars, fine...)
	stack.Constellations = append(stack.Constellations, cons...)
	stack.Frames = append(stack.Frames, Record{
		ImageIndex:         imageIndex,
		FirstStar:          starBase,
		FirstConstellation: conBase,
	})
	return true
}
