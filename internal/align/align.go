// Package align matches a frame's constellations against a growing
// global star catalog and derives the translation that brings the frame
// into the reference frame's coordinate system. Grounded on nightlight's
// internal/star/align.go Aligner (reference stars + pointerless k-d tree
// + nearest-descriptor matching) and internal/ops/stack/stackbatches.go's
// incremental one-winner-per-round growth loop, but translation-only —
// no affine fit, no gonum/optimize.NelderMead.
package align

import (
	"math"

	"github.com/mlnoga/stacker/internal/constellation"
	"github.com/mlnoga/stacker/internal/errs"
	"github.com/mlnoga/stacker/internal/frame"
)

// DefaultDedupRadius is the default distance below which a candidate
// catalog star is considered a duplicate of an existing one.
const DefaultDedupRadius = 50.0

// Offset is the (dx, dy) that brings a frame's stars into the reference
// frame's coordinate system: frame.stars + (dx,dy) = reference coords.
type Offset struct {
	DX, DY float32
}

// Options configures the aligner.
type Options struct {
	ConstellationK int
	DedupRadius    float32
}

func DefaultOptions() Options {
	return Options{
		ConstellationK: constellation.DefaultK,
		DedupRadius:    DefaultDedupRadius,
	}
}

// Run aligns every frame in stack to the frame with the most stars
// (ties broken by lowest index), returning one Offset per frame in
// stack.Frames order. If stack has no frames, it returns
// *errs.Error{Kind: errs.InsufficientStars} without touching any data.
func Run(stack *frame.Stack, opts Options) ([]Offset, error) {
	if len(stack.Frames) == 0 {
		return nil, errs.New(errs.InsufficientStars, "", nil)
	}

	offsets := make([]Offset, len(stack.Frames))
	refIdx := pickReference(stack)

	allStars := clonePoints(framePoints(stack, refIdx))
	allCons := constellation.Extract(allStars, opts.ConstellationK)

	unprocessed := make(map[int]bool, len(stack.Frames))
	for i := range stack.Frames {
		if i != refIdx {
			unprocessed[i] = true
		}
	}
	offsets[refIdx] = Offset{0, 0}

	for len(unprocessed) > 0 {
		winner, cg, cf, rotation, bestD := pickBestMatch(stack, unprocessed, allCons, opts.ConstellationK)
		if winner < 0 {
			// No candidate frame produced a usable match (e.g. every
			// remaining frame has fewer than 3 distinct stars). Leave
			// the remaining frames unmatched rather than spin forever;
			// the loop still terminates because the worklist shrinks
			// by at least one frame per successful iteration and we
			// break out once none can succeed.
			break
		}
		_ = bestD

		framePts := framePoints(stack, winner)
		cfRotated := cf.Rotate(rotation)

		var dxSum, dySum float32
		for i := 0; i < 3; i++ {
			g := allStars[cg.Stars[i]]
			f := framePts[cfRotated.Stars[i]]
			dxSum += g.X - f.X
			dySum += g.Y - f.Y
		}
		dx, dy := dxSum/3, dySum/3
		offsets[winner] = Offset{dx, dy}

		for _, p := range framePts {
			candidate := constellation.Point{X: p.X + dx, Y: p.Y + dy}
			if !hasNearby(allStars, candidate, opts.DedupRadius) {
				allStars = append(allStars, candidate)
			}
		}
		allCons = constellation.Extract(allStars, opts.ConstellationK)

		delete(unprocessed, winner)
	}

	return offsets, nil
}

// pickReference selects the frame with the most stars, ties broken by
// lowest index.
func pickReference(stack *frame.Stack) int {
	best := 0
	bestCount := -1
	for i := range stack.Frames {
		start, end := stack.StarRange(i)
		count := int(end - start)
		if count > bestCount {
			bestCount = count
			best = i
		}
	}
	return best
}

func framePoints(stack *frame.Stack, frameIdx int) []constellation.Point {
	fs := stack.FrameStars(frameIdx)
	pts := make([]constellation.Point, len(fs))
	for i, s := range fs {
		pts[i] = constellation.Point{X: s.X, Y: s.Y}
	}
	return pts
}

func clonePoints(p []constellation.Point) []constellation.Point {
	out := make([]constellation.Point, len(p))
	copy(out, p)
	return out
}

// pickBestMatch compares every unprocessed frame's constellations
// against every constellation in the current global catalog, returning
// the single globally minimal pair across all such frames. winner is -1
// if no unprocessed frame has any constellations to compare (nothing
// left to match).
func pickBestMatch(stack *frame.Stack, unprocessed map[int]bool, allCons []constellation.Constellation, k int) (winner int, cg, cf constellation.Constellation, rotation int, bestD float32) {
	winner = -1
	bestD = float32(math.MaxFloat32)
	for f := range unprocessed {
		frameCons := stack.FrameConstellations(f)
		for _, fc := range frameCons {
			for _, gc := range allCons {
				d, r := constellation.Compare(gc, fc)
				if d < bestD {
					bestD = d
					winner = f
					cg = gc
					cf = fc
					rotation = r
				}
			}
		}
	}
	return winner, cg, cf, rotation, bestD
}

func hasNearby(points []constellation.Point, p constellation.Point, radius float32) bool {
	radiusSq := radius * radius
	for _, q := range points {
		dx, dy := p.X-q.X, p.Y-q.Y
		if dx*dx+dy*dy <= radiusSq {
			return true
		}
	}
	return false
}
