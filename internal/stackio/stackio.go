// Package stackio implements the final pixel-domain reduction across
// aligned frames: the accumulate-with-offset summation stacker, and the
// standalone pixel-median subcommand's element-wise median. Grounded on
// the shape of nightlight's internal/ops/stack/stack.go accumulation
// loop, reduced to these two stacking modes and kept single-threaded per
// the documented concurrency model (collaborator-layer goroutines are for
// I/O overlap only, not for parallelizing this loop).
package stackio

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mlnoga/stacker/internal/align"
	"github.com/mlnoga/stacker/internal/errs"
	"github.com/mlnoga/stacker/internal/image"
)

// Accumulate sums each frame's pixel at (x-dx, y-dy) into the result at
// (x,y) — nearest-pixel, no resampling — then divides by the frame
// count. Offsets must be in the same order as frames and both must be
// non-empty and equal length; every frame must share frames[0]'s shape.
func Accumulate(frames []*image.Image, offsets []align.Offset) (*image.Image, error) {
	if len(frames) == 0 {
		return nil, errs.New(errs.InsufficientStars, "", nil)
	}
	if len(frames) != len(offsets) {
		return nil, errs.New(errs.InvalidImage, "", nil)
	}
	w, h, c := frames[0].Width, frames[0].Height, frames[0].Components
	for _, f := range frames {
		if f.Width != w || f.Height != h || f.Components != c {
			return nil, errs.New(errs.InvalidImage, "", nil)
		}
	}

	result := image.New(w, h, c)
	sum := result.Data()

	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			dst := (y*w + x) * c
			for fi, f := range frames {
				sx := x - int32(math.Round(float64(offsets[fi].DX)))
				sy := y - int32(math.Round(float64(offsets[fi].DY)))
				if sx < 0 || sx >= w || sy < 0 || sy >= h {
					continue
				}
				src := f.Pixel(sx, sy)
				for ch := int32(0); ch < c; ch++ {
					sum[dst+ch] += src[ch]
				}
			}
		}
	}

	inv := 1.0 / float32(len(frames))
	for i := range sum {
		sum[i] *= inv
	}
	return result, nil
}

// Median computes the element-wise median across frames of identical
// shape, reusing the shape the first frame establishes. A single input
// short-circuits to a defensive copy.
func Median(frames []*image.Image) (*image.Image, error) {
	if len(frames) == 0 {
		return nil, errs.New(errs.InsufficientStars, "", nil)
	}
	w, h, c := frames[0].Width, frames[0].Height, frames[0].Components
	if len(frames) == 1 {
		out := image.New(w, h, c)
		copy(out.Data(), frames[0].Data())
		return out, nil
	}
	for _, f := range frames {
		if f.Width != w || f.Height != h || f.Components != c {
			return nil, errs.New(errs.InvalidImage, "", nil)
		}
	}

	out := image.New(w, h, c)
	dst := out.Data()
	column := make([]float64, len(frames))
	for i := range dst {
		for fi, f := range frames {
			column[fi] = float64(f.Data()[i])
		}
		dst[i] = float32(medianOf(column))
	}
	return out, nil
}

// medianOf returns the 0.5-quantile of v via gonum/stat.Quantile, which
// requires its input sorted ascending.
func medianOf(v []float64) float64 {
	sort.Float64s(v)
	return stat.Quantile(0.5, stat.Empirical, v, nil)
}
