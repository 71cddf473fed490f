package image

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultBinarizeK is the default sigma multiple used by Binarize.
const DefaultBinarizeK = 2.0

// Binarize writes a 0/1 mask into dst from a 1-channel src: pixel is 1 if
// src > mean + k*stddev, else 0. Mean and stddev are computed with
// gonum/stat rather than nightlight's hand-rolled calcMinMeanMax/
// calcVariance (internal/stats/stats.go) — nightlight already depends on
// gonum, previously only via star/align.go's optimizer, and gonum/stat's
// Mean/StdDev are exactly this computation.
func Binarize(dst, src *Image, k float32) {
	if src.Components != 1 {
		panic("image: Binarize requires a 1-channel source")
	}
	dst.Realloc(src.Width, src.Height, 1)
	mean, variance := stat.PopMeanVariance(float64Slice(src.data), nil)
	stddev := 0.0
	if variance > 0 {
		stddev = math.Sqrt(variance)
	}
	threshold := float32(mean + float64(k)*stddev)
	sd, dd := src.data, dst.data
	for i, v := range sd {
		if v > threshold {
			dd[i] = 1
		} else {
			dd[i] = 0
		}
	}
}

func float64Slice(f []float32) []float64 {
	out := make([]float64, len(f))
	for i, v := range f {
		out[i] = float64(v)
	}
	return out
}
