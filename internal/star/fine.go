package star

import (
	"math"

	"github.com/mlnoga/stacker/internal/image"
)

// FineStar is a sub-pixel intensity-weighted centroid computed in a
// window around a coarse star.
type FineStar struct {
	X, Y   float32
	StdDev float32 // spread estimate, a quality indicator only
}

// FineWindowRadius is the half-width of the centroiding window.
const FineWindowRadius = 16

// ExtractFine computes a sub-pixel centroid and spread for each coarse
// star in img (a blurred grayscale image). Coarse stars whose integer
// floor centroid lies within R of any image edge are rejected, since the
// window would run off the image.
func ExtractFine(img *image.Image, coarse []CoarseStar) []FineStar {
	const r = FineWindowRadius
	w, h := img.Width, img.Height

	var out []FineStar
	for _, cs := range coarse {
		xc, yc := int32(cs.X), int32(cs.Y)
		if xc-r < 0 || xc+r >= w || yc-r < 0 || yc+r >= h {
			continue
		}

		var sumX, sumY, sum float64
		for iy := yc - r; iy < yc+r; iy++ {
			for ix := xc - r; ix < xc+r; ix++ {
				p := float64(img.At(ix, iy, 0))
				sumX += float64(ix) * p
				sumY += float64(iy) * p
				sum += p
			}
		}
		if sum == 0 {
			continue
		}
		cx, cy := sumX/sum, sumY/sum

		// Spread uses the running (ix,iy) loop coordinates against the
		// centroid, not a fixed column — nightlight's equivalent loop
		// reuses a stale column index here, which would make the spread
		// estimate ignore the actual x position.
		var variance float64
		for iy := yc - r; iy < yc+r; iy++ {
			for ix := xc - r; ix < xc+r; ix++ {
				p := float64(img.At(ix, iy, 0))
				dx := float64(ix) - cx
				dy := float64(iy) - cy
				variance += (dx*dx + dy*dy) * p * p
			}
		}
		variance /= float64(r) * float64(r)

		out = append(out, FineStar{
			X:      float32(cx),
			Y:      float32(cy),
			StdDev: float32(math.Sqrt(variance)),
		})
	}
	return out
}
