// Package preview renders a debug overlay of detected stars and
// constellations atop a frame's blurred grayscale buffer, for the
// `--preview-stars` diagnostic output. Grounded on nightlight's
// internal/ops/hsl and internal/fits/pixelops.go, both of which build
// colors via github.com/lucasb-eyer/go-colorful's Hcl constructor; this
// rewrite reuses Hcl for the same reason nightlight does — hue-stepped,
// perceptually-even colors — but to tell constellations apart instead of
// to hue-rotate a stretched image.
package preview

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/mlnoga/stacker/internal/constellation"
	"github.com/mlnoga/stacker/internal/image"
	"github.com/mlnoga/stacker/internal/star"
)

// ringRadius is the overlay marker radius in pixels.
const ringRadius = 4

// colorForIndex picks a perceptually distinct color for constellation i
// out of n by stepping hue evenly around the Hcl wheel at fixed chroma
// and lightness, the same "step hue, hold chroma/lightness" approach
// nightlight's HSL hue-rotation curves use.
func colorForIndex(i, n int) (r, g, b float32) {
	if n <= 0 {
		n = 1
	}
	hue := 360.0 * float64(i%n) / float64(n)
	c := colorful.Hcl(hue, 0.7, 0.6).Clamped()
	cr, cg, cb := c.RGB255()
	return float32(cr) / 255, float32(cg) / 255, float32(cb) / 255
}

// Render draws blurred (converted to RGB if it is mono) and overlays a
// ring at every fine star position, colored by the first constellation
// that references it (stars belonging to no constellation are drawn in
// neutral grey).
func Render(blurred *image.Image, stars []star.FineStar, cons []constellation.Constellation) *image.Image {
	w, h := blurred.Width, blurred.Height
	out := image.New(w, h, 3)
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			v := blurred.At(x, y, 0)
			p := out.Pixel(x, y)
			p[0], p[1], p[2] = v, v, v
		}
	}

	owner := make([]int, len(stars))
	for i := range owner {
		owner[i] = -1
	}
	for ci, con := range cons {
		for _, si := range con.Stars {
			if owner[si] == -1 {
				owner[si] = ci
			}
		}
	}

	for i, s := range stars {
		var r, g, b float32 = 0.6, 0.6, 0.6
		if owner[i] >= 0 {
			r, g, b = colorForIndex(owner[i], len(cons))
		}
		drawRing(out, s.X, s.Y, ringRadius, r, g, b)
	}
	return out
}

func drawRing(im *image.Image, cx, cy, radius float32, r, g, b float32) {
	steps := int(2 * math.Pi * float64(radius))
	if steps < 8 {
		steps = 8
	}
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := int32(cx + radius*float32(math.Cos(theta)))
		y := int32(cy + radius*float32(math.Sin(theta)))
		if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
			continue
		}
		p := im.Pixel(x, y)
		p[0], p[1], p[2] = r, g, b
	}
}
