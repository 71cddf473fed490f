package fitsio

import "github.com/mlnoga/stacker/internal/image"

// CFAType names a color filter array layout, top-to-bottom / left-to-right.
type CFAType int

const (
	CFARGGB CFAType = iota
	CFAGRBG
	CFAGBRG
	CFABGGR
)

// Debayer maps a 1-component sensor image to a half-resolution 3-component
// RGB image by collapsing each 2x2 CFA quad to a single pixel: R, the
// average of the two green samples, and B (odd trailing rows/columns are
// dropped). Only RGGB quad layout is read directly; the other three
// layouts are handled by swapping row/column parity before delegating to
// it, since each is RGGB read from a one-pixel-shifted origin.
func Debayer(src *image.Image, cfa CFAType) *image.Image {
	switch cfa {
	case CFARGGB:
		return debayerRGGB(src)
	case CFAGRBG:
		return debayerRGGB(shiftOrigin(src, 1, 0))
	case CFAGBRG:
		return debayerRGGB(shiftOrigin(src, 0, 1))
	case CFABGGR:
		return debayerRGGB(shiftOrigin(src, 1, 1))
	default:
		return debayerRGGB(src)
	}
}

// shiftOrigin returns a copy of src starting one pixel in from (dx, dy),
// which is sufficient to reduce the other three Bayer layouts to RGGB.
func shiftOrigin(src *image.Image, dx, dy int32) *image.Image {
	w, h := src.Width-dx, src.Height-dy
	dst := image.New(w, h, 1)
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			dst.Pixel(x, y)[0] = src.At(x+dx, y+dy, 0)
		}
	}
	return dst
}

// debayerRGGB maps each 2x2 quad (R at (x,y), G at (x+1,y) and (x,y+1), B
// at (x+1,y+1)) to one output pixel at (x/2, y/2), at half the input's
// width and height.
func debayerRGGB(src *image.Image) *image.Image {
	w := src.Width &^ 1
	h := src.Height &^ 1
	dst := image.New(w/2, h/2, 3)

	for y := int32(0); y < h; y += 2 {
		for x := int32(0); x < w; x += 2 {
			r := src.At(x, y, 0)
			g0 := src.At(x+1, y, 0)
			g1 := src.At(x, y+1, 0)
			b := src.At(x+1, y+1, 0)

			p := dst.Pixel(x/2, y/2)
			p[0], p[1], p[2] = r, 0.5*(g0+g1), b
		}
	}
	return dst
}
