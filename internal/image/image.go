// Package image owns the dense pixel tensor the alignment pipeline is
// built on: a contiguous f32 buffer with an immutable-per-call
// (width, height, components) descriptor, plus four filters: Normalize,
// and the three the frame extractor chains together (Grayscale, Gaussian,
// Binarize). Generalized from nightlight's internal/fits.Image, which
// couples a FITS header to its pixel array; here the tensor is split out
// on its own so the alignment core has no FITS dependency at all.
package image

// Image is a dense (Width, Height, Components) tensor of 32-bit floats.
// Pixel (x,y) occupies the contiguous slice
// [(y*Width+x)*Components, (y*Width+x+1)*Components).
type Image struct {
	Width      int32
	Height     int32
	Components int32
	data       []float32
}

// New allocates an image of the given shape, zero-filled.
func New(width, height, components int32) *Image {
	return &Image{
		Width:      width,
		Height:     height,
		Components: components,
		data:       make([]float32, int64(width)*int64(height)*int64(components)),
	}
}

// NewFromData wraps an existing buffer without copying. len(data) must
// equal width*height*components.
func NewFromData(width, height, components int32, data []float32) *Image {
	return &Image{Width: width, Height: height, Components: components, data: data}
}

// Realloc resizes the image to the given descriptor, reusing backing
// storage when possible. It is idempotent: calling it again with the
// same descriptor is a no-op on capacity. Like nightlight's scratch
// buffers in the frame extractor (tmp_grayscale, tmp_starmask), capacity
// only grows across calls; it never shrinks below what is requested, and
// existing content is not preserved (callers always write a full pass
// before reading).
func (im *Image) Realloc(width, height, components int32) {
	needed := int64(width) * int64(height) * int64(components)
	if int64(cap(im.data)) < needed {
		im.data = make([]float32, needed)
	} else {
		im.data = im.data[:needed]
	}
	im.Width, im.Height, im.Components = width, height, components
}

// Data returns the flat pixel slice.
func (im *Image) Data() []float32 { return im.data }

// Pixel returns the bounds-checked slice of Components values at (x,y).
func (im *Image) Pixel(x, y int32) []float32 {
	if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
		panic("image: pixel coordinates out of bounds")
	}
	i := (int64(y)*int64(im.Width) + int64(x)) * int64(im.Components)
	return im.data[i : i+int64(im.Components)]
}

// At returns channel c of pixel (x,y) without bounds checking, for use in
// hot inner loops that have already established bounds.
func (im *Image) At(x, y, c int32) float32 {
	return im.data[(int64(y)*int64(im.Width)+int64(x))*int64(im.Components)+int64(c)]
}

// Normalize rescales all channel values in place to [0,1]: p <- (p-min)/(max-min).
// If max == min the image is left all-zero rather than producing NaN.
func Normalize(im *Image) {
	if len(im.data) == 0 {
		return
	}
	min, max := im.data[0], im.data[0]
	for _, v := range im.data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	if span == 0 {
		for i := range im.data {
			im.data[i] = 0
		}
		return
	}
	inv := 1.0 / span
	for i, v := range im.data {
		im.data[i] = (v - min) * inv
	}
}
