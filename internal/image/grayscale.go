package image

// Grayscale writes the arithmetic mean of src's channels into dst, a
// 1-channel image of the same (Width,Height). dst is reallocated to fit.
// Mirrors nightlight's per-pixel channel reduction style in
// internal/fits/pixelops.go, narrowed to a plain unweighted mean (no
// luminance weighting).
func Grayscale(dst, src *Image) {
	dst.Realloc(src.Width, src.Height, 1)
	n := int64(src.Width) * int64(src.Height)
	c := int64(src.Components)
	inv := float32(1.0) / float32(src.Components)
	sd, dd := src.data, dst.data
	for i := int64(0); i < n; i++ {
		var sum float32
		base := i * c
		for ch := int64(0); ch < c; ch++ {
			sum += sd[base+ch]
		}
		dd[i] = sum * inv
	}
}
