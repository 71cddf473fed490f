package image

import (
	"math"

	"github.com/klauspost/cpuid/v2"
)

// GaussianKernel returns the half-window of a separable Gaussian filter
// with standard deviation sigma: radius r = ceil(4*sigma), k[i] =
// exp(-i^2/(2*sigma^2)), normalized so k[0] + 2*sum(k[1:]) = 1.
func GaussianKernel(sigma float32) []float32 {
	r := int(math.Ceil(float64(4 * sigma)))
	if r < 0 {
		r = 0
	}
	k := make([]float32, r+1)
	twoSigmaSq := 2 * float64(sigma) * float64(sigma)
	for i := 0; i <= r; i++ {
		if twoSigmaSq == 0 {
			if i == 0 {
				k[i] = 1
			}
			continue
		}
		k[i] = float32(math.Exp(-float64(i*i) / twoSigmaSq))
	}
	sum := k[0]
	for i := 1; i <= r; i++ {
		sum += 2 * k[i]
	}
	if sum != 0 {
		inv := 1 / sum
		for i := range k {
			k[i] *= inv
		}
	}
	return k
}

// hasAVX2 is resolved once; nightlight's dispatch sites
// (internal/stats_amd64.go, internal/median/median3x3_amd64.go) check
// cpuid.CPU.AVX2() at call time since they live behind build tags this
// rewrite doesn't use, but the net effect — branch once, reuse — is the
// same.
var hasAVX2 = cpuid.CPU.Supports(cpuid.AVX2)

// Gaussian applies a separable Gaussian blur to a 1-channel src, using
// scratch for the intermediate vertical pass and writing the final
// result into dst. dst and scratch are reallocated to src's dimensions.
// Out-of-bounds taps are treated as 0. src must be 1-channel.
func Gaussian(dst, scratch, src *Image, sigma float32) {
	if src.Components != 1 {
		panic("image: Gaussian requires a 1-channel source")
	}
	k := GaussianKernel(sigma)
	scratch.Realloc(src.Width, src.Height, 1)
	dst.Realloc(src.Width, src.Height, 1)

	convolveVertical(scratch.data, src.data, src.Width, src.Height, k)
	convolveHorizontal(dst.data, scratch.data, src.Width, src.Height, k)
}

func convolveVertical(dst, src []float32, width, height int32, k []float32) {
	if hasAVX2 {
		convolveVerticalUnrolled(dst, src, width, height, k)
	} else {
		convolveVerticalScalar(dst, src, width, height, k)
	}
}

func convolveHorizontal(dst, src []float32, width, height int32, k []float32) {
	if hasAVX2 {
		convolveHorizontalUnrolled(dst, src, width, height, k)
	} else {
		convolveHorizontalScalar(dst, src, width, height, k)
	}
}

// convolveVerticalScalar is the straightforward reference implementation.
func convolveVerticalScalar(dst, src []float32, width, height int32, k []float32) {
	r := int32(len(k) - 1)
	for y := int32(0); y < height; y++ {
		for x := int32(0); x < width; x++ {
			sum := k[0] * src[y*width+x]
			for i := int32(1); i <= r; i++ {
				if y-i >= 0 {
					sum += k[i] * src[(y-i)*width+x]
				}
				if y+i < height {
					sum += k[i] * src[(y+i)*width+x]
				}
			}
			dst[y*width+x] = sum
		}
	}
}

func convolveHorizontalScalar(dst, src []float32, width, height int32, k []float32) {
	r := int32(len(k) - 1)
	for y := int32(0); y < height; y++ {
		row := y * width
		for x := int32(0); x < width; x++ {
			sum := k[0] * src[row+x]
			for i := int32(1); i <= r; i++ {
				if x-i >= 0 {
					sum += k[i] * src[row+x-i]
				}
				if x+i < width {
					sum += k[i] * src[row+x+i]
				}
			}
			dst[row+x] = sum
		}
	}
}

// convolveVerticalUnrolled processes four columns per iteration. It is
// functionally identical to convolveVerticalScalar; the unrolling is the
// pure-Go stand-in for nightlight's AVX2 assembly routines, which this
// rewrite cannot link (the retrieved copy of nightlight excludes its .s
// files) but whose dispatch shape (internal/stats_amd64.go) is kept.
func convolveVerticalUnrolled(dst, src []float32, width, height int32, k []float32) {
	r := int32(len(k) - 1)
	x := int32(0)
	for ; x+4 <= width; x += 4 {
		for y := int32(0); y < height; y++ {
			var s0, s1, s2, s3 float32
			base := y * width
			s0 = k[0] * src[base+x]
			s1 = k[0] * src[base+x+1]
			s2 = k[0] * src[base+x+2]
			s3 = k[0] * src[base+x+3]
			for i := int32(1); i <= r; i++ {
				if y-i >= 0 {
					up := (y - i) * width
					s0 += k[i] * src[up+x]
					s1 += k[i] * src[up+x+1]
					s2 += k[i] * src[up+x+2]
					s3 += k[i] * src[up+x+3]
				}
				if y+i < height {
					down := (y + i) * width
					s0 += k[i] * src[down+x]
					s1 += k[i] * src[down+x+1]
					s2 += k[i] * src[down+x+2]
					s3 += k[i] * src[down+x+3]
				}
			}
			dst[base+x], dst[base+x+1], dst[base+x+2], dst[base+x+3] = s0, s1, s2, s3
		}
	}
	for ; x < width; x++ {
		for y := int32(0); y < height; y++ {
			sum := k[0] * src[y*width+x]
			for i := int32(1); i <= r; i++ {
				if y-i >= 0 {
					sum += k[i] * src[(y-i)*width+x]
				}
				if y+i < height {
					sum += k[i] * src[(y+i)*width+x]
				}
			}
			dst[y*width+x] = sum
		}
	}
}

func convolveHorizontalUnrolled(dst, src []float32, width, height int32, k []float32) {
	r := int32(len(k) - 1)
	for y := int32(0); y < height; y++ {
		row := y * width
		x := int32(0)
		for ; x+4 <= width; x += 4 {
			var s0, s1, s2, s3 float32
			s0 = k[0] * src[row+x]
			s1 = k[0] * src[row+x+1]
			s2 = k[0] * src[row+x+2]
			s3 = k[0] * src[row+x+3]
			for i := int32(1); i <= r; i++ {
				if x-i >= 0 {
					s0 += k[i] * src[row+x-i]
				}
				if x+1-i >= 0 {
					s1 += k[i] * src[row+x+1-i]
				}
				if x+2-i >= 0 {
					s2 += k[i] * src[row+x+2-i]
				}
				if x+3-i >= 0 {
					s3 += k[i] * src[row+x+3-i]
				}
				if x+i < width {
					s0 += k[i] * src[row+x+i]
				}
				if x+1+i < width {
					s1 += k[i] * src[row+x+1+i]
				}
				if x+2+i < width {
					s2 += k[i] * src[row+x+2+i]
				}
				if x+3+i < width {
					s3 += k[i] * src[row+x+3+i]
				}
			}
			dst[row+x], dst[row+x+1], dst[row+x+2], dst[row+x+3] = s0, s1, s2, s3
		}
		for ; x < width; x++ {
			sum := k[0] * src[row+x]
			for i := int32(1); i <= r; i++ {
				if x-i >= 0 {
					sum += k[i] * src[row+x-i]
				}
				if x+i < width {
					sum += k[i] * src[row+x+i]
				}
			}
			dst[row+x] = sum
		}
	}
}
