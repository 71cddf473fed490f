package image

import (
	"math"
	"testing"
)

func TestNormalizeMinMax(t *testing.T) {
	im := NewFromData(2, 2, 1, []float32{1, 2, 3, 4})
	Normalize(im)
	min, max := im.Data()[0], im.Data()[0]
	for _, v := range im.Data() {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min != 0 || max != 1 {
		t.Fatalf("min=%v max=%v, want 0,1", min, max)
	}
}

func TestNormalizeConstantImageStaysZero(t *testing.T) {
	im := NewFromData(4, 4, 1, make([]float32, 16))
	for i := range im.Data() {
		im.Data()[i] = 0.5
	}
	Normalize(im)
	for i, v := range im.Data() {
		if v != 0 {
			t.Fatalf("data[%d]=%v, want 0", i, v)
		}
		if math.IsNaN(float64(v)) {
			t.Fatalf("data[%d] is NaN", i)
		}
	}
}

func TestGrayscaleIsMeanOfChannels(t *testing.T) {
	src := NewFromData(1, 1, 3, []float32{1, 2, 3})
	dst := New(0, 0, 0)
	Grayscale(dst, src)
	if got, want := dst.At(0, 0, 0), float32(2); got != want {
		t.Fatalf("grayscale=%v, want %v", got, want)
	}
}

func TestGaussianOfConstantImageWithinBounds(t *testing.T) {
	const v = float32(3.0)
	src := New(32, 32, 1)
	for i := range src.Data() {
		src.Data()[i] = v
	}
	dst, scratch := New(0, 0, 0), New(0, 0, 0)
	Gaussian(dst, scratch, src, 2)

	for _, out := range dst.Data() {
		if out > v || out < 0 {
			t.Fatalf("gaussian output %v outside [0, %v]", out, v)
		}
	}
	// interior pixels, far from any edge, should lose negligible energy
	cx, cy := int32(16), int32(16)
	if got := dst.At(cx, cy, 0); got < v*0.99 {
		t.Fatalf("interior pixel %v too far below %v", got, v)
	}
}

func TestBinarizeMonotoneRamp(t *testing.T) {
	const n = 1000
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i)
	}
	src := NewFromData(n, 1, 1, data)
	dst := New(0, 0, 0)
	k := float32(DefaultBinarizeK)
	Binarize(dst, src, k)

	mean, m2 := float64(0), float64(0)
	for _, v := range data {
		mean += float64(v)
	}
	mean /= n
	for _, v := range data {
		d := float64(v) - mean
		m2 += d * d
	}
	stddev := math.Sqrt(m2 / n)
	threshold := mean + float64(k)*stddev

	for i, v := range data {
		want := float32(0)
		if float64(v) > threshold {
			want = 1
		}
		if got := dst.At(int32(i), 0, 0); got != want {
			t.Fatalf("index %d: got %v want %v (v=%v threshold=%v)", i, got, want, v, threshold)
		}
	}
}

// Single 8x8 one-channel image, all zero except (2,2)=1.
func TestNormalizeRescalesToUnitRange(t *testing.T) {
	src := New(8, 8, 1)
	src.Pixel(2, 2)[0] = 1
	Normalize(src)
	for y := int32(0); y < 8; y++ {
		for x := int32(0); x < 8; x++ {
			want := float32(0)
			if x == 2 && y == 2 {
				want = 1
			}
			if got := src.At(x, y, 0); got != want {
				t.Fatalf("(%d,%d)=%v, want %v", x, y, got, want)
			}
		}
	}
}

// 16x16 image uniformly 0.5 normalizes and binarizes to all-zero.
func TestBinarizeThresholdsAboveMeanPlusKSigma(t *testing.T) {
	src := New(16, 16, 1)
	for i := range src.Data() {
		src.Data()[i] = 0.5
	}
	Normalize(src)
	mask := New(0, 0, 0)
	Binarize(mask, src, DefaultBinarizeK)
	for _, v := range mask.Data() {
		if v != 0 {
			t.Fatalf("expected all-zero mask, got %v", v)
		}
	}
}
