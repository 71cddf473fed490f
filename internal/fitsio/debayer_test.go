package fitsio

import (
	"testing"

	"github.com/mlnoga/stacker/internal/image"
)

// A uniform sensor frame debayers to a uniform, half-resolution RGB
// frame: every channel should equal the flat input level everywhere.
func TestDebayerRGGBUniformFrame(t *testing.T) {
	src := image.New(8, 8, 1)
	for i := range src.Data() {
		src.Data()[i] = 0.5
	}

	dst := Debayer(src, CFARGGB)
	if dst.Components != 3 {
		t.Fatalf("Components = %d, want 3", dst.Components)
	}
	if dst.Width != 4 || dst.Height != 4 {
		t.Fatalf("shape = %dx%d, want 4x4", dst.Width, dst.Height)
	}
	for y := int32(0); y < dst.Height; y++ {
		for x := int32(0); x < dst.Width; x++ {
			p := dst.Pixel(x, y)
			for c, v := range p {
				if v != 0.5 {
					t.Fatalf("pixel (%d,%d) channel %d = %v, want 0.5", x, y, c, v)
				}
			}
		}
	}
}

// The red sample of an RGGB cell passes through unchanged into the
// output pixel that quad collapses to.
func TestDebayerRGGBPreservesRedSample(t *testing.T) {
	src := image.New(4, 4, 1)
	src.Pixel(0, 0)[0] = 1.0

	dst := Debayer(src, CFARGGB)
	if got := dst.Pixel(0, 0)[0]; got != 1.0 {
		t.Fatalf("red at (0,0) = %v, want 1.0", got)
	}
}

// The two green samples of a quad average into the output's green channel.
func TestDebayerRGGBAveragesGreenSamples(t *testing.T) {
	src := image.New(2, 2, 1)
	src.Pixel(1, 0)[0] = 0.2 // g0
	src.Pixel(0, 1)[0] = 0.6 // g1

	dst := Debayer(src, CFARGGB)
	if got := dst.Pixel(0, 0)[1]; got != 0.4 {
		t.Fatalf("green at (0,0) = %v, want 0.4", got)
	}
}

func TestDebayerDropsOddTrailingRowColumn(t *testing.T) {
	src := image.New(5, 7, 1)
	dst := Debayer(src, CFARGGB)
	if dst.Width != 2 || dst.Height != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", dst.Width, dst.Height)
	}
}
