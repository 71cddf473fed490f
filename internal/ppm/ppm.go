// Package ppm writes stacked images as PPM/PGM (P6/P5) for the final
// output, plus optional 16-bit TIFF dumps of intermediate scratch buffers
// for debugging. Grounded on nightlight's internal/fits/writetiff16.go
// (min/max/gamma normalization into a stdlib image.Image before handing
// off to a real encoder) adapted from FITS-to-TIFF to internal/image-to-
// PPM, since the pack carries no third-party PPM encoder and PPM's header
// is three lines of plain text.
package ppm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	stdimage "image"
	"image/color"

	"golang.org/x/image/tiff"

	"github.com/mlnoga/stacker/internal/errs"
	"github.com/mlnoga/stacker/internal/image"
)

// WriteFile writes im to fileName as P6 (3-component) or P5 (1-component)
// binary PPM/PGM, normalizing [min,max] to the 8-bit sample range.
func WriteFile(fileName string, im *image.Image, min, max float32) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errs.New(errs.IOFailure, fileName, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := Write(w, im, min, max); err != nil {
		return errs.New(errs.IOFailure, fileName, err)
	}
	if err := w.Flush(); err != nil {
		return errs.New(errs.IOFailure, fileName, err)
	}
	return nil
}

// Write encodes im as binary PPM (P6) or PGM (P5) to w, one byte per
// sample, scaling [min,max] to [0,255] via clamp(v*255, 0, 255) (NaNs
// become 0, matching nightlight's TIFF export discipline).
func Write(w io.Writer, im *image.Image, min, max float32) error {
	switch im.Components {
	case 1:
		fmt.Fprintf(w, "P5\n%d %d\n255\n", im.Width, im.Height)
	case 3:
		fmt.Fprintf(w, "P6\n%d %d\n255\n", im.Width, im.Height)
	default:
		return fmt.Errorf("ppm: unsupported component count %d", im.Components)
	}

	scale := float32(1)
	if max > min {
		scale = 1.0 / (max - min)
	}

	buf := make([]byte, 1)
	data := im.Data()
	for _, v := range data {
		v = (v - min) * scale
		if math.IsNaN(float64(v)) || v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		buf[0] = byte(v * 255)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// WriteDebugTIFF dumps im as an uncompressed 16-bit TIFF for pipeline
// debugging, the same min/max/gamma-normalize-into-stdlib-image approach
// nightlight uses for its TIFF export, reused here for non-final
// intermediate buffers rather than the final stacked frame.
func WriteDebugTIFF(fileName string, im *image.Image, min, max, gamma float32) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errs.New(errs.IOFailure, fileName, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	width, height := int(im.Width), int(im.Height)
	scale := float32(1)
	if max > min {
		scale = 1.0 / (max - min)
	}
	gammaInv := 1.0 / float64(gamma)

	normalize := func(v float32) uint16 {
		v = (v - min) * scale
		if math.IsNaN(float64(v)) || v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		if gammaInv != 1.0 {
			v = float32(math.Pow(float64(v), gammaInv))
		}
		return uint16(v * 65535)
	}

	rect := stdimage.Rectangle{Max: stdimage.Point{X: width, Y: height}}
	var img stdimage.Image
	if im.Components == 1 {
		gray := stdimage.NewGray16(rect)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				gray.SetGray16(x, y, color.Gray16{Y: normalize(im.At(int32(x), int32(y), 0))})
			}
		}
		img = gray
	} else {
		rgba := stdimage.NewRGBA64(rect)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r := normalize(im.At(int32(x), int32(y), 0))
				g := normalize(im.At(int32(x), int32(y), 1))
				b := normalize(im.At(int32(x), int32(y), 2))
				rgba.SetRGBA64(x, y, color.RGBA64{R: r, G: g, B: b, A: 65535})
			}
		}
		img = rgba
	}

	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Uncompressed, Predictor: false}); err != nil {
		return errs.New(errs.IOFailure, fileName, err)
	}
	if err := w.Flush(); err != nil {
		return errs.New(errs.IOFailure, fileName, err)
	}
	return nil
}
