// Package calibrate applies a dark and/or bias frame to a light frame by
// per-pixel subtraction. Grounded on nightlight's internal/preprocess.go
// OpCalibrate (dimension-matched dark subtraction via its Subtract
// pixelop) with the flat-division half dropped — this rewrite only
// needs dark/bias subtraction, not flat-field correction.
package calibrate

import (
	"fmt"

	"github.com/mlnoga/stacker/internal/errs"
	"github.com/mlnoga/stacker/internal/image"
)

// Frame holds a loaded dark or bias calibration frame.
type Frame struct {
	im *image.Image
}

// Load wraps an already-decoded calibration frame.
func Load(im *image.Image) Frame {
	return Frame{im: im}
}

// Subtract subtracts the calibration frame from src in place, clamping
// each result at 0. Both images must share the same shape.
func (c Frame) Subtract(src *image.Image) error {
	if c.im == nil {
		return nil
	}
	if src.Width != c.im.Width || src.Height != c.im.Height || src.Components != c.im.Components {
		return errs.New(errs.InvalidImage, "", fmt.Errorf(
			"calibrate: light shape %dx%dx%d differs from calibration frame %dx%dx%d",
			src.Width, src.Height, src.Components, c.im.Width, c.im.Height, c.im.Components))
	}

	dst := src.Data()
	cal := c.im.Data()
	for i := range dst {
		dst[i] -= cal[i]
		if dst[i] < 0 {
			dst[i] = 0
		}
	}
	return nil
}

// SubtractAll applies dark then bias subtraction, in that order, skipping
// whichever frame is the zero value.
func SubtractAll(src *image.Image, dark, bias Frame) error {
	if err := dark.Subtract(src); err != nil {
		return err
	}
	return bias.Subtract(src)
}
