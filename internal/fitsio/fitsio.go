// Package fitsio decodes FITS light frames (header parsing, BSCALE/BZERO
// calibration, gzip-transparent input) into the stacker's internal.Image
// representation. Grounded on nightlight's internal/fits package
// (header.go regexp grammar, read.go's per-BITPIX readers and Bscale/Bzero
// handling) and internal/debayer.go (CFA quad layout and RGGB-origin-shift
// trick for the other three patterns), adapted from nightlight's flat
// per-channel float32 slices to internal/image's interleaved component
// layout and from full-resolution bilinear interpolation to a
// half-resolution quad-to-pixel downsample.
package fitsio

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/mlnoga/stacker/internal/errs"
	"github.com/mlnoga/stacker/internal/image"
)

// Meta carries the calibration-relevant header fields a caller may need
// after Decode, beyond the pixel data itself.
type Meta struct {
	Header   Header
	Bitpix   int32
	Exposure float32
}

// Open reads a FITS light frame from fileName, transparently decompressing
// it first if the name ends in .gz or .gzip.
func Open(fileName string) (*image.Image, Meta, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, Meta{}, errs.New(errs.IOFailure, fileName, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if ext := strings.ToLower(path.Ext(fileName)); ext == ".gz" || ext == ".gzip" {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, Meta{}, errs.New(errs.InvalidImage, fileName, err)
		}
		defer gz.Close()
		r = gz
	}

	img, meta, err := Decode(r)
	if err != nil {
		return nil, Meta{}, errs.New(errs.InvalidImage, fileName, err)
	}
	return img, meta, nil
}

// Decode reads one FITS header-and-data unit from r into an
// internal/image.Image with NAXIS3 components (1 when NAXIS=2), applying
// BSCALE/BZERO so the returned data is the true physical pixel value.
// FITS stores a 3-axis cube plane by plane; the planes are interleaved
// into per-pixel component tuples.
func Decode(r io.Reader) (*image.Image, Meta, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, Meta{}, err
	}

	if simple, ok := h.Bools["SIMPLE"]; !ok || !simple {
		return nil, Meta{}, fmt.Errorf("fits: SIMPLE=T missing in header")
	}
	delete(h.Bools, "SIMPLE")

	bitpix, ok := h.popInt32("BITPIX")
	if !ok {
		return nil, Meta{}, fmt.Errorf("fits: missing BITPIX")
	}
	naxis, ok := h.popInt32("NAXIS")
	if !ok {
		return nil, Meta{}, fmt.Errorf("fits: missing NAXIS")
	}
	if naxis < 2 || naxis > 3 {
		return nil, Meta{}, fmt.Errorf("fits: unsupported NAXIS=%d", naxis)
	}

	naxisn := make([]int32, naxis)
	pixels := int32(1)
	for i := int32(1); i <= naxis; i++ {
		n, ok := h.popInt32("NAXIS" + strconv.Itoa(int(i)))
		if !ok {
			return nil, Meta{}, fmt.Errorf("fits: missing NAXIS%d", i)
		}
		naxisn[i-1] = n
		pixels *= n
	}

	bzero, _ := h.popFloat32("BZERO")
	bscale, ok := h.popFloat32("BSCALE")
	if !ok {
		bscale = 1
	}
	exposure, ok := h.popFloat32("EXPOSURE")
	if !ok {
		exposure, _ = h.popFloat32("EXPTIME")
	}

	width, height := naxisn[0], naxisn[1]
	components := int32(1)
	if naxis == 3 {
		components = naxisn[2]
	}

	data, err := readData(r, bitpix, pixels, bscale, bzero)
	if err != nil {
		return nil, Meta{}, err
	}
	if components > 1 {
		plane := int(width) * int(height)
		interleaved := make([]float32, len(data))
		for c := 0; c < int(components); c++ {
			for i := 0; i < plane; i++ {
				interleaved[i*int(components)+c] = data[c*plane+i]
			}
		}
		data = interleaved
	}

	img := image.NewFromData(width, height, components, data)
	return img, Meta{Header: h, Bitpix: bitpix, Exposure: exposure}, nil
}

// readData reads Pixels samples of the given BITPIX type in FITS's
// big-endian byte order, converting each to a calibrated float32 value.
func readData(r io.Reader, bitpix, pixels int32, bscale, bzero float32) ([]float32, error) {
	out := make([]float32, pixels)
	br := bufio.NewReaderSize(r, 64*1024)

	switch bitpix {
	case 8:
		for i := range out {
			b, err := br.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("fits: %w", err)
			}
			out[i] = float32(b)*bscale + bzero
		}
	case 16:
		var v int16
		for i := range out {
			if err := binary.Read(br, binary.BigEndian, &v); err != nil {
				return nil, fmt.Errorf("fits: %w", err)
			}
			out[i] = float32(v)*bscale + bzero
		}
	case 32:
		var v int32
		for i := range out {
			if err := binary.Read(br, binary.BigEndian, &v); err != nil {
				return nil, fmt.Errorf("fits: %w", err)
			}
			out[i] = float32(v)*bscale + bzero
		}
	case 64:
		var v int64
		for i := range out {
			if err := binary.Read(br, binary.BigEndian, &v); err != nil {
				return nil, fmt.Errorf("fits: %w", err)
			}
			out[i] = float32(v)*bscale + bzero
		}
	case -32:
		var bits uint32
		for i := range out {
			if err := binary.Read(br, binary.BigEndian, &bits); err != nil {
				return nil, fmt.Errorf("fits: %w", err)
			}
			out[i] = math.Float32frombits(bits)*bscale + bzero
		}
	case -64:
		var bits uint64
		for i := range out {
			if err := binary.Read(br, binary.BigEndian, &bits); err != nil {
				return nil, fmt.Errorf("fits: %w", err)
			}
			out[i] = float32(math.Float64frombits(bits))*bscale + bzero
		}
	default:
		return nil, fmt.Errorf("fits: unsupported BITPIX %d", bitpix)
	}
	return out, nil
}
