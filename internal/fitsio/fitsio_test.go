package fitsio

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

// card pads a FITS keyword record to exactly lineSize bytes.
func card(s string) string {
	if len(s) > lineSize {
		s = s[:lineSize]
	}
	return s + strings.Repeat(" ", lineSize-len(s))
}

func TestDecodeRoundTripsPixels(t *testing.T) {
	var header strings.Builder
	header.WriteString(card("SIMPLE  = T"))
	header.WriteString(card("BITPIX  = 16"))
	header.WriteString(card("NAXIS   = 2"))
	header.WriteString(card("NAXIS1  = 2"))
	header.WriteString(card("NAXIS2  = 2"))
	header.WriteString(card("BZERO   = 100"))
	header.WriteString(card("BSCALE  = 2"))
	header.WriteString(card("END"))
	hdr := header.String()
	hdr += strings.Repeat(" ", (blockSize-len(hdr)%blockSize)%blockSize)

	buf := bytes.NewBufferString(hdr)
	samples := []int16{0, 1, 2, 3}
	for _, s := range samples {
		binary.Write(buf, binary.BigEndian, s)
	}

	img, meta, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 2 || img.Height != 2 || img.Components != 1 {
		t.Fatalf("shape = %dx%dx%d, want 2x2x1", img.Width, img.Height, img.Components)
	}
	if meta.Bitpix != 16 {
		t.Fatalf("Bitpix = %d, want 16", meta.Bitpix)
	}
	for i, s := range samples {
		want := float32(s)*2 + 100
		if got := img.Data()[i]; got != want {
			t.Fatalf("pixel %d = %v, want %v", i, got, want)
		}
	}
}

func TestDecodeRejectsMissingSimple(t *testing.T) {
	var header strings.Builder
	header.WriteString(card("BITPIX  = 16"))
	header.WriteString(card("END"))
	hdr := header.String()
	hdr += strings.Repeat(" ", (blockSize-len(hdr)%blockSize)%blockSize)

	_, _, err := Decode(bytes.NewBufferString(hdr))
	if err == nil {
		t.Fatal("expected error for missing SIMPLE=T")
	}
}
