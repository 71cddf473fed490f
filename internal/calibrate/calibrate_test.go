package calibrate

import (
	"testing"

	"github.com/mlnoga/stacker/internal/image"
)

func TestSubtractDarkRemovesOffset(t *testing.T) {
	src := image.New(2, 2, 1)
	for i := range src.Data() {
		src.Data()[i] = 10
	}
	dark := image.New(2, 2, 1)
	for i := range dark.Data() {
		dark.Data()[i] = 3
	}

	if err := Load(dark).Subtract(src); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	for i, v := range src.Data() {
		if v != 7 {
			t.Fatalf("pixel %d = %v, want 7", i, v)
		}
	}
}

func TestSubtractClampsAtZero(t *testing.T) {
	src := image.New(1, 1, 1)
	src.Data()[0] = 2
	dark := image.New(1, 1, 1)
	dark.Data()[0] = 5

	if err := Load(dark).Subtract(src); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if v := src.Data()[0]; v != 0 {
		t.Fatalf("pixel = %v, want 0 (clamped)", v)
	}
}

func TestSubtractRejectsShapeMismatch(t *testing.T) {
	src := image.New(2, 2, 1)
	dark := image.New(3, 3, 1)
	if err := Load(dark).Subtract(src); err == nil {
		t.Fatal("expected error for shape mismatch")
	}
}

func TestSubtractAllSkipsZeroValueFrames(t *testing.T) {
	src := image.New(1, 1, 1)
	src.Data()[0] = 5
	if err := SubtractAll(src, Frame{}, Frame{}); err != nil {
		t.Fatalf("SubtractAll: %v", err)
	}
	if src.Data()[0] != 5 {
		t.Fatalf("pixel = %v, want unchanged 5", src.Data()[0])
	}
}
