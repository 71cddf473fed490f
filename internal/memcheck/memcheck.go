// Package memcheck warns when the declared dimensions of a batch of
// input frames project a footprint that won't comfortably fit in
// physical memory, since every input is held fully in memory at once.
// Grounded on nightlight's cmd/nightlight/main.go, which
// sizes its stacking memory budget off github.com/pbnjay/memory's
// TotalMemory() (defaulting to 0.7x physical RAM); this rewrite reuses
// the same dependency for a pre-flight check instead of a stacking-mode
// budget knob.
package memcheck

import (
	"fmt"

	"github.com/pbnjay/memory"
)

// DefaultFraction is the share of physical memory the projected
// footprint of all inputs is allowed to consume before Check warns,
// mirroring nightlight's 0.7x default.
const DefaultFraction = 0.7

// Budget reports the physical memory ceiling a run should stay under.
type Budget struct {
	Fraction float64
}

// DefaultBudget mirrors nightlight's 0.7x-physical-memory default.
func DefaultBudget() Budget {
	return Budget{Fraction: DefaultFraction}
}

// Footprint estimates the resident bytes a set of frames of the given
// shape and component count, held in memory simultaneously, will need —
// 4 bytes/sample (float32) per frame.
func Footprint(frameCount int, width, height, components int32) int64 {
	perFrame := int64(width) * int64(height) * int64(components) * 4
	return perFrame * int64(frameCount)
}

// Check returns a non-empty warning string if the projected footprint
// exceeds budget.Fraction of physical RAM; an empty string means the run
// is expected to fit. This is advisory only — an allocation failure is
// still reported as OutOfMemory at the point it actually occurs, not
// pre-empted here.
func Check(budget Budget, footprint int64) string {
	total := memory.TotalMemory()
	if total == 0 {
		return "" // couldn't determine physical memory; nothing to warn about
	}
	ceiling := int64(float64(total) * budget.Fraction)
	if footprint <= ceiling {
		return ""
	}
	return fmt.Sprintf(
		"projected memory footprint %.1f MiB exceeds %.0f%% of physical memory (%.1f MiB); consider fewer or smaller input frames",
		float64(footprint)/1024/1024, budget.Fraction*100, float64(ceiling)/1024/1024)
}
