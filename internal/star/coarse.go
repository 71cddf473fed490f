// Package star extracts coarse and fine star centroids from a prepared
// image. Coarse extraction generalizes nightlight's threshold-scan
// approach (internal/star/findstars.go: findBrightPixels) into the
// spec's connected-component flood fill; fine extraction generalizes its
// moment-based recentering (shiftToCenterOfMass) into a single windowed
// intensity-weighted centroid.
package star

import "github.com/mlnoga/stacker/internal/image"

// CoarseStar is a blob centroid found by flood-filling a binary mask.
type CoarseStar struct {
	X, Y float32 // centroid: average of integer pixel coordinates in the blob
	Size uint32  // blob pixel count
}

// ExtractCoarse runs a 4-connected flood fill over a 1-channel mask whose
// pixels are >= cutoff inside stars. Pixels are scanned in row-major
// order; each pixel is enqueued at most once via a visited bitset, and
// stars are emitted in first-discovery order.
func ExtractCoarse(mask *image.Image, cutoff float32) []CoarseStar {
	w, h := mask.Width, mask.Height
	data := mask.Data()
	visited := make([]bool, len(data))

	var stars []CoarseStar
	queue := make([]int32, 0, 64)

	for start := int32(0); start < int32(len(data)); start++ {
		if visited[start] || data[start] < cutoff {
			continue
		}
		visited[start] = true
		queue = queue[:0]
		queue = append(queue, start)

		var sumX, sumY int64
		var n uint32

		for qi := 0; qi < len(queue); qi++ {
			idx := queue[qi]
			x, y := idx%w, idx/w
			sumX += int64(x)
			sumY += int64(y)
			n++

			// 4-connected neighbors
			if x > 0 {
				tryEnqueue(idx-1, data, visited, cutoff, &queue)
			}
			if x < w-1 {
				tryEnqueue(idx+1, data, visited, cutoff, &queue)
			}
			if y > 0 {
				tryEnqueue(idx-w, data, visited, cutoff, &queue)
			}
			if y < h-1 {
				tryEnqueue(idx+w, data, visited, cutoff, &queue)
			}
		}

		stars = append(stars, CoarseStar{
			X:    float32(sumX) / float32(n),
			Y:    float32(sumY) / float32(n),
			Size: n,
		})
	}
	return stars
}

func tryEnqueue(idx int32, data []float32, visited []bool, cutoff float32, queue *[]int32) {
	if visited[idx] || data[idx] < cutoff {
		return
	}
	visited[idx] = true
	*queue = append(*queue, idx)
}
