// Package constellation builds rotation- and translation-invariant
// triplet descriptors over a frame's stars (raw side lengths, so not
// scale-invariant), and compares them across
// frames. Generalized from nightlight's internal/star/align.go, which
// builds similar Triangle structs from the K brightest, widely-spaced
// stars and later fits a full affine Transform2D via gonum/optimize; this
// rewrite is translation-only, so every star participates (not just the
// brightest, widely-spaced subset) and no optimizer is needed — a
// rotation-tagged triple comparison is enough.
package constellation

import "math"

// DefaultK bounds the per-star neighborhood size used when generating
// triangles.
const DefaultK = 5

// Point is a 2-D star position.
type Point struct {
	X, Y float32
}

// Constellation is an oriented triple of star indices plus the three
// opposing side lengths: D[i] is the distance between the two stars
// other than Stars[i].
type Constellation struct {
	Stars [3]int32
	D     [3]float32
}

// Extract builds constellations over stars: for each star i, the K
// nearest stars j > i (by squared distance, ties broken by lower index)
// are found, and every unordered pair among them forms a triangle with
// i, oriented counter-clockwise.
func Extract(stars []Point, k int) []Constellation {
	var out []Constellation
	for i := range stars {
		neighbors := kNearestAfter(stars, i, k)
		for a := 0; a < len(neighbors); a++ {
			for b := a + 1; b < len(neighbors); b++ {
				j, kk := neighbors[a], neighbors[b]
				out = append(out, makeConstellation(stars, int32(i), int32(j), int32(kk)))
			}
		}
	}
	return out
}

// candidate is one entry of the bounded-min-set: a star index and its
// squared distance to the pivot star.
type candidate struct {
	index  int
	distSq float32
}

// kNearestAfter finds the k stars with index > i closest to stars[i],
// using a sorted array of capacity k with O(k) insertion.
func kNearestAfter(stars []Point, i, k int) []int {
	set := make([]candidate, 0, k)
	pivot := stars[i]
	for j := i + 1; j < len(stars); j++ {
		dx := stars[j].X - pivot.X
		dy := stars[j].Y - pivot.Y
		distSq := dx*dx + dy*dy
		insertBounded(&set, candidate{index: j, distSq: distSq}, k)
	}
	out := make([]int, len(set))
	for idx, c := range set {
		out[idx] = c.index
	}
	return out
}

// insertBounded inserts c into the sorted (ascending distSq) set,
// keeping only the k smallest. Ties are broken by lower index, matching
// the scan order (j increases monotonically, so a stable insert already
// prefers the lower index on equal distance).
func insertBounded(set *[]candidate, c candidate, k int) {
	s := *set
	pos := len(s)
	for pos > 0 && (s[pos-1].distSq > c.distSq) {
		pos--
	}
	if pos >= k {
		return // worse than all k kept candidates
	}
	if len(s) < k {
		s = append(s, candidate{})
	}
	copy(s[pos+1:], s[pos:len(s)-1])
	s[pos] = c
	*set = s
}

func dist(a, b Point) float32 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

// makeConstellation builds the oriented triple (i,j,k), normalizing
// winding to counter-clockwise via a signed-area test, and recording the
// three opposing side lengths.
func makeConstellation(stars []Point, i, j, k int32) Constellation {
	pi, pj, pk := stars[i], stars[j], stars[k]
	area := (pj.X-pi.X)*(pk.Y-pi.Y) - (pj.Y-pi.Y)*(pk.X-pi.X)
	if area < 0 {
		j, k = k, j
		pj, pk = pk, pj
	}
	return Constellation{
		Stars: [3]int32{i, j, k},
		D: [3]float32{
			dist(pj, pk), // opposing Stars[0]=i
			dist(pk, pi), // opposing Stars[1]=j
			dist(pi, pj), // opposing Stars[2]=k
		},
	}
}

// Rotate returns a constellation with stars'[i] = Stars[(i+r)%3] and the
// corresponding distances.
func (c Constellation) Rotate(r int) Constellation {
	var out Constellation
	for i := 0; i < 3; i++ {
		out.Stars[i] = c.Stars[(i+r)%3]
		out.D[i] = c.D[(i+r)%3]
	}
	return out
}

// Compare returns the minimal squared distance between a and b's side
// lengths over the three cyclic rotations of b, and the rotation r that
// achieves it: D(r) = sum_i (a.D[i] - b.D[(i+r)%3])^2.
func Compare(a, b Constellation) (distSq float32, rotation int) {
	best := float32(math.MaxFloat32)
	bestR := 0
	for r := 0; r < 3; r++ {
		var d float32
		for i := 0; i < 3; i++ {
			diff := a.D[i] - b.D[(i+r)%3]
			d += diff * diff
		}
		if d < best {
			best = d
			bestR = r
		}
	}
	return best, bestR
}
