package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/accimap/pkg/errors"
)

// Merge is one step of the cluster hierarchy. A and B are the indices of
// a representative point of each merged cluster; Height is the Ward
// distance between them.
type Merge struct {
	A, B   int
	Height float64
	Size   int
}

// Agglomerative assigns each point one of k labels using Ward linkage.
// Labels are in [0, k) and numbered by first appearance.
func Agglomerative(points []r2.Vec, k int) ([]int, error) {
	if k < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cluster count must be positive, got %d", k)
	}
	if len(points) < k {
		return nil, errors.New(errors.ErrCodeTooFewPoints, "%d points cannot form %d clusters", len(points), k)
	}
	for i, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, errors.New(errors.ErrCodeInvalidCoordinate, "point %d is not finite", i)
		}
	}
	return Cut(len(points), Ward(points), k), nil
}

// Ward builds the full merge hierarchy of points, sorted by height.
func Ward(points []r2.Vec) []Merge {
	n := len(points)
	if n < 2 {
		return nil
	}

	// Slot i holds the cluster represented by point i while active.
	centroid := make([]r2.Vec, n)
	size := make([]int, n)
	active := make([]bool, n)
	copy(centroid, points)
	for i := range size {
		size[i] = 1
		active[i] = true
	}

	merges := make([]Merge, 0, n-1)
	chain := make([]int, 0, n)
	next := 0 // lowest slot that may still be active

	for remaining := n; remaining > 1; {
		if len(chain) == 0 {
			for !active[next] {
				next++
			}
			chain = append(chain, next)
		}
		a := chain[len(chain)-1]

		// Prefer the previous chain element on ties so the chain terminates.
		b, best := -1, math.Inf(1)
		if len(chain) > 1 {
			b = chain[len(chain)-2]
			best = wardCost(centroid[a], size[a], centroid[b], size[b])
		}
		for j := range n {
			if j == a || !active[j] {
				continue
			}
			if d := wardCost(centroid[a], size[a], centroid[j], size[j]); d < best {
				b, best = j, d
			}
		}

		if len(chain) > 1 && b == chain[len(chain)-2] {
			chain = chain[:len(chain)-2]
			lo, hi := min(a, b), max(a, b)
			total := size[lo] + size[hi]
			merges = append(merges, Merge{A: lo, B: hi, Height: math.Sqrt(best), Size: total})

			w := float64(size[lo]) / float64(total)
			centroid[lo] = r2.Add(r2.Scale(w, centroid[lo]), r2.Scale(1-w, centroid[hi]))
			size[lo] = total
			active[hi] = false
			remaining--
			continue
		}
		chain = append(chain, b)
	}

	sort.SliceStable(merges, func(i, j int) bool { return merges[i].Height < merges[j].Height })
	return merges
}

// wardCost is the squared Ward distance between two clusters.
func wardCost(ca r2.Vec, na int, cb r2.Vec, nb int) float64 {
	fa, fb := float64(na), float64(nb)
	return 2 * fa * fb / (fa + fb) * r2.Norm2(r2.Sub(ca, cb))
}

// Cut applies the lowest n-k merges of a sorted hierarchy over n points
// and returns first-appearance labels.
func Cut(n int, merges []Merge, k int) []int {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := 0; i < n-k && i < len(merges); i++ {
		ra, rb := find(merges[i].A), find(merges[i].B)
		if ra != rb {
			parent[max(ra, rb)] = min(ra, rb)
		}
	}

	labels := make([]int, n)
	ids := make(map[int]int)
	for i := range n {
		root := find(i)
		id, ok := ids[root]
		if !ok {
			id = len(ids)
			ids[root] = id
		}
		labels[i] = id
	}
	return labels
}
