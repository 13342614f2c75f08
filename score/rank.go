package score

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// nanColumnMeans returns the per-column mean of m, skipping NaN entries.
// A column with no finite entries yields NaN.
func nanColumnMeans(m *mat.Dense) []float64 {
	r, c := m.Dims()
	means := make([]float64, c)
	for j := 0; j < c; j++ {
		sum, count := 0.0, 0
		for i := 0; i < r; i++ {
			v := m.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			means[j] = math.NaN()
		} else {
			means[j] = sum / float64(count)
		}
	}
	return means
}

// rowMeans returns the per-row mean of m across all columns. NaN entries
// propagate, and a zero-column matrix yields NaN for every row; both match
// the plain-mean semantics of the reference implementation.
func rowMeans(m *mat.Dense) []float64 {
	r, c := m.Dims()
	means := make([]float64, r)
	if c == 0 {
		for i := range means {
			means[i] = math.NaN()
		}
		return means
	}
	for i := 0; i < r; i++ {
		sum := 0.0
		for j := 0; j < c; j++ {
			sum += m.At(i, j)
		}
		means[i] = sum / float64(c)
	}
	return means
}

// rankMin computes 1-based competition ("min") ranks: tied values all
// receive the lowest rank of the tie group. NaN values are excluded and
// get rank 0.
func rankMin(values []float64) []int {
	order := make([]int, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]int, len(values))
	for pos, idx := range order {
		if pos > 0 && values[idx] == values[order[pos-1]] {
			ranks[idx] = ranks[order[pos-1]]
		} else {
			ranks[idx] = pos + 1
		}
	}
	return ranks
}
