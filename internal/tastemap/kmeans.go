// Package tastemap clusters a label's roster into taste clusters and
// publishes them as versioned taste maps.
package tastemap

import (
	"math"
	"math/rand"
)

// Result holds cluster centroids in the original feature space plus the
// cluster index assigned to each input vector.
type Result struct {
	Centroids   [][]float64
	Assignments []int
}

// KMeans runs Lloyd's algorithm on standardized copies of the vectors. The
// seed fixes initialization so the same inputs always cluster the same way.
// Centroids are returned de-standardized. k is clamped to len(vectors).
func KMeans(vectors [][]float64, k int, seed int64, maxIter int) Result {
	n := len(vectors)
	if n == 0 {
		return Result{}
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}
	dim := len(vectors[0])

	mean, std := moments(vectors, dim)
	scaled := make([][]float64, n)
	for i, v := range vectors {
		s := make([]float64, dim)
		for d := 0; d < dim; d++ {
			s[d] = (v[d] - mean[d]) / std[d]
		}
		scaled[i] = s
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := initialCentroids(scaled, k, rng)
	assignments := make([]int, n)

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range scaled {
			best := nearest(v, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		recompute(scaled, assignments, centroids)
		fillEmpty(scaled, assignments, centroids)
	}

	// De-standardize centroids back into the embedding space.
	out := make([][]float64, k)
	for c := range centroids {
		o := make([]float64, dim)
		for d := 0; d < dim; d++ {
			o[d] = centroids[c][d]*std[d] + mean[d]
		}
		out[c] = o
	}
	return Result{Centroids: out, Assignments: assignments}
}

func moments(vectors [][]float64, dim int) (mean, std []float64) {
	n := float64(len(vectors))
	mean = make([]float64, dim)
	std = make([]float64, dim)
	for _, v := range vectors {
		for d := 0; d < dim; d++ {
			mean[d] += v[d]
		}
	}
	for d := 0; d < dim; d++ {
		mean[d] /= n
	}
	for _, v := range vectors {
		for d := 0; d < dim; d++ {
			diff := v[d] - mean[d]
			std[d] += diff * diff
		}
	}
	for d := 0; d < dim; d++ {
		std[d] = math.Sqrt(std[d] / n)
		if std[d] == 0 {
			std[d] = 1 // constant dimension, leave unscaled
		}
	}
	return mean, std
}

func initialCentroids(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(vectors))
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		centroids[c] = append([]float64(nil), vectors[perm[c]]...)
	}
	return centroids
}

func nearest(v []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		d := sqDist(v, centroid)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func recompute(vectors [][]float64, assignments []int, centroids [][]float64) {
	dim := len(vectors[0])
	counts := make([]int, len(centroids))
	sums := make([][]float64, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, v := range vectors {
		c := assignments[i]
		counts[c]++
		for d := 0; d < dim; d++ {
			sums[c][d] += v[d]
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for d := 0; d < dim; d++ {
			centroids[c][d] = sums[c][d] / float64(counts[c])
		}
	}
}

// fillEmpty moves an empty centroid onto the point currently farthest from
// its own centroid, so every cluster keeps at least one member.
func fillEmpty(vectors [][]float64, assignments []int, centroids [][]float64) {
	counts := make([]int, len(centroids))
	for _, c := range assignments {
		counts[c]++
	}
	for c := range centroids {
		if counts[c] > 0 {
			continue
		}
		worst, worstDist := -1, -1.0
		for i, v := range vectors {
			if counts[assignments[i]] <= 1 {
				continue
			}
			d := sqDist(v, centroids[assignments[i]])
			if d > worstDist {
				worst, worstDist = i, d
			}
		}
		if worst < 0 {
			continue
		}
		counts[assignments[worst]]--
		assignments[worst] = c
		counts[c]++
		copy(centroids[c], vectors[worst])
	}
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
