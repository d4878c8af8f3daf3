package facematch

import "math"

// EuclideanDistance computes the L2 distance between two embeddings.
// Vectors of different (or zero) length are infinitely far apart.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Distances returns the distance from query to every gallery embedding, in gallery order.
func Distances(gallery [][]float32, query []float32) []float64 {
	out := make([]float64, len(gallery))
	for i, emb := range gallery {
		out[i] = EuclideanDistance(emb, query)
	}
	return out
}

// ArgMin returns the index of the smallest value; the first one wins on ties.
// Returns -1 for an empty slice.
func ArgMin(values []float64) int {
	best := -1
	for i, v := range values {
		if best == -1 || v < values[best] {
			best = i
		}
	}
	return best
}
