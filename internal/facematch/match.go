package facematch

// Gallery is the read view the matcher needs: index-aligned embeddings, names and driver ids.
type Gallery struct {
	Embeddings [][]float32
	Names      []string
	DriverIDs  []int64
}

// Len returns the number of entries.
func (g Gallery) Len() int {
	return len(g.Embeddings)
}

// BestMatch scans the whole gallery and returns the closest entry.
// A result is Matched when its distance is strictly below threshold.
// The gallery is never modified.
func BestMatch(g Gallery, query []float32, threshold float64) (*Result, error) {
	if g.Len() == 0 {
		return nil, ErrNoTrainedFaces
	}

	distances := Distances(g.Embeddings, query)
	idx := ArgMin(distances)
	dist := distances[idx]

	res := &Result{
		Index:      idx,
		Distance:   dist,
		Matched:    dist < threshold,
		Confidence: 1 - dist,
	}
	if idx < len(g.DriverIDs) {
		res.DriverID = g.DriverIDs[idx]
	}
	if idx < len(g.Names) {
		res.Name = g.Names[idx]
	}
	return res, nil
}
