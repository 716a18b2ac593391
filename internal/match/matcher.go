package match

import (
	"math"
	"sort"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
)

// Unknown is the identity reported when no reference is within threshold.
const Unknown = "Unknown"

// Result is the outcome of matching one query embedding against the face
// database. When Known is false, Distance carries no meaning for display.
type Result struct {
	Name     string
	Distance float64
	Known    bool
}

// Confidence maps the match distance to a display value in [0, 1].
func (r Result) Confidence() float64 {
	if !r.Known {
		return 0
	}

	c := 1 - r.Distance
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return c
}

// Match finds the reference embedding nearest to query, accepting only
// candidates strictly closer than threshold. References whose dimensionality
// does not match the query are skipped with a warning. Names are scanned in
// sorted order so exact distance ties resolve deterministically.
func Match(query []float32, refs map[string][]float32, threshold float64) Result {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	result := Result{Name: Unknown}
	best := math.Inf(1)

	for _, name := range names {
		ref := refs[name]
		if len(ref) == 0 || len(ref) != len(query) {
			logger.Warn("skipping invalid reference embedding", "name", name, "dim", len(ref), "want", len(query))
			continue
		}

		d := EuclideanDistance(query, ref)
		if d < best && d < threshold {
			best = d
			result = Result{Name: name, Distance: d, Known: true}
		}
	}

	return result
}

// EuclideanDistance computes the L2 distance between two equal-length
// embeddings.
func EuclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
