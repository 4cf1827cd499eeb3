package index

import "math"

// Vector is a sparse feature vector. Terms are vocabulary IDs in ascending
// order; Weights[i] belongs to Terms[i].
type Vector struct {
	Terms   []int
	Weights []float64
}

// IsZero reports whether v has no non-zero component.
func (v Vector) IsZero() bool {
	for _, w := range v.Weights {
		if w != 0 {
			return false
		}
	}
	return true
}

// Norm returns the L2 norm of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v.Weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// NormalizeL2 returns a new vector normalized to unit L2 norm.
// A zero vector is returned unchanged (as a copy).
func NormalizeL2(v Vector) Vector {
	out := Vector{
		Terms:   make([]int, len(v.Terms)),
		Weights: make([]float64, len(v.Weights)),
	}
	copy(out.Terms, v.Terms)
	copy(out.Weights, v.Weights)
	n := v.Norm()
	if n == 0 {
		return out
	}
	for i := range out.Weights {
		out.Weights[i] /= n
	}
	return out
}

// Dot computes the dot product of two sparse vectors.
func Dot(a, b Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Terms) && j < len(b.Terms) {
		switch {
		case a.Terms[i] == b.Terms[j]:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		case a.Terms[i] < b.Terms[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// Cosine computes cosine similarity between two sparse vectors.
// It returns 0 when either vector is zero.
func Cosine(a, b Vector) float64 {
	den := a.Norm() * b.Norm()
	if den == 0 {
		return 0
	}
	return Dot(a, b) / den
}
