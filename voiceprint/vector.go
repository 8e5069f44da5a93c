// Package voiceprint provides stateless operations on fixed-dimension voice
// embedding vectors: cosine similarity, weighted merging and L2
// normalization. Misuse (mismatched dimensions, empty input, zero-norm
// vectors) is a programming error and fails loudly.
package voiceprint

import (
	"math"

	"github.com/kikuchi-mizuki/saiten/errors"
)

// Similarity returns the cosine similarity of a and b rescaled from [-1, 1]
// to [0, 1]. Both vectors are expected to be unit-normalized already; the
// norms are still included so that raw vectors score correctly.
func Similarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.DimensionMismatch(len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.EmptyInput()
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, errors.DegenerateVector()
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1.0) / 2.0, nil
}

// Merge computes the weighted mean of the input vectors and renormalizes the
// result to unit length. A nil weights slice means uniform weights. The
// result is a new vector; inputs are never mutated. Merging antiparallel
// unit vectors of equal weight yields a zero mean and fails with a
// degenerate-vector error.
func Merge(vectors [][]float64, weights []float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, errors.EmptyInput()
	}
	if weights != nil && len(weights) != len(vectors) {
		return nil, errors.LengthMismatch(len(vectors), len(weights))
	}

	dim := len(vectors[0])
	for _, v := range vectors[1:] {
		if len(v) != dim {
			return nil, errors.DimensionMismatch(dim, len(v))
		}
	}

	var totalWeight float64
	if weights == nil {
		totalWeight = float64(len(vectors))
	} else {
		for _, w := range weights {
			totalWeight += w
		}
	}
	if totalWeight == 0 {
		return nil, errors.DegenerateVector()
	}

	merged := make([]float64, dim)
	for i, v := range vectors {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		for j, x := range v {
			merged[j] += w * x
		}
	}
	for j := range merged {
		merged[j] /= totalWeight
	}

	return Normalize(merged)
}

// Normalize returns v divided by its L2 norm as a new vector.
func Normalize(v []float64) ([]float64, error) {
	if len(v) == 0 {
		return nil, errors.EmptyInput()
	}
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, errors.DegenerateVector()
	}

	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out, nil
}
