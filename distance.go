package fuzzydbscan

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric computes the distance between two vectors of equal length.
// Implementations must be symmetric, non-negative and zero only for identical
// vectors, and safe for concurrent use.
type DistanceMetric interface {
	Distance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 1) }

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1. Panics if P < 1.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	if m.P < 1 {
		panic("MinkowskiMetric: P must be >= 1")
	}
	return floats.Distance(a, b, m.P)
}

// CosineMetric computes the cosine distance: 1 - cosine_similarity.
// For two zero vectors, the result is NaN (0/0).
// Cosine distance violates the triangle inequality, so it is never served
// by a spatial tree.
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 {
	return 1.0 - floats.Dot(a, b)/(floats.Norm(a, 2)*floats.Norm(b, 2))
}

// metricP returns the Minkowski exponent for axis-decomposable metrics.
// ok is false for metrics that do not decompose along coordinate axes.
func metricP(m DistanceMetric) (p float64, ok bool) {
	switch v := m.(type) {
	case EuclideanMetric:
		return 2, true
	case ManhattanMetric:
		return 1, true
	case ChebyshevMetric:
		return math.Inf(1), true
	case MinkowskiMetric:
		return v.P, true
	default:
		return 0, false
	}
}
