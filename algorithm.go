package fuzzydbscan

import "fmt"

// Auto-selection thresholds. Below minTreePoints the tree build costs more
// than the pairwise scan; above maxKDTreeDims KD-tree bounds stop pruning.
const (
	minTreePoints = 64
	maxKDTreeDims = 60
)

// KDTreeValidMetric reports whether the metric supports KD-tree acceleration.
// KD-trees require metrics that decompose along coordinate axes:
// Euclidean, Manhattan, Chebyshev, Minkowski.
func KDTreeValidMetric(m DistanceMetric) bool {
	_, ok := metricP(m)
	return ok
}

// BallTreeValidMetric reports whether the metric supports ball tree
// acceleration. Ball trees work with any true metric; currently this is the
// same set as KDTreeValidMetric, since CosineMetric and DistanceFunc carry
// no triangle-inequality guarantee.
func BallTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// selectAlgorithm resolves AlgorithmAuto into a concrete neighbor search
// based on the metric, point count and dimensionality, and validates that
// user-forced choices are compatible with the metric.
func selectAlgorithm(cfg Config, n, dims int) (Algorithm, error) {
	algo := cfg.Algorithm

	if algo == AlgorithmAuto {
		if n < minTreePoints || dims == 0 || !BallTreeValidMetric(cfg.Metric) {
			return AlgorithmBrute, nil
		}
		if KDTreeValidMetric(cfg.Metric) && dims <= maxKDTreeDims {
			return AlgorithmKDTree, nil
		}
		return AlgorithmBallTree, nil
	}

	switch algo {
	case AlgorithmKDTree:
		if !KDTreeValidMetric(cfg.Metric) {
			return "", fmt.Errorf("fuzzydbscan: metric %T is not supported by the KD-tree: %w", cfg.Metric, ErrInvalidConfig)
		}
	case AlgorithmBallTree:
		if !BallTreeValidMetric(cfg.Metric) {
			return "", fmt.Errorf("fuzzydbscan: metric %T is not supported by the ball tree: %w", cfg.Metric, ErrInvalidConfig)
		}
	}

	// Zero-length vectors are all at distance 0; there is nothing to split.
	if dims == 0 {
		return AlgorithmBrute, nil
	}
	return algo, nil
}
