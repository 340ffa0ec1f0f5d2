package fuzzydbscan

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Algorithm selects the neighbor search strategy used by ClusterVectors.
type Algorithm string

const (
	AlgorithmAuto     Algorithm = "auto"
	AlgorithmBrute    Algorithm = "brute"
	AlgorithmKDTree   Algorithm = "kdtree"
	AlgorithmBallTree Algorithm = "balltree"
)

// Point is implemented by any type that can measure its distance to another
// value of the same type. Distance must be symmetric, non-negative and zero
// only between identical points; violations are not detected.
type Point[P any] interface {
	Distance(other P) float64
}

// Config controls FuzzyDBSCAN clustering behavior.
// Start with [DefaultConfig] and set the four thresholds.
type Config struct {
	// EpsMin is the distance at or below which two points are full
	// neighbors (weight 1). Must be >= 0 and <= EpsMax.
	EpsMin float64

	// EpsMax is the distance at or beyond which two points are not
	// neighbors (weight 0). Weights fall linearly between EpsMin and EpsMax.
	// Must be finite.
	EpsMax float64

	// PtsMin is the weighted density at or below which a point has no core
	// membership. Must be >= 0 and <= PtsMax.
	PtsMin float64

	// PtsMax is the weighted density at or above which a point is a full
	// core point. Core membership rises linearly between PtsMin and PtsMax.
	// Must be finite.
	PtsMax float64

	// ExcludeSelf leaves a point's own weight out of its density, so PtsMin
	// and PtsMax count other points only. By default a point counts itself,
	// as in DBSCAN's MinPts. Default: false.
	ExcludeSelf bool

	// Metric is the distance function used by ClusterVectors. Ignored by
	// Cluster, ClusterFunc and ClusterPrecomputed. Default: EuclideanMetric.
	Metric DistanceMetric

	// Algorithm selects the neighbor search used by ClusterVectors.
	// "auto" uses brute force for small inputs and unsupported metrics, a
	// KD-tree up to 60 dimensions, and a ball tree above. Default: "auto".
	Algorithm Algorithm

	// LeafSize is the maximum number of points in a spatial tree leaf.
	// Only used with tree-based algorithms. Default: 40.
	LeafSize int

	// Workers controls the number of goroutines for the pairwise weighting
	// and core classification stages. 0 means runtime.NumCPU(); 1 runs
	// everything on the calling goroutine. Distance functions must be safe
	// for concurrent use when Workers > 1. Default: 0 (auto).
	Workers int

	// Logger receives a debug record per run. Default: zap.NewNop().
	Logger *zap.Logger
}

// DefaultConfig returns a Config with reasonable defaults. The thresholds
// are zero and must be set for meaningful results.
func DefaultConfig() Config {
	return Config{
		Metric:    EuclideanMetric{},
		Algorithm: AlgorithmAuto,
		LeafSize:  40,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"EpsMin", cfg.EpsMin},
		{"EpsMax", cfg.EpsMax},
		{"PtsMin", cfg.PtsMin},
		{"PtsMax", cfg.PtsMax},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("fuzzydbscan: %s must be a finite value >= 0, got %g: %w", f.name, f.v, ErrInvalidConfig)
		}
	}
	if cfg.EpsMin > cfg.EpsMax {
		return fmt.Errorf("fuzzydbscan: EpsMin (%g) must be <= EpsMax (%g): %w", cfg.EpsMin, cfg.EpsMax, ErrInvalidConfig)
	}
	if cfg.PtsMin > cfg.PtsMax {
		return fmt.Errorf("fuzzydbscan: PtsMin (%g) must be <= PtsMax (%g): %w", cfg.PtsMin, cfg.PtsMax, ErrInvalidConfig)
	}
	switch cfg.Algorithm {
	case AlgorithmAuto, AlgorithmBrute, AlgorithmKDTree, AlgorithmBallTree:
		// valid
	default:
		return fmt.Errorf("fuzzydbscan: invalid Algorithm %q: %w", cfg.Algorithm, ErrInvalidConfig)
	}
	if m, ok := cfg.Metric.(MinkowskiMetric); ok && !(m.P >= 1) {
		return fmt.Errorf("fuzzydbscan: MinkowskiMetric.P must be >= 1, got %g: %w", m.P, ErrInvalidConfig)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("fuzzydbscan: LeafSize must be >= 1, got %d: %w", cfg.LeafSize, ErrInvalidConfig)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("fuzzydbscan: Workers must be >= 0, got %d: %w", cfg.Workers, ErrInvalidConfig)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// prepare applies defaults and validates cfg.
func prepare(cfg *Config) error {
	applyDefaults(cfg)
	return validateConfig(cfg)
}

// Cluster performs FuzzyDBSCAN clustering on points that measure their own
// distances. It evaluates all pairs. Returns an error if the config is
// invalid; empty input yields an empty Result.
func Cluster[P Point[P]](points []P, cfg Config) (*Result, error) {
	return ClusterFunc(points, func(a, b P) float64 { return a.Distance(b) }, cfg)
}

// ClusterFunc performs FuzzyDBSCAN clustering on arbitrary values using the
// given distance function. It evaluates all pairs.
func ClusterFunc[P any](points []P, distance func(a, b P) float64, cfg Config) (*Result, error) {
	if err := prepare(&cfg); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return emptyResult(), nil
	}

	start := time.Now()
	nbs := pairwiseNeighborhoods(len(points), func(i, j int) float64 {
		return distance(points[i], points[j])
	}, cfg)
	return finish(nbs, cfg, AlgorithmBrute, start), nil
}

// ClusterVectors performs FuzzyDBSCAN clustering on dense vectors using
// cfg.Metric. All vectors must have the same dimensionality and finite
// coordinates.
func ClusterVectors(data [][]float64, cfg Config) (*Result, error) {
	if err := prepare(&cfg); err != nil {
		return nil, err
	}

	n := len(data)
	if n == 0 {
		return emptyResult(), nil
	}

	dims := len(data[0])
	flatData := make([]float64, n*dims)
	for i, row := range data {
		if len(row) != dims {
			return nil, fmt.Errorf("fuzzydbscan: point %d has %d dimensions, want %d: %w", i, len(row), dims, ErrDimensionMismatch)
		}
		for k, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("fuzzydbscan: point %d coordinate %d is %g: %w", i, k, v, ErrNonFinite)
			}
		}
		copy(flatData[i*dims:], row)
	}

	algo, err := selectAlgorithm(cfg, n, dims)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	metric := cfg.Metric
	dist := func(i, j int) float64 {
		return metric.Distance(flatData[i*dims:(i+1)*dims], flatData[j*dims:(j+1)*dims])
	}

	var nbs []neighborhood
	switch algo {
	case AlgorithmKDTree:
		nbs = indexedNeighborhoods(NewKDTree(flatData, n, dims, metric, cfg.LeafSize), dist, cfg)
	case AlgorithmBallTree:
		nbs = indexedNeighborhoods(NewBallTree(flatData, n, dims, metric, cfg.LeafSize), dist, cfg)
	default:
		nbs = pairwiseNeighborhoods(n, dist, cfg)
	}
	return finish(nbs, cfg, algo, start), nil
}

// ClusterPrecomputed performs FuzzyDBSCAN on a precomputed distance matrix.
// distMatrix is a flat []float64 of length n*n in row-major order, where
// distMatrix[i*n+j] is the distance between points i and j. Only the upper
// triangle (i < j) is read. The Config.Metric field is ignored.
func ClusterPrecomputed(distMatrix []float64, n int, cfg Config) (*Result, error) {
	if err := prepare(&cfg); err != nil {
		return nil, err
	}
	if n < 0 || len(distMatrix) != n*n {
		return nil, fmt.Errorf("fuzzydbscan: distMatrix length %d does not match n*n = %d (n=%d): %w", len(distMatrix), n*n, n, ErrDimensionMismatch)
	}
	if n == 0 {
		return emptyResult(), nil
	}

	start := time.Now()
	nbs := pairwiseNeighborhoods(n, func(i, j int) float64 { return distMatrix[i*n+j] }, cfg)
	return finish(nbs, cfg, AlgorithmBrute, start), nil
}

// finish runs the pipeline from the weighted adjacency onward
// (core classification → cluster building → membership assignment).
func finish(nbs []neighborhood, cfg Config, algo Algorithm, start time.Time) *Result {
	densities, memberships := classify(nbs, cfg)
	comps := buildClusters(nbs, memberships)
	assignments, offsets := assign(nbs, memberships, comps)

	r := &Result{
		Assignments:     assignments,
		NumClusters:     len(comps.summaries),
		Densities:       densities,
		CoreMemberships: memberships,
		Clusters:        comps.summaries,
		offsets:         offsets,
	}
	if r.Clusters == nil {
		r.Clusters = []ClusterSummary{}
	}

	if ce := cfg.Logger.Check(zap.DebugLevel, "fuzzydbscan: clustered"); ce != nil {
		ce.Write(
			zap.Int("points", len(nbs)),
			zap.Int("clusters", r.NumClusters),
			zap.Int("core", r.Count(Core)),
			zap.Int("border", r.Count(Border)),
			zap.Int("noise", r.Count(Noise)),
			zap.String("algorithm", string(algo)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return r
}
