package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TrevorS/fuzzydbscan"
)

func TestDecode_Full(t *testing.T) {
	doc := `
eps_min: 0.5
eps_max: 2
pts_min: 3
pts_max: 8
exclude_self: true
metric: minkowski
minkowski_p: 3
algorithm: kdtree
leaf_size: 16
workers: 4
fields: [lon, lat]
format: json
log_level: debug
`
	run, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, Run{
		EpsMin: 0.5, EpsMax: 2, PtsMin: 3, PtsMax: 8,
		ExcludeSelf: true,
		Metric:      "minkowski",
		MinkowskiP:  3,
		Algorithm:   "kdtree",
		LeafSize:    16,
		Workers:     4,
		Fields:      []string{"lon", "lat"},
		Format:      "json",
		LogLevel:    "debug",
	}, run)
}

func TestDecode_EmptyYieldsDefaults(t *testing.T) {
	run, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), run)
}

func TestDecode_PartialKeepsDefaults(t *testing.T) {
	run, err := Decode(strings.NewReader("eps_min: 1\neps_max: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, "euclidean", run.Metric)
	assert.Equal(t, 40, run.LeafSize)
	assert.Equal(t, 3.0, run.EpsMax)
}

func TestDecode_UnknownKey(t *testing.T) {
	_, err := Decode(strings.NewReader("eps_minimum: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode yaml")
}

func TestDecode_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{"eps order", "eps_min: 3\neps_max: 1\n", []string{"eps_max must not be less than eps_min"}},
		{"pts order", "pts_min: 3\npts_max: 1\n", []string{"pts_max must not be less than pts_min"}},
		{"negative", "eps_min: -1\n", []string{"eps_min must be at least 0"}},
		{"metric", "metric: hamming\n", []string{"metric must be one of"}},
		{"algorithm", "algorithm: octree\n", []string{"algorithm must be one of"}},
		{"leaf size", "leaf_size: 0\n", []string{"leaf_size must be at least 1"}},
		{"minkowski p", "metric: minkowski\nminkowski_p: 0.5\n", []string{"minkowski_p must be at least 1"}},
		{"empty field name", "fields: [x, '']\n", []string{"fields[1] is required"}},
		{"several at once", "workers: -1\nformat: xml\n", []string{"workers must be at least 0", "format must be one of"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.ErrorIs(t, err, ErrInvalid)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("eps_min: 1\neps_max: 2\npts_min: 1\npts_max: 2\n"), 0o600))

	run, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, run.PtsMax)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMetricValue(t *testing.T) {
	tests := []struct {
		name string
		want fuzzydbscan.DistanceMetric
	}{
		{"euclidean", fuzzydbscan.EuclideanMetric{}},
		{"manhattan", fuzzydbscan.ManhattanMetric{}},
		{"chebyshev", fuzzydbscan.ChebyshevMetric{}},
		{"minkowski", fuzzydbscan.MinkowskiMetric{P: 2}},
		{"cosine", fuzzydbscan.CosineMetric{}},
	}
	for _, tt := range tests {
		run := Default()
		run.Metric = tt.name
		assert.Equal(t, tt.want, run.MetricValue(), tt.name)
	}
}

func TestClustering(t *testing.T) {
	run := Default()
	run.EpsMin, run.EpsMax, run.PtsMin, run.PtsMax = 10, 20, 1, 2
	run.Algorithm = "balltree"
	run.Workers = 2
	logger := zap.NewNop()

	cfg := run.Clustering(logger)
	assert.Equal(t, 10.0, cfg.EpsMin)
	assert.Equal(t, 20.0, cfg.EpsMax)
	assert.Equal(t, fuzzydbscan.AlgorithmBallTree, cfg.Algorithm)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 40, cfg.LeafSize)
	assert.Same(t, logger, cfg.Logger)

	res, err := fuzzydbscan.ClusterVectors([][]float64{{0, 0}, {100, 100}, {105, 105}, {115, 115}}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumClusters)
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "eps_min", snakeCase("EpsMin"))
	assert.Equal(t, "records", snakeCase("Records"))
	assert.Equal(t, "x", snakeCase("x"))
}
