package fuzzydbscan

import (
	"math"
	"math/rand"
)

// point2 is a minimal Point[point2] used by the generic entry points.
type point2 struct {
	x, y float64
}

func (p point2) Distance(o point2) float64 {
	return math.Hypot(o.x-p.x, o.y-p.y)
}

// generateBlobs returns n 2-D points drawn round-robin from k unit Gaussian
// blobs whose centers are 10 apart on the x axis.
func generateBlobs(n, k int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([][]float64, n)
	for i := range data {
		cx := float64(i%k) * 10
		data[i] = []float64{cx + rng.NormFloat64(), rng.NormFloat64()}
	}
	return data
}

// gaussianCircle samples n points from a normal distribution centered at
// (cx, cy) with sigma r/3, rejecting samples farther than r from the center.
func gaussianCircle(n int, cx, cy, r float64, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	sigma := r / 3
	out := make([][]float64, 0, n)
	for len(out) < n {
		x := cx + rng.NormFloat64()*sigma
		y := cy + rng.NormFloat64()*sigma
		if math.Hypot(x-cx, y-cy) <= r {
			out = append(out, []float64{x, y})
		}
	}
	return out
}

func vectorDistance(data [][]float64, m DistanceMetric) pairDistance {
	return func(i, j int) float64 { return m.Distance(data[i], data[j]) }
}

func flatten(data [][]float64) (flat []float64, n, dims int) {
	n = len(data)
	if n == 0 {
		return nil, 0, 0
	}
	dims = len(data[0])
	flat = make([]float64, 0, n*dims)
	for _, row := range data {
		flat = append(flat, row...)
	}
	return flat, n, dims
}

// scenarioPoints are the four points of the documented example.
func scenarioPoints() [][]float64 {
	return [][]float64{{0, 0}, {100, 100}, {105, 105}, {115, 115}}
}

func scenarioConfig() Config {
	cfg := DefaultConfig()
	cfg.EpsMin, cfg.EpsMax = 10, 20
	cfg.PtsMin, cfg.PtsMax = 1, 2
	return cfg
}

// coMembership returns, for every unordered pair of points, whether they
// share at least one cluster. It is invariant under cluster relabeling.
func coMembership(r *Result) map[[2]int]bool {
	byCluster := make(map[int][]int)
	for _, a := range r.Assignments {
		if a.Cluster != NoCluster {
			byCluster[a.Cluster] = append(byCluster[a.Cluster], a.Index)
		}
	}
	out := make(map[[2]int]bool)
	for _, members := range byCluster {
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				i, j := members[x], members[y]
				if i > j {
					i, j = j, i
				}
				out[[2]int{i, j}] = true
			}
		}
	}
	return out
}
