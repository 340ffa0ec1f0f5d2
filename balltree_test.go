package fuzzydbscan

import (
	"math"
	"slices"
	"sort"
	"testing"
)

// --- Construction tests ---

func TestBallTree_Construction_BasicProperties(t *testing.T) {
	data := []float64{
		0, 0,
		1, 0,
		2, 0,
		0, 3,
		1, 3,
		2, 3,
	}
	n, dims := 6, 2
	tree := NewBallTree(data, n, dims, EuclideanMetric{}, 2)

	if tree.NumPoints() != n {
		t.Errorf("NumPoints() = %d, want %d", tree.NumPoints(), n)
	}
	if tree.NumFeatures() != dims {
		t.Errorf("NumFeatures() = %d, want %d", tree.NumFeatures(), dims)
	}

	idx := tree.permutation()
	if len(idx) != n {
		t.Fatalf("permutation length = %d, want %d", len(idx), n)
	}
	sorted := slices.Clone(idx)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i {
			t.Fatalf("permutation does not cover 0..n-1: %v", idx)
		}
	}
}

func TestBallTree_Construction_LeafSize1(t *testing.T) {
	data := []float64{0, 0, 1, 1, 2, 2, 3, 3}
	tree := NewBallTree(data, 4, 2, EuclideanMetric{}, 1)

	for _, nd := range tree.nodeSlots() {
		if nd.IsLeaf && (nd.IdxEnd-nd.IdxStart) != 1 {
			t.Errorf("leaf has %d points, want 1", nd.IdxEnd-nd.IdxStart)
		}
	}
}

func TestBallTree_Construction_LeafSizeLargerThanN(t *testing.T) {
	tree := NewBallTree([]float64{1, 2, 3, 4}, 2, 2, EuclideanMetric{}, 100)

	nodes := tree.nodeSlots()
	if len(nodes) != 1 || !nodes[0].IsLeaf {
		t.Errorf("expected a single leaf root, got %+v", nodes)
	}
}

func TestBallTree_Construction_SinglePoint(t *testing.T) {
	tree := NewBallTree([]float64{5, 5}, 1, 2, EuclideanMetric{}, 10)

	nodes := tree.nodeSlots()
	if len(nodes) != 1 || nodes[0].Radius != 0 {
		t.Errorf("expected one zero-radius node, got %+v", nodes)
	}
}

func TestBallTree_Construction_CentroidAndRadius(t *testing.T) {
	data := []float64{0, 0, 2, 0, 0, 2, 2, 2}
	tree := NewBallTree(data, 4, 2, EuclideanMetric{}, 10)

	if c := tree.centroid(0); c[0] != 1 || c[1] != 1 {
		t.Errorf("root centroid = %v, want [1 1]", c)
	}
	if r := tree.nodeSlots()[0].Radius; math.Abs(r-math.Sqrt2) > floatTol {
		t.Errorf("root radius = %v, want sqrt(2)", r)
	}
}

func TestBallTree_RadiusCoversMembers(t *testing.T) {
	n, dims := 90, 3
	data := randomFlat(n, dims, 11)
	for _, metric := range []DistanceMetric{EuclideanMetric{}, ManhattanMetric{}, ChebyshevMetric{}} {
		tree := NewBallTree(data, n, dims, metric, 5)
		for nodeID, nd := range tree.nodeSlots() {
			if nd.IdxStart == nd.IdxEnd {
				continue
			}
			if nd.Radius < 0 {
				t.Errorf("%T node %d: negative radius %v", metric, nodeID, nd.Radius)
			}
			for i := nd.IdxStart; i < nd.IdxEnd; i++ {
				d := metric.Distance(tree.centroid(nodeID), tree.Point(tree.idxArray[i]))
				if d > nd.Radius+1e-12 {
					t.Errorf("%T node %d: member at %v outside radius %v", metric, nodeID, d, nd.Radius)
				}
			}
		}
	}
}

func TestBallTree_LeafPointsCoverAll(t *testing.T) {
	data := make([]float64, 20*3)
	for i := range data {
		data[i] = float64(i)
	}
	n, dims := 20, 3
	tree := NewBallTree(data, n, dims, EuclideanMetric{}, 4)

	covered := make([]bool, n)
	for _, nd := range tree.nodeSlots() {
		if nd.IsLeaf {
			for i := nd.IdxStart; i < nd.IdxEnd; i++ {
				origIdx := tree.idxArray[i]
				if covered[origIdx] {
					t.Errorf("point %d appears in multiple leaves", origIdx)
				}
				covered[origIdx] = true
			}
		}
	}
	for i, c := range covered {
		if !c {
			t.Errorf("point %d not covered by any leaf", i)
		}
	}
}

func TestBallTree_UnbalancedNodesReported(t *testing.T) {
	// Five points split 2/3, so the deepest leaves sit past a gap of unused slots.
	data := []float64{0, 1, 2, 3, 4}
	tree := NewBallTree(data, 5, 1, EuclideanMetric{}, 1)

	var leaves int
	for _, nd := range tree.nodeSlots() {
		if nd.IsLeaf {
			leaves++
		}
	}
	if leaves != 5 {
		t.Errorf("expected 5 leaves, got %d", leaves)
	}
}

func TestBallTree_EmptyData(t *testing.T) {
	tree := NewBallTree(nil, 0, 2, EuclideanMetric{}, 10)
	if tree.NumPoints() != 0 {
		t.Errorf("NumPoints() = %d, want 0", tree.NumPoints())
	}
	if got := tree.QueryRadius([]float64{0, 0}, 1); len(got) != 0 {
		t.Errorf("QueryRadius on empty tree = %v, want none", got)
	}
}

// --- Radius query tests ---

func TestBallTree_QueryRadius_BruteForceMatch(t *testing.T) {
	n, dims := 150, 3
	data := randomFlat(n, dims, 43)
	for _, metric := range []DistanceMetric{EuclideanMetric{}, ManhattanMetric{}, ChebyshevMetric{}, MinkowskiMetric{P: 1.5}} {
		tree := NewBallTree(data, n, dims, metric, 5)
		checkRadiusQueries(t, tree, data, metric, []float64{0, 0.7, 2, 5, 30})
	}
}

func TestBallTree_QueryRadius_HigherDim(t *testing.T) {
	n, dims := 80, 70
	data := randomFlat(n, dims, 8)
	tree := NewBallTree(data, n, dims, EuclideanMetric{}, 8)
	checkRadiusQueries(t, tree, data, EuclideanMetric{}, []float64{20, 25})
}

func TestBallTree_QueryRadius_AllSamePoints(t *testing.T) {
	n, dims := 10, 2
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = 1
	}
	tree := NewBallTree(data, n, dims, EuclideanMetric{}, 3)

	if got := tree.QueryRadius([]float64{1, 1}, 0); len(got) != n {
		t.Errorf("expected all %d duplicates at radius 0, got %d", n, len(got))
	}
}

func TestBallTree_ImplementsSpatialTree(t *testing.T) {
	var _ SpatialTree = (*BallTree)(nil)
}
