package fuzzydbscan

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// BallTree is a ball tree spatial index for radius queries. Each node stores
// a centroid and radius defining an enclosing ball for its points; pruning
// relies on the triangle inequality.
//
// The tree is stored as a complete binary tree in array form:
// node i has children at 2*i+1 and 2*i+2.
type BallTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	idxArray []int      // permutation: tree-order position → original index
	nodes    []NodeData // one entry per tree node; Radius is used
	// centroids[node*dims .. (node+1)*dims) = centroid of node
	centroids []float64
	numNodes  int
}

// NewBallTree builds a ball tree from flat row-major data with n points
// of dimensionality dims. leafSize controls the max points per leaf node.
func NewBallTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *BallTree {
	if leafSize < 1 {
		leafSize = 1
	}

	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := treeMaxNodes(n, leafSize)
	t := &BallTree{
		data:      dataCopy,
		n:         n,
		dims:      dims,
		leafSize:  leafSize,
		metric:    metric,
		idxArray:  idxArray,
		nodes:     make([]NodeData, maxNodes),
		centroids: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
		t.numNodes = treeNodeExtent(t.nodes, 0)
	}

	return t
}

// buildNode recursively builds the ball tree for points in idxArray[start:end].
func (t *BallTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.centroids = append(t.centroids, make([]float64, t.dims)...)
	}

	centroid := t.centroid(nodeID)
	for i := start; i < end; i++ {
		floats.Add(centroid, t.Point(t.idxArray[i]))
	}
	floats.Scale(1/float64(end-start), centroid)

	// Radius: max distance from centroid to any point in this node.
	var radius float64
	for i := start; i < end; i++ {
		radius = math.Max(radius, t.metric.Distance(centroid, t.Point(t.idxArray[i])))
	}

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true, Radius: radius}
		return
	}
	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, Radius: radius}

	splitDim := t.findSpreadDim(start, end)
	sub := t.idxArray[start:end]
	sort.Slice(sub, func(a, b int) bool {
		return t.data[sub[a]*t.dims+splitDim] < t.data[sub[b]*t.dims+splitDim]
	})
	mid := start + count/2

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// findSpreadDim returns the dimension with the greatest spread among
// points in idxArray[start:end].
func (t *BallTree) findSpreadDim(start, end int) int {
	bestDim := 0
	bestSpread := -1.0
	for d := 0; d < t.dims; d++ {
		minVal := math.Inf(1)
		maxVal := math.Inf(-1)
		for i := start; i < end; i++ {
			v := t.data[t.idxArray[i]*t.dims+d]
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
		if spread := maxVal - minVal; spread > bestSpread {
			bestSpread = spread
			bestDim = d
		}
	}
	return bestDim
}

func (t *BallTree) Point(i int) []float64  { return t.data[i*t.dims : (i+1)*t.dims] }
func (t *BallTree) NumPoints() int         { return t.n }
func (t *BallTree) NumFeatures() int       { return t.dims }
func (t *BallTree) permutation() []int     { return t.idxArray }
func (t *BallTree) nodeSlots() []NodeData  { return t.nodes[:t.numNodes] }

func (t *BallTree) centroid(node int) []float64 {
	return t.centroids[node*t.dims : (node+1)*t.dims]
}

// QueryRadius returns every point within distance r of query.
func (t *BallTree) QueryRadius(query []float64, r float64) []int {
	if t.n == 0 {
		return nil
	}
	var out []int
	t.radiusSearch(0, query, r, &out)
	return out
}

func (t *BallTree) radiusSearch(nodeID int, query []float64, r float64, out *[]int) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.IdxStart == node.IdxEnd && nodeID != 0 {
		return
	}

	// Lower bound on the distance to any point in the ball.
	lb := math.Max(t.metric.Distance(query, t.centroid(nodeID))-node.Radius, 0)
	if !withinRadius(lb, r) {
		return
	}

	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			ptIdx := t.idxArray[i]
			if withinRadius(t.metric.Distance(query, t.Point(ptIdx)), r) {
				*out = append(*out, ptIdx)
			}
		}
		return
	}

	t.radiusSearch(2*nodeID+1, query, r, out)
	t.radiusSearch(2*nodeID+2, query, r, out)
}
