package fuzzydbscan

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KDTree is a KD-tree spatial index for radius queries. Points are stored
// in a flat row-major array and reordered internally via an index
// permutation array.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	p        float64    // Minkowski exponent of metric
	idxArray []int      // permutation: tree-order position → original index
	nodes    []NodeData // one entry per tree node
	// boundsMin[node*dims + j] = min value of feature j in node
	boundsMin []float64
	// boundsMax[node*dims + j] = max value of feature j in node
	boundsMax []float64
	numNodes  int
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
// metric must decompose along coordinate axes (see KDTreeValidMetric).
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}
	p, _ := metricP(metric)

	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := treeMaxNodes(n, leafSize)
	t := &KDTree{
		data:      dataCopy,
		n:         n,
		dims:      dims,
		leafSize:  leafSize,
		metric:    metric,
		p:         p,
		idxArray:  idxArray,
		nodes:     make([]NodeData, maxNodes),
		boundsMin: make([]float64, maxNodes*dims),
		boundsMax: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
		t.numNodes = treeNodeExtent(t.nodes, 0)
	}

	return t
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.boundsMin = append(t.boundsMin, make([]float64, t.dims)...)
		t.boundsMax = append(t.boundsMax, make([]float64, t.dims)...)
	}

	t.computeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	// Split on the dimension with the greatest spread, at the median.
	base := nodeID * t.dims
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		if spread := t.boundsMax[base+d] - t.boundsMin[base+d]; spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	sub := t.idxArray[start:end]
	sort.Slice(sub, func(a, b int) bool {
		return t.data[sub[a]*t.dims+splitDim] < t.data[sub[b]*t.dims+splitDim]
	})
	mid := start + count/2

	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end}
	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeBounds computes min/max per dimension for points idxArray[start:end].
func (t *KDTree) computeBounds(nodeID, start, end int) {
	lo := t.boundsMin[nodeID*t.dims : (nodeID+1)*t.dims]
	hi := t.boundsMax[nodeID*t.dims : (nodeID+1)*t.dims]
	for d := range lo {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		pt := t.Point(t.idxArray[i])
		for d, v := range pt {
			lo[d] = math.Min(lo[d], v)
			hi[d] = math.Max(hi[d], v)
		}
	}
}

func (t *KDTree) Point(i int) []float64  { return t.data[i*t.dims : (i+1)*t.dims] }
func (t *KDTree) NumPoints() int         { return t.n }
func (t *KDTree) NumFeatures() int       { return t.dims }
func (t *KDTree) permutation() []int     { return t.idxArray }
func (t *KDTree) nodeSlots() []NodeData  { return t.nodes[:t.numNodes] }

func (t *KDTree) bounds(node int) (lo, hi []float64) {
	return t.boundsMin[node*t.dims : (node+1)*t.dims], t.boundsMax[node*t.dims : (node+1)*t.dims]
}

// QueryRadius returns every point within distance r of query.
func (t *KDTree) QueryRadius(query []float64, r float64) []int {
	if t.n == 0 {
		return nil
	}
	var out []int
	gaps := make([]float64, t.dims)
	t.radiusSearch(0, query, r, gaps, &out)
	return out
}

func (t *KDTree) radiusSearch(nodeID int, query []float64, r float64, gaps []float64, out *[]int) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.IdxStart == node.IdxEnd && nodeID != 0 {
		return // uninitialized node
	}
	if !withinRadius(t.minDistPoint(nodeID, query, gaps), r) {
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

	t.radiusSearch(2*nodeID+1, query, r, gaps, out)
	t.radiusSearch(2*nodeID+2, query, r, gaps, out)
}

// minDistPoint returns a lower bound on the distance between point and any
// point inside the node's bounding box: the norm of the per-dimension gaps.
func (t *KDTree) minDistPoint(node int, point, gaps []float64) float64 {
	lo, hi := t.bounds(node)
	for j, v := range point {
		switch {
		case v < lo[j]:
			gaps[j] = lo[j] - v
		case v > hi[j]:
			gaps[j] = v - hi[j]
		default:
			gaps[j] = 0
		}
	}
	return floats.Norm(gaps, t.p)
}
