package fuzzydbscan

// radiusSlack widens radius tests by a relative margin so that rounding in
// node lower bounds never prunes a point lying exactly on the radius.
// Candidates are re-weighted afterwards, so extra candidates are harmless.
const radiusSlack = 1e-9

// NodeData describes a single node in a spatial tree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
	Radius           float64 // ball tree radius; 0 for KD-tree
}

// SpatialTree is the read interface shared by KD-trees and ball trees,
// used to find neighbor candidates within EpsMax.
type SpatialTree interface {
	// QueryRadius returns the original indices of every point whose
	// distance to query is at most r, in no particular order.
	QueryRadius(query []float64, r float64) []int

	// Point returns the coordinates of the point with original index i.
	Point(i int) []float64

	// NumPoints returns the number of points in the tree.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int
}

// treeMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func treeMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))) + 1.
	// Number of nodes in a complete binary tree of depth d = 2^(d+1) - 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// treeNodeExtent returns one past the highest node ID initialized by a
// build. Slots below it that the build never reached stay zero-valued.
func treeNodeExtent(nodes []NodeData, nodeID int) int {
	if nodeID >= len(nodes) {
		return 0
	}
	if nodes[nodeID].IdxStart == 0 && nodes[nodeID].IdxEnd == 0 && nodeID != 0 {
		return 0
	}
	extent := nodeID + 1
	if !nodes[nodeID].IsLeaf {
		extent = max(extent, treeNodeExtent(nodes, 2*nodeID+1), treeNodeExtent(nodes, 2*nodeID+2))
	}
	return extent
}

// withinRadius reports whether d passes the slackened radius test.
func withinRadius(d, r float64) bool {
	return d <= r+r*radiusSlack
}
