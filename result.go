package fuzzydbscan

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// NoCluster is the cluster ID of noise assignments.
const NoCluster = -1

// Category is the high-level classification of an assignment.
type Category int

const (
	// Core points have positive core membership and define a cluster.
	Core Category = iota
	// Border points are not core but are adjacent to at least one core point.
	Border
	// Noise points are adjacent to no core point.
	Noise
)

func (c Category) String() string {
	switch c {
	case Core:
		return "core"
	case Border:
		return "border"
	case Noise:
		return "noise"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Assignment is one (point, cluster) membership record.
type Assignment struct {
	// Index is the position of the point in the input.
	Index int
	// Cluster is the cluster ID, or NoCluster for noise.
	Cluster int
	// Category is Core, Border or Noise.
	Category Category
	// Label is the fuzzy membership degree in [0, 1]: the core membership
	// for core points, the reachability degree for border points, 0 for
	// noise.
	Label float64
}

// ClusterSummary lists the members of one cluster as bitmaps of point
// indices.
type ClusterSummary struct {
	ID int
	// Core holds the cluster's core points.
	Core *roaring.Bitmap
	// Border holds the non-core points adjacent to a core point of the
	// cluster. A point may appear in the Border set of several clusters.
	Border *roaring.Bitmap
}

// Result contains the output of FuzzyDBSCAN clustering.
type Result struct {
	// Assignments holds every membership record, sorted by point index and
	// then by cluster ID. Core and noise points have exactly one record;
	// border points have one per reachable cluster.
	Assignments []Assignment

	// NumClusters is the number of clusters found. IDs are 0..NumClusters-1.
	NumClusters int

	// Densities is the weighted neighborhood density of each point.
	Densities []float64

	// CoreMemberships is the fuzzy core membership of each point, in [0, 1].
	CoreMemberships []float64

	// Clusters summarizes each cluster's members, indexed by cluster ID.
	Clusters []ClusterSummary

	// offsets[i] is the index into Assignments of point i's first record.
	offsets []int
}

// emptyResult returns a Result for zero points with non-nil empty slices.
func emptyResult() *Result {
	return &Result{
		Assignments:     []Assignment{},
		Densities:       []float64{},
		CoreMemberships: []float64{},
		Clusters:        []ClusterSummary{},
		offsets:         []int{0},
	}
}

// NumPoints returns the number of input points.
func (r *Result) NumPoints() int { return len(r.offsets) - 1 }

// ForPoint returns the assignment records of point i.
func (r *Result) ForPoint(i int) []Assignment {
	return r.Assignments[r.offsets[i]:r.offsets[i+1]]
}

// Categories returns the category of every point.
func (r *Result) Categories() []Category {
	out := make([]Category, r.NumPoints())
	for i := range out {
		out[i] = r.Assignments[r.offsets[i]].Category
	}
	return out
}

// Count returns the number of points in category c.
func (r *Result) Count(c Category) int {
	var count int
	for i := 0; i < r.NumPoints(); i++ {
		if r.Assignments[r.offsets[i]].Category == c {
			count++
		}
	}
	return count
}

// Labels collapses the fuzzy output into one cluster ID per point. Border
// points get the cluster with the highest degree, ties going to the lowest
// ID; noise points get NoCluster.
func (r *Result) Labels() []int {
	out := make([]int, r.NumPoints())
	for i := range out {
		best := r.Assignments[r.offsets[i]]
		for _, a := range r.ForPoint(i)[1:] {
			if a.Label > best.Label {
				best = a
			}
		}
		out[i] = best.Cluster
	}
	return out
}

// Groups returns the assignments grouped by cluster: each group holds the
// cluster's core records followed by its border records, both in point
// order. If any point is noise, a final group holds the noise records.
func (r *Result) Groups() [][]Assignment {
	groups := make([][]Assignment, r.NumClusters)
	var noise []Assignment
	for _, a := range r.Assignments {
		switch a.Category {
		case Core:
			groups[a.Cluster] = append(groups[a.Cluster], a)
		case Noise:
			noise = append(noise, a)
		}
	}
	for _, a := range r.Assignments {
		if a.Category == Border {
			groups[a.Cluster] = append(groups[a.Cluster], a)
		}
	}
	if len(noise) > 0 {
		groups = append(groups, noise)
	}
	return groups
}
