package fuzzydbscan

import (
	"math"
	"sort"
)

// assign emits the assignment records of every point in index order:
// one per core or noise point, one per reachable cluster for border points.
// offsets[i] is the position of point i's first record; offsets[n] is the
// total record count.
func assign(nbs []neighborhood, memberships []float64, comps components) (assignments []Assignment, offsets []int) {
	n := len(nbs)
	offsets = make([]int, n+1)
	assignments = make([]Assignment, 0, n)

	for i := 0; i < n; i++ {
		offsets[i] = len(assignments)

		if c := comps.clusterOf[i]; c != NoCluster {
			assignments = append(assignments, Assignment{
				Index: i, Cluster: c, Category: Core, Label: memberships[i],
			})
			continue
		}

		reach := comps.reach[i]
		if len(reach) == 0 {
			assignments = append(assignments, Assignment{
				Index: i, Cluster: NoCluster, Category: Noise, Label: 0,
			})
			continue
		}

		// Per cluster, the strongest min(core membership, neighbor weight)
		// over the cluster's core points adjacent to i.
		degrees := make([]float64, len(reach))
		for k, j := range nbs[i].idx {
			c := comps.clusterOf[j]
			if c == NoCluster {
				continue
			}
			pos := sort.SearchInts(reach, c)
			degrees[pos] = math.Max(degrees[pos], math.Min(memberships[j], nbs[i].w[k]))
		}
		for pos, c := range reach {
			if degrees[pos] > 0 {
				assignments = append(assignments, Assignment{
					Index: i, Cluster: c, Category: Border, Label: degrees[pos],
				})
			}
		}
	}
	offsets[n] = len(assignments)

	return assignments, offsets
}
