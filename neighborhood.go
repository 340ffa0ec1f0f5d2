package fuzzydbscan

import "sort"

// neighborhood is the sparse weighted adjacency of one point: every other
// point with positive neighbor weight, in ascending index order.
type neighborhood struct {
	idx []int
	w   []float64
}

// pairDistance returns the distance between points i and j. It is always
// called with i < j.
type pairDistance func(i, j int) float64

// pairwiseNeighborhoods evaluates every unordered pair once, keeping pairs
// with positive weight. Rows are computed in parallel over j > i and then
// mirrored, so the adjacency is symmetric by construction.
func pairwiseNeighborhoods(n int, dist pairDistance, cfg Config) []neighborhood {
	upper := make([]neighborhood, n)

	parallelRows(n, cfg.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			var nb neighborhood
			for j := i + 1; j < n; j++ {
				if w := NeighborWeight(dist(i, j), cfg.EpsMin, cfg.EpsMax); w > 0 {
					nb.idx = append(nb.idx, j)
					nb.w = append(nb.w, w)
				}
			}
			upper[i] = nb
		}
	})

	return mirror(upper)
}

// mirror expands upper-triangle rows (j > i) into full symmetric rows.
// Visiting i in ascending order appends lower entries before the row's own
// upper entries, which keeps every row sorted without a sort pass.
func mirror(upper []neighborhood) []neighborhood {
	full := make([]neighborhood, len(upper))
	for i, nb := range upper {
		full[i].idx = append(full[i].idx, nb.idx...)
		full[i].w = append(full[i].w, nb.w...)
		for k, j := range nb.idx {
			full[j].idx = append(full[j].idx, i)
			full[j].w = append(full[j].w, nb.w[k])
		}
	}
	return full
}

// indexedNeighborhoods builds the adjacency from radius queries against a
// spatial tree. Candidates are re-weighted with dist in (low, high) index
// order, matching pairwiseNeighborhoods exactly.
func indexedNeighborhoods(tree SpatialTree, dist pairDistance, cfg Config) []neighborhood {
	n := tree.NumPoints()
	dims := tree.NumFeatures()
	nbs := make([]neighborhood, n)

	parallelRows(n, cfg.Workers, func(start, end int) {
		query := make([]float64, dims)
		for i := start; i < end; i++ {
			copy(query, tree.Point(i))
			candidates := tree.QueryRadius(query, cfg.EpsMax)
			sort.Ints(candidates)

			var nb neighborhood
			for _, j := range candidates {
				if j == i {
					continue
				}
				var d float64
				if i < j {
					d = dist(i, j)
				} else {
					d = dist(j, i)
				}
				if w := NeighborWeight(d, cfg.EpsMin, cfg.EpsMax); w > 0 {
					nb.idx = append(nb.idx, j)
					nb.w = append(nb.w, w)
				}
			}
			nbs[i] = nb
		}
	})

	return nbs
}
