package fuzzydbscan

// selfWeight is the neighbor weight of a point with itself. It is added to
// every weighted density unless Config.ExcludeSelf is set.
const selfWeight = 1.0

// NeighborWeight returns the fuzzy neighbor membership of two points at
// distance d: 1 within epsMin, 0 at or beyond epsMax, and a linear ramp in
// between. The epsMin test runs first, so epsMin == epsMax is crisp.
func NeighborWeight(d, epsMin, epsMax float64) float64 {
	switch {
	case d <= epsMin:
		return 1
	case d >= epsMax:
		return 0
	default:
		return (epsMax - d) / (epsMax - epsMin)
	}
}

// CoreMembership maps a weighted density to a fuzzy core membership: 1 at or
// above ptsMax, 0 at or below ptsMin, and a linear ramp in between. The
// ptsMax test runs first, so ptsMin == ptsMax is crisp.
func CoreMembership(density, ptsMin, ptsMax float64) float64 {
	switch {
	case density >= ptsMax:
		return 1
	case density <= ptsMin:
		return 0
	default:
		return (density - ptsMin) / (ptsMax - ptsMin)
	}
}

// classify computes the weighted density and core membership of every point.
// Neighbors are summed in ascending index order so that every neighbor
// search path produces bitwise identical densities.
func classify(nbs []neighborhood, cfg Config) (densities, memberships []float64) {
	n := len(nbs)
	densities = make([]float64, n)
	memberships = make([]float64, n)

	self := selfWeight
	if cfg.ExcludeSelf {
		self = 0
	}

	parallelRows(n, cfg.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			w := self
			for _, v := range nbs[i].w {
				w += v
			}
			densities[i] = w
			memberships[i] = CoreMembership(w, cfg.PtsMin, cfg.PtsMax)
		}
	})

	return densities, memberships
}
