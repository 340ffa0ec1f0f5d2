// Package fuzzydbscan implements FuzzyDBSCAN, a density-based clustering
// algorithm in which both the neighborhood radius and the density threshold
// are intervals rather than single values.
//
// Distances between EpsMin and EpsMax produce a partial neighbor weight, and
// weighted densities between PtsMin and PtsMax produce a partial core
// membership. Core points connected by positive neighbor weight form a
// cluster. Non-core points reachable from one or more clusters are border
// points and receive one assignment per reachable cluster, so a point can
// belong to several clusters at once. Everything else is noise.
//
// Basic usage:
//
//	cfg := fuzzydbscan.DefaultConfig()
//	cfg.EpsMin, cfg.EpsMax = 10, 20
//	cfg.PtsMin, cfg.PtsMax = 1, 2
//	result, err := fuzzydbscan.ClusterVectors(data, cfg)
//	for _, a := range result.Assignments {
//		// a.Index, a.Cluster (NoCluster for noise), a.Category, a.Label
//	}
//
// Any type with a distance can be clustered directly:
//
//	result, err := fuzzydbscan.Cluster(points, cfg)          // P implements Point[P]
//	result, err := fuzzydbscan.ClusterFunc(items, dist, cfg) // plain function
//
// Setting EpsMin == EpsMax and PtsMin == PtsMax reduces the algorithm to
// classic DBSCAN: every label is 0 or 1.
//
// # Neighbor search
//
// ClusterVectors defaults to Algorithm "auto", which evaluates all pairs for
// small inputs and uses a KD-tree or ball tree radius search otherwise. The
// index only skips pairs farther apart than EpsMax, so output is identical
// to the brute-force path:
//
//	cfg.Algorithm = fuzzydbscan.AlgorithmBrute    // all pairs
//	cfg.Algorithm = fuzzydbscan.AlgorithmKDTree   // KD-tree radius search
//	cfg.Algorithm = fuzzydbscan.AlgorithmBallTree // ball tree radius search
package fuzzydbscan
