package fuzzydbscan

import "golang.org/x/sync/errgroup"

// chunksPerWorker is the number of row ranges handed to each worker.
// Pairwise rows shrink as i grows (only j > i is evaluated).
const chunksPerWorker = 4

// parallelRows runs fn over contiguous, non-overlapping ranges of [0, n) on
// at most numWorkers goroutines. If numWorkers <= 1 it runs fn(0, n) on the
// calling goroutine. Callers write only to rows inside their range, so no
// further synchronization is needed.
func parallelRows(n, numWorkers int, fn func(start, end int)) {
	if numWorkers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	chunks := numWorkers * chunksPerWorker
	rowsPerChunk := (n + chunks - 1) / chunks

	var g errgroup.Group
	g.SetLimit(numWorkers)
	for start := 0; start < n; start += rowsPerChunk {
		start := start
		end := min(start+rowsPerChunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
