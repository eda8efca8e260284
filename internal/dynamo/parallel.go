package dynamo

import "sync"

// ParallelFor splits [0, n) into contiguous chunks and runs fn on each chunk
// in its own goroutine. worker is the chunk index, stable for a given
// (n, minChunk, workers), so callers can keep per-worker scratch space.
// It returns the number of chunks used.
func ParallelFor(n, minChunk, workers int, fn func(worker, start, end int)) int {
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, 0, n)
		return 1
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	used := 0
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}
		used++

		wg.Add(1)
		go func(idx, s, e int) {
			defer wg.Done()
			fn(idx, s, e)
		}(w, start, end)
	}

	wg.Wait()
	return used
}
