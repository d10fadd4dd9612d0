package osm2street

import (
	"runtime"
	"sync"
)

// parallelize evaluates fn for every item with fixed number of workers.
// Results are written by index, so their order does not depend on scheduling
func parallelize[T any, R any](items []T, workers int, fn func(item T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}
	jobs := make(chan int, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = fn(items[idx])
			}
		}()
	}
	for idx := range items {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return results
}
