package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configures a parallel run.
type ParallelOptions struct {
	// MaxWorkers caps the number of concurrent item calls.
	MaxWorkers int
}

// DefaultOptions returns the default parallelism.
func DefaultOptions() ParallelOptions {
	return ParallelOptions{
		MaxWorkers: 4,
	}
}

type result[R any] struct {
	index int
	value R
	err   error
}

// ProcessParallel calls itemFunc for every item with at most MaxWorkers
// calls in flight. Results keep the order of items. Items not started
// because ctx was canceled report ctx.Err().
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultOptions().MaxWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int, len(items))
	for i := range items {
		jobs <- i
	}
	close(jobs)

	results := make(chan result[R], len(items))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result[R]{index: i, err: err}
					continue
				}
				v, err := itemFunc(ctx, i, items[i])
				results <- result[R]{index: i, value: v, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]R, len(items))
	errs := make([]error, len(items))
	failed := false
	for r := range results {
		out[r.index] = r.value
		if r.err != nil {
			errs[r.index] = r.err
			failed = true
		}
	}

	if !failed {
		return out, nil
	}
	// keep only the failures, in item order
	compact := errs[:0]
	for _, err := range errs {
		if err != nil {
			compact = append(compact, err)
		}
	}
	return out, compact
}
