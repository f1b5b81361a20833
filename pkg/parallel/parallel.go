// Package parallel runs a function over a slice of inputs with a bounded
// number of workers, collecting every error instead of stopping at the first.
package parallel

import (
	"context"
	"sync"
)

// Result pairs one input with the error its run produced.
type Result[T any] struct {
	Input T
	Err   error
}

// Each runs fn for every input using at most workerLimit goroutines and
// returns the results of the runs that failed, in no particular order.
// It always waits for all runs to finish.
func Each[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) []Result[T] {
	if len(inputs) == 0 {
		return nil
	}
	if workerLimit <= 0 || workerLimit > len(inputs) {
		workerLimit = len(inputs)
	}

	tasks := make(chan T)
	var mu sync.Mutex
	var failed []Result[T]

	var wg sync.WaitGroup
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if err := fn(ctx, item); err != nil {
					mu.Lock()
					failed = append(failed, Result[T]{Input: item, Err: err})
					mu.Unlock()
				}
			}
		}()
	}

	for _, item := range inputs {
		select {
		case <-ctx.Done():
			mu.Lock()
			failed = append(failed, Result[T]{Err: ctx.Err()})
			mu.Unlock()
			close(tasks)
			wg.Wait()
			return failed
		case tasks <- item:
		}
	}
	close(tasks)
	wg.Wait()
	return failed
}
