package ocr

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// reservedCores are left to the host process.
const reservedCores = 2

// WorkerCount returns the pool size for the given core and page counts:
// max(1, cores-2), never more than the pages to process.
func WorkerCount(cores, pages int) int {
	return clampWorkers(cores-reservedCores, pages)
}

func clampWorkers(n, pages int) int {
	if n > pages {
		n = pages
	}
	if n < 1 {
		n = 1
	}
	return n
}

// RunSlots calls fn for every index in [0, n) on at most workers goroutines
// and returns the results in index order. Each call writes only its own slot,
// so order does not depend on completion order.
//
// A failing call does not stop the others; failures are reported in the
// slot's Err. Once ctx is cancelled, slots that have not started are marked
// with ctx.Err() and left empty.
func RunSlots(ctx context.Context, n, workers int, fn func(ctx context.Context, index int) PageResult) []PageResult {
	slots := make([]PageResult, n)
	if n == 0 {
		return slots
	}

	var g errgroup.Group
	g.SetLimit(clampWorkers(workers, n))

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			for j := i; j < n; j++ {
				slots[j] = PageResult{Index: j, Err: err}
			}
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				slots[i] = PageResult{Index: i, Err: err}
				return nil
			}
			res := fn(ctx, i)
			res.Index = i
			slots[i] = res
			return nil
		})
	}

	_ = g.Wait()
	return slots
}
