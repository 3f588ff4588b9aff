package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// BatchExecutor runs a work list in fixed-size batches with concurrency inside a batch and a pause
// between batches.
type BatchExecutor struct {
	BatchSize int
	Delay     time.Duration
	// ProgressEvery is the number of batches between progress callbacks. The callback always runs
	// once more after the last batch.
	ProgressEvery int
}

type BatchResult struct {
	Total     int
	Processed int
	Succeeded int
	Failed    int
	Batches   int
}

// Done reports whether every item was attempted.
func (r BatchResult) Done() bool {
	return r.Processed == r.Total
}

type ProgressFunc func(ctx context.Context, result BatchResult) error

// RunBatches applies action to every item and returns the settled totals. A failing or panicking item
// is counted as failed and never stops its siblings or the following batches. Cancelling ctx stops the
// job before the next batch; the items not attempted are left out of Processed.
func RunBatches[T any](
	ctx context.Context,
	e BatchExecutor,
	items []T,
	action func(ctx context.Context, item T) error,
	progress ProgressFunc,
) BatchResult {
	size := e.BatchSize
	if size < 1 {
		size = 1
	}
	every := e.ProgressEvery
	if every < 1 {
		every = 1
	}

	result := BatchResult{Total: len(items)}

	for start := 0; start < len(items); start += size {
		if ctx.Err() != nil {
			log.Debug().Int("processed", result.Processed).Int("total", result.Total).Msg("batch job cancelled")
			break
		}

		end := min(start+size, len(items))
		failed := runBatch(ctx, items[start:end], action)

		result.Batches++
		result.Processed += end - start
		result.Failed += failed
		result.Succeeded += end - start - failed

		last := end == len(items)
		if result.Batches%every == 0 || last {
			notify(ctx, progress, result)
		}

		if last {
			break
		}
		if !sleep(ctx, e.Delay) {
			log.Debug().Int("processed", result.Processed).Int("total", result.Total).Msg("batch job cancelled")
			break
		}
	}

	return result
}

func runBatch[T any](ctx context.Context, batch []T, action func(ctx context.Context, item T) error) int {
	outcomes := make([]bool, len(batch))

	var wg conc.WaitGroup
	for idx, item := range batch {
		wg.Go(func() {
			var pc panics.Catcher
			var err error
			pc.Try(func() { err = action(ctx, item) })

			if r := pc.Recovered(); r != nil {
				log.Error().Str("panic", r.String()).Msg("batch item panicked")
				return
			}
			if err != nil {
				log.Debug().Err(err).Msg("batch item failed")
				return
			}
			outcomes[idx] = true
		})
	}
	wg.Wait()

	failed := 0
	for _, ok := range outcomes {
		if !ok {
			failed++
		}
	}
	return failed
}

func notify(ctx context.Context, progress ProgressFunc, result BatchResult) {
	if progress == nil {
		return
	}

	var pc panics.Catcher
	var err error
	pc.Try(func() { err = progress(ctx, result) })

	if r := pc.Recovered(); r != nil {
		log.Warn().Str("panic", r.String()).Msg("progress callback panicked")
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("progress callback failed")
	}
}

// sleep waits for d and returns false when ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
