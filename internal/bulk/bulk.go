// Package bulk fans one operation out over many work packages with
// bounded concurrency and per-item retry.
//
// The OpenProject client itself never retries; retry policy lives
// here. Only connectivity and 5xx failures are retried, since a 4xx
// will fail identically on every attempt.
package bulk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"opmcp/internal/openproject"
)

const (
	// MaxItems bounds a single bulk call. Larger batches should be
	// split by the caller so one runaway request list can't occupy the
	// pool for minutes.
	MaxItems = 50

	defaultConcurrency = 30
	defaultRetries     = 3
	initialBackoff     = time.Second
	maxBackoff         = 16 * time.Second
)

// Options tunes a bulk run. The zero value gets the defaults.
type Options struct {
	Concurrency int
	Retries     int
	// Sleep is swapped out in tests; nil means time.Sleep honoring ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.Retries <= 0 {
		o.Retries = defaultRetries
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	return o
}

// Result summarizes a bulk run.
type Result struct {
	Total     int
	Succeeded int
	Failed    int
	Errors    []string
	Duration  time.Duration

	// Retry accounting, for surfacing flaky-network conditions.
	TotalRetries     int
	ItemsWithRetries int
}

// SuccessRate returns the success percentage (0..100).
func (r Result) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Total) * 100
}

// UpdateWorkPackages applies the same partial update to every listed
// work package concurrently.
func UpdateWorkPackages(ctx context.Context, client *openproject.Client, ids []int, update openproject.WorkPackageUpdate, opts Options) (Result, error) {
	return run(ctx, ids, opts, func(ctx context.Context, id int) error {
		_, err := client.UpdateWorkPackage(ctx, id, update)
		return err
	})
}

// CommentWorkPackages posts the same comment to every listed work
// package concurrently.
func CommentWorkPackages(ctx context.Context, client *openproject.Client, ids []int, comment string, opts Options) (Result, error) {
	return run(ctx, ids, opts, func(ctx context.Context, id int) error {
		_, err := client.AddWorkPackageComment(ctx, id, comment)
		return err
	})
}

func run(ctx context.Context, ids []int, opts Options, op func(ctx context.Context, id int) error) (Result, error) {
	if len(ids) == 0 {
		return Result{}, fmt.Errorf("no work package IDs given")
	}
	if len(ids) > MaxItems {
		return Result{}, fmt.Errorf("too many work packages: %d (max %d)", len(ids), MaxItems)
	}
	opts = opts.withDefaults()

	start := time.Now()
	result := Result{Total: len(ids)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, id := range ids {
		g.Go(func() error {
			retries, err := withRetry(ctx, opts, func() error { return op(ctx, id) })

			mu.Lock()
			defer mu.Unlock()
			result.TotalRetries += retries
			if retries > 0 {
				result.ItemsWithRetries++
			}
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("#%d: %v", id, err))
			} else {
				result.Succeeded++
			}
			// Individual failures are reported in the Result, not as a
			// group error: one bad ID must not cancel the rest.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

// withRetry runs fn with exponential backoff (1s, 2s, 4s... capped),
// retrying only transient failures. Returns the retry count used.
func withRetry(ctx context.Context, opts Options, fn func() error) (int, error) {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !retryable(err) || attempt == opts.Retries {
			return attempt, err
		}

		delay := min(initialBackoff<<attempt, maxBackoff)
		if sleepErr := opts.Sleep(ctx, delay); sleepErr != nil {
			return attempt, err
		}
	}
}

// retryable reports whether the failure is worth another attempt:
// connectivity problems and server-side 5xx only.
func retryable(err error) bool {
	switch openproject.KindOf(err) {
	case openproject.KindConnectivity, openproject.KindServer:
		return true
	default:
		return false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
