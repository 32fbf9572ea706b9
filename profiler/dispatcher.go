package profiler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/yourusername/s3stats/metrics"
	"github.com/yourusername/s3stats/types"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of buckets collected at once when not configured
const DefaultConcurrency = 8

// Dispatcher orchestrates the collection of many buckets
type Dispatcher struct {
	collector *Collector
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewDispatcher creates a new dispatcher collecting from storage
func NewDispatcher(storage Storage, opts ...Option) *Dispatcher {
	o := newOptions(opts)
	return &Dispatcher{
		collector: NewCollector(storage, opts...),
		logger:    o.logger,
		metrics:   o.metrics,
	}
}

// RunAll collects every bucket using a fixed pool of concurrency workers that
// pull from a shared queue. A failing bucket is recorded in its result and
// does not affect the others. RunAll returns once every bucket is done; the
// result holds exactly one entry per bucket, in completion order.
//
// An error is only returned for invalid configuration, before any bucket is touched.
func (d *Dispatcher) RunAll(ctx context.Context, buckets []types.BucketRef, cfg types.CollectConfig, concurrency int) (types.RunResult, error) {
	if concurrency < 1 {
		return nil, NewConfigurationError("concurrency", strconv.Itoa(concurrency), errors.New("must be at least 1"))
	}
	matcher, err := compileNameMatcher(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	d.logger.Debug().
		Int("buckets", len(buckets)).
		Int("concurrency", concurrency).
		Msg(">> run")

	queue := make(chan types.BucketRef)
	results := make(chan types.BucketResult, len(buckets))

	// Bucket failures are recorded in the results. A worker only reports
	// cancellation, once it has drained the queue.
	var g errgroup.Group
	for range min(concurrency, len(buckets)) {
		g.Go(func() error {
			for bucket := range queue {
				results <- d.collectOne(ctx, bucket, cfg, matcher)
			}
			return ctx.Err()
		})
	}

	for _, bucket := range buckets {
		queue <- bucket
	}
	close(queue)

	interrupted := g.Wait()
	close(results)

	run := make(types.RunResult, 0, len(buckets))
	failed := 0
	for result := range results {
		if result.Failed() {
			failed++
		}
		run = append(run, result)
	}

	if interrupted != nil {
		d.logger.Warn().
			Err(interrupted).
			Int("failed", failed).
			Msg("run interrupted")
	}

	d.logger.Debug().
		Int("succeeded", len(run)-failed).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("<< run")

	return run, nil
}

func (d *Dispatcher) collectOne(ctx context.Context, bucket types.BucketRef, cfg types.CollectConfig, matcher *Matcher) types.BucketResult {
	d.metrics.BucketStarted()
	start := time.Now()

	agg, err := d.collector.collect(ctx, bucket, cfg, matcher)

	d.metrics.BucketFinished(err != nil, time.Since(start))
	if err != nil {
		d.logger.Warn().Err(err).Str("bucket", bucket.Name).Msg("bucket collection failed")
		return types.BucketResult{Bucket: bucket.Name, Err: err}
	}
	return types.BucketResult{Bucket: bucket.Name, Aggregate: agg}
}

// Succeeded returns the aggregates of the successful buckets sorted by name
func Succeeded(run types.RunResult) []*types.BucketAggregate {
	var aggs []*types.BucketAggregate
	for _, result := range run {
		if !result.Failed() {
			aggs = append(aggs, result.Aggregate)
		}
	}
	sortByName(aggs)
	return aggs
}

// Failed returns the failed results sorted by bucket name
func Failed(run types.RunResult) []types.BucketResult {
	var failures []types.BucketResult
	for _, result := range run {
		if result.Failed() {
			failures = append(failures, result)
		}
	}
	sortResults(failures)
	return failures
}
