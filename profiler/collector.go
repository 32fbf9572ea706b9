package profiler

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/rs/zerolog"
	"github.com/yourusername/s3stats/metrics"
	"github.com/yourusername/s3stats/types"
)

// ObjectLister enumerates the objects of a bucket, optionally including every
// historical version. The sequence stops at the first error it yields.
type ObjectLister interface {
	ListObjects(ctx context.Context, bucket, prefix string, allVersions bool) iter.Seq2[types.ObjectRecord, error]
}

// MetadataFetcher fetches bucket-level metadata. Each field is fetched, and may fail, independently.
type MetadataFetcher interface {
	GetBucketLocation(ctx context.Context, bucket string) (string, error)
	GetBucketLifecycle(ctx context.Context, bucket string) (map[string]types.LifecycleRule, error)
	GetBucketLogging(ctx context.Context, bucket string) (types.LoggingStatus, error)
	GetBucketTags(ctx context.Context, bucket string) (map[string]string, error)
	GetBucketVersioning(ctx context.Context, bucket string) (string, error)
}

// Storage is everything the collector needs from the object store
type Storage interface {
	ObjectLister
	MetadataFetcher
}

type options struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Collector or Dispatcher
type Option func(*options)

// WithLogger sets the logger used for boundary tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records run metrics into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Collector gathers the statistics of a single bucket. It keeps no per-call
// state and is safe for concurrent use.
type Collector struct {
	storage Storage
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewCollector creates a new bucket collector
func NewCollector(storage Storage, opts ...Option) *Collector {
	o := newOptions(opts)
	return &Collector{
		storage: storage,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Collect enumerates the bucket and folds every object whose name matches the
// configured pattern into a new aggregate. An empty pattern matches every
// object. Either a complete aggregate or an error is returned, never both.
func (c *Collector) Collect(ctx context.Context, bucket types.BucketRef, cfg types.CollectConfig) (*types.BucketAggregate, error) {
	matcher, err := compileNameMatcher(cfg)
	if err != nil {
		return nil, err
	}
	return c.collect(ctx, bucket, cfg, matcher)
}

func compileNameMatcher(cfg types.CollectConfig) (*Matcher, error) {
	if cfg.NamePattern == "" {
		return NewMatcher("*", false)
	}
	return NewMatcher(cfg.NamePattern, cfg.NameIsRegex)
}

func (c *Collector) collect(ctx context.Context, bucket types.BucketRef, cfg types.CollectConfig, matcher *Matcher) (*types.BucketAggregate, error) {
	start := time.Now()
	log := c.logger.With().Str("bucket", bucket.Name).Logger()
	log.Debug().
		Str("prefix", cfg.Prefix).
		Bool("versions", cfg.IncludeAllVersions).
		Bool("detail", cfg.IncludeDetail).
		Str("filter", matcher.String()).
		Msg(">> collect")

	agg := types.NewBucketAggregate(bucket)

	if cfg.IncludeDetail {
		detail, err := c.fetchDetail(ctx, bucket.Name)
		if err != nil {
			log.Debug().Err(err).Msg("<< collect")
			return nil, err
		}
		agg.Detail = detail
	}

	for obj, err := range c.storage.ListObjects(ctx, bucket.Name, cfg.Prefix, cfg.IncludeAllVersions) {
		if err != nil {
			log.Debug().Err(err).Msg("<< collect")
			return nil, NewBucketAccessError(OpList, bucket.Name, err)
		}
		c.metrics.ObjectScanned()

		if !matcher.Match(obj.Key) {
			continue
		}
		agg.Observe(obj)
		c.metrics.ObjectMatched(obj.Size)
	}

	// A listing cut short by cancellation must not pass for a complete one
	if err := ctx.Err(); err != nil {
		log.Debug().Err(err).Msg("<< collect")
		return nil, NewBucketAccessError(OpList, bucket.Name, err)
	}

	elapsed := time.Since(start)
	log.Info().Msgf("[%s] listed in %.3f seconds", bucket.Name, elapsed.Seconds())
	log.Debug().
		Int64("objects", agg.TotalObjects).
		Int64("bytes", agg.TotalSize).
		Dur("elapsed", elapsed).
		Msg("<< collect")

	return agg, nil
}

// fetchDetail retrieves the bucket metadata block. Lifecycle is best effort:
// when it cannot be fetched the field is left out. Any other failure fails the bucket.
func (c *Collector) fetchDetail(ctx context.Context, bucket string) (*types.BucketDetail, error) {
	detail := &types.BucketDetail{}

	lifecycle, err := c.storage.GetBucketLifecycle(ctx, bucket)
	if err != nil {
		c.logger.Debug().
			Str("bucket", bucket).
			Err(fmt.Errorf("%w: lifecycle: %w", ErrDetailUnavailable, err)).
			Msg("omitting lifecycle")
	} else {
		detail.Lifecycle = lifecycle
	}

	location, err := c.storage.GetBucketLocation(ctx, bucket)
	if err != nil {
		return nil, NewBucketAccessError(OpLocation, bucket, err)
	}
	if location == "" {
		location = types.DefaultLocation
	}
	detail.Location = location

	logging, err := c.storage.GetBucketLogging(ctx, bucket)
	if err != nil {
		return nil, NewBucketAccessError(OpLogging, bucket, err)
	}
	detail.Logging = logging

	tags, err := c.storage.GetBucketTags(ctx, bucket)
	if err != nil {
		return nil, NewBucketAccessError(OpTagging, bucket, err)
	}
	if tags == nil {
		tags = map[string]string{}
	}
	detail.Tags = tags

	versioning, err := c.storage.GetBucketVersioning(ctx, bucket)
	if err != nil {
		return nil, NewBucketAccessError(OpVersioning, bucket, err)
	}
	detail.Versioning = versioning

	return detail, nil
}
