package profiler

import (
	"errors"
	"fmt"
)

// Operations reported in a BucketAccessError
const (
	OpList       = "list"
	OpLocation   = "location"
	OpLogging    = "logging"
	OpTagging    = "tagging"
	OpVersioning = "versioning"
)

var (
	// ErrDetailUnavailable marks bucket metadata that could not be fetched and is omitted
	ErrDetailUnavailable = errors.New("s3stats: bucket detail unavailable")

	// ErrPartialRun indicates that at least one bucket could not be collected
	ErrPartialRun = errors.New("s3stats: some buckets could not be collected")
)

// ConfigurationError reports invalid settings detected before any bucket is touched
type ConfigurationError struct {
	// Field is the setting at fault (e.g. "filter", "threads")
	Field string

	// Value is the offending value as supplied
	Value string

	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a ConfigurationError for the given field
func NewConfigurationError(field, value string, err error) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Err: err}
}

// IsConfigurationError checks if err is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// BucketAccessError reports that a single bucket could not be collected
type BucketAccessError struct {
	Bucket string

	// Op is the storage operation that failed (list, location, logging, ...)
	Op string

	Err error
}

func (e *BucketAccessError) Error() string {
	return fmt.Sprintf("s3stats.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *BucketAccessError) Unwrap() error {
	return e.Err
}

// NewBucketAccessError creates a BucketAccessError
func NewBucketAccessError(op, bucket string, err error) *BucketAccessError {
	return &BucketAccessError{Op: op, Bucket: bucket, Err: err}
}
