package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API defines the S3 operations used to inventory buckets.
// It allows the SDK client to be replaced in tests.
type S3API interface {
	// ListBuckets lists the buckets owned by the caller
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)

	// ListObjectsV2 lists the current objects of a bucket
	ListObjectsV2(
		ctx context.Context,
		params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)

	// ListObjectVersions lists every version of the objects of a bucket
	ListObjectVersions(
		ctx context.Context,
		params *s3.ListObjectVersionsInput,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectVersionsOutput, error)

	// HeadObject retrieves object metadata, including server side encryption
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)

	GetBucketLocation(
		ctx context.Context,
		params *s3.GetBucketLocationInput,
		optFns ...func(*s3.Options),
	) (*s3.GetBucketLocationOutput, error)

	GetBucketLifecycleConfiguration(
		ctx context.Context,
		params *s3.GetBucketLifecycleConfigurationInput,
		optFns ...func(*s3.Options),
	) (*s3.GetBucketLifecycleConfigurationOutput, error)

	GetBucketLogging(
		ctx context.Context,
		params *s3.GetBucketLoggingInput,
		optFns ...func(*s3.Options),
	) (*s3.GetBucketLoggingOutput, error)

	GetBucketTagging(
		ctx context.Context,
		params *s3.GetBucketTaggingInput,
		optFns ...func(*s3.Options),
	) (*s3.GetBucketTaggingOutput, error)

	GetBucketVersioning(
		ctx context.Context,
		params *s3.GetBucketVersioningInput,
		optFns ...func(*s3.Options),
	) (*s3.GetBucketVersioningOutput, error)
}

// Verify that the AWS S3 client implements our interface
var _ S3API = (*s3.Client)(nil)
