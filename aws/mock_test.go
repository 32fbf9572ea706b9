package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3Client implements S3API for testing
type mockS3Client struct {
	listBucketsFunc        func(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	listObjectsV2Func      func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	listObjectVersionsFunc func(ctx context.Context, params *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
	headObjectFunc         func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	getBucketLocationFunc  func(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
	getBucketLifecycleFunc func(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error)
	getBucketLoggingFunc   func(ctx context.Context, params *s3.GetBucketLoggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketLoggingOutput, error)
	getBucketTaggingFunc   func(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	getBucketVersionFunc   func(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error)
}

func (m *mockS3Client) ListBuckets(
	ctx context.Context,
	params *s3.ListBucketsInput,
	optFns ...func(*s3.Options),
) (*s3.ListBucketsOutput, error) {
	if m.listBucketsFunc != nil {
		return m.listBucketsFunc(ctx, params, optFns...)
	}
	return &s3.ListBucketsOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if m.listObjectsV2Func != nil {
		return m.listObjectsV2Func(ctx, params, optFns...)
	}
	return &s3.ListObjectsV2Output{}, nil
}

func (m *mockS3Client) ListObjectVersions(
	ctx context.Context,
	params *s3.ListObjectVersionsInput,
	optFns ...func(*s3.Options),
) (*s3.ListObjectVersionsOutput, error) {
	if m.listObjectVersionsFunc != nil {
		return m.listObjectVersionsFunc(ctx, params, optFns...)
	}
	return &s3.ListObjectVersionsOutput{}, nil
}

func (m *mockS3Client) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	if m.headObjectFunc != nil {
		return m.headObjectFunc(ctx, params, optFns...)
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockS3Client) GetBucketLocation(
	ctx context.Context,
	params *s3.GetBucketLocationInput,
	optFns ...func(*s3.Options),
) (*s3.GetBucketLocationOutput, error) {
	if m.getBucketLocationFunc != nil {
		return m.getBucketLocationFunc(ctx, params, optFns...)
	}
	return &s3.GetBucketLocationOutput{}, nil
}

func (m *mockS3Client) GetBucketLifecycleConfiguration(
	ctx context.Context,
	params *s3.GetBucketLifecycleConfigurationInput,
	optFns ...func(*s3.Options),
) (*s3.GetBucketLifecycleConfigurationOutput, error) {
	if m.getBucketLifecycleFunc != nil {
		return m.getBucketLifecycleFunc(ctx, params, optFns...)
	}
	return &s3.GetBucketLifecycleConfigurationOutput{}, nil
}

func (m *mockS3Client) GetBucketLogging(
	ctx context.Context,
	params *s3.GetBucketLoggingInput,
	optFns ...func(*s3.Options),
) (*s3.GetBucketLoggingOutput, error) {
	if m.getBucketLoggingFunc != nil {
		return m.getBucketLoggingFunc(ctx, params, optFns...)
	}
	return &s3.GetBucketLoggingOutput{}, nil
}

func (m *mockS3Client) GetBucketTagging(
	ctx context.Context,
	params *s3.GetBucketTaggingInput,
	optFns ...func(*s3.Options),
) (*s3.GetBucketTaggingOutput, error) {
	if m.getBucketTaggingFunc != nil {
		return m.getBucketTaggingFunc(ctx, params, optFns...)
	}
	return &s3.GetBucketTaggingOutput{}, nil
}

func (m *mockS3Client) GetBucketVersioning(
	ctx context.Context,
	params *s3.GetBucketVersioningInput,
	optFns ...func(*s3.Options),
) (*s3.GetBucketVersioningOutput, error) {
	if m.getBucketVersionFunc != nil {
		return m.getBucketVersionFunc(ctx, params, optFns...)
	}
	return &s3.GetBucketVersioningOutput{}, nil
}

var _ S3API = (*mockS3Client)(nil)

// appliedRegion runs the per-call options against empty client options
func appliedRegion(optFns []func(*s3.Options)) string {
	var o s3.Options
	for _, fn := range optFns {
		fn(&o)
	}
	return o.Region
}
