package aws

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/yourusername/s3stats/types"
)

// Client wraps the AWS S3 client with configuration
type Client struct {
	S3     S3API
	Config aws.Config

	// HeadObjects resolves the encryption state of every listed object with
	// HeadObject. Listing APIs do not report server side encryption.
	HeadObjects bool

	regions sync.Map
}

// NewClient creates a new AWS S3 client with the specified profile and region.
// Extra load options (logger, log mode) are applied after profile and region.
func NewClient(ctx context.Context, profile, region string, optFns ...func(*config.LoadOptions) error) (*Client, error) {
	var opts []func(*config.LoadOptions) error

	// Add profile if specified
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	// Add region if specified
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	opts = append(opts, optFns...)

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		S3:     s3.NewFromConfig(cfg),
		Config: cfg,
	}, nil
}

// NewWithClient creates a Client around an existing S3 implementation
func NewWithClient(s3Client S3API) *Client {
	return &Client{S3: s3Client}
}

// ListBuckets returns every bucket accessible to the caller
func (c *Client) ListBuckets(ctx context.Context) ([]types.BucketRef, error) {
	var buckets []types.BucketRef
	var continuationToken *string

	for {
		result, err := c.S3.ListBuckets(ctx, &s3.ListBucketsInput{
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, err
		}

		for _, bucket := range result.Buckets {
			buckets = append(buckets, types.BucketRef{
				Name:         aws.ToString(bucket.Name),
				CreationDate: aws.ToTime(bucket.CreationDate),
			})
		}

		if aws.ToString(result.ContinuationToken) == "" {
			break
		}
		continuationToken = result.ContinuationToken
	}

	return buckets, nil
}

// GetBucketRegion retrieves the signing region for a specific bucket.
// Results are cached for the lifetime of the client.
func (c *Client) GetBucketRegion(ctx context.Context, bucketName string) (string, error) {
	if region, ok := c.regions.Load(bucketName); ok {
		return region.(string), nil
	}

	constraint, err := c.GetBucketLocation(ctx, bucketName)
	if err != nil {
		return "", err
	}

	region := regionFromConstraint(constraint)
	c.regions.Store(bucketName, region)
	return region, nil
}

// regionFromConstraint maps a location constraint to a region name
func regionFromConstraint(constraint string) string {
	switch constraint {
	case "":
		// Handle empty region (means us-east-1)
		return "us-east-1"
	case "EU":
		return "eu-west-1"
	default:
		return constraint
	}
}

// inRegion returns the per-call options addressing the bucket's own region.
// When the region cannot be determined the client region is used.
func (c *Client) inRegion(ctx context.Context, bucketName string) []func(*s3.Options) {
	region, err := c.GetBucketRegion(ctx, bucketName)
	if err != nil || region == "" {
		return nil
	}
	return []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = region
		},
	}
}
