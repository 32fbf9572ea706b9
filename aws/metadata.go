package aws

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/yourusername/s3stats/types"
)

// S3 error codes meaning "not configured" rather than failure
const (
	codeNoSuchLifecycle = "NoSuchLifecycleConfiguration"
	codeNoSuchTagSet    = "NoSuchTagSet"
)

// GetBucketLocation returns the raw location constraint of the bucket.
// An empty string means the default region.
func (c *Client) GetBucketLocation(ctx context.Context, bucketName string) (string, error) {
	result, err := c.S3.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		return "", err
	}
	return string(result.LocationConstraint), nil
}

// GetBucketLifecycle returns the lifecycle rules keyed by rule id, or nil
// when the bucket has no lifecycle configuration.
func (c *Client) GetBucketLifecycle(ctx context.Context, bucketName string) (map[string]types.LifecycleRule, error) {
	result, err := c.S3.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(bucketName),
	}, c.inRegion(ctx, bucketName)...)
	if err != nil {
		if hasErrorCode(err, codeNoSuchLifecycle) {
			return nil, nil
		}
		return nil, err
	}

	rules := make(map[string]types.LifecycleRule, len(result.Rules))
	for i, rule := range result.Rules {
		converted := lifecycleRule(rule)
		if converted.ID == "" {
			converted.ID = fmt.Sprintf("rule-%d", i)
		}
		rules[converted.ID] = converted
	}
	return rules, nil
}

func lifecycleRule(rule s3types.LifecycleRule) types.LifecycleRule {
	converted := types.LifecycleRule{
		ID:     aws.ToString(rule.ID),
		Prefix: aws.ToString(rule.Prefix), //nolint:staticcheck // still returned for rules without a filter
		Status: string(rule.Status),
	}

	if rule.Expiration != nil {
		converted.Expiration = types.Expiration{
			Date: rule.Expiration.Date,
			Days: rule.Expiration.Days,
		}
	}

	for _, transition := range rule.Transitions {
		converted.Transitions = append(converted.Transitions, types.Transition{
			Date:         transition.Date,
			Days:         transition.Days,
			StorageClass: string(transition.StorageClass),
		})
	}

	return converted
}

// GetBucketLogging returns the access logging configuration; it is empty when logging is disabled
func (c *Client) GetBucketLogging(ctx context.Context, bucketName string) (types.LoggingStatus, error) {
	result, err := c.S3.GetBucketLogging(ctx, &s3.GetBucketLoggingInput{
		Bucket: aws.String(bucketName),
	}, c.inRegion(ctx, bucketName)...)
	if err != nil {
		return types.LoggingStatus{}, err
	}

	status := types.LoggingStatus{Grants: []types.Grant{}}
	if result.LoggingEnabled == nil {
		return status, nil
	}

	status.Target = aws.ToString(result.LoggingEnabled.TargetBucket)
	status.Prefix = aws.ToString(result.LoggingEnabled.TargetPrefix)
	for _, grant := range result.LoggingEnabled.TargetGrants {
		status.Grants = append(status.Grants, types.Grant{
			Grantee:    granteeName(grant.Grantee),
			Permission: string(grant.Permission),
		})
	}
	return status, nil
}

func granteeName(grantee *s3types.Grantee) string {
	if grantee == nil {
		return ""
	}
	for _, name := range []*string{grantee.ID, grantee.EmailAddress, grantee.URI, grantee.DisplayName} {
		if aws.ToString(name) != "" {
			return aws.ToString(name)
		}
	}
	return ""
}

// GetBucketTags returns the bucket tags. A bucket without tags yields an empty map.
func (c *Client) GetBucketTags(ctx context.Context, bucketName string) (map[string]string, error) {
	result, err := c.S3.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{
		Bucket: aws.String(bucketName),
	}, c.inRegion(ctx, bucketName)...)
	if err != nil {
		if hasErrorCode(err, codeNoSuchTagSet) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	tags := make(map[string]string, len(result.TagSet))
	for _, tag := range result.TagSet {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return tags, nil
}

// GetBucketVersioning returns the versioning status; empty when versioning was never enabled
func (c *Client) GetBucketVersioning(ctx context.Context, bucketName string) (string, error) {
	result, err := c.S3.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{
		Bucket: aws.String(bucketName),
	}, c.inRegion(ctx, bucketName)...)
	if err != nil {
		return "", err
	}
	return string(result.Status), nil
}

// hasErrorCode checks if err carries one of the given S3 API error codes
func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return slices.Contains(codes, apiErr.ErrorCode())
	}
	return false
}
