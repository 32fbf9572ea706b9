package aws

import (
	"context"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/yourusername/s3stats/types"
)

// ListObjects lazily enumerates the objects under prefix. With allVersions
// every stored version is yielded and delete markers are skipped. Pages are
// fetched as the sequence is consumed; the first error ends it.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string, allVersions bool) iter.Seq2[types.ObjectRecord, error] {
	if allVersions {
		return c.listVersions(ctx, bucket, prefix)
	}
	return c.listCurrent(ctx, bucket, prefix)
}

func (c *Client) listCurrent(ctx context.Context, bucket, prefix string) iter.Seq2[types.ObjectRecord, error] {
	return func(yield func(types.ObjectRecord, error) bool) {
		optFns := c.inRegion(ctx, bucket)
		paginator := s3.NewListObjectsV2Paginator(c.S3, &s3.ListObjectsV2Input{
			Bucket: aws.String(bucket),
			Prefix: aws.String(prefix),
		})

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx, optFns...)
			if err != nil {
				yield(types.ObjectRecord{}, err)
				return
			}

			for _, obj := range page.Contents {
				record := types.ObjectRecord{
					Key:          aws.ToString(obj.Key),
					Size:         aws.ToInt64(obj.Size),
					StorageClass: storageClass(string(obj.StorageClass)),
					LastModified: aws.ToTime(obj.LastModified),
				}
				if err := c.resolveEncryption(ctx, bucket, &record, optFns); err != nil {
					yield(types.ObjectRecord{}, err)
					return
				}
				if !yield(record, nil) {
					return
				}
			}
		}
	}
}

func (c *Client) listVersions(ctx context.Context, bucket, prefix string) iter.Seq2[types.ObjectRecord, error] {
	return func(yield func(types.ObjectRecord, error) bool) {
		optFns := c.inRegion(ctx, bucket)
		var keyMarker, versionIDMarker *string

		for {
			result, err := c.S3.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{
				Bucket:          aws.String(bucket),
				Prefix:          aws.String(prefix),
				KeyMarker:       keyMarker,
				VersionIdMarker: versionIDMarker,
			}, optFns...)
			if err != nil {
				yield(types.ObjectRecord{}, err)
				return
			}

			for _, version := range result.Versions {
				record := types.ObjectRecord{
					Key:          aws.ToString(version.Key),
					VersionID:    aws.ToString(version.VersionId),
					Size:         aws.ToInt64(version.Size),
					StorageClass: storageClass(string(version.StorageClass)),
					LastModified: aws.ToTime(version.LastModified),
				}
				if err := c.resolveEncryption(ctx, bucket, &record, optFns); err != nil {
					yield(types.ObjectRecord{}, err)
					return
				}
				if !yield(record, nil) {
					return
				}
			}

			// Check if there are more results
			if !aws.ToBool(result.IsTruncated) {
				return
			}
			keyMarker = result.NextKeyMarker
			versionIDMarker = result.NextVersionIdMarker
		}
	}
}

// resolveEncryption fills the encryption state of record when HeadObjects is enabled
func (c *Client) resolveEncryption(ctx context.Context, bucket string, record *types.ObjectRecord, optFns []func(*s3.Options)) error {
	if !c.HeadObjects {
		return nil
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.Key),
	}
	if record.VersionID != "" {
		input.VersionId = aws.String(record.VersionID)
	}

	head, err := c.S3.HeadObject(ctx, input, optFns...)
	if err != nil {
		return err
	}

	record.SSEAlgorithm = string(head.ServerSideEncryption)
	record.Encrypted = record.SSEAlgorithm != ""
	return nil
}

func storageClass(class string) string {
	if class == "" {
		return types.DefaultStorageClass
	}
	return class
}
