/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectVersion identifies one object version or delete marker in a bucket
type ObjectVersion struct {
	Key       string
	VersionID string
}

// ObjectVersionPage is one page of versions and delete markers
type ObjectVersionPage struct {
	Objects           []ObjectVersion
	NextKeyMarker     string
	NextVersionMarker string
	Truncated         bool
}

// maxDeleteBatch is the S3 DeleteObjects request limit
const maxDeleteBatch = 1000

// DefaultS3Operations provides S3-specific operations
type DefaultS3Operations struct {
	client S3Client
}

// NewS3OperationsWithClient creates operations with a custom client (for testing)
func NewS3OperationsWithClient(client S3Client) *DefaultS3Operations {
	return &DefaultS3Operations{client: client}
}

// BucketExists checks raw bucket existence. A definitive not-found signal
// returns (false, nil); other errors are returned for the caller to judge.
func (so *DefaultS3Operations) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	err := withReadRetry(ctx, "head bucket", func() error {
		_, err := so.client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(bucketName),
		})
		return err
	})
	if err != nil {
		if isAPIErrorCode(err, "NotFound", "NoSuchBucket") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	return true, nil
}

// ListProjectBuckets returns the names of buckets carrying a Project tag equal
// to projectTag. Buckets whose tags cannot be read are skipped, not fatal.
func (so *DefaultS3Operations) ListProjectBuckets(ctx context.Context, projectTag string) ([]string, error) {
	out, err := so.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	var matched []string
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)
		tagging, err := so.client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{
			Bucket: aws.String(name),
		})
		if err != nil {
			// Untagged buckets and buckets in other regions both error here.
			continue
		}
		for _, tag := range tagging.TagSet {
			if aws.ToString(tag.Key) == "Project" && aws.ToString(tag.Value) == projectTag {
				matched = append(matched, name)
				break
			}
		}
	}
	return matched, nil
}

// ListObjectVersionsPage returns one page of object versions and delete
// markers starting at the given markers.
func (so *DefaultS3Operations) ListObjectVersionsPage(ctx context.Context, bucketName, keyMarker, versionMarker string) (*ObjectVersionPage, error) {
	input := &s3.ListObjectVersionsInput{
		Bucket: aws.String(bucketName),
	}
	if keyMarker != "" {
		input.KeyMarker = aws.String(keyMarker)
	}
	if versionMarker != "" {
		input.VersionIdMarker = aws.String(versionMarker)
	}

	var out *s3.ListObjectVersionsOutput
	err := withReadRetry(ctx, "list object versions", func() error {
		var err error
		out, err = so.client.ListObjectVersions(ctx, input)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list versions in bucket %s: %w", bucketName, err)
	}

	page := &ObjectVersionPage{
		NextKeyMarker:     aws.ToString(out.NextKeyMarker),
		NextVersionMarker: aws.ToString(out.NextVersionIdMarker),
		Truncated:         aws.ToBool(out.IsTruncated),
	}
	for _, v := range out.Versions {
		page.Objects = append(page.Objects, ObjectVersion{
			Key:       aws.ToString(v.Key),
			VersionID: aws.ToString(v.VersionId),
		})
	}
	for _, m := range out.DeleteMarkers {
		page.Objects = append(page.Objects, ObjectVersion{
			Key:       aws.ToString(m.Key),
			VersionID: aws.ToString(m.VersionId),
		})
	}
	return page, nil
}

// DeleteObjectVersions removes the given object versions in batches of up to
// 1000 keys. Individual object failures are skipped; the count of deleted
// objects is returned.
func (so *DefaultS3Operations) DeleteObjectVersions(ctx context.Context, bucketName string, objects []ObjectVersion) (int, error) {
	deleted := 0
	for start := 0; start < len(objects); start += maxDeleteBatch {
		end := start + maxDeleteBatch
		if end > len(objects) {
			end = len(objects)
		}
		batch := objects[start:end]

		identifiers := make([]types.ObjectIdentifier, 0, len(batch))
		for _, o := range batch {
			id := types.ObjectIdentifier{Key: aws.String(o.Key)}
			if o.VersionID != "" {
				id.VersionId = aws.String(o.VersionID)
			}
			identifiers = append(identifiers, id)
		}

		out, err := so.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucketName),
			Delete: &types.Delete{
				Objects: identifiers,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete objects from bucket %s: %w", bucketName, err)
		}
		deleted += len(batch) - len(out.Errors)
	}
	return deleted, nil
}

// DeleteBucket removes a bucket, tolerating nonexistence
func (so *DefaultS3Operations) DeleteBucket(ctx context.Context, bucketName string) error {
	_, err := so.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if isAPIErrorCode(err, "NoSuchBucket", "NotFound") {
			return nil
		}
		return fmt.Errorf("failed to delete bucket %s: %w", bucketName, err)
	}
	return nil
}
