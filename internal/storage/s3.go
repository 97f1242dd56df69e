// Package storage wraps the object store operations the executor
// needs. The store offers no transaction across copy and delete; the
// executor owns the partial-failure semantics.
package storage

import (
	"context"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sentinelops/macieguard/internal/model"
)

// ObjectStore is the minimal surface the executor uses. Both calls
// are idempotent-safe under external retry: Copy overwrites, Delete
// of an absent key succeeds.
type ObjectStore interface {
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	Delete(ctx context.Context, bucket, key string) error
}

// S3Store implements ObjectStore against S3.
type S3Store struct {
	client *s3.Client
}

// NewS3Store wraps an S3 client.
func NewS3Store(client *s3.Client) *S3Store {
	return &S3Store{client: client}
}

// Copy performs a server-side copy of src into dst.
func (s *S3Store) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	// CopySource is "bucket/key" with each path segment escaped but
	// slashes preserved.
	source := (&url.URL{Path: srcBucket + "/" + srcKey}).EscapedPath()

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(source),
	})
	if err != nil {
		return &model.TransientError{Op: "s3 copy", Err: err}
	}
	return nil
}

// Delete removes an object from its bucket.
func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &model.TransientError{Op: "s3 delete", Err: err}
	}
	return nil
}
