// Package storage archives uploaded résumé files in an S3-compatible bucket
// (AWS S3 or Cloudflare R2).
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jonathan/resume-analyzer/internal/config"
)

// Archive stores objects by key.
type Archive interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// NopArchive discards everything. It is used when no bucket is configured.
type NopArchive struct{}

// Put implements Archive.
func (NopArchive) Put(context.Context, string, string, []byte) error { return nil }

// ObjectPutter is the subset of *s3.Client used by S3Archive.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive writes objects to one bucket.
type S3Archive struct {
	client ObjectPutter
	bucket string
}

// NewS3Archive wraps an existing client.
func NewS3Archive(client ObjectPutter, bucket string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket}
}

// New returns an S3Archive for cfg, or NopArchive when cfg has no bucket.
func New(ctx context.Context, cfg config.S3Config) (Archive, error) {
	if !cfg.Enabled() {
		return NopArchive{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Archive(client, cfg.Bucket), nil
}

// Put implements Archive.
func (a *S3Archive) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	return nil
}
