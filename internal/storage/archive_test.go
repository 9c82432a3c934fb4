package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (r *recordingPutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	r.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	r.body = body
	if r.err != nil {
		return nil, r.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Archive_Put(t *testing.T) {
	putter := &recordingPutter{}
	archive := NewS3Archive(putter, "resumes-bucket")

	err := archive.Put(context.Background(), "resumes/2026/10/abc.pdf", "application/pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)

	require.NotNil(t, putter.input)
	assert.Equal(t, "resumes-bucket", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "resumes/2026/10/abc.pdf", aws.ToString(putter.input.Key))
	assert.Equal(t, "application/pdf", aws.ToString(putter.input.ContentType))
	assert.Equal(t, int64(8), aws.ToInt64(putter.input.ContentLength))
	assert.Equal(t, []byte("%PDF-1.7"), putter.body)
}

func TestS3Archive_PutError(t *testing.T) {
	cause := errors.New("access denied")
	archive := NewS3Archive(&recordingPutter{err: cause}, "bucket")

	err := archive.Put(context.Background(), "k", "text/plain", []byte("x"))
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to archive k")
}

func TestNew(t *testing.T) {
	archive, err := New(context.Background(), config.S3Config{})
	require.NoError(t, err)
	assert.IsType(t, NopArchive{}, archive)
	assert.NoError(t, archive.Put(context.Background(), "k", "text/plain", nil))

	archive, err = New(context.Background(), config.S3Config{
		Bucket:    "bucket",
		Region:    "auto",
		Endpoint:  "https://account.r2.cloudflarestorage.com",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.IsType(t, &S3Archive{}, archive)
}
