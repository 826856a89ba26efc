package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrDisabled is returned when media storage is not configured.
var ErrDisabled = errors.New("media storage not configured")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Media stores report and gallery photos in an S3-compatible bucket. With no
// credentials configured every operation returns ErrDisabled and photo uploads
// are simply skipped.
type Media struct {
	client s3Client
	bucket string
}

func NewMedia(cfg Config) *Media {
	m := &Media{bucket: cfg.Bucket}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		m.client = newS3Client(cfg)
	}
	return m
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether uploads can be accepted.
func (m *Media) Enabled() bool {
	return m.client != nil
}

// NewKey returns a fresh object key under the given prefix, keeping the
// original file extension so content type survives a round trip.
func NewKey(prefix, filename string) string {
	return prefix + "/" + uuid.NewString() + path.Ext(filename)
}

// Upload stores one object and returns its key unchanged.
func (m *Media) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if m.client == nil {
		return ErrDisabled
	}

	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Download streams one object. The caller closes the reader.
func (m *Media) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if m.client == nil {
		return nil, "", ErrDisabled
	}

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", key, err)
	}

	contentType := ""
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

// Delete removes one object. Missing objects are not an error.
func (m *Media) Delete(ctx context.Context, key string) error {
	if m.client == nil {
		return ErrDisabled
	}

	if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
