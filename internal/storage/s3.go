package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Config selects the bucket.
type S3Config struct {
	Region string
	Bucket string
	// PublicURL overrides the default https://<bucket>.s3.amazonaws.com base.
	PublicURL string
}

// S3Store keeps objects in an S3 bucket.
type S3Store struct {
	client  s3iface.S3API
	bucket  string
	baseURL string
}

// NewS3Store builds a store from the default AWS credential chain.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return newS3Store(s3.New(sess), cfg), nil
}

func newS3Store(client s3iface.S3API, cfg S3Config) *S3Store {
	base := cfg.PublicURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}
	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: base}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	data, err := readAll(body, size)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3 object %s: %w", key, err)
	}
	return publicURL(s.baseURL, key), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3 object %s: %w", key, err)
	}
	return nil
}
