package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/spec-kit/job-board/internal/config"
)

// Uploader stores image bytes and returns a publicly reachable URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// S3Uploader pushes logo images to an S3-compatible bucket (AWS or MinIO).
type S3Uploader struct {
	client *s3.Client
	cfg    config.StorageConfig
}

// NewS3Uploader builds the client from static credentials.
func NewS3Uploader(ctx context.Context, cfg config.StorageConfig) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Uploader{client: client, cfg: cfg}, nil
}

// Upload writes the object under a date-partitioned random key and returns
// its public URL.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	key := randomObjectKey()

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(u.cfg.PublicBaseURL, "/"), key)
	}
	if u.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.cfg.Endpoint, "/"), u.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

func randomObjectKey() string {
	d := time.Now()
	return fmt.Sprintf("logos/%d/%02d/%02d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
