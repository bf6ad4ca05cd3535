package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ezcal-dev/ezcal/internal/config"
	"github.com/google/uuid"
)

// S3Store uploads blobs to an S3 bucket. A custom endpoint switches the
// client to path-style addressing for MinIO-style deployments.
type S3Store struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

func NewS3Store(cfg *config.Config) *S3Store {
	options := s3.Options{
		Region: cfg.AWSRegion,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		),
	}

	if cfg.AWSEndpointURL != "" {
		options.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		options.UsePathStyle = true
	}

	return &S3Store{
		client:   s3.New(options),
		bucket:   cfg.AWSBucket,
		region:   cfg.AWSRegion,
		endpoint: cfg.AWSEndpointURL,
	}
}

func (s *S3Store) Upload(ctx context.Context, data []byte, contentType string, ownerID uuid.UUID, filename string) (string, error) {
	key := blobName("schedules/"+ownerID.String()+"/", filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})

	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key), nil
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key := s.keyFromURL(url)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return fmt.Errorf("delete from s3: %w", err)
	}

	return nil
}

func (s *S3Store) keyFromURL(url string) string {
	if s.endpoint != "" {
		return strings.TrimPrefix(url, s.endpoint+"/"+s.bucket+"/")
	}

	if idx := strings.Index(url, ".amazonaws.com/"); idx != -1 {
		return url[idx+len(".amazonaws.com/"):]
	}

	return url
}
