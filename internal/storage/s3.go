// Package storage provides S3-compatible object storage for proof evidence.
// Works with AWS S3 and MinIO; clients upload and download evidence directly
// via presigned URLs, the API never proxies the bytes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	appcfg "strive/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const (
	uploadExpiry   = 15 * time.Minute
	downloadExpiry = 1 * time.Hour
)

// EvidenceStore issues presigned upload and download URLs for proof objects.
type EvidenceStore interface {
	NewObjectKey(goalID uint, filename string) string
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

// S3Store implements EvidenceStore against any S3-compatible backend.
type S3Store struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
}

// New creates an S3Store from the application config.
func New(ctx context.Context, c *appcfg.Config) (*S3Store, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(c.StorageRegion))

	if c.StorageAccessKey != "" && c.StorageSecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.StorageAccessKey, c.StorageSecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if c.StorageEndpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.StorageEndpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	store := &S3Store{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        c.StorageBucket,
	}

	if err := store.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return store, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return err
	}
	return nil
}

// NewObjectKey returns a collision-free object key for a new evidence
// upload, preserving the original file extension.
func (s *S3Store) NewObjectKey(goalID uint, filename string) string {
	return fmt.Sprintf("goals/%d/%s%s", goalID, uuid.NewString(), path.Ext(filename))
}

// PresignUpload returns a short-lived URL the client PUTs the evidence to.
func (s *S3Store) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload failed: %w", err)
	}
	return req.URL, nil
}

// PresignDownload returns a short-lived URL for viewing the evidence.
func (s *S3Store) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(downloadExpiry))
	if err != nil {
		return "", fmt.Errorf("presign download failed: %w", err)
	}
	return req.URL, nil
}
