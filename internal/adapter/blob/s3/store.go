// Package s3 signs time-limited download URLs for objects in S3 or an
// S3-compatible store.
package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital-delivery-gateway/config"
	"digital-delivery-gateway/internal/core/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// MaxPresignTTL is the longest lifetime SigV4 allows for a presigned URL.
const MaxPresignTTL = config.MaxSignedURLTTL

// BlobStore implements ports.BlobStore. Credentials arrive per call because
// self-hosting merchants sign against their own buckets.
type BlobStore struct {
	log zerolog.Logger
}

// NewBlobStore creates a new BlobStore.
func NewBlobStore(log zerolog.Logger) *BlobStore {
	return &BlobStore{log: log}
}

// SignedURL presigns a GET for key. Signing is local; no request is sent.
func (s *BlobStore) SignedURL(ctx context.Context, creds domain.StorageCredentials, key string, ttl time.Duration) (string, error) {
	if !creds.Complete() {
		return "", errors.New("incomplete storage credentials")
	}
	if key == "" {
		return "", errors.New("object key is empty")
	}
	if ttl <= 0 || ttl > MaxPresignTTL {
		return "", fmt.Errorf("presign ttl %s out of range", ttl)
	}

	presigner := awss3.NewPresignClient(newClient(creds))
	req, err := presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(creds.Bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", creds.Bucket, key, err)
	}

	s.log.Debug().Str("bucket", creds.Bucket).Str("key", key).Dur("ttl", ttl).Msg("object url signed")
	return req.URL, nil
}

func newClient(creds domain.StorageCredentials) *awss3.Client {
	opts := awss3.Options{
		Region:       creds.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		UsePathStyle: creds.UsePathStyle,
	}
	if creds.Endpoint != "" {
		opts.BaseEndpoint = aws.String(creds.Endpoint)
	}
	return awss3.New(opts)
}
