// Package s3 implements storage.FileStore against an S3-compatible object
// store (AWS S3 or MinIO with a custom endpoint).
package s3

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/xid"

	"github.com/sakif/geodata-manager/internal/storage"
)

var _ storage.FileStore = (*Store)(nil)

// Config holds the connection settings for the object store. With MinIO,
// AccessKey/SecretKey are the root user and password and BaseEndpoint is
// the server URL; with AWS, BaseEndpoint stays empty.
type Config struct {
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// Store uploads objects into a single bucket. Object keys are
// "<xid>_<originalName>", matching the disk backend's naming so
// storage.KeyFromURL works identically for both.
type Store struct {
	client *s3.Client
	cfg    Config
}

// New builds an S3 client with static credentials and, when configured,
// a custom base endpoint with path-style addressing (MinIO).
func New(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3: loading config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{client: client, cfg: cfg}, nil
}

// Save uploads the bytes and returns the object URL.
func (s *Store) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	key := xid.New().String() + "_" + filepath.Base(originalName)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("s3: putting object %s: %w", key, err)
	}

	base := strings.TrimSuffix(s.cfg.BaseEndpoint, "/")
	return fmt.Sprintf("%s/%s/%s", base, s.cfg.Bucket, key), nil
}

// Delete removes the object matching key. The key has no extension (see
// storage.KeyFromURL), so the bucket is listed by prefix and each hit is
// deleted. A key that matches nothing is an error, per the FileStore
// contract.
func (s *Store) Delete(ctx context.Context, key string) error {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(key + "."),
	})
	if err != nil {
		return fmt.Errorf("s3: listing objects for key %s: %w", key, err)
	}
	if len(out.Contents) == 0 {
		return fmt.Errorf("s3: no stored object for key %s", key)
	}

	for _, obj := range out.Contents {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    obj.Key,
		})
		if err != nil {
			return fmt.Errorf("s3: deleting object %s: %w", aws.ToString(obj.Key), err)
		}
	}
	return nil
}
