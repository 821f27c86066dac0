package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"resume-builder/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// Options selects the bucket and, for S3-compatible services such as R2 or
// MinIO, an endpoint and static credentials. Empty fields fall back to the
// SDK's default configuration chain.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type blobStore struct {
	s3Client *s3.Client
	bucket   string // Name of the S3 bucket
}

func NewBlobStore(ctx context.Context, opts Options) (core.BlobStore, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &blobStore{
		s3Client: s3Client,
		bucket:   opts.Bucket,
	}, nil
}

func (s *blobStore) Get(ctx context.Context, key string) (*core.Blob, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("blob with key %s: %w", key, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get blob with key %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob data: %w", err)
	}

	blob := &core.Blob{Data: data}
	if resp.LastModified != nil {
		blob.UpdatedAt = resp.LastModified.UTC()
	}
	return blob, nil
}

func (s *blobStore) Put(ctx context.Context, key string, blob *core.Blob) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(blob.Data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"blob_key":    key,
		"bucket":      s.bucket,
		"data_length": len(blob.Data),
	}).Debug("Blob uploaded")
	return nil
}
