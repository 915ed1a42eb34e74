package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/logging"
)

// S3Config configures the S3-compatible backend (AWS, MinIO, ...).
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// s3API is the slice of the S3 client the store uses; a seam for tests.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps blobs in an S3-compatible bucket. Unlike the HTTP store the
// backend does not mint content-addressed ids, so the store derives a unique
// storage key per upload and returns it as the blob id.
type S3Store struct {
	api    s3API
	bucket string
	log    logging.Logger
}

func NewS3Store(ctx context.Context, cfg S3Config, log logging.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("blobstore: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{api: client, bucket: cfg.Bucket, log: log}, nil
}

func storageKey() string {
	d := time.Now()
	return fmt.Sprintf("blobs/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.NewString())
}

func (s *S3Store) Put(ctx context.Context, data []byte, opts PutOptions) (string, error) {
	key := storageKey()
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return "", &errx.NetworkError{Msg: "s3 blob upload failed", Cause: err}
	}
	return key, nil
}

func (s *S3Store) Get(ctx context.Context, blobID string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobID),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, &errx.NetworkError{Msg: "blob not found", StatusCode: 404, Cause: err}
		}
		return nil, &errx.NetworkError{Msg: "s3 blob fetch failed", Cause: err}
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &errx.NetworkError{Msg: "read s3 blob body", Cause: err}
	}
	return data, nil
}

// GetByObjectID has no ledger-object mapping on S3; the storage key is the
// only handle.
func (s *S3Store) GetByObjectID(ctx context.Context, objectID string) ([]byte, error) {
	return s.Get(ctx, objectID)
}

func (s *S3Store) Delete(ctx context.Context, blobID string) error {
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobID),
	}); err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil
		}
		return &errx.NetworkError{Msg: "s3 blob delete failed", Cause: err}
	}
	return nil
}
