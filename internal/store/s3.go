package store

import (
	"bytes"
	"context"
	"io"
	"path"

	"emperror.dev/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/stahnma/gh-trending/internal/trending"
)

// S3API is the part of the S3 client the store uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps documents as objects in a bucket, under an optional prefix.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store returns a store backed by client.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// NewS3StoreFromEnv builds the S3 client from the default AWS configuration.
func NewS3StoreFromEnv(ctx context.Context, region, bucket, prefix string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// Key returns the object key of a document.
func (s *S3Store) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3Store) Read(ctx context.Context, name string) ([]byte, error) {
	key := s.Key(name)
	op := "get s3://" + s.bucket + "/" + key
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, trending.NewError(trending.ErrNotFound, op, nil)
		}
		return nil, trending.NewError(trending.ErrPersistence, op, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, trending.NewError(trending.ErrPersistence, op, err)
	}
	return data, nil
}

func (s *S3Store) Write(ctx context.Context, name string, data []byte) error {
	key := s.Key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return trending.NewError(trending.ErrPersistence, "put s3://"+s.bucket+"/"+key, err)
	}
	return nil
}
