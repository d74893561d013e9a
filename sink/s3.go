package sink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ContentType is the content type archives are stored with.
const ContentType = "application/x-asar"

// S3Config configures an S3 sink.
type S3Config struct {
	Bucket string
	// Prefix is prepended to every object key, separated by "/".
	Prefix string
	Region string
	// Endpoint overrides the service endpoint, e.g. for MinIO. Setting it
	// switches the client to path-style addressing.
	Endpoint string
	// AccessKeyID and SecretAccessKey select static credentials. When empty
	// the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// PutObjectAPI is the subset of the S3 client the sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads archives to an S3 bucket.
type S3 struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3 builds an S3 client from cfg and returns a sink using it.
func NewS3(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: empty bucket", ErrNoDestination)
	}

	loadOpts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3FromClient(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// NewS3FromClient returns a sink using an existing client.
func NewS3FromClient(client PutObjectAPI, bucket, prefix string, logger *slog.Logger) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

func (s *S3) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Key returns the object key an archive named name is stored under.
func (s *S3) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Deliver uploads data as s3://<bucket>/<prefix>/<name>.
func (s *S3) Deliver(ctx context.Context, data []byte, name string) error {
	key := s.Key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %q: %w", key, err)
	}
	s.log().Debug("uploaded archive", "bucket", s.bucket, "key", key, "size", len(data))
	return nil
}
