// Package archive persists PMStore segment blobs to S3, giving the
// "segment archival" feature in SPEC_FULL.md §3 durable, queryable
// storage beyond the connection's lifetime.
package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config configures the S3 destination for archived segments. Region and
// Endpoint are optional: an empty Endpoint uses AWS's own S3 endpoint for
// Region, a non-empty one points at an S3-compatible store (e.g. a local
// Minio/Localstack instance) and forces path-style addressing. AccessKeyID
// and SecretAccessKey are optional: leave both empty to fall back to the
// default AWS credential chain (env vars, shared config, IAM role).
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Store archives PMStore segment payloads to S3.
type Store struct {
	client *s3.Client
	cfg    Config
}

// NewStore loads the AWS config chain for cfg and returns a Store.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &Store{client: client, cfg: cfg}, nil
}

// key formats the archive object key for one segment of one system's
// PMStore, grouped under Prefix for lifecycle-policy convenience.
func (s *Store) key(systemID string, pmStoreHandle, segInstNo uint16) string {
	return fmt.Sprintf("%s/%s/%04x/%04x.bin", s.cfg.Prefix, systemID, pmStoreHandle, segInstNo)
}

// PutSegment uploads data as the blob for one segment. The admin API's
// archive endpoint passes the ActionInfo of the Agent's response to the
// segment-data transfer request.
func (s *Store) PutSegment(ctx context.Context, systemID string, pmStoreHandle, segInstNo uint16, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(systemID, pmStoreHandle, segInstNo)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("archive: put segment: %w", err)
	}
	return nil
}

// GetSegment retrieves a previously archived segment's bytes.
func (s *Store) GetSegment(ctx context.Context, systemID string, pmStoreHandle, segInstNo uint16) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(systemID, pmStoreHandle, segInstNo)),
	})
	if err != nil {
		return nil, fmt.Errorf("archive: get segment: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, fmt.Errorf("archive: reading segment body: %w", err)
	}
	return buf.Bytes(), nil
}
