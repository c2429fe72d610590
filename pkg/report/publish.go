package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Publisher stores a rendered report and returns where it went
type Publisher interface {
	Publish(ctx context.Context, r *Report, format Format) (string, error)
}

// FilePublisher writes the report to a local file
type FilePublisher struct {
	Path string
}

// Publish renders r into the configured path, creating parent directories
func (p *FilePublisher) Publish(_ context.Context, r *Report, format Format) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, format); err != nil {
		return "", err
	}

	if dir := filepath.Dir(p.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("%w: %v", ErrPublishFailed, err)
		}
	}
	if err := os.WriteFile(p.Path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	return p.Path, nil
}

// S3PutObjectAPI is the subset of the S3 client used for publishing
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config locates reports in a bucket
type S3Config struct {
	Bucket string
	Region string
	Prefix string
}

// S3Publisher uploads reports to S3
type S3Publisher struct {
	client S3PutObjectAPI
	config S3Config
}

// NewS3Publisher creates a publisher using the default AWS credential chain
func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3PublisherWithClient(s3.NewFromConfig(awsCfg), cfg), nil
}

// NewS3PublisherWithClient creates a publisher around an existing client
func NewS3PublisherWithClient(client S3PutObjectAPI, cfg S3Config) *S3Publisher {
	return &S3Publisher{client: client, config: cfg}
}

// Publish uploads r and returns its s3:// URL
func (p *S3Publisher) Publish(ctx context.Context, r *Report, format Format) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, format); err != nil {
		return "", err
	}

	key := p.buildKey(r, format)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(format.ContentType()),
		Metadata: map[string]string{
			"run-id":   r.RunID,
			"errors":   strconv.Itoa(r.Summary.Errors),
			"warnings": strconv.Itoa(r.Summary.Warnings),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	return "s3://" + p.config.Bucket + "/" + key, nil
}

// buildKey returns {prefix}/{yyyy}/{mm}/{dd}/{run id}{ext}
func (p *S3Publisher) buildKey(r *Report, format Format) string {
	return path.Join(
		p.config.Prefix,
		r.StartedAt.UTC().Format("2006/01/02"),
		r.RunID+format.Extension(),
	)
}
