// Package archive ships expired conversation turns to R2-compatible
// object storage as zstd-compressed JSONL batches, then deletes them
// from the local database.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	apperrors "github.com/imigo-bot/imigo-linebot-go/internal/errors"
)

// ObjectStore is the minimal object storage surface the archiver needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (etag string, err error)
}

// R2Config holds R2 object storage configuration.
type R2Config struct {
	Endpoint    string // e.g. https://account-id.r2.cloudflarestorage.com
	AccessKeyID string
	SecretKey   string
	BucketName  string
}

// R2Client provides object uploads to Cloudflare R2 through the S3 API.
type R2Client struct {
	s3     *s3.Client
	bucket string
}

var _ ObjectStore = (*R2Client)(nil)

// NewR2Client creates an R2 client. All config fields are required.
func NewR2Client(ctx context.Context, cfg R2Config) (*R2Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretKey == "" || cfg.BucketName == "" {
		return nil, errors.New("archive: all r2 config fields are required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // Required for R2
	})

	return &R2Client{
		s3:     s3Client,
		bucket: cfg.BucketName,
	}, nil
}

// Upload uploads an object and returns its ETag.
func (c *R2Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := c.s3.PutObject(ctx, input)
	if err != nil {
		var respErr *smithyhttp.ResponseError
		if errors.As(err, &respErr) {
			return "", apperrors.NewUpstreamError("r2", respErr.HTTPStatusCode(), fmt.Errorf("upload %q: %w", key, err))
		}
		return "", fmt.Errorf("archive: upload %q: %w", key, err)
	}

	etag := ""
	if result.ETag != nil {
		etag = strings.Trim(*result.ETag, "\"")
	}
	return etag, nil
}
