// Package s3store keeps public files in an S3-compatible bucket (AWS S3, MinIO,
// Supabase Storage).
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"portfolio_backend/internal/feature/auth/domain/entity"
	"portfolio_backend/internal/feature/auth/usecase"
	"portfolio_backend/internal/platform/config"
	httpx "portfolio_backend/internal/platform/http"
)

// Store uploads and deletes objects in one bucket.
type Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	timeout       time.Duration
}

var _ usecase.FileStore = (*Store)(nil)

// New builds a Store from cfg. A custom endpoint switches to path-style addressing.
func New(ctx context.Context, cfg config.ObjectStore) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(httpx.NewHTTPClient(cfg.Timeout)),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = defaultPublicBase(cfg)
	}
	return &Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: base,
		timeout:       cfg.Timeout,
	}, nil
}

func defaultPublicBase(cfg config.ObjectStore) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Upload stores f under f.Key and returns its public reference.
func (s *Store) Upload(ctx context.Context, f entity.Upload) (entity.StoredFile, error) {
	body, size, err := payload(f)
	if err != nil {
		return entity.StoredFile{}, fmt.Errorf("read upload: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(f.Key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if f.ContentType != "" {
		in.ContentType = aws.String(f.ContentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return entity.StoredFile{}, fmt.Errorf("put object %s: %w", f.Key, err)
	}

	return entity.StoredFile{
		PublicID: f.Key,
		URL:      s.publicBaseURL + "/" + f.Key,
		Filename: f.Filename,
	}, nil
}

// payload streams seekable bodies of known size, such as multipart files, and
// buffers anything else.
func payload(f entity.Upload) (io.ReadSeeker, int64, error) {
	if rs, ok := f.Body.(io.ReadSeeker); ok && f.Size > 0 {
		return rs, f.Size, nil
	}
	b, err := io.ReadAll(f.Body)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(b), int64(len(b)), nil
}

// Delete removes the object named publicID. An empty ID is a no-op.
func (s *Store) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", publicID, err)
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
