package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nurseryhub/nursery-api/pkg/circuitbreaker"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"github.com/nurseryhub/nursery-api/pkg/metrics"
	"github.com/nurseryhub/nursery-api/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ObjectAPI is the subset of the S3 client used for document storage
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner issues time-limited download links
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Config holds S3-compatible bucket settings
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	UsePathStyle    bool
}

// Client stores enrollment documents in an S3-compatible bucket (AWS, MinIO, Yandex, Scaleway...)
type Client struct {
	api        ObjectAPI
	presigner  Presigner
	bucketName string
	endpoint   string
	breaker    *gobreaker.CircuitBreaker
	retryCfg   retry.Config
}

// NewClient creates a storage client using the AWS SDK v2 with static credentials
func NewClient(cfg Config) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("storage bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token not needed
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	s3Client := s3.New(opts)

	logger.Info("Document storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", cfg.Region),
	)

	return NewClientWithAPI(s3Client, s3.NewPresignClient(s3Client), cfg.BucketName, cfg.Endpoint), nil
}

// NewClientWithAPI wires a client around an existing object API (used by tests)
func NewClientWithAPI(api ObjectAPI, presigner Presigner, bucketName, endpoint string) *Client {
	return &Client{
		api:        api,
		presigner:  presigner,
		bucketName: bucketName,
		endpoint:   strings.TrimRight(endpoint, "/"),
		breaker:    circuitbreaker.New(circuitbreaker.DefaultConfig("document-storage")),
		retryCfg:   retry.StorageConfig(),
	}
}

// WithRetryConfig overrides the retry policy
func (c *Client) WithRetryConfig(cfg retry.Config) *Client {
	c.retryCfg = cfg
	return c
}

// Upload stores content under key and returns the object URL.
// Transient failures are retried; a tripped breaker fails fast without retrying.
func (c *Client) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	start := time.Now()
	operation := "putObject"

	cfg := c.retryCfg
	baseRetryable := cfg.Retryable
	cfg.Retryable = func(err error) bool {
		if circuitbreaker.IsOpen(err) {
			return false
		}
		return baseRetryable == nil || baseRetryable(err)
	}

	err := retry.Do(ctx, cfg, "storage."+operation, func() error {
		_, execErr := circuitbreaker.Execute(c.breaker, func() (*s3.PutObjectOutput, error) {
			return c.api.PutObject(ctx, &s3.PutObjectInput{
				Bucket:        aws.String(c.bucketName),
				Key:           aws.String(key),
				Body:          bytes.NewReader(content),
				ContentType:   aws.String(contentType),
				ContentLength: aws.Int64(int64(len(content))),
			})
		})
		return execErr
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, "document_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall(ctx, "document_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(content)),
	)

	return c.ObjectURL(key), nil
}

// Delete removes an object; used to clean up after a failed metadata insert
func (c *Client) Delete(ctx context.Context, key string) error {
	start := time.Now()
	operation := "deleteObject"

	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	duration := metrics.MeasureDuration(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StorageRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, status).Inc()

	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}

// PresignDownload returns a time-limited GET link for staff reviewing a document
func (c *Client) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if c.presigner == nil {
		return c.ObjectURL(key), nil
	}
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign document %s: %w", key, err)
	}
	return req.URL, nil
}

// ObjectURL builds the path-style URL {endpoint}/{bucket}/{key}
func (c *Client) ObjectURL(key string) string {
	if c.endpoint == "" {
		return fmt.Sprintf("s3://%s/%s", c.bucketName, key)
	}
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucketName, key)
}
