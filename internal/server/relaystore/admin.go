// Package relaystore is the authority's side of the S3-compatible relay
// store: it provisions the bucket, checks that uploaded objects exist and
// signs the capability tickets devices present to the store.
package relaystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/corral/internal/logging"
)

// Options locate the store and carry the credentials tickets are signed
// with.
type Options struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
	Logger    logging.Logger
}

// API is the subset of *s3.Client the admin uses.
type API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Seams for tests.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type Admin struct {
	client API
	bucket string
	logger logging.Logger
}

// NewAdmin builds an S3 client for the store. Path-style addressing is used
// so that MinIO-style endpoints work.
func NewAdmin(ctx context.Context, o Options) (*Admin, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(o.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = true
	})
	return NewAdminWithClient(client, o.Bucket, o.Logger), nil
}

func NewAdminWithClient(client API, bucket string, logger logging.Logger) *Admin {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Admin{client: client, bucket: bucket, logger: logger.With("module", "relaystore")}
}

func (a *Admin) Bucket() string { return a.bucket }

func notFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket", "NoSuchKey":
			return true
		}
	}
	return false
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *Admin) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}
	if !notFound(err) {
		return fmt.Errorf("head bucket %s: %w", a.bucket, err)
	}
	if _, err := a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	a.logger.Info(ctx, "relay bucket created", "bucket", a.bucket)
	return nil
}

// Exists reports whether the store holds key.
func (a *Admin) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	if err == nil {
		return true, nil
	}
	if notFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head object %s: %w", key, err)
}
