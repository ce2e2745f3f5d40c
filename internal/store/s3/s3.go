// Package s3 provides an ObjectStore implementation over S3-compatible
// object storage using aws-sdk-go-v2. It supports static credentials and a
// base endpoint override so MinIO-style deployments work unchanged.
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mstreet/easel/internal/app"
)

// api is the slice of the S3 client the store uses; *s3.Client satisfies it
// and tests substitute a mock.
type api interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var _ app.ObjectStore = (*Store)(nil)

// Options configures the S3 store.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // optional base endpoint override (MinIO, R2, ...)
	AccessKey string // optional; default credential chain applies when empty
	SecretKey string
	PublicURL string // public base URL for stored objects, no trailing slash
}

// Store implements app.ObjectStore over an S3 bucket.
type Store struct {
	client    api
	bucket    string
	publicURL string
}

// New builds the S3 client from the ambient AWS config plus the given
// overrides and returns the store.
func New(ctx context.Context, opts Options) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.Endpoint != ""
	})
	return &Store{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimSuffix(opts.PublicURL, "/"),
	}, nil
}

// List returns every object under prefix, following pagination.
func (s *Store) List(ctx context.Context, prefix string) ([]app.ObjectInfo, error) {
	var out []app.ObjectInfo
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			out = append(out, app.ObjectInfo{
				Key:        key,
				URL:        s.PublicURL(key),
				Size:       aws.ToInt64(obj.Size),
				UploadedAt: aws.ToTime(obj.LastModified),
			})
		}
	}
	return out, nil
}

// Get opens the object's content.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// Put stores the object, overwriting any existing one under the same key.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (app.ObjectInfo, error) {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return app.ObjectInfo{}, err
	}
	return app.ObjectInfo{Key: key, URL: s.PublicURL(key), Size: size}, nil
}

// Delete removes the object. S3 reports success for absent keys, matching
// the port contract.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// PublicURL joins the configured public base with the key.
func (s *Store) PublicURL(key string) string {
	return s.publicURL + "/" + key
}
