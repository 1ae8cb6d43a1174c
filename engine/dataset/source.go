package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/WessleyAI/sportscar-dash/pkg/fn"
)

// Source yields the raw CSV bytes. Load opens it exactly once.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// FileSource reads the CSV from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

func (s FileSource) String() string { return s.Path }

// ObjectGetter is the subset of *s3.Client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the CSV from an S3 (or S3-compatible) bucket.
type S3Source struct {
	Client ObjectGetter
	Bucket string
	Key    string
	Retry  fn.RetryOpts
}

func (s S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	opts := s.Retry
	if opts.MaxAttempts == 0 {
		opts = fn.DefaultRetry
	}
	opts.Retryable = func(err error) bool {
		var nsk *types.NoSuchKey
		var nsb *types.NoSuchBucket
		return !errors.As(err, &nsk) && !errors.As(err, &nsb)
	}
	r := fn.Retry(ctx, opts, func(ctx context.Context) fn.Result[io.ReadCloser] {
		out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(s.Key),
		})
		if err != nil {
			return fn.Err[io.ReadCloser](err)
		}
		return fn.Ok(out.Body)
	})
	return r.Unwrap()
}

func (s S3Source) String() string { return "s3://" + s.Bucket + "/" + s.Key }

// S3Options tune the client built by SourceFromURI.
type S3Options struct {
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	PathStyle bool
}

// SourceFromURI returns an S3Source for "s3://bucket/key" locations and a
// FileSource for anything else.
func SourceFromURI(ctx context.Context, uri string, so S3Options) (Source, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		if uri == "" {
			return nil, errors.New("dataset location is empty")
		}
		return FileSource{Path: uri}, nil
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 location %q: want s3://bucket/key", uri)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if so.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(so.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = so.PathStyle
		if so.Endpoint != "" {
			o.BaseEndpoint = aws.String(so.Endpoint)
		}
	})
	return S3Source{Client: client, Bucket: bucket, Key: key}, nil
}
