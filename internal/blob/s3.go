package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/johnwards/menuseed/internal/domain"
)

// S3Config holds construction parameters for the S3 driver. Credentials come
// from the default AWS chain.
type S3Config struct {
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	PathStyle bool
}

// S3API is the subset of the S3 client the driver calls.
type S3API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 is a Store backed by S3-compatible object storage. A bucket maps to an
// S3 bucket and a file id to an object key.
type S3 struct {
	client S3API
}

// NewS3 builds an S3 store from cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Endpoint != "" {
		if _, err := url.Parse(cfg.Endpoint); err != nil {
			return nil, fmt.Errorf("invalid s3 endpoint: %w", err)
		}
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3WithClient(client), nil
}

// NewS3WithClient wraps an existing client.
func NewS3WithClient(client S3API) *S3 {
	return &S3{client: client}
}

// ListFiles pages through the bucket with continuation tokens.
func (s *S3) ListFiles(ctx context.Context, bucket string) ([]domain.File, error) {
	var files []domain.File
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", bucket, err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			f := domain.File{
				ID:     key,
				Bucket: bucket,
				Name:   key,
				Size:   aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				f.CreatedAt = obj.LastModified.UTC().Format(time.RFC3339)
			}
			files = append(files, f)
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

// DeleteFile removes an object. S3 deletes are idempotent, so existence is
// checked first to report ErrNotFound.
func (s *S3) DeleteFile(ctx context.Context, bucket, id string) error {
	if err := s.head(ctx, bucket, id); err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(id),
	}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, id, err)
	}
	return nil
}

// UploadFile puts a new object; it fails if the key is taken.
func (s *S3) UploadFile(ctx context.Context, bucket, id, name string, r io.Reader, contentType string) (domain.File, error) {
	id, err := resolveID(id)
	if err != nil {
		return domain.File{}, err
	}
	switch err := s.head(ctx, bucket, id); {
	case err == nil:
		return domain.File{}, fmt.Errorf("%s/%s: %w", bucket, id, ErrExists)
	case !errors.Is(err, ErrNotFound):
		return domain.File{}, err
	}

	in := &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(id),
		Body:     r,
		Metadata: map[string]string{"name": name},
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return domain.File{}, fmt.Errorf("put %s/%s: %w", bucket, id, err)
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(id)})
	if err != nil {
		return domain.File{}, fmt.Errorf("head %s/%s: %w", bucket, id, err)
	}
	f := domain.File{
		ID:          id,
		Bucket:      bucket,
		Name:        name,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		f.CreatedAt = out.LastModified.UTC().Format(time.RFC3339)
	}
	return f, nil
}

func (s *S3) head(ctx context.Context, bucket, id string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(id)})
	if err == nil {
		return nil
	}
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return fmt.Errorf("%s/%s: %w", bucket, id, ErrNotFound)
	}
	return fmt.Errorf("head %s/%s: %w", bucket, id, err)
}
