package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pageza/alchemorsel-import/backend/config"
	"github.com/pageza/alchemorsel-import/backend/internal/service"
)

// OwnerMetadataKey is the user metadata key recording who uploaded an object
const OwnerMetadataKey = "owner"

// S3Store implements service.ObjectStore on an S3 bucket
type S3Store struct {
	client        *s3.Client
	presign       *s3.PresignClient
	bucket        string
	publicBaseURL string
	presigned     bool
	presignTTL    time.Duration
}

// NewS3Store creates a new S3Store. With presigned set, URL returns
// time-limited GET URLs instead of public object URLs.
func NewS3Store(s3cfg *config.S3Config, presigned bool, presignTTL time.Duration) *S3Store {
	return &S3Store{
		client:        s3cfg.Client,
		presign:       s3.NewPresignClient(s3cfg.Client),
		bucket:        s3cfg.BucketName,
		publicBaseURL: strings.TrimRight(s3cfg.PublicBaseURL, "/"),
		presigned:     presigned,
		presignTTL:    presignTTL,
	}
}

var _ service.ObjectStore = (*S3Store)(nil)

// Put uploads data under path with its content type and owner metadata
func (s *S3Store) Put(ctx context.Context, path string, data []byte, contentType, owner string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata:      map[string]string{OwnerMetadataKey: owner},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// Exists reports whether an object is stored under path
func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.Stat(ctx, path)
	if errors.Is(err, service.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Stat returns the content type and size of the object under path
func (s *S3Store) Stat(ctx context.Context, path string) (service.ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isNotFound(err) {
			return service.ObjectInfo{}, service.ErrObjectNotFound
		}
		return service.ObjectInfo{}, fmt.Errorf("failed to read object metadata: %w", err)
	}
	return objectInfo(out.ContentType, out.ContentLength), nil
}

// Open streams the object under path. The caller closes the reader.
func (s *S3Store) Open(ctx context.Context, path string) (io.ReadCloser, service.ObjectInfo, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, service.ObjectInfo{}, service.ErrObjectNotFound
		}
		return nil, service.ObjectInfo{}, fmt.Errorf("failed to open object: %w", err)
	}
	return out.Body, objectInfo(out.ContentType, out.ContentLength), nil
}

// URL returns a URL the mobile client can load the object from
func (s *S3Store) URL(ctx context.Context, path string) (string, error) {
	if !s.presigned {
		return s.publicBaseURL + "/" + path, nil
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign object URL: %w", err)
	}
	return req.URL, nil
}

func objectInfo(contentType *string, size *int64) service.ObjectInfo {
	info := service.ObjectInfo{
		ContentType: aws.ToString(contentType),
		Size:        -1,
	}
	if size != nil {
		info.Size = *size
	}
	if info.ContentType == "" {
		info.ContentType = "application/octet-stream"
	}
	return info
}

func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	var notFound *s3types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
