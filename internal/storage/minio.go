package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mobinasri/terra-scripts/internal/locator"
)

// MinioOptions configures an S3-compatible endpoint.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// MinioBackend reads objects from an S3-compatible endpoint with minio-go.
// When no static keys are configured, credentials come from the AWS_*
// environment variables.
type MinioBackend struct {
	opts MinioOptions
}

// NewMinioBackend validates opts and returns a backend.
func NewMinioBackend(opts MinioOptions) (*MinioBackend, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("storage: minio endpoint is required")
	}
	return &MinioBackend{opts: opts}, nil
}

func (b *MinioBackend) client(op string, loc locator.Locator) (*minio.Client, error) {
	creds := credentials.NewEnvAWS()
	if b.opts.AccessKey != "" {
		creds = credentials.NewStaticV4(b.opts.AccessKey, b.opts.SecretKey, "")
	}
	c, err := minio.New(b.opts.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: b.opts.UseSSL,
		Region: b.opts.Region,
	})
	if err != nil {
		return nil, &Error{Op: op, Loc: loc, Err: fmt.Errorf("create client: %w", err)}
	}
	return c, nil
}

// Size implements Backend.
func (b *MinioBackend) Size(ctx context.Context, loc locator.Locator) (int64, error) {
	c, err := b.client("size", loc)
	if err != nil {
		return 0, err
	}

	info, err := c.StatObject(ctx, loc.Bucket, loc.Key, minio.StatObjectOptions{})
	if err != nil {
		return 0, &Error{Op: "size", Loc: loc, Err: minioErr(err)}
	}
	return info.Size, nil
}

// Fetch implements Backend.
func (b *MinioBackend) Fetch(ctx context.Context, loc locator.Locator, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &Error{Op: "fetch", Loc: loc, Err: err}
	}

	c, err := b.client("fetch", loc)
	if err != nil {
		return "", err
	}

	obj, err := c.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
	if err != nil {
		return "", &Error{Op: "fetch", Loc: loc, Err: minioErr(err)}
	}
	defer obj.Close()

	name := loc.ObjectName()
	if _, err := writeObject(filepath.Join(dir, name), obj); err != nil {
		return "", &Error{Op: "fetch", Loc: loc, Err: minioErr(err)}
	}
	return name, nil
}

func minioErr(err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey", resp.Code == "NoSuchBucket", resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
