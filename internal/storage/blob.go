package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	"github.com/mobinasri/terra-scripts/internal/locator"
)

// BucketPlaceholder is replaced by the locator's bucket in a bucket URL template.
const BucketPlaceholder = "{bucket}"

// BlobBackend reads objects through gocloud.dev/blob. A bucket is opened for
// every call; nothing is shared between concurrent fetches.
type BlobBackend struct {
	template string
}

// NewBlobBackend returns a backend that opens buckets by URL.
//
// template is a bucket URL containing {bucket}, for example
// "s3://{bucket}?region=us-east-1" or "file:///data/{bucket}". An empty
// template opens "{scheme}://{bucket}" using the locator's own scheme.
func NewBlobBackend(template string) *BlobBackend {
	return &BlobBackend{template: template}
}

// BucketURL returns the URL opened for the locator's bucket.
func (b *BlobBackend) BucketURL(loc locator.Locator) string {
	if b.template == "" {
		return locator.Prefix(loc.Scheme) + loc.Bucket
	}
	return strings.ReplaceAll(b.template, BucketPlaceholder, loc.Bucket)
}

func (b *BlobBackend) open(ctx context.Context, op string, loc locator.Locator) (*blob.Bucket, error) {
	bkt, err := blob.OpenBucket(ctx, b.BucketURL(loc))
	if err != nil {
		return nil, &Error{Op: op, Loc: loc, Err: fmt.Errorf("open bucket: %w", err)}
	}
	return bkt, nil
}

// Size implements Backend.
func (b *BlobBackend) Size(ctx context.Context, loc locator.Locator) (int64, error) {
	bkt, err := b.open(ctx, "size", loc)
	if err != nil {
		return 0, err
	}
	defer bkt.Close()

	attrs, err := bkt.Attributes(ctx, loc.Key)
	if err != nil {
		return 0, &Error{Op: "size", Loc: loc, Err: blobErr(err)}
	}
	return attrs.Size, nil
}

// Fetch implements Backend.
func (b *BlobBackend) Fetch(ctx context.Context, loc locator.Locator, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &Error{Op: "fetch", Loc: loc, Err: err}
	}

	bkt, err := b.open(ctx, "fetch", loc)
	if err != nil {
		return "", err
	}
	defer bkt.Close()

	r, err := bkt.NewReader(ctx, loc.Key, nil)
	if err != nil {
		return "", &Error{Op: "fetch", Loc: loc, Err: blobErr(err)}
	}
	defer r.Close()

	name := loc.ObjectName()
	if _, err := writeObject(filepath.Join(dir, name), r); err != nil {
		return "", &Error{Op: "fetch", Loc: loc, Err: blobErr(err)}
	}
	return name, nil
}

func blobErr(err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
