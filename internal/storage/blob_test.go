package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobinasri/terra-scripts/internal/locator"
)

// fileBuckets lays out objects under root/{bucket}/{key} and returns a
// template that opens them through fileblob.
func fileBuckets(t *testing.T, objects map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for uri, content := range objects {
		loc, err := locator.Parse(uri, "gs")
		require.NoError(t, err)
		path := filepath.Join(root, loc.Bucket, filepath.FromSlash(loc.Key))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return "file://" + filepath.ToSlash(root) + "/" + BucketPlaceholder
}

func mustParse(t *testing.T, s string) locator.Locator {
	t.Helper()
	loc, err := locator.Parse(s, "gs")
	require.NoError(t, err)
	return loc
}

func TestBlobBackendSize(t *testing.T) {
	ctx := context.Background()
	b := NewBlobBackend(fileBuckets(t, map[string]string{
		"gs://bkt/reads/a.fq": "ACGT",
	}))

	size, err := b.Size(ctx, mustParse(t, "gs://bkt/reads/a.fq"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)

	_, err = b.Size(ctx, mustParse(t, "gs://bkt/reads/missing.fq"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var serr *Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "size", serr.Op)
	assert.Equal(t, "bkt", serr.Loc.Bucket)
}

func TestBlobBackendFetch(t *testing.T) {
	ctx := context.Background()
	b := NewBlobBackend(fileBuckets(t, map[string]string{
		"gs://bkt/deep/path/x.bam": "bam-bytes",
	}))
	dir := filepath.Join(t.TempDir(), "s1", "bam")

	name, err := b.Fetch(ctx, mustParse(t, "gs://bkt/deep/path/x.bam"), dir)
	require.NoError(t, err)
	assert.Equal(t, "x.bam", name)

	data, err := os.ReadFile(filepath.Join(dir, "x.bam"))
	require.NoError(t, err)
	assert.Equal(t, "bam-bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestBlobBackendFetchMissing(t *testing.T) {
	ctx := context.Background()
	b := NewBlobBackend(fileBuckets(t, map[string]string{
		"gs://bkt/x.bam": "x",
	}))
	dir := t.TempDir()

	_, err := b.Fetch(ctx, mustParse(t, "gs://bkt/y.bam"), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, statErr := os.Stat(filepath.Join(dir, "y.bam"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBlobBackendMissingBucket(t *testing.T) {
	ctx := context.Background()
	b := NewBlobBackend(fileBuckets(t, nil))

	_, err := b.Size(ctx, mustParse(t, "gs://nobucket/x.bam"))
	assert.Error(t, err)
}

func TestBlobBackendMemNotFound(t *testing.T) {
	b := NewBlobBackend("mem://")

	_, err := b.Size(context.Background(), mustParse(t, "gs://bkt/x.bam"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBucketURL(t *testing.T) {
	loc := mustParse(t, "gs://fc-123/x.bam")

	assert.Equal(t, "gs://fc-123", NewBlobBackend("").BucketURL(loc))
	assert.Equal(t, "s3://fc-123?region=us-east-1",
		NewBlobBackend("s3://{bucket}?region=us-east-1").BucketURL(loc))
}

func TestNewMinioBackend(t *testing.T) {
	_, err := NewMinioBackend(MinioOptions{})
	assert.Error(t, err)

	b, err := NewMinioBackend(MinioOptions{Endpoint: "localhost:9000"})
	require.NoError(t, err)
	assert.NotNil(t, b)
}
