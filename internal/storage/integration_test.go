//go:build integration

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mobinasri/terra-scripts/internal/testutils"
)

func TestBackendsAgainstMinio(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	env := testutils.StartMinioContainer(t, ctx)
	defer func() {
		if err := env.Close(ctx); err != nil {
			t.Logf("failed to terminate minio container: %v", err)
		}
	}()

	data := testutils.GenerateTestData(t, 2*1024*1024)
	env.CreateBucket(t, ctx, "fc-backend-test", map[string][]byte{
		"runs/a/reads.bam": data,
	})

	minioBackend, err := NewMinioBackend(MinioOptions{
		Endpoint:  env.Endpoint,
		AccessKey: env.AccessKey,
		SecretKey: env.SecretKey,
		Region:    env.Region,
	})
	if err != nil {
		t.Fatalf("NewMinioBackend: %v", err)
	}

	backends := map[string]Backend{
		"minio": minioBackend,
		"blob":  NewBlobBackend(env.BucketURLTemplate()),
	}

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			loc := mustParse(t, "gs://fc-backend-test/runs/a/reads.bam")

			size, err := backend.Size(ctx, loc)
			if err != nil {
				t.Fatalf("Size: %v", err)
			}
			if size != int64(len(data)) {
				t.Errorf("expected size %d, got %d", len(data), size)
			}

			dir := t.TempDir()
			object, err := backend.Fetch(ctx, loc, dir)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if object != "reads.bam" {
				t.Errorf("expected object reads.bam, got %s", object)
			}
			testutils.CompareFileToData(t, filepath.Join(dir, object), data)

			missing := mustParse(t, "gs://fc-backend-test/runs/a/missing.bam")
			if _, err := backend.Size(ctx, missing); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound for missing key, got %v", err)
			}
			if _, err := backend.Fetch(ctx, missing, t.TempDir()); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound fetching missing key, got %v", err)
			}

			noBucket := mustParse(t, "gs://fc-no-such-bucket/x.bam")
			if _, err := backend.Size(ctx, noBucket); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound for missing bucket, got %v", err)
			}
		})
	}
}
