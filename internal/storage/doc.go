// Package storage reads objects referenced by table cells.
//
// Two [Backend] implementations are provided:
//
//   - [BlobBackend] uses gocloud.dev/blob and understands gs://, s3://,
//     file:// and mem:// bucket URLs.
//   - [MinioBackend] talks to an S3-compatible endpoint with minio-go.
//
// Both open a fresh client for every call and map missing objects to
// [ErrNotFound]. Objects are written to {dir}/{object name}, where the
// object name is the final segment of the key.
package storage
