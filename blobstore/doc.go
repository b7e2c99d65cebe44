// Package blobstore provides the sinks benchmark reports are published to.
//
// A Store holds small named objects (reports, plots input) and is safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with atomic writes
//   - MemoryStore: in-process map, used in tests
//   - s3.Store: Amazon S3 through the transfer manager
//   - minio.Store: any S3-compatible endpoint through minio-go
package blobstore
