// Package blob persists raw file bytes outside the metadata store. Blobs are
// named by generated identifiers; the returned path is an opaque reference
// that callers store alongside their metadata.
package blob

import (
	"context"
	"errors"
	"strconv"
)

var ErrNotFound = errors.New("blob not found")

// Store is implemented by Local and S3.
type Store interface {
	Write(ctx context.Context, data []byte) (string, error)
	WriteDerivative(ctx context.Context, base string, width int, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

var (
	_ Store = (*Local)(nil)
	_ Store = (*S3)(nil)
)

// DerivativePath names the sibling blob holding a resized copy of base.
func DerivativePath(base string, width int) string {
	return base + "_" + strconv.Itoa(width)
}
