// Package persistence holds the blob stores mirroring the cart between sessions.
package persistence

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob is stored under the key.
var ErrNotFound = errors.New("blob not found")

// BlobStore is an opaque key/value store. Set always overwrites the whole blob.
type BlobStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, blob string) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
