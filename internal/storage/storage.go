// Package storage holds the key-value backends the card repository persists
// its collections in. Every backend stores opaque blobs under string keys.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: key not found")

type BlobStore interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites the whole value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// PutAll writes every entry of values or none of them.
	PutAll(ctx context.Context, values map[string][]byte) error
	// Delete removes keys; absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}
