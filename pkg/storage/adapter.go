// Package storage implements the storage-adapter collaborator contract:
// an opaque key-value get/set against durable storage. Value bytes are
// opaque to storage — the kernel is the only party that interprets them.
package storage

import "context"

// Adapter is the storage collaborator contract. Get returns ("", false,
// nil) when the key is absent, matching the spec's string-or-null
// return shape without relying on a nil pointer.
type Adapter interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
}
