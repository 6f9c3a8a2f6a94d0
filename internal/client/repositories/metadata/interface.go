// Package metadata is a small key/value store in the client's SQLite cache.
// The CLI keeps session state here: auth tokens, the logged-in username and
// the currently selected workspace.
package metadata

import (
	"context"
)

// Repository is the key/value contract. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
