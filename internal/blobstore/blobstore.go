// Package blobstore abstracts the single string-keyed blob persistence the
// leaderboard is written to. Each key holds one serialized blob; every write
// replaces the whole value.
package blobstore

import "context"

// Store is the persistence collaborator. Read reports absence with the
// second return value; Write replaces the blob atomically as far as readers
// in this process can observe.
type Store interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
}
