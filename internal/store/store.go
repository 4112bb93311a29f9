// Package store reads and writes whole dataset documents.
package store

import "context"

// Default document names.
const (
	RawName       = "trending.json"
	ProcessedName = "processed_trending.json"
)

// Store holds named documents. Read returns an error wrapping
// trending.ErrNotFound when the document does not exist. Write replaces the
// whole document; a failed Write leaves the previous document in place and
// returns an error wrapping trending.ErrPersistence.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}
