package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a BlobStore when no blob exists under a key.
var ErrNotFound = errors.New("blob not found")

// ErrUnreadable marks a stored blob that exists but cannot be turned into a
// document: invalid JSON, a malformed shape or an unsupported version.
var ErrUnreadable = errors.New("stored document is unreadable")

type (
	Blob struct {
		Data      []byte
		UpdatedAt time.Time
	}

	// BlobStore is a durable key-value store holding one opaque blob per key.
	// Put overwrites; last write wins.
	BlobStore interface {
		Get(ctx context.Context, key string) (*Blob, error)
		Put(ctx context.Context, key string, blob *Blob) error
	}
)
