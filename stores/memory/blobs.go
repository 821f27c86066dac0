package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resume-builder/core"
)

type blobStore struct {
	mu    sync.RWMutex
	blobs map[string]core.Blob
}

func NewBlobStore() core.BlobStore {
	return &blobStore{blobs: make(map[string]core.Blob)}
}

func (s *blobStore) Get(ctx context.Context, key string) (*core.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if val, ok := s.blobs[key]; ok {
		val.Data = append([]byte(nil), val.Data...)
		return &val, nil
	}
	return nil, fmt.Errorf("blob with key %s: %w", key, core.ErrNotFound)
}

func (s *blobStore) Put(ctx context.Context, key string, blob *core.Blob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = core.Blob{
		Data:      append([]byte(nil), blob.Data...),
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}
