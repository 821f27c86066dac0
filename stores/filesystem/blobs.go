package filesystem

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"resume-builder/core"

	"github.com/sirupsen/logrus"
)

type blobStore struct {
	basePath string // Directory where blobs are stored, one file per key.
}

func NewBlobStore(basePath string) (core.BlobStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &blobStore{basePath: basePath}, nil
}

// path maps a key onto a file name that cannot escape basePath.
func (s *blobStore) path(key string) string {
	return filepath.Join(s.basePath, url.PathEscape(key)+".json")
}

func (s *blobStore) Get(ctx context.Context, key string) (*core.Blob, error) {
	filePath := s.path(key)
	log := logrus.WithField("blob_key", key)

	log.WithField("file_path", filePath).Debug("Retrieving blob")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Blob with specified key not found")
			return nil, fmt.Errorf("blob with key %s: %w", key, core.ErrNotFound)
		}
		log.WithField("error", err).Error("Failed to retrieve blob")
		return nil, err
	}

	blob := &core.Blob{Data: data}
	if info, err := os.Stat(filePath); err == nil {
		blob.UpdatedAt = info.ModTime().UTC()
	}
	return blob, nil
}

// Put writes to a temporary file and renames it over the target, so readers
// never see a partially written blob.
func (s *blobStore) Put(ctx context.Context, key string, blob *core.Blob) error {
	filePath := s.path(key)
	log := logrus.WithFields(logrus.Fields{
		"blob_key":  key,
		"file_path": filePath,
	})

	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		log.WithField("error", err).Error("Failed to create temporary file")
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob.Data); err != nil {
		tmp.Close()
		log.WithField("error", err).Error("Failed to write blob")
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		log.WithField("error", err).Error("Failed to replace blob")
		return err
	}

	log.WithField("data_length", len(blob.Data)).Debug("Blob saved")
	return nil
}
