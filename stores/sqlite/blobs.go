package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resume-builder/core"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

type blobStore struct {
	db *sql.DB
}

func NewBlobStore(dataSourceName string) (core.BlobStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sts := `CREATE TABLE IF NOT EXISTS blobs (key TEXT PRIMARY KEY, data BLOB NOT NULL, updated_at TIMESTAMP NOT NULL);`
	if _, err := db.Exec(sts); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}
	return &blobStore{db}, nil
}

func (s *blobStore) Get(ctx context.Context, key string) (*core.Blob, error) {
	log := logrus.WithField("blob_key", key)
	log.Debug("Retrieving blob by key")
	var blob core.Blob
	err := s.db.QueryRowContext(ctx, "SELECT data, updated_at FROM blobs WHERE key = ?", key).Scan(&blob.Data, &blob.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("Blob with specified key not found")
			return nil, fmt.Errorf("blob with key %s: %w", key, core.ErrNotFound)
		}
		log.WithField("error", err).Error("Failed to retrieve blob")
		return nil, err
	}
	return &blob, nil
}

func (s *blobStore) Put(ctx context.Context, key string, blob *core.Blob) error {
	log := logrus.WithFields(logrus.Fields{
		"blob_key":    key,
		"data_length": len(blob.Data),
	})

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, blob.Data, time.Now().UTC())
	if err != nil {
		log.WithField("error", err).Error("Failed to save blob")
		return err
	}
	log.Debug("Blob saved")
	return nil
}
