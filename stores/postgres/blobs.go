package postgres

import (
	"context"
	"errors"
	"fmt"

	"resume-builder/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const createTable = `CREATE TABLE IF NOT EXISTS resume_blobs (
	key        TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type BlobStore struct {
	pool *pgxpool.Pool
}

// Connect opens a pool, verifies it and makes sure the table exists.
func Connect(ctx context.Context, databaseURL string) (*BlobStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create resume_blobs table: %w", err)
	}

	return &BlobStore{pool: pool}, nil
}

func (s *BlobStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *BlobStore) Get(ctx context.Context, key string) (*core.Blob, error) {
	var blob core.Blob
	err := s.pool.QueryRow(ctx,
		`SELECT data, updated_at FROM resume_blobs WHERE key = $1`, key,
	).Scan(&blob.Data, &blob.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("blob with key %s: %w", key, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	return &blob, nil
}

func (s *BlobStore) Put(ctx context.Context, key string, blob *core.Blob) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO resume_blobs (key, data, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET data = $2, updated_at = NOW()`,
		key, blob.Data,
	)
	if err != nil {
		return fmt.Errorf("failed to save blob: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"blob_key":    key,
		"data_length": len(blob.Data),
	}).Debug("Blob saved")
	return nil
}
