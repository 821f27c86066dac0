package stores

import (
	"context"
	"fmt"

	"resume-builder/config"
	"resume-builder/core"
	"resume-builder/stores/aws"
	"resume-builder/stores/filesystem"
	"resume-builder/stores/memory"
	"resume-builder/stores/postgres"
	"resume-builder/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// GetStore builds the blob store named by cfg.StorageType. The returned
// function releases backend resources and is always safe to call.
func GetStore(ctx context.Context, cfg *config.Config) (core.BlobStore, func(), error) {
	var (
		store core.BlobStore
		err   error
	)
	closeFn := func() {}

	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	switch cfg.StorageType {
	case "filesystem":
		storageField["basePath"] = cfg.LocalStoragePath
		store, err = filesystem.NewBlobStore(cfg.LocalStoragePath)
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		store, err = sqlite.NewBlobStore(cfg.DataSourceName)
	case "postgres":
		var pg *postgres.BlobStore
		pg, err = postgres.Connect(ctx, cfg.DatabaseURL)
		if err == nil {
			store, closeFn = pg, pg.Close
		}
	case "s3":
		storageField["bucketName"] = cfg.S3BucketName
		storageField["endpoint"] = cfg.S3Endpoint
		store, err = aws.NewBlobStore(ctx, aws.Options{
			Bucket:    cfg.S3BucketName,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		store = memory.NewBlobStore()
		storageField["storageType"] = "in-memory"
	}
	if err != nil {
		return nil, closeFn, fmt.Errorf("failed to initialize %s storage: %w", cfg.StorageType, err)
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store, closeFn, nil
}
