package storage

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/glowday/api/config"
)

// Storage persists uploaded files and returns their public URL.
type Storage interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
	UploadMultiple(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
}

// New builds the storage backend named by the configuration.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Mode {
	case "s3":
		return NewS3Storage(cfg)
	case "local", "":
		return NewLocalStorage(cfg), nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.Mode)
	}
}
