package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/glowday/api/config"
	"github.com/google/uuid"
)

// LocalStorage writes uploads under a directory served as /uploads.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(cfg config.StorageConfig) *LocalStorage {
	dir := cfg.LocalDir
	if dir == "" {
		dir = "uploads"
	}
	return &LocalStorage{dir: dir}
}

func (s *LocalStorage) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return "/uploads/" + name, nil
}

func (s *LocalStorage) UploadMultiple(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.Upload(ctx, file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
