package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoredObject describes a persisted blob.
type StoredObject struct {
	URL        string
	StoredName string
	StorageKey string
}

// BlobStorage is the narrow contract the workflow engine consumes for
// signature images, attachments and rendered documents. Content is addressed
// by path only; the engine never interprets keys.
type BlobStorage interface {
	Store(content []byte, pathHint string, mimeType string) (*StoredObject, error)
	Fetch(storageKey string) ([]byte, error)
}

// LocalBlobStorage implements BlobStorage on the local filesystem.
type LocalBlobStorage struct {
	baseDir string
	baseURL string
	logger  *zap.Logger
}

func NewLocalBlobStorage(baseDir, baseURL string, logger *zap.Logger) *LocalBlobStorage {
	return &LocalBlobStorage{
		baseDir: filepath.Clean(baseDir),
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// extensions by mime type; anything unknown keeps a .bin suffix so files
// never land without an extension.
var mimeExtensions = map[string]string{
	"text/html":       ".html",
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

func extensionFor(mimeType string) string {
	if ext, ok := mimeExtensions[mimeType]; ok {
		return ext
	}
	return ".bin"
}

// Store writes the content under baseDir following the path hint, with a
// timestamped unique file name.
func (s *LocalBlobStorage) Store(content []byte, pathHint string, mimeType string) (*StoredObject, error) {
	relDir, err := s.sanitizeHint(pathHint)
	if err != nil {
		return nil, err
	}

	fullDir := filepath.Join(s.baseDir, relDir)
	if err := os.MkdirAll(fullDir, 0755); err != nil {
		s.logger.Error("failed to create storage directory",
			zap.String("path", fullDir),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	name := fmt.Sprintf("%s-%s%s",
		time.Now().Format("20060102T150405"),
		uuid.NewString()[:8],
		extensionFor(mimeType))

	key := filepath.ToSlash(filepath.Join(relDir, name))
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("failed to write blob",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Info("blob stored",
		zap.String("key", key),
		zap.Int("bytes", len(content)))

	return &StoredObject{
		URL:        s.baseURL + "/" + key,
		StoredName: name,
		StorageKey: key,
	}, nil
}

// Fetch reads a previously stored blob by its storage key.
func (s *LocalBlobStorage) Fetch(storageKey string) ([]byte, error) {
	rel, err := s.sanitizeHint(storageKey)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filepath.Join(s.baseDir, rel))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %q: %w", storageKey, err)
	}
	return content, nil
}

// sanitizeHint rejects absolute paths and traversal outside the base dir.
func (s *LocalBlobStorage) sanitizeHint(hint string) (string, error) {
	hint = strings.Trim(strings.TrimSpace(hint), "/")
	if hint == "" {
		return "", nil
	}

	clean := filepath.Clean(filepath.FromSlash(hint))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage path %q", hint)
	}
	return clean, nil
}
