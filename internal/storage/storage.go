package storage

import (
	"context"
	"path"
	"strings"

	"github.com/ezcal-dev/ezcal/internal/config"
	"github.com/google/uuid"
)

// BlobStore stores uploaded images by generated key and returns a retrieval
// URL. The backend is chosen once at construction: local disk in debug mode,
// S3 otherwise.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, contentType string, ownerID uuid.UUID, filename string) (string, error)
	Delete(ctx context.Context, url string) error
}

func New(cfg *config.Config) (BlobStore, error) {
	if cfg.Debug {
		return NewLocalStore(cfg.UploadDir)
	}

	return NewS3Store(cfg), nil
}

// blobName builds "<prefix><8-hex>.<ext>" preserving the original extension.
func blobName(prefix, filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")

	if ext == "" {
		ext = "jpg"
	}

	uid := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	return prefix + uid + "." + ext
}
