package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const localURLPrefix = "/uploads/"

// LocalStore writes blobs under a per-owner directory on the local
// filesystem and serves them back as /uploads/{ownerId}/{filename}.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Upload(ctx context.Context, data []byte, contentType string, ownerID uuid.UUID, filename string) (string, error) {
	ownerDir := filepath.Join(s.dir, ownerID.String())

	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", err
	}

	name := blobName(ownerID.String()+"_", filename)

	if err := os.WriteFile(filepath.Join(ownerDir, name), data, 0o644); err != nil {
		return "", err
	}

	return localURLPrefix + ownerID.String() + "/" + name, nil
}

// Delete removes the file behind an /uploads URL. A missing file is not an
// error.
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	relative := strings.TrimPrefix(url, localURLPrefix)

	if relative == url {
		return fmt.Errorf("not a local upload URL: %s", url)
	}

	target := filepath.Join(s.dir, filepath.Clean(relative))

	if !strings.HasPrefix(target, filepath.Clean(s.dir)+string(os.PathSeparator)) {
		return fmt.Errorf("invalid upload path: %s", url)
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
