package blobfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"custodia/internal/domain"
)

// Store keeps raw artifact content on disk, one file per artifact version.
// Files are write-once: Put refuses to overwrite an existing blob, since
// artifact content is immutable by contract.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("blob directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(artifactID string, version int) string {
	return filepath.Join(s.dir, artifactID, fmt.Sprintf("v%d.bin", version))
}

func (s *Store) Put(ctx context.Context, artifactID string, version int, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.path(artifactID, version)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("blob %s v%d already exists", artifactID, version)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o600)
}

func (s *Store) Get(ctx context.Context, artifactID string, version int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(s.path(artifactID, version))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: blob %s v%d", domain.ErrNotFound, artifactID, version)
		}
		return nil, err
	}
	return content, nil
}

func (s *Store) Remove(ctx context.Context, artifactID string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(artifactID, version))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
