package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"taskchat/internal/common"
)

// Storage holds attachment bytes under their stored (randomized) names.
// Open returns common.ErrFileNotFound for unknown names.
type Storage interface {
	Save(ctx context.Context, name string, content io.Reader) (int64, error)
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	Remove(ctx context.Context, name string) error
}

// DiskStorage keeps attachments as plain files in one directory.
type DiskStorage struct {
	dir string
}

func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &DiskStorage{dir: dir}, nil
}

func (s *DiskStorage) Save(ctx context.Context, name string, content io.Reader) (int64, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", name, err)
	}

	written, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return written, nil
}

func (s *DiskStorage) Open(_ context.Context, name string) (io.ReadCloser, int64, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, common.ErrFileNotFound
		}
		return nil, 0, fmt.Errorf("failed to open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, common.ErrFileNotFound
	}
	return f, info.Size(), nil
}

func (s *DiskStorage) Remove(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}
