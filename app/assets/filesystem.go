package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps a public reference to the local file path holding the blob.
// Implementations must reject references that land outside the asset directory.
type Resolver func(reference string) (string, error)

// ConfinedResolver resolves references to files directly inside dir.
func ConfinedResolver(dir string) Resolver {
	return func(reference string) (string, error) {
		name, err := NameFromReference(reference)
		if err != nil {
			return "", err
		}
		return confine(dir, name)
	}
}

func confine(dir, name string) (string, error) {
	path := filepath.Join(dir, name)

	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return "", ErrInvalidReference
	}
	return path, nil
}

// Filesystem keeps images as files in a single directory.
type Filesystem struct {
	dir     string
	resolve Resolver
	logger  *slog.Logger
}

// NewFilesystem creates the directory if needed and returns a store writing into it.
// A nil resolver defaults to ConfinedResolver over the directory.
func NewFilesystem(dir string, resolve Resolver, logger *slog.Logger) (*Filesystem, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir required")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve dir: %w", err)
	}

	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("create asset directory: %w", err)
	}

	if resolve == nil {
		resolve = ConfinedResolver(absDir)
	}

	return &Filesystem{
		dir:     absDir,
		resolve: resolve,
		logger:  logger.With("store", "filesystem"),
	}, nil
}

// Dir returns the absolute directory the store writes to.
func (f *Filesystem) Dir() string {
	return f.dir
}

func (f *Filesystem) Store(ctx context.Context, r io.Reader, originalName, baseURL string) (string, error) {
	name := NewName(originalName)

	path, err := confine(f.dir, name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(f.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", ErrStorage, err)
	}
	tmpPath := tmp.Name()

	_, err = io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: write %s: %w", ErrStorage, name, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: rename temp file: %w", ErrStorage, err)
	}

	f.logger.Debug("image stored", "name", name, "original_name", originalName)
	return PublicURL(baseURL, name), nil
}

func (f *Filesystem) Delete(ctx context.Context, reference string) error {
	path, err := f.resolve(reference)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove file: %w", err)
	}

	f.logger.Debug("image deleted", "path", path)
	return nil
}

func (f *Filesystem) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, ErrInvalidReference
	}

	path, err := confine(f.dir, name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}
