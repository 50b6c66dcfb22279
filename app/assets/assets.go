// Package assets stores phone images and maps their public references back to
// stored blobs. A reference is an absolute URL of the form
// {scheme}://{host}/Images/MemoryPhones/{name}, where name is a random token
// carrying the extension of the uploaded file.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path under which stored images are served.
const PublicPrefix = "/Images/MemoryPhones/"

var (
	// ErrStorage indicates a blob could not be written.
	ErrStorage = errors.New("assets: storage failure")

	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("assets: not found")

	// ErrInvalidReference indicates a reference that does not resolve to a
	// blob inside the asset directory. This includes path traversal attempts.
	ErrInvalidReference = errors.New("assets: invalid reference")
)

// Store manages image blobs.
type Store interface {
	// Store writes the stream under a freshly generated name and returns the
	// public reference built from baseURL. Failures wrap ErrStorage.
	Store(ctx context.Context, r io.Reader, originalName, baseURL string) (string, error)

	// Delete removes the blob a reference points to.
	// Returns nil if the blob does not exist.
	// Returns ErrInvalidReference if the reference resolves outside the store.
	Delete(ctx context.Context, reference string) error

	// Open returns the blob stored under name. The caller must close the reader.
	// Returns ErrNotFound if the blob does not exist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// New creates the store selected by cfg.Backend.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendFilesystem:
		fs, err := NewFilesystem(cfg.Dir, nil, logger)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendAzure:
		az, err := NewAzure(ctx, &cfg.Azure, logger)
		if err != nil {
			return nil, err
		}
		return az, nil
	default:
		return nil, fmt.Errorf("unknown asset backend %q", cfg.Backend)
	}
}

// NewName returns a random file name that keeps the extension of originalName.
// Extensions that are not plain alphanumerics are dropped.
func NewName(originalName string) string {
	name := uuid.NewString()

	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) < 2 || len(ext) > 10 {
		return name
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return name
		}
	}
	return name + ext
}

// PublicURL builds the reference for a stored name.
func PublicURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + PublicPrefix + name
}

// NameFromReference extracts the stored name from a reference.
// The host part of the reference is not checked, only the path.
func NameFromReference(reference string) (string, error) {
	u, err := url.Parse(reference)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	name, ok := strings.CutPrefix(u.Path, PublicPrefix)
	if !ok || !ValidName(name) {
		return "", ErrInvalidReference
	}
	return name, nil
}

// ValidName reports whether name is a single, non-hidden path segment usable as a blob name.
func ValidName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
