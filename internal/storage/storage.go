// Package storage abstracts the blob store used for uploaded logos. The disk
// implementation keeps files under a local directory and serves them back
// under /uploads/; the interface leaves room for an object-store backend.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Store accepts a binary upload under a key and returns a publicly
// resolvable URL for it.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}

// DiskStore is the local filesystem implementation.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the upload directory if needed. baseURL is the
// externally reachable site URL the returned object URLs are rooted at.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put streams the upload to disk. Keys are generated by the caller (uuid
// based); path separators are rejected to keep writes inside the directory.
func (s *DiskStore) Put(_ context.Context, key string, r io.Reader) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.baseURL + "/uploads/" + key, nil
}

// Handler serves stored objects under /uploads/.
func (s *DiskStore) Handler() http.Handler {
	return http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.dir)))
}
