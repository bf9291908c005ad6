package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PageDigest identifies the content of one written page.
type PageDigest struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
	Exists bool   `json:"exists"`
}

// DigestBytes hashes in-memory page content.
func DigestBytes(path string, content []byte) PageDigest {
	sum := sha256.Sum256(content)
	return PageDigest{
		Path:   path,
		SHA256: hex.EncodeToString(sum[:]),
		Size:   int64(len(content)),
		Exists: true,
	}
}

// DigestFile hashes a page on disk. A missing file yields a digest with
// Exists false and no error.
func DigestFile(path string) (PageDigest, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return PageDigest{Path: path}, nil
	}
	if err != nil {
		return PageDigest{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DigestBytes(path, content), nil
}

// WriteFileAtomic replaces path with data. The content goes to a temporary
// file in the same directory first and is renamed over the target, so a
// failure leaves the previous page untouched.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()
	defer os.Remove(tempPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	// Atomically replace the page
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
