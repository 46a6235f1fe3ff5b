// Package blob stores uploaded photo files on the local filesystem.
package blob

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store manages photo file operations under a single directory.
// Thread-safe for concurrent operations. Keys are opaque: callers
// persist them on the photo row and never derive paths themselves.
type Store struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStore creates a blob store rooted at basePath, creating the
// directory if needed.
func NewStore(basePath string) (*Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	return &Store{basePath: basePath}, nil
}

// Save writes data under a fresh random key and returns it.
// ext is the file extension including the dot (".jpg"); it may be empty.
func (s *Store) Save(data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("data cannot be empty")
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	key := uuid.NewString() + ext

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(key), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return key, nil
}

// Get retrieves the stored bytes for a key.
func (s *Store) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found for %s: %w", key, err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Exists checks whether a key has stored bytes.
func (s *Store) Exists(key string) bool {
	if key == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Delete removes the file for a key. A missing file is not an error.
func (s *Store) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Hash computes the SHA256 of the stored bytes, hex-encoded, for
// ETag/cache validation.
func (s *Store) Hash(key string) (string, error) {
	data, err := s.Get(key)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for a key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.basePath, filepath.Base(key))
}
