package media

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
	ErrNotImage    = errors.New("content is not an image")
	ErrTooLarge    = errors.New("file too large")
)

// MaxImageSize bounds uploads accepted by PutImage.
const MaxImageSize = 5 << 20

// Store keeps uploaded files on disk under a single base directory.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) filePath(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	full := filepath.Join(s.baseDir, name)
	if !strings.HasPrefix(full, filepath.Clean(s.baseDir)+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return full, nil
}

// PutImage stores content under name and returns its detected content type.
func (s *Store) PutImage(name string, content []byte) (string, error) {
	if len(content) > MaxImageSize {
		return "", ErrTooLarge
	}
	contentType := http.DetectContentType(content)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}

	full, err := s.filePath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(full, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return contentType, nil
}

func (s *Store) Get(name string) ([]byte, error) {
	full, err := s.filePath(name)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return content, nil
}

func (s *Store) Delete(name string) error {
	full, err := s.filePath(name)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *Store) Exists(name string) bool {
	full, err := s.filePath(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}
