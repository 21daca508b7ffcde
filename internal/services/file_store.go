package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore keeps uploaded attachment bytes. Implementations return plain
// errors; the task workflow wraps them into ErrIO.
type FileStore interface {
	Save(originalName string, r io.Reader) (storedName string, err error)
	Remove(storedName string) error
	Path(storedName string) (string, error)
}

type diskStore struct {
	root string
}

// NewDiskStore stores files flat under root with random names.
func NewDiskStore(root string) FileStore {
	return &diskStore{root: filepath.Clean(root)}
}

func (s *diskStore) Save(originalName string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := uuid.NewString() + ext

	f, err := os.OpenFile(filepath.Join(s.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close file: %w", err)
	}
	return name, nil
}

func (s *diskStore) Remove(storedName string) error {
	p, err := s.Path(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path resolves a stored name inside root; nested paths are rejected.
func (s *diskStore) Path(storedName string) (string, error) {
	base := filepath.Base(storedName)
	if base != storedName || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("bad filepath %q", storedName)
	}
	return filepath.Join(s.root, base), nil
}
