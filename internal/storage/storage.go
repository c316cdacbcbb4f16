package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotPDF         = errors.New("resume must be a PDF file")
	ErrTooLarge       = errors.New("resume is too large")
	ErrEmpty          = errors.New("resume is empty")
	ErrInvalidObject  = errors.New("invalid object name")
	ErrObjectNotFound = fmt.Errorf("object not found: %w", os.ErrNotExist)
)

// ValidateResume sniffs the content instead of trusting the client's
// Content-Type.
func ValidateResume(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if int64(len(data)) > maxBytes {
		return ErrTooLarge
	}
	if !mimetype.Detect(data).Is("application/pdf") {
		return ErrNotPDF
	}
	return nil
}

// DiskStore keeps blobs as files under a root directory. Object names map
// one to one to file names.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", ErrInvalidObject
	}
	return filepath.Join(s.root, name), nil
}

// Put writes through a temp file so readers never see a partial object.
func (s *DiskStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (s *DiskStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return data, err
}

// Delete is idempotent.
func (s *DiskStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
