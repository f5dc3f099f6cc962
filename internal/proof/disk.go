package proof

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore writes proofs below a directory. The server exposes that
// directory under BaseURL.
type DiskStore struct {
	dir     string
	baseURL string
	now     func() time.Time
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create proof dir: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	ref := objectKey(s.now().UTC(), name)
	full := filepath.Join(s.dir, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create proof dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create proof file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write proof file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close proof file: %w", err)
	}

	return ref, nil
}

func (s *DiskStore) URL(ref string) string {
	if !validRef(ref) {
		return ""
	}
	return s.baseURL + "/" + ref
}

func (s *DiskStore) Delete(ctx context.Context, ref string) error {
	if !validRef(ref) {
		return ErrBadRef
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete proof file: %w", err)
	}
	return nil
}
