package proof

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store keeps purchase proof files. A reference returned by Save is what
// gets written to the registration row.
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	URL(ref string) string
	Delete(ctx context.Context, ref string) error
}

var (
	ErrFileType = errors.New("file type not allowed")
	ErrTooLarge = errors.New("file too large")
	ErrBadRef   = errors.New("invalid proof reference")
)

// Upload is a proof file as received from a client.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

var allowed = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Policy limits proof uploads to PDF, JPEG and PNG up to MaxBytes.
type Policy struct {
	MaxBytes int64
}

// Check verifies the extension of filename and the sniffed type of head
// agree on one of the allowed types, and returns that type.
func (p Policy) Check(filename string, size int64, head []byte) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	want, ok := allowed[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrFileType, ext)
	}
	if p.MaxBytes > 0 && size > p.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	got := http.DetectContentType(head)
	if i := strings.IndexByte(got, ';'); i >= 0 {
		got = got[:i]
	}
	if got != want {
		return "", fmt.Errorf("%w: content is %s", ErrFileType, got)
	}
	return want, nil
}

// Open checks u against the policy and returns a reader over the full
// content together with its content type.
func (p Policy) Open(u *Upload) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(u.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read proof: %w", err)
	}
	head = head[:n]

	ct, err := p.Check(u.Filename, u.Size, head)
	if err != nil {
		return "", nil, err
	}

	r := io.MultiReader(bytes.NewReader(head), u.Body)
	if p.MaxBytes > 0 {
		r = &limitedReader{r: r, n: p.MaxBytes}
	}
	return ct, r, nil
}

// limitedReader fails instead of truncating once more than n bytes are read.
type limitedReader struct {
	r io.Reader
	n int64
}

func (l *limitedReader) Read(b []byte) (int, error) {
	n, err := l.r.Read(b)
	l.n -= int64(n)
	if l.n < 0 {
		return n, ErrTooLarge
	}
	return n, err
}

// objectKey builds YYYY/MM/<uuid><ext> for a new object.
func objectKey(now time.Time, name string) string {
	ext := strings.ToLower(path.Ext(name))
	return fmt.Sprintf("%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
}

func validRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "/") {
		return false
	}
	for _, part := range strings.Split(ref, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
