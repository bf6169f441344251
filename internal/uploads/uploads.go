package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kinds of attachment, each stored in its own directory.
const (
	KindPaymentProof = "payment_proofs"
	KindAvatar       = "avatars"
	KindUPIQR        = "upi_qr"
)

// MaxSize caps a single upload.
const MaxSize = 5 << 20

var (
	ErrTooLarge        = errors.New("file is larger than 5 MB")
	ErrUnsupportedType = errors.New("only JPEG, PNG, GIF and WebP images are accepted")
	ErrInvalidPath     = errors.New("invalid media path")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes attachments under a root directory and hands back paths
// relative to it.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// Save sniffs the content type, stores the file as kind/<uuid><ext> and
// returns that relative path.
func (s *Store) Save(kind string, file multipart.File, header *multipart.FileHeader) (string, error) {
	if header != nil && header.Size > MaxSize {
		return "", ErrTooLarge
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	ext, ok := extensions[http.DetectContentType(head[:n])]
	if !ok {
		return "", ErrUnsupportedType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	dir := filepath.Join(s.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := uuid.NewString() + ext
	out, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	written, err := io.Copy(out, io.LimitReader(file, MaxSize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > MaxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(filepath.Join(dir, name))
		return "", err
	}
	return path.Join(kind, name), nil
}

// FromRequest saves the multipart field when present. A missing field
// returns an empty path and no error.
func (s *Store) FromRequest(r *http.Request, field, kind string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()
	return s.Save(kind, file, header)
}

// Resolve maps a stored relative path back to a file on disk, refusing
// anything that escapes the root.
func (s *Store) Resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" || strings.Contains(rel, "\\") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Remove deletes a stored file, ignoring ones already gone.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	p, err := s.Resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
