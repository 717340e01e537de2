package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"welfare-committee-backend/src/models"
)

// PublicPrefix is the URL prefix the uploads directory is served under and
// the prefix of every stored photoPath.
const PublicPrefix = "uploads"

// ErrUpload means the photo passed validation but could not be written.
var ErrUpload = errors.New("failed to store photo")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// PhotoStore keeps uploaded photos on local disk under generated names.
type PhotoStore struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewPhotoStore creates dir when missing.
func NewPhotoStore(dir string, maxBytes int64) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create uploads directory: %v", ErrUpload, err)
	}
	return &PhotoStore{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

func (s *PhotoStore) Dir() string { return s.dir }

// Validate checks size, extension and sniffed content type. Every problem is
// returned as a *models.ValidationError.
func (s *PhotoStore) Validate(fh *multipart.FileHeader) error {
	verr := models.NewValidationError()
	if fh.Size > s.maxBytes {
		verr.Add(fmt.Sprintf("photo must be at most %s", formatBytes(s.maxBytes)))
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
		verr.Add("photo must be a JPG, PNG, GIF or WEBP image")
		return verr
	}
	if fh.Size <= s.maxBytes {
		file, err := fh.Open()
		if err != nil {
			return fmt.Errorf("%w: open upload: %v", ErrUpload, err)
		}
		defer file.Close()
		mtype, err := mimetype.DetectReader(file)
		if err != nil {
			return fmt.Errorf("%w: read upload: %v", ErrUpload, err)
		}
		if !strings.HasPrefix(mtype.String(), "image/") {
			verr.Add("photo content is not an image")
		}
	}
	return verr.Err()
}

// Save validates the photo and writes it under a fresh name. The returned
// path is relative to the server root, e.g. "uploads/photo-1700000000000-1a2b3c4d.jpg".
func (s *PhotoStore) Save(fh *multipart.FileHeader) (string, error) {
	if err := s.Validate(fh); err != nil {
		return "", err
	}

	name := s.filename(fh.Filename)
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open upload: %v", ErrUpload, err)
	}
	defer src.Close()

	target := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrUpload, name, err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = fmt.Errorf("photo grew past %s while copying", formatBytes(s.maxBytes))
	}
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("%w: write %s: %v", ErrUpload, name, err)
	}
	return path.Join(PublicPrefix, name), nil
}

// Remove deletes a photo previously returned by Save. Missing files are not
// an error.
func (s *PhotoStore) Remove(relPath string) error {
	name := filepath.Base(strings.TrimPrefix(relPath, PublicPrefix+"/"))
	if name == "." || name == "/" || name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove photo %s: %w", name, err)
	}
	return nil
}

func (s *PhotoStore) filename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("photo-%d-%s%s", s.now().UnixMilli(), short, ext)
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	if n >= 1024 {
		return fmt.Sprintf("%d KB", n/1024)
	}
	return fmt.Sprintf("%d bytes", n)
}
