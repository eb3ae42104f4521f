// Package uploads stores images attached to posts and profiles.
package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	FolderPosts   = "posts"
	FolderProfile = "profile"

	// PublicPrefix is the path prefix under which stored files are served and
	// recorded on users and posts.
	PublicPrefix = "uploads"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
	ErrNotFound        = errors.New("file not found")
	ErrInvalidKey      = errors.New("invalid file key")
)

var allowedTypes = []string{"image/jpeg", "image/png"}

// Store persists uploaded files by key, e.g. "posts/1700000000000-image-1a2b3c4d.png".
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Adapter maps an incoming multipart file to a stored path.
type Adapter struct {
	store    Store
	maxBytes int64
	now      func() time.Time
}

func NewAdapter(store Store, maxBytes int64) *Adapter {
	return &Adapter{store: store, maxBytes: maxBytes, now: time.Now}
}

// FolderFor infers the destination folder from the request route.
func FolderFor(routePath string) string {
	if strings.Contains(routePath, "/users") {
		return FolderProfile
	}
	return FolderPosts
}

// FromRequest stores the file sent in the given multipart field and returns its
// public path. It returns "" when the request carries no such file.
func (a *Adapter) FromRequest(c echo.Context, field string) (string, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		return "", nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("read form file %q: %w", field, err)
	}
	return a.Save(context.WithoutCancel(c.Request().Context()), FolderFor(c.Request().URL.Path), field, fh)
}

// Save sniffs, names and stores fh under folder.
func (a *Adapter) Save(ctx context.Context, folder, field string, fh *multipart.FileHeader) (string, error) {
	if a.maxBytes > 0 && fh.Size > a.maxBytes {
		return "", ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	limit := a.maxBytes
	if limit <= 0 {
		limit = fh.Size
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return "", ErrUnsupportedType
	}

	key := fmt.Sprintf("%s/%d-%s-%s%s", folder, a.now().UnixMilli(), field, uuid.NewString()[:8], mtype.Extension())
	if err := a.store.Save(ctx, key, bytes.NewReader(data), int64(len(data)), mtype.String()); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path.Join(PublicPrefix, key), nil
}

// Discard deletes a file previously returned by Save, for use when the request
// that uploaded it fails.
func (a *Adapter) Discard(ctx context.Context, storedPath string) error {
	raw, ok := strings.CutPrefix(storedPath, PublicPrefix+"/")
	if !ok {
		return ErrInvalidKey
	}
	key, err := CleanKey(raw)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete upload %s: %w", key, err)
	}
	return nil
}

// CleanKey validates a key taken from a request path.
func CleanKey(raw string) (string, error) {
	if raw == "" || strings.Contains(raw, "\\") {
		return "", ErrInvalidKey
	}
	key := path.Clean("/" + raw)[1:]
	if key == "" || key != strings.TrimPrefix(raw, "/") {
		return "", ErrInvalidKey
	}
	return key, nil
}
