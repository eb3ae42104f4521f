package handlers

import (
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/anonto42/minisocial/backend/internal/uploads"
	"github.com/labstack/echo/v4"
)

// UploadHandler serves stored images back under /uploads.
type UploadHandler struct {
	store uploads.Store
}

func NewUploadHandler(store uploads.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) Serve(c echo.Context) error {
	key, err := uploads.CleanKey(c.Param("*"))
	if err != nil {
		return toHTTPError(err)
	}
	rc, err := h.store.Open(requestContext(c), key)
	if err != nil {
		return toHTTPError(err)
	}
	defer rc.Close()

	ctype := mime.TypeByExtension(path.Ext(key))
	if ctype == "" {
		ctype = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, ctype, rc)
}

// discardUpload removes a file stored earlier in a request that then failed.
func discardUpload(c echo.Context, uploader *uploads.Adapter, logger *slog.Logger, stored string) {
	if stored == "" {
		return
	}
	if err := uploader.Discard(requestContext(c), stored); err != nil {
		logger.WarnContext(c.Request().Context(), "failed to discard orphaned upload", "path", stored, "error", err)
	}
}
