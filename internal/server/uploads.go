package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const defaultUploadMaxBytes = 16 << 20

// UploadsHandler accepts file uploads for later analysis. Files land under
// DataDir/uploads with generated names so a crafted filename can't escape
// the directory.
type UploadsHandler struct {
	DataDir  string
	MaxBytes int64
}

// Register mounts the uploads endpoint on the API group.
func (h *UploadsHandler) Register(g *echo.Group) {
	g.POST("/uploads", h.create)
}

func (h *UploadsHandler) create(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field 'file' is required")
	}

	maxBytes := h.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxBytes
	}
	if fh.Size > maxBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	dir := filepath.Join(h.DataDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	name := uuid.New().String() + sanitizeExt(fh.Filename)
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	written, tooLarge, err := copyCapped(dst, src, maxBytes)
	if err != nil {
		os.Remove(path)
		return err
	}
	if tooLarge {
		os.Remove(path)
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"path": path,
		"name": fh.Filename,
		"size": written,
	})
}

// copyCapped copies at most maxBytes from src. The size header on a
// multipart part trusts the client, so the stream itself is capped:
// reading one byte past the limit flags oversized bodies instead of
// silently truncating them.
func copyCapped(dst io.Writer, src io.Reader, maxBytes int64) (written int64, tooLarge bool, err error) {
	written, err = io.Copy(dst, io.LimitReader(src, maxBytes+1))
	if err != nil {
		return written, false, err
	}
	return written, written > maxBytes, nil
}

// sanitizeExt keeps only a plain extension from the client filename.
func sanitizeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) > 10 {
		return ""
	}
	for _, r := range ext {
		if r == '/' || r == '\\' || r == 0 {
			return ""
		}
	}
	return ext
}
