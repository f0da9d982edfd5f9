package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadURLPrefix is where stored files are served from
const UploadURLPrefix = "/uploads"

// saveUpload stores the multipart file in field under dir and returns its
// public URL. It returns "" when the request carries no such file.
func saveUpload(c echo.Context, field, dir, prefix string) (string, error) {
	if dir == "" || !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return "", nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s%s%s", prefix, uuid.NewString(), strings.ToLower(filepath.Ext(fh.Filename)))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return UploadURLPrefix + "/" + name, nil
}
