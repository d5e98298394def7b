// Package upload reads multipart files into uploads for the object stores.
package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/auth/domain/entity"
	"portfolio_backend/internal/shared/apperr"
)

// MsgTooLarge is returned when a request body exceeds the upload limit.
const MsgTooLarge = "Uploaded files are too large"

// Limit caps the request body at maxBytes. A non-positive value disables the cap.
func Limit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// FromForm opens the multipart file posted under field. A missing file, or a body
// that is not multipart, yields a nil upload. The returned func closes the file.
func FromForm(c *gin.Context, field string) (*entity.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, noop, apperr.Validation(MsgTooLarge)
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, apperr.Validation("Invalid " + field + " upload")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, apperr.Internal(err)
	}
	return &entity.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
