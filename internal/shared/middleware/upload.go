package middleware

import (
	"book-records-api/internal/shared/response"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// UploadedImageKey là gin context key chứa tên file đã lưu ("" khi không có upload)
const UploadedImageKey = "uploaded_image"

// ImageSaver lưu file upload và trả về tên file đã sinh
type ImageSaver interface {
	Save(ctx context.Context, originalName string, src io.Reader) (string, error)
}

// UploadInterceptor lưu part `field` của request multipart trước khi handler chạy.
// Non-multipart requests pass through with an empty image name.
func UploadInterceptor(store ImageSaver, field string, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UploadedImageKey, "")

		if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			c.Next()
			return
		}

		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		fh, err := c.FormFile(field)
		switch {
		case errors.Is(err, http.ErrMissingFile):
			c.Next()
			return
		case isTooLarge(err):
			response.RequestEntityTooLarge(c, "Uploaded file is too large")
			c.Abort()
			return
		case err != nil:
			log.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("Malformed multipart body")
			response.BadRequest(c, "Malformed multipart body")
			c.Abort()
			return
		}

		src, err := fh.Open()
		if err != nil {
			log.Error().Err(err).Msg("Failed to open uploaded file")
			response.InternalServerError(c, "Failed to store uploaded file")
			c.Abort()
			return
		}
		defer src.Close()

		name, err := store.Save(c.Request.Context(), fh.Filename, src)
		if err != nil {
			log.Error().Err(err).Str("filename", fh.Filename).Msg("Failed to store uploaded file")
			response.InternalServerError(c, "Failed to store uploaded file")
			c.Abort()
			return
		}

		c.Set(UploadedImageKey, name)
		c.Next()
	}
}

func isTooLarge(err error) bool {
	if err == nil {
		return false
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
