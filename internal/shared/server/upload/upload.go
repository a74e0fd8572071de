// Package upload reads multipart files into memory for validation.
package upload

import (
	"errors"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/apperr"
)

// formOverhead is the slack allowed for multipart framing and text fields.
const formOverhead = 1 << 20

// ReadFile returns the bytes of the multipart field. Files over limit are
// rejected with their actual size.
func ReadFile(c *gin.Context, field string, limit int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)

	fileHeader, err := c.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperr.Validation("file too large")
		}
		return nil, apperr.Validation("file required")
	}
	if fileHeader.Size > limit {
		return nil, apperr.Validationf("file too large: %s (max %s)",
			humanize.IBytes(uint64(fileHeader.Size)), humanize.IBytes(uint64(limit)))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperr.Validation("unable to read file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, apperr.Validation("unable to read file")
	}
	return data, nil
}
