// Package filecheck validates uploaded documents before they reach object storage.
package filecheck

import (
	"bytes"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ledongthuc/pdf"

	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/util"
)

const (
	MimePDF  = "application/pdf"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeWEBP = "image/webp"
)

// Rules bounds what an upload may contain.
type Rules struct {
	MaxBytes int64
	Allowed  []string
}

var (
	ApplicationRules = Rules{MaxBytes: 3 << 20, Allowed: []string{MimePDF, MimeJPEG, MimePNG, MimeWEBP}}
	LibraryRules     = Rules{MaxBytes: 5 << 20, Allowed: []string{MimePDF, MimeJPEG, MimePNG, MimeWEBP}}
	QRRules          = Rules{MaxBytes: 2 << 20, Allowed: []string{MimeJPEG, MimePNG, MimeWEBP}}
)

// Result describes an accepted file.
type Result struct {
	Mime string
	Ext  string
	Size int64
}

// Inspect sniffs the content type of data and enforces rules. The declared
// type from the client is ignored.
func Inspect(data []byte, rules Rules) (Result, error) {
	size := int64(len(data))
	if size == 0 {
		return Result{}, apperr.Validation("file required")
	}
	if rules.MaxBytes > 0 && size > rules.MaxBytes {
		return Result{}, apperr.Validationf("file too large: %s (max %s)",
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(rules.MaxBytes)))
	}

	mime := sniff(data)
	if !slices.Contains(rules.Allowed, mime) {
		return Result{}, apperr.Validationf("unsupported file type %s", mime)
	}
	if mime == MimePDF {
		if err := checkPDF(data); err != nil {
			return Result{}, apperr.Wrap(apperr.ErrValidation, "unreadable pdf", err)
		}
	}
	return Result{Mime: mime, Ext: util.ExtFromMime(mime), Size: size}, nil
}

func sniff(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

func checkPDF(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("pdf has no pages")
	}
	return nil
}

// MimeOfKey maps a stored key's extension back to its content type.
func MimeOfKey(key string) string {
	switch util.ExtOfKey(key) {
	case "pdf":
		return MimePDF
	case "jpg", "jpeg":
		return MimeJPEG
	case "png":
		return MimePNG
	case "webp":
		return MimeWEBP
	default:
		return "application/octet-stream"
	}
}
