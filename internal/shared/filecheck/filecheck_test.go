package filecheck

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"hippo-backend/internal/shared/apperr"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestInspectAcceptsPNG(t *testing.T) {
	res, err := Inspect(append(pngHeader, make([]byte, 64)...), ApplicationRules)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if res.Mime != MimePNG || res.Ext != "png" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestInspectAcceptsValidPDF(t *testing.T) {
	res, err := Inspect(minimalPDF(), LibraryRules)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if res.Mime != MimePDF || res.Ext != "pdf" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestInspectRejects(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		rules   Rules
		message string
	}{
		{name: "empty", data: nil, rules: ApplicationRules, message: "file required"},
		{name: "too large", data: bytes.Repeat([]byte("a"), int(ApplicationRules.MaxBytes)+1), rules: ApplicationRules, message: "file too large"},
		{name: "text", data: []byte("hello world"), rules: ApplicationRules, message: "unsupported file type text/plain"},
		{name: "pdf for qr", data: minimalPDF(), rules: QRRules, message: "unsupported file type application/pdf"},
		{name: "broken pdf", data: []byte("%PDF-1.4\nnot really a pdf"), rules: ApplicationRules, message: "unreadable pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.data, tt.rules)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.HasPrefix(apperr.MessageOf(err), tt.message) {
				t.Fatalf("expected message %q, got %q", tt.message, apperr.MessageOf(err))
			}
		})
	}
}

func TestTooLargeMessageIsHumanReadable(t *testing.T) {
	_, err := Inspect(bytes.Repeat([]byte("a"), int(QRRules.MaxBytes)+1), QRRules)
	if !strings.Contains(apperr.MessageOf(err), "max 2.0 MiB") {
		t.Fatalf("unexpected message %q", apperr.MessageOf(err))
	}
}

func TestMimeOfKey(t *testing.T) {
	cases := map[string]string{
		"users/u1/applications/a/payment.png": MimePNG,
		"regions/bel.JPG":                     MimeJPEG,
		"users/u1/parent/d.pdf":               MimePDF,
		"users/u1/parent/d":                   "application/octet-stream",
	}
	for key, want := range cases {
		if got := MimeOfKey(key); got != want {
			t.Fatalf("MimeOfKey(%q) = %q, want %q", key, got, want)
		}
	}
}
