package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/medikart/medikart-backend/internal/config"
)

func newTestUploader(t *testing.T) *DiskUploader {
	t.Helper()
	u, err := NewDiskUploader(config.UploadConfig{
		Dir:          t.TempDir(),
		BaseURL:      "/uploads/prescriptions",
		MaxSizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("NewDiskUploader() error = %v", err)
	}
	return u
}

func fileHeader(t *testing.T, filename, contentType string, size int) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="prescription"; filename="` + filename + `"`},
		"Content-Type":        {contentType},
	})
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte("a"), size)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["prescription"][0]
}

func TestSaveAcceptsAllowedTypes(t *testing.T) {
	u := newTestUploader(t)

	tests := []struct {
		filename    string
		contentType string
	}{
		{"scan.jpg", "image/jpeg"},
		{"scan.jpeg", "image/jpeg"},
		{"scan.png", "image/png"},
		{"scan.pdf", "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			url, err := u.Save(fileHeader(t, tt.filename, tt.contentType, 100))
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if !strings.HasPrefix(url, "/uploads/prescriptions/") {
				t.Errorf("url = %q, want base prefix", url)
			}
		})
	}
}

func TestSaveRejectsBadType(t *testing.T) {
	u := newTestUploader(t)

	if _, err := u.Save(fileHeader(t, "malware.exe", "application/octet-stream", 100)); err == nil {
		t.Error("Save() accepted .exe, want error")
	}
	if _, err := u.Save(fileHeader(t, "fake.jpg", "application/pdf", 100)); err == nil {
		t.Error("Save() accepted mismatched content type, want error")
	}
}

func TestSaveRejectsOversized(t *testing.T) {
	u := newTestUploader(t)

	if _, err := u.Save(fileHeader(t, "big.jpg", "image/jpeg", 2048)); err == nil {
		t.Error("Save() accepted oversized file, want error")
	}
}

func TestSaveRandomizesFilenames(t *testing.T) {
	u := newTestUploader(t)

	first, err := u.Save(fileHeader(t, "scan.jpg", "image/jpeg", 100))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := u.Save(fileHeader(t, "scan.jpg", "image/jpeg", 100))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first == second {
		t.Error("two uploads of the same filename produced the same URL")
	}
}
