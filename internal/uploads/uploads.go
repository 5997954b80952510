package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/config"
	"github.com/medikart/medikart-backend/internal/logging"
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// Uploader stores an uploaded file and returns the URL it will be
// served from.
type Uploader interface {
	Save(file *multipart.FileHeader) (string, error)
}

// DiskUploader writes uploads under a local directory, served at a
// configured base URL. Filenames are random to prevent collisions and
// path guessing.
type DiskUploader struct {
	dir      string
	baseURL  string
	maxBytes int64
	logger   *logging.Logger
}

func NewDiskUploader(cfg config.UploadConfig) (*DiskUploader, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskUploader{
		dir:      cfg.Dir,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		maxBytes: cfg.MaxSizeBytes,
		logger:   logging.NewLogger("uploads"),
	}, nil
}

// Save validates size and type, writes the file and returns its URL.
func (u *DiskUploader) Save(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", apperrors.NewValidationError("file", "File is required")
	}
	if file.Size > u.maxBytes {
		return "", apperrors.NewValidationError("file", "File exceeds the 5MB size limit")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	expectedType, ok := allowedExtensions[ext]
	if !ok {
		return "", apperrors.NewValidationError("file", "Only JPEG, PNG and PDF files are allowed")
	}
	if contentType := file.Header.Get("Content-Type"); contentType != "" && contentType != expectedType {
		return "", apperrors.NewValidationError("file", "Only JPEG, PNG and PDF files are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	path := filepath.Join(u.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	u.logger.Debug("File stored", logging.Fields{
		"filename": name,
		"size":     file.Size,
	})

	return u.baseURL + "/" + name, nil
}
