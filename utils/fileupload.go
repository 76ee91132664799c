package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxPhotoSize is 5MB in bytes
	MaxPhotoSize = 5 * 1024 * 1024
)

// AllowedPhotoFormats are the accepted intake photo extensions
var AllowedPhotoFormats = []string{".jpg", ".jpeg", ".png"}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidatePhotoFile validates the uploaded file format and size
func ValidatePhotoFile(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxPhotoSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxPhotoSize/(1024*1024)),
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, allowed := range AllowedPhotoFormats {
		if ext == allowed {
			return nil
		}
	}

	return &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedPhotoFormats, ", ")),
	}
}
