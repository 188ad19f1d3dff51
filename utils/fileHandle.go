package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// SaveUploadedImage stores an uploaded image under destDir and returns the stored file name
func SaveUploadedImage(file *multipart.FileHeader, destDir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	newFilename := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(destDir, newFilename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return newFilename, nil
}

// GetFileURL returns the public URL of a stored upload
func GetFileURL(fileName string) string {
	if fileName == "" {
		return ""
	}
	return "/uploads/" + fileName
}
