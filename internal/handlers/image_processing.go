package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
}

// validateImage checks the extension, sniffed MIME type and image header of an upload
func validateImage(fileData []byte, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("only image files allowed")
	}

	mimeType := http.DetectContentType(fileData)
	if !allowedMIMETypes[mimeType] {
		return fmt.Errorf("only image files allowed")
	}

	width, height, err := getImageDimensions(fileData)
	if err != nil {
		return fmt.Errorf("unreadable image: %w", err)
	}

	slog.Debug("Upload validated", "filename", filename, "mime", mimeType, "width", width, "height", height)
	return nil
}

// saveImageFile stores an upload under a fresh name and returns that name and its path
func (h *Handler) saveImageFile(fileData []byte, filename string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	imageFilename := uuid.New().String() + ext
	imageFilePath := filepath.Join(h.cfg.UploadDir, imageFilename)

	if err := os.WriteFile(imageFilePath, fileData, 0644); err != nil {
		return "", "", fmt.Errorf("failed to save image: %w", err)
	}

	slog.Info("Image saved", "filename", imageFilename, "original", filename, "bytes", len(fileData))
	return imageFilename, imageFilePath, nil
}

func getImageDimensions(fileData []byte) (int, int, error) {
	img, _, err := image.DecodeConfig(bytes.NewReader(fileData))
	if err != nil {
		return 0, 0, err
	}

	return img.Width, img.Height, nil
}
