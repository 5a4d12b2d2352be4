package handlers

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

var errUnsupportedImage = errors.New("unsupported image format. Only PNG, JPG, JPEG are allowed")

// saveImage decodes a png or jpeg upload, scales it to at most 800px wide
// and writes it as <uuid>.jpg into dir. It returns the file name.
func saveImage(dir, originalName string, src io.Reader) (string, error) {
	var img image.Image
	var err error
	switch strings.ToLower(filepath.Ext(originalName)) {
	case ".png":
		img, err = png.Decode(src)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(src)
	default:
		return "", errUnsupportedImage
	}
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > 800 {
		img = resize.Resize(800, 0, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	filename := uuid.New().String() + ".jpg"
	out, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return filename, nil
}
