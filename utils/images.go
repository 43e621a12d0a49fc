package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// SaveProductImage decodes an uploaded image, stores it under dir with a
// uuid name and writes a 300px-wide thumbnail alongside it in dir/thumb.
// Returns the stored file name.
func SaveProductImage(file multipart.File, dir string) (string, error) {
	img, err := imaging.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	fileName := uuid.New().String() + ".jpg"
	originalPath := filepath.Join(dir, fileName)
	thumbDir := filepath.Join(dir, "thumb")

	if err := EnsureDir(thumbDir); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := imaging.Save(img, originalPath); err != nil {
		return "", fmt.Errorf("failed to save original image: %w", err)
	}

	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, filepath.Join(thumbDir, fileName)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return fileName, nil
}
