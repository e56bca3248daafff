package lifecycle

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	// Register the decoders dimension probing understands
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mediakit/offload/internal/apperrors"
)

// detectMimeType sniffs the file content, not the extension
func detectMimeType(localPath string) (string, error) {
	mime, err := mimetype.DetectFile(localPath)
	switch {
	case err == nil:
		return mime.String(), nil
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%q: %w", localPath, apperrors.ErrLocalFileMissing)
	default:
		return "", fmt.Errorf("failed to detect mime type of %q: %w", localPath, err)
	}
}

// probeDimensions reads the pixel dimensions from the image header without
// decoding the pixels
func probeDimensions(localPath string) (width int, height int, err error) {
	file, err := os.Open(localPath)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close() // nolint:errcheck

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}

	return config.Width, config.Height, nil
}
