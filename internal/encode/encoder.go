package encode

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// DefaultQuality is used by lossy encoders when no quality is given.
const DefaultQuality = 85

// Encoder encodes an image into bytes of one image format.
type Encoder interface {
	// Encode encodes an image to bytes in the target format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "jpeg", "png", "webp").
	Format() string

	// ContentType returns the MIME type of the encoded bytes.
	ContentType() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format and quality.
func NewEncoder(format string, quality int) (Encoder, error) {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "png":
		return &PNGEncoder{}, nil
	case "webp":
		return newWebPEncoder(quality)
	default:
		return nil, fmt.Errorf("unsupported image format: %q (supported: jpeg, png, webp)", format)
	}
}

// ForPath picks an encoder from the file extension of path.
func ForPath(path string, quality int) (Encoder, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("cannot infer image format from %q: no extension", path)
	}
	return NewEncoder(ext, quality)
}
