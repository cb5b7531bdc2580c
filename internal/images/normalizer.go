package images

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension bounds both sides of a normalized image
	MaxDimension = 2000
	// JPEGQuality is the re-encode quality of a normalized image
	JPEGQuality = 90
)

// Normalizer prepares cover images for upload to the text detection service
type Normalizer struct {
	MaxDimension int
	Quality      int
}

// NewNormalizer creates a normalizer with the default bounds
func NewNormalizer() *Normalizer {
	return &Normalizer{
		MaxDimension: MaxDimension,
		Quality:      JPEGQuality,
	}
}

// Normalize reads the image at path, shrinks it to fit within MaxDimension
// and re-encodes it as JPEG. If decoding or encoding fails the original
// bytes are returned. An error is returned only when the file cannot be read.
func (n *Normalizer) Normalize(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	out, err := n.normalizeBytes(raw)
	if err != nil {
		slog.Error("Preprocess failed, using raw file", "path", path, "error", err)
		return raw, nil
	}

	slog.Debug("Image normalized", "path", path, "original_bytes", len(raw), "normalized_bytes", len(out))
	return out, nil
}

func (n *Normalizer) normalizeBytes(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	// Fit never enlarges images that already fit
	img = imaging.Fit(img, n.MaxDimension, n.MaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.Quality)); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	return buf.Bytes(), nil
}
