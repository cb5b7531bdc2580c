package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultCoversURL is the Open Library Covers API base
const DefaultCoversURL = "https://covers.openlibrary.org"

// Fetcher retrieves book cover images by ISBN
type Fetcher struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewFetcher creates a new cover fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL: DefaultCoversURL,
	}
}

// FetchCover downloads the cover for isbn into outputDir and returns its path
func (f *Fetcher) FetchCover(ctx context.Context, isbn, outputDir string) (string, error) {
	isbn = CleanISBN(isbn)
	if isbn == "" {
		return "", fmt.Errorf("empty ISBN")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_cover.jpg", isbn))
	if _, err := os.Stat(outputPath); err == nil {
		slog.Debug("Cover already downloaded", "isbn", isbn, "path", outputPath)
		return outputPath, nil
	}

	// Open Library Covers API: {base}/b/isbn/{ISBN}-L.jpg
	url := fmt.Sprintf("%s/b/isbn/%s-L.jpg", f.BaseURL, isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cover request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cover API returned status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read cover data: %w", err)
	}

	// Open Library answers unknown ISBNs with a tiny placeholder
	if len(imageData) < 1000 {
		return "", fmt.Errorf("cover image too small (likely placeholder)")
	}

	if err := os.WriteFile(outputPath, imageData, 0644); err != nil {
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}

	slog.Info("Downloaded cover image", "isbn", isbn, "path", outputPath)
	return outputPath, nil
}

// CleanISBN removes hyphens and normalizes ISBN
func CleanISBN(isbn string) string {
	return strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
}
