package dataset

import (
	"context"
	"log/slog"
	"strings"
)

// CoverFetcher downloads a cover image for an ISBN
type CoverFetcher interface {
	FetchCover(ctx context.Context, isbn, outputDir string) (string, error)
}

// ResolveCovers downloads covers into coversDir for samples that only carry
// an ISBN. Samples left without an image are returned in missing.
func ResolveCovers(ctx context.Context, samples []CoverSample, fetcher CoverFetcher, coversDir string) (missing []string) {
	for i := range samples {
		s := &samples[i]
		if s.HasImage() {
			continue
		}
		if strings.TrimSpace(s.ISBN) == "" || fetcher == nil {
			missing = append(missing, s.GetIdentifier())
			continue
		}

		path, err := fetcher.FetchCover(ctx, s.ISBN, coversDir)
		if err != nil {
			slog.Warn("Unable to fetch cover", "id", s.GetIdentifier(), "isbn", s.ISBN, "err", err)
			missing = append(missing, s.GetIdentifier())
			continue
		}
		s.ImagePath = path
	}

	return missing
}
