// Package heuristic derives cover metadata from OCR text without any external calls.
package heuristic

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/coverscan/internal/models"
)

var (
	yearRegex  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	digitRegex = regexp.MustCompile(`[0-9]`)
)

// Extract classifies the lines of text into year, author and title.
// Each line is consumed by the first rule it satisfies:
//  1. the first line containing a year in 1900-2099 sets Year
//  2. the first longer-than-3, digit-free line sets Author
//  3. the next longer-than-1 line sets Title
//
// Publisher is never set. ExtractedText always carries the full input.
func Extract(text string) models.MetadataRecord {
	slog.Info("Using fallback regex extraction")

	metadata := models.MetadataRecord{
		ExtractedText: text,
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	yearFound := false
	for _, line := range lines {
		length := utf8.RuneCountInString(line)

		if !yearFound {
			if match := yearRegex.FindString(line); match != "" {
				year, _ := strconv.Atoi(match)
				metadata.Year = &year
				yearFound = true
				continue
			}
		}
		if metadata.Author == nil && length > 3 && !digitRegex.MatchString(line) {
			metadata.Author = models.StringPtr(line)
			continue
		}
		if metadata.Title == nil && length > 1 {
			metadata.Title = models.StringPtr(line)
			continue
		}
	}

	return metadata
}
