package cataloging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lehigh-university-libraries/coverscan/internal/models"
)

// metadataSchema bounds what a model answer may look like before it is coerced
const metadataSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": ["string", "null"]},
    "author": {"type": ["string", "null"]},
    "year": {"type": ["integer", "string", "null"]},
    "publisher": {"type": ["string", "null"]},
    "extracted_text": {"type": ["string", "null"]}
  }
}`

var compiledSchema = jsonschema.MustCompileString("metadata.json", metadataSchema)

type rawMetadata struct {
	Title         *string         `json:"title"`
	Author        *string         `json:"author"`
	Year          json.RawMessage `json:"year"`
	Publisher     *string         `json:"publisher"`
	ExtractedText *string         `json:"extracted_text"`
}

// ParseMetadata turns a model answer into a MetadataRecord.
// Code fences are stripped and the JSON is validated against metadataSchema.
// A year given as a numeric string is converted; any other non-integer year
// is dropped with a warning instead of failing the whole answer.
func ParseMetadata(answer string) (models.MetadataRecord, error) {
	cleaned := StripCodeFences(answer)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return models.MetadataRecord{}, fmt.Errorf("answer is not JSON: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return models.MetadataRecord{}, fmt.Errorf("answer does not match schema: %w", err)
	}

	var raw rawMetadata
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return models.MetadataRecord{}, fmt.Errorf("decode answer: %w", err)
	}

	record := models.MetadataRecord{
		Title:     nonEmpty(raw.Title),
		Author:    nonEmpty(raw.Author),
		Publisher: nonEmpty(raw.Publisher),
		Year:      coerceYear(raw.Year),
	}
	if raw.ExtractedText != nil {
		record.ExtractedText = *raw.ExtractedText
	}

	return record, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Years outside this range are dropped like non-numeric ones
const (
	minYear = 1
	maxYear = 9999
)

func coerceYear(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n >= minYear && n <= maxYear {
			year := int(n)
			return &year
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if year, err := strconv.Atoi(s); err == nil && year >= minYear && year <= maxYear {
			return &year
		}
	}

	slog.Warn("Dropping non-numeric year from GPT answer", "year", string(raw))
	return nil
}
