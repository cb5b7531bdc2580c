package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CoverSample is one ground-truth entry of an evaluation manifest.
// ImagePath may be relative to the manifest; samples without an image
// but with an ISBN get their cover downloaded before the run.
type CoverSample struct {
	ID        string `json:"id" yaml:"id" parquet:"id"`
	ImagePath string `json:"image_path" yaml:"image_path" parquet:"image_path"`
	ISBN      string `json:"isbn" yaml:"isbn" parquet:"isbn"`
	Language  string `json:"language" yaml:"language" parquet:"language"`

	// Expected metadata
	Title     string `json:"title" yaml:"title" parquet:"title"`
	Author    string `json:"author" yaml:"author" parquet:"author"`
	Year      string `json:"year" yaml:"year" parquet:"year"`
	Publisher string `json:"publisher" yaml:"publisher" parquet:"publisher"`
}

// UnmarshalJSON accepts year either as a string or as a bare number
func (s *CoverSample) UnmarshalJSON(data []byte) error {
	type plain CoverSample
	aux := struct {
		*plain
		Year json.RawMessage `json:"year"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	year, err := decodeYear(aux.Year)
	if err != nil {
		return err
	}
	s.Year = year
	return nil
}

func decodeYear(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var year string
		if err := json.Unmarshal(raw, &year); err != nil {
			return "", err
		}
		return year, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("year must be a string or a number, got %s", raw)
	}
	return n.String(), nil
}

// Manifest is the YAML form of a dataset
type Manifest struct {
	Samples []CoverSample `yaml:"samples"`
}

// HasImage reports whether the sample points at a local image
func (s *CoverSample) HasImage() bool {
	return strings.TrimSpace(s.ImagePath) != ""
}

// GetLanguage returns the sample language hint, "ru" when unset
func (s *CoverSample) GetLanguage() string {
	if s.Language == "" {
		return "ru"
	}
	return s.Language
}

// GetIdentifier returns the ID, falling back to the ISBN
func (s *CoverSample) GetIdentifier() string {
	if s.ID != "" {
		return s.ID
	}
	return s.ISBN
}
