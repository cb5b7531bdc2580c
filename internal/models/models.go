package models

import "time"

// RecognitionRequest is a single cover image handed to the recognition pipeline
type RecognitionRequest struct {
	ImagePath string
	Language  string
}

// MetadataRecord is the bibliographic metadata extracted from a cover.
// Title, Author, Year and Publisher are nil when nothing could be found.
type MetadataRecord struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	Year          *int    `json:"year"`
	Publisher     *string `json:"publisher"`
	ExtractedText string  `json:"extracted_text"`
	RawOCRText    string  `json:"raw_ocr_text"`
}

// Extractor names recorded in Diagnostics
const (
	ExtractorLLM      = "yandexgpt"
	ExtractorFallback = "fallback"
)

// Diagnostics describes how a result was produced
type Diagnostics struct {
	Extractor   string        `json:"extractor,omitempty"`
	TextLength  int           `json:"text_length"`
	OCRDuration time.Duration `json:"ocr_duration"`
	Duration    time.Duration `json:"duration"`
}

// Result is the terminal value of a pipeline run: either Metadata or Error is set, never both.
type Result struct {
	Metadata    *MetadataRecord `json:"metadata,omitempty"`
	Error       string          `json:"error,omitempty"`
	Diagnostics Diagnostics     `json:"diagnostics"`
}

// Failed reports whether the run ended in an error
func (r Result) Failed() bool {
	return r.Error != ""
}

// BookSession represents an uploaded cover and its recognition result
type BookSession struct {
	ID        string          `json:"book_id"`
	Status    string          `json:"status"`
	ImagePath string          `json:"-"`
	ImageURL  string          `json:"image_url"`
	Language  string          `json:"language"`
	Metadata  *MetadataRecord `json:"metadata,omitempty"`
	Extractor string          `json:"extractor,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StringValue returns the dereferenced string or "" for nil
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}
