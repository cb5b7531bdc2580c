package recognition

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lehigh-university-libraries/coverscan/internal/cataloging"
	"github.com/lehigh-university-libraries/coverscan/internal/heuristic"
	"github.com/lehigh-university-libraries/coverscan/internal/models"
	"github.com/lehigh-university-libraries/coverscan/internal/ocr"
)

type fakeNormalizer struct {
	data []byte
	err  error
}

func (f *fakeNormalizer) Normalize(path string) ([]byte, error) {
	return f.data, f.err
}

type fakeDetector struct {
	text     string
	err      error
	calls    int
	gotImage []byte
	gotLang  string
}

func (f *fakeDetector) ExtractText(ctx context.Context, image []byte, language string) (string, error) {
	f.calls++
	f.gotImage = image
	f.gotLang = language
	return f.text, f.err
}

type fakeExtractor struct {
	outcome cataloging.Outcome
	calls   int
	gotText string
}

func (f *fakeExtractor) ExtractMetadata(ctx context.Context, text string) cataloging.Outcome {
	f.calls++
	f.gotText = text
	return f.outcome
}

type panickingExtractor struct{}

func (panickingExtractor) ExtractMetadata(ctx context.Context, text string) cataloging.Outcome {
	panic("boom")
}

func request() models.RecognitionRequest {
	return models.RecognitionRequest{ImagePath: "cover.jpg", Language: "ru"}
}

func TestProcess_UsesExtractedRecord(t *testing.T) {
	blob := "Михаил Булгаков\nМастер и Маргарита\nАСТ 2019"
	record := models.MetadataRecord{
		Title:         models.StringPtr("Мастер и Маргарита"),
		Author:        models.StringPtr("Михаил Булгаков"),
		Year:          models.IntPtr(2019),
		Publisher:     models.StringPtr("АСТ"),
		ExtractedText: "",
	}

	norm := &fakeNormalizer{data: []byte("jpeg")}
	det := &fakeDetector{text: blob}
	ext := &fakeExtractor{outcome: cataloging.Extracted{Record: record}}

	result := New(norm, det, ext).Process(context.Background(), request())

	if result.Failed() {
		t.Fatalf("Unexpected error: %s", result.Error)
	}
	if string(det.gotImage) != "jpeg" {
		t.Errorf("Detector did not receive normalized bytes")
	}
	if det.gotLang != "ru" {
		t.Errorf("Expected language hint ru, got %s", det.gotLang)
	}
	if ext.gotText != blob {
		t.Errorf("Extractor got %q, want %q", ext.gotText, blob)
	}

	want := record
	want.RawOCRText = blob
	if !reflect.DeepEqual(*result.Metadata, want) {
		t.Errorf("Expected %+v, got %+v", want, *result.Metadata)
	}
	if result.Diagnostics.Extractor != models.ExtractorLLM {
		t.Errorf("Expected extractor %s, got %s", models.ExtractorLLM, result.Diagnostics.Extractor)
	}
	if result.Diagnostics.TextLength != len(blob) {
		t.Errorf("Expected text length %d, got %d", len(blob), result.Diagnostics.TextLength)
	}
}

func TestProcess_DeferredUsesFallback(t *testing.T) {
	blobs := []string{
		"Лев Толстой\nВойна и мир\n1869",
		"Братья Стругацкие\nПикник на обочине\n2019",
		"x",
		"ЭКСМО\n\n  Фантастика  \n2001",
	}

	for _, blob := range blobs {
		t.Run(blob, func(t *testing.T) {
			ext := &fakeExtractor{outcome: cataloging.Deferred{Reason: "test"}}
			result := New(&fakeNormalizer{data: []byte("img")}, &fakeDetector{text: blob}, ext).
				Process(context.Background(), request())

			if result.Failed() {
				t.Fatalf("Unexpected error: %s", result.Error)
			}

			want := heuristic.Extract(blob)
			want.RawOCRText = blob
			if !reflect.DeepEqual(*result.Metadata, want) {
				t.Errorf("Expected fallback record %+v, got %+v", want, *result.Metadata)
			}
			if result.Diagnostics.Extractor != models.ExtractorFallback {
				t.Errorf("Expected extractor %s, got %s", models.ExtractorFallback, result.Diagnostics.Extractor)
			}
		})
	}
}

func TestProcess_ShortTextEndsInEmptyFallback(t *testing.T) {
	// The real extractor defers on short text without calling out
	ext := cataloging.NewService(nil)
	result := New(&fakeNormalizer{data: []byte("img")}, &fakeDetector{text: "x"}, ext).
		Process(context.Background(), request())

	if result.Failed() {
		t.Fatalf("Unexpected error: %s", result.Error)
	}
	md := result.Metadata
	if md.Title != nil || md.Author != nil || md.Year != nil || md.Publisher != nil {
		t.Errorf("Expected no fields, got %+v", md)
	}
	if md.ExtractedText != "x" || md.RawOCRText != "x" {
		t.Errorf("Expected extracted and raw text to be x, got %q and %q", md.ExtractedText, md.RawOCRText)
	}
}

func TestProcess_NoText(t *testing.T) {
	for _, blob := range []string{"", "   \n\t "} {
		ext := &fakeExtractor{}
		result := New(&fakeNormalizer{data: []byte("img")}, &fakeDetector{text: blob}, ext).
			Process(context.Background(), request())

		if result.Error != NoTextMessage {
			t.Errorf("Expected %q, got %q", NoTextMessage, result.Error)
		}
		if result.Metadata != nil {
			t.Errorf("Expected no metadata on failure, got %+v", result.Metadata)
		}
		if ext.calls != 0 {
			t.Errorf("Extractor must not run without text, got %d calls", ext.calls)
		}
	}
}

func TestProcess_DetectionError(t *testing.T) {
	detErr := &ocr.DetectionError{StatusCode: 401, Err: errors.New("unauthorized")}
	ext := &fakeExtractor{}
	det := &fakeDetector{err: detErr}

	result := New(&fakeNormalizer{data: []byte("img")}, det, ext).Process(context.Background(), request())

	if !result.Failed() {
		t.Fatal("Expected failure")
	}
	if result.Error != detErr.Error() {
		t.Errorf("Expected %q, got %q", detErr.Error(), result.Error)
	}
	if det.calls != 1 {
		t.Errorf("Expected a single detection attempt, got %d", det.calls)
	}
	if ext.calls != 0 {
		t.Errorf("Extractor must not run after detection failure")
	}
}

func TestProcess_UnreadableImage(t *testing.T) {
	det := &fakeDetector{text: "text"}
	result := New(&fakeNormalizer{err: errors.New("failed to read image")}, det, &fakeExtractor{}).
		Process(context.Background(), request())

	if result.Error != "failed to read image" {
		t.Errorf("Unexpected error %q", result.Error)
	}
	if det.calls != 0 {
		t.Errorf("Detector must not run without image bytes")
	}
}

func TestProcess_RecoversPanics(t *testing.T) {
	result := New(&fakeNormalizer{data: []byte("img")}, &fakeDetector{text: "Какой-то текст"}, panickingExtractor{}).
		Process(context.Background(), request())

	if result.Error != "boom" {
		t.Errorf("Expected panic converted to error, got %q", result.Error)
	}
	if result.Metadata != nil {
		t.Errorf("Expected no metadata after panic")
	}
}

func TestProcess_RawTextRoundTrip(t *testing.T) {
	blob := "  Агата Кристи\nДесять негритят  "
	outcomes := []cataloging.Outcome{
		cataloging.Extracted{Record: models.MetadataRecord{Title: models.StringPtr("Десять негритят")}},
		cataloging.Deferred{Reason: "test"},
	}

	for _, outcome := range outcomes {
		result := New(&fakeNormalizer{data: []byte("img")}, &fakeDetector{text: blob}, &fakeExtractor{outcome: outcome}).
			Process(context.Background(), request())

		if result.Metadata == nil || result.Metadata.RawOCRText != blob {
			t.Errorf("Expected raw OCR text %q for %T, got %+v", blob, outcome, result.Metadata)
		}
	}
}
