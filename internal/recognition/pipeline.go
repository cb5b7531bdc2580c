package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/coverscan/internal/cataloging"
	"github.com/lehigh-university-libraries/coverscan/internal/config"
	"github.com/lehigh-university-libraries/coverscan/internal/heuristic"
	"github.com/lehigh-university-libraries/coverscan/internal/images"
	"github.com/lehigh-university-libraries/coverscan/internal/models"
	"github.com/lehigh-university-libraries/coverscan/internal/ocr"
)

// NoTextMessage is the error reported when detection finds nothing
const NoTextMessage = "No text found on image"

// ErrNoText is returned when the detected text is empty after trimming
var ErrNoText = errors.New(NoTextMessage)

// Normalizer turns an image file into upload-ready bytes
type Normalizer interface {
	Normalize(path string) ([]byte, error)
}

// Detector recognizes text on image bytes
type Detector interface {
	ExtractText(ctx context.Context, image []byte, language string) (string, error)
}

// Extractor structures recognized text into metadata
type Extractor interface {
	ExtractMetadata(ctx context.Context, text string) cataloging.Outcome
}

// State names a step of a pipeline run
type State string

const (
	StateNormalizing State = "normalizing"
	StateDetecting   State = "detecting"
	StateStructuring State = "structuring"
	StateFallback    State = "fallback"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Pipeline recognizes bibliographic metadata on cover images.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	normalizer Normalizer
	detector   Detector
	extractor  Extractor
	fallback   func(text string) models.MetadataRecord
}

// New assembles a pipeline from its steps
func New(normalizer Normalizer, detector Detector, extractor Extractor) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		detector:   detector,
		extractor:  extractor,
		fallback:   heuristic.Extract,
	}
}

// NewFromConfig wires the Yandex-backed pipeline
func NewFromConfig(cfg *config.Config) *Pipeline {
	return New(
		images.NewNormalizer(),
		ocr.NewService(&cfg.Vision),
		cataloging.NewService(&cfg.GPT),
	)
}

// Process runs one cover through normalization, detection and extraction.
// It never returns an error: failures are reported in Result.Error.
func (p *Pipeline) Process(ctx context.Context, req models.RecognitionRequest) (result models.Result) {
	start := time.Now()
	slog.Info("Processing cover", "path", req.ImagePath, "language", req.Language)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Processing panicked", "path", req.ImagePath, "panic", r)
			result = models.Result{Error: fmt.Sprint(r)}
		}
		result.Diagnostics.Duration = time.Since(start)
	}()

	metadata, diag, err := p.run(ctx, req)
	if err != nil {
		slog.Error("Processing failed", "path", req.ImagePath, "state", StateFailed, "error", err)
		return models.Result{Error: err.Error(), Diagnostics: diag}
	}

	slog.Info("Processing done",
		"path", req.ImagePath,
		"extractor", diag.Extractor,
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return models.Result{Metadata: metadata, Diagnostics: diag}
}

func (p *Pipeline) run(ctx context.Context, req models.RecognitionRequest) (*models.MetadataRecord, models.Diagnostics, error) {
	var diag models.Diagnostics

	slog.Debug("Pipeline state", "state", StateNormalizing)
	image, err := p.normalizer.Normalize(req.ImagePath)
	if err != nil {
		return nil, diag, err
	}

	slog.Debug("Pipeline state", "state", StateDetecting)
	ocrStart := time.Now()
	rawText, err := p.detector.ExtractText(ctx, image, req.Language)
	diag.OCRDuration = time.Since(ocrStart)
	if err != nil {
		return nil, diag, err
	}
	diag.TextLength = len(rawText)
	slog.Info("OCR text extracted", "length", len(rawText))

	if strings.TrimSpace(rawText) == "" {
		return nil, diag, ErrNoText
	}

	slog.Debug("Pipeline state", "state", StateStructuring)
	var metadata models.MetadataRecord
	switch outcome := p.extractor.ExtractMetadata(ctx, rawText).(type) {
	case cataloging.Extracted:
		slog.Info("Used YandexGPT for structure")
		metadata = outcome.Record
		diag.Extractor = models.ExtractorLLM
	case cataloging.Deferred:
		slog.Debug("Pipeline state", "state", StateFallback, "reason", outcome.Reason)
		metadata = p.fallback(rawText)
		diag.Extractor = models.ExtractorFallback
	default:
		return nil, diag, fmt.Errorf("unexpected extraction outcome %T", outcome)
	}

	metadata.RawOCRText = rawText
	slog.Debug("Pipeline state", "state", StateDone)
	return &metadata, diag, nil
}
