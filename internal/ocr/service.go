package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/coverscan/internal/config"
	"github.com/lehigh-university-libraries/coverscan/internal/yandex"
)

// AllLanguages asks the service to detect every supported script
const AllLanguages = "*"

// DetectionError is returned when the text detection call itself fails
type DetectionError struct {
	StatusCode int
	Err        error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("failed to recognize text: %v", e.Err)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

// Service detects text on images using Yandex Vision
type Service struct {
	cfg        *config.VisionConfig
	httpClient *http.Client
}

// NewService creates a new OCR service
func NewService(cfg *config.VisionConfig) *Service {
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// WithHTTPClient replaces the client used for API calls
func (s *Service) WithHTTPClient(c *http.Client) *Service {
	s.httpClient = c
	return s
}

type analyzeRequest struct {
	FolderID     string        `json:"folderId"`
	AnalyzeSpecs []analyzeSpec `json:"analyze_specs"`
}

type analyzeSpec struct {
	Content  string    `json:"content"`
	Features []feature `json:"features"`
}

type feature struct {
	Type                string              `json:"type"`
	TextDetectionConfig textDetectionConfig `json:"text_detection_config"`
}

type textDetectionConfig struct {
	LanguageCodes []string `json:"language_codes"`
}

// ExtractText sends image bytes to the detection service and returns the recognized text.
// The language hint is logged but detection always runs across all scripts,
// so mixed-script covers are read in full.
func (s *Service) ExtractText(ctx context.Context, image []byte, language string) (string, error) {
	body := analyzeRequest{
		FolderID: s.cfg.FolderID,
		AnalyzeSpecs: []analyzeSpec{{
			Content: base64.StdEncoding.EncodeToString(image),
			Features: []feature{{
				Type: "TEXT_DETECTION",
				TextDetectionConfig: textDetectionConfig{
					LanguageCodes: []string{AllLanguages},
				},
			}},
		}},
	}

	slog.Debug("Requesting text detection", "bytes", len(image), "language_hint", language)

	raw, err := yandex.SendJSON(ctx, s.httpClient, s.cfg.URL, body, yandex.AuthHeaders(s.cfg.APIKey), "vision")
	if err != nil {
		detErr := &DetectionError{Err: err}
		var statusErr *yandex.StatusError
		if errors.As(err, &statusErr) {
			detErr.StatusCode = statusErr.StatusCode
		}
		slog.Error("Vision API error", "status", detErr.StatusCode, "error", err)
		return "", detErr
	}

	text, err := ReduceResponse(raw)
	if err != nil {
		slog.Warn("Error parsing Vision response structure", "error", err, "partial_length", len(text))
	}

	slog.Info("Extracted OCR text", "provider", "yandex-vision", "length", len(text))
	return text, nil
}

// Response mirrors the batchAnalyze reply down to word level
type Response struct {
	Results []struct {
		Results []struct {
			TextDetection *struct {
				Pages []Page `json:"pages"`
			} `json:"textDetection"`
		} `json:"results"`
	} `json:"results"`
}

// Page is one detected page
type Page struct {
	Blocks []Block `json:"blocks"`
}

// Block is a group of lines
type Block struct {
	Lines []Line `json:"lines"`
}

// Line is an ordered run of words
type Line struct {
	Words []Word `json:"words"`
}

// Word is a single recognized token
type Word struct {
	Text string `json:"text"`
}

// ErrMalformedResponse reports that the reply lacked the expected nesting
var ErrMalformedResponse = errors.New("malformed text detection response")

// ReduceResponse flattens a batchAnalyze reply into newline-separated lines,
// keeping the service's block and line order. Words are joined with single spaces
// and blank lines dropped. When the nesting is missing or broken the text
// assembled so far is returned together with ErrMalformedResponse.
func ReduceResponse(raw []byte) (string, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(resp.Results) == 0 || len(resp.Results[0].Results) == 0 {
		return "", fmt.Errorf("%w: no results", ErrMalformedResponse)
	}
	detection := resp.Results[0].Results[0].TextDetection
	if detection == nil || len(detection.Pages) == 0 {
		return "", fmt.Errorf("%w: no pages", ErrMalformedResponse)
	}
	blocks := detection.Pages[0].Blocks
	if blocks == nil {
		return "", fmt.Errorf("%w: no blocks", ErrMalformedResponse)
	}

	var sb strings.Builder
	for bi, block := range blocks {
		for li, line := range block.Lines {
			if line.Words == nil {
				return strings.TrimSpace(sb.String()), fmt.Errorf("%w: block %d line %d has no words", ErrMalformedResponse, bi, li)
			}
			words := make([]string, 0, len(line.Words))
			for _, w := range line.Words {
				words = append(words, w.Text)
			}
			lineText := strings.Join(words, " ")
			if strings.TrimSpace(lineText) != "" {
				sb.WriteString(lineText)
				sb.WriteString("\n")
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
