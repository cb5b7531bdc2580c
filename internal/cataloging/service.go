package cataloging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/coverscan/internal/config"
	"github.com/lehigh-university-libraries/coverscan/internal/yandex"
)

// MinTextLength is the shortest OCR text worth sending to the model, in characters
const MinTextLength = 5

// Service structures OCR text into bibliographic metadata using YandexGPT
type Service struct {
	cfg        *config.GPTConfig
	httpClient *http.Client
}

// NewService creates a new cataloging service
func NewService(cfg *config.GPTConfig) *Service {
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

type completionRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions completionOptions `json:"completionOptions"`
	Messages          []message         `json:"messages"`
}

type completionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

type message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type completionResponse struct {
	Result struct {
		Alternatives []struct {
			Message message `json:"message"`
			Status  string  `json:"status"`
		} `json:"alternatives"`
		ModelVersion string `json:"modelVersion"`
	} `json:"result"`
}

// ExtractMetadata asks the model to structure the OCR text of a cover.
// Any problem with the call or its reply yields Deferred, never an error.
func (s *Service) ExtractMetadata(ctx context.Context, ocrText string) Outcome {
	if utf8.RuneCountInString(ocrText) < MinTextLength {
		slog.Debug("OCR text too short for structured extraction", "length", len(ocrText))
		return Deferred{Reason: "text too short"}
	}

	body := completionRequest{
		ModelURI: s.cfg.ModelURI(),
		CompletionOptions: completionOptions{
			Stream:      false,
			Temperature: s.cfg.Temperature,
			MaxTokens:   s.cfg.MaxTokens,
		},
		Messages: []message{
			{Role: "system", Text: buildMetadataExtractionPrompt()},
			{Role: "user", Text: "Текст с обложки:\n" + ocrText},
		},
	}

	headers := yandex.AuthHeaders(s.cfg.APIKey)
	headers["x-folder-id"] = s.cfg.FolderID

	raw, err := yandex.SendJSON(ctx, s.httpClient, s.cfg.URL, body, headers, "gpt")
	if err != nil {
		slog.Error("GPT API error", "error", err)
		return Deferred{Reason: err.Error()}
	}

	var resp completionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		slog.Error("Failed to decode GPT response", "error", err)
		return Deferred{Reason: "failed to decode completion response"}
	}
	if len(resp.Result.Alternatives) == 0 {
		slog.Error("No alternatives returned from GPT")
		return Deferred{Reason: "no alternatives returned"}
	}

	answer := resp.Result.Alternatives[0].Message.Text
	record, err := ParseMetadata(answer)
	if err != nil {
		slog.Error("Failed to parse GPT answer", "error", err, "answer_length", len(answer))
		return Deferred{Reason: err.Error()}
	}

	slog.Info("Extracted metadata", "provider", "yandexgpt", "model_version", resp.Result.ModelVersion)
	return Extracted{Record: record}
}

// StripCodeFences removes Markdown code fence markers from a model answer
func StripCodeFences(answer string) string {
	answer = strings.ReplaceAll(answer, "```json", "")
	answer = strings.ReplaceAll(answer, "```", "")
	return strings.TrimSpace(answer)
}

func buildMetadataExtractionPrompt() string {
	return fmt.Sprintf(`Ты — библиотекарь-каталогизатор. Твоя задача — структурировать текст, распознанный с обложки книги.

Верни ответ СТРОГО в формате JSON (без Markdown, без пояснений) со следующими полями:
- "title" (название книги, строка)
- "author" (автор или авторы, строка; обычно находится вверху или внизу обложки)
- "year" (год издания, целое число; обычно внизу обложки рядом с издательством)
- "publisher" (название издательства, строка; например: "Манн, Иванов и Фербер", "АСТ", "Эксмо")
- "extracted_text" (весь остальной текст с обложки, который НЕ является названием, автором, годом или издательством: цитаты, жанр, описание, слоганы, том, серия)

Если поле не найдено, верни для него null.
Исправляй явные ошибки OCR (опечатки).

Пример ответа:
%s`, `{"title": "Мастер и Маргарита", "author": "Михаил Булгаков", "year": 2019, "publisher": "АСТ", "extracted_text": "Эксклюзивная классика"}`)
}
