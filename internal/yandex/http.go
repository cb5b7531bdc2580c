package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// StatusError is returned by SendJSON for non-2xx responses
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("non-2xx status: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("non-2xx status: %d", e.StatusCode)
}

// AuthHeaders returns the headers for Api-Key authentication
func AuthHeaders(apiKey string) map[string]string {
	return map[string]string{
		"Authorization": "Api-Key " + apiKey,
	}
}

// SendJSON posts body as JSON to url and returns the raw response body.
// event prefixes the log events, e.g. "vision" logs "vision.http.request".
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, event string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	slog.Debug(event+".http.request", "req_id", reqID, "url", url, "bytes", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		slog.Error(event+".http.transport_error", "req_id", reqID, "error", err)
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	slog.Info(event+".http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}
	return raw, nil
}

// errorMessage pulls the message out of a Yandex Cloud error body, if any
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Error.Message != "" {
		return body.Error.Message
	}
	return body.Message
}
