package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/lehigh-university-libraries/coverscan/internal/config"
	"github.com/lehigh-university-libraries/coverscan/internal/models"
	"github.com/lehigh-university-libraries/coverscan/internal/storage"
)

// Recognizer runs the cover recognition pipeline
type Recognizer interface {
	Process(ctx context.Context, req models.RecognitionRequest) models.Result
}

type Handler struct {
	sessionStore *storage.SessionStore
	recognizer   Recognizer
	cfg          config.ServerConfig
}

func New(cfg config.ServerConfig, recognizer Recognizer) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		recognizer:   recognizer,
		cfg:          cfg,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	h.writeJSON(w, code, map[string]string{"error": message})
}

// File operation helpers
func (h *Handler) ensureUploadsDir() error {
	return os.MkdirAll(h.cfg.UploadDir, 0755)
}
