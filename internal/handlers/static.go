package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// HandleUploads serves stored cover images
func (h *Handler) HandleUploads(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/uploads/")

	// Prevent directory traversal attacks
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		h.writeError(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.cfg.UploadDir, name))
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uploadDir": h.cfg.UploadDir,
	})
}

// Routes registers all handlers on a new mux
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books/upload", h.HandleUpload)
	mux.HandleFunc("/api/books", h.HandleBooks)
	mux.HandleFunc("/api/books/{id}", h.HandleBookDetail)
	mux.HandleFunc("/api/health", h.HandleHealth)
	mux.HandleFunc("/uploads/", h.HandleUploads)
	return mux
}
