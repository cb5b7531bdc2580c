package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/coverscan/internal/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Pagination describes one page of the book list
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// BookList is returned by GET /api/books
type BookList struct {
	Books      []UploadResponse `json:"books"`
	Pagination Pagination       `json:"pagination"`
}

// bookUpdate holds the editable fields of a PUT body; absent fields stay as they are
// and an explicit null clears the field
type bookUpdate struct {
	Title     json.RawMessage `json:"title"`
	Author    json.RawMessage `json:"author"`
	Year      json.RawMessage `json:"year"`
	Publisher json.RawMessage `json:"publisher"`
	Status    json.RawMessage `json:"status"`
}

func (h *Handler) HandleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		page, err := queryInt(r, "page", 1)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		limit, err := queryInt(r, "limit", defaultPageLimit)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		limit = min(limit, maxPageLimit)

		sessions, total := h.sessionStore.Page((page-1)*limit, limit)
		books := make([]UploadResponse, 0, len(sessions))
		for _, session := range sessions {
			books = append(books, newUploadResponse(session))
		}

		h.writeJSON(w, http.StatusOK, BookList{
			Books: books,
			Pagination: Pagination{
				Page:  page,
				Limit: limit,
				Total: total,
				Pages: (total + limit - 1) / limit,
			},
		})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleBookDetail(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		session, exists := h.sessionStore.Get(bookID)
		if !exists {
			h.writeError(w, "Book not found", http.StatusNotFound)
			return
		}
		h.writeJSON(w, http.StatusOK, newUploadResponse(session))
	case http.MethodPut:
		h.updateBook(w, r, bookID)
	case http.MethodDelete:
		if !h.sessionStore.Delete(bookID) {
			h.writeError(w, "Book not found", http.StatusNotFound)
			return
		}
		slog.Info("Book deleted", "book_id", bookID)
		h.writeJSON(w, http.StatusOK, map[string]string{"message": "Book deleted successfully"})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request, bookID string) {
	var update bookUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	title, err := decodeOptionalString(update.Title)
	if err != nil {
		h.writeError(w, "Invalid title: "+err.Error(), http.StatusBadRequest)
		return
	}
	author, err := decodeOptionalString(update.Author)
	if err != nil {
		h.writeError(w, "Invalid author: "+err.Error(), http.StatusBadRequest)
		return
	}
	publisher, err := decodeOptionalString(update.Publisher)
	if err != nil {
		h.writeError(w, "Invalid publisher: "+err.Error(), http.StatusBadRequest)
		return
	}
	status, err := decodeOptionalString(update.Status)
	if err != nil {
		h.writeError(w, "Invalid status: "+err.Error(), http.StatusBadRequest)
		return
	}
	year, err := decodeOptionalYear(update.Year)
	if err != nil {
		h.writeError(w, "Invalid year: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, exists := h.sessionStore.Update(bookID, func(s *models.BookSession) {
		if s.Metadata == nil {
			s.Metadata = &models.MetadataRecord{}
		}
		if len(update.Title) > 0 {
			s.Metadata.Title = title
		}
		if len(update.Author) > 0 {
			s.Metadata.Author = author
		}
		if len(update.Publisher) > 0 {
			s.Metadata.Publisher = publisher
		}
		if len(update.Year) > 0 {
			s.Metadata.Year = year
		}
		if status != nil {
			s.Status = *status
		}
		s.UpdatedAt = time.Now()
	})
	if !exists {
		h.writeError(w, "Book not found", http.StatusNotFound)
		return
	}

	slog.Info("Book updated", "book_id", bookID)
	h.writeJSON(w, http.StatusOK, newUploadResponse(session))
}

// decodeOptionalString returns nil for null or blank strings
func decodeOptionalString(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected a string")
	}
	if s = strings.TrimSpace(s); s == "" {
		return nil, nil
	}
	return &s, nil
}

func decodeOptionalYear(raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var year int
	if err := json.Unmarshal(raw, &year); err != nil {
		return nil, fmt.Errorf("expected an integer")
	}
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("out of range")
	}
	return &year, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return n, nil
}
