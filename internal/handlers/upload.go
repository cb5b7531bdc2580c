package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/coverscan/internal/models"
)

// OCRData is the recognition part of an upload response
type OCRData struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Year          *int   `json:"year"`
	Publisher     string `json:"publisher"`
	ExtractedText string `json:"extracted_text"`
	RawOCRText    string `json:"raw_ocr_text"`
	Language      string `json:"language"`
	Extractor     string `json:"extractor"`
}

// UploadResponse is returned for a processed cover
type UploadResponse struct {
	BookID   string  `json:"book_id"`
	Status   string  `json:"status"`
	ImageURL string  `json:"image_url"`
	OCRData  OCRData `json:"ocr_data"`
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileSize+1024*1024)

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	language := strings.TrimSpace(r.FormValue("language"))
	if language == "" {
		language = "ru"
	}

	fileData, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxFileSize+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if int64(len(fileData)) > h.cfg.MaxFileSize {
		h.writeError(w, "File too large", http.StatusBadRequest)
		return
	}

	if err := validateImage(fileData, header.Filename); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.ensureUploadsDir(); err != nil {
		h.writeError(w, "Failed to create uploads directory: "+err.Error(), http.StatusInternalServerError)
		return
	}

	imageFilename, imageFilePath, err := h.saveImageFile(fileData, header.Filename)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := h.recognizer.Process(r.Context(), models.RecognitionRequest{
		ImagePath: imageFilePath,
		Language:  language,
	})
	if result.Failed() {
		h.writeError(w, result.Error, http.StatusUnprocessableEntity)
		return
	}

	session := &models.BookSession{
		ID:        uuid.New().String(),
		Status:    "processed",
		ImagePath: imageFilePath,
		ImageURL:  "/uploads/" + imageFilename,
		Language:  language,
		Metadata:  result.Metadata,
		Extractor: result.Diagnostics.Extractor,
		CreatedAt: time.Now(),
	}
	h.sessionStore.Set(session.ID, session)

	slog.Info("Cover processed", "book_id", session.ID, "extractor", session.Extractor, "duration", result.Diagnostics.Duration)
	h.writeJSON(w, http.StatusOK, newUploadResponse(session))
}

func newUploadResponse(session *models.BookSession) UploadResponse {
	md := session.Metadata
	return UploadResponse{
		BookID:   session.ID,
		Status:   session.Status,
		ImageURL: session.ImageURL,
		OCRData: OCRData{
			Title:         models.StringValue(md.Title),
			Author:        models.StringValue(md.Author),
			Year:          md.Year,
			Publisher:     models.StringValue(md.Publisher),
			ExtractedText: md.ExtractedText,
			RawOCRText:    md.RawOCRText,
			Language:      session.Language,
			Extractor:     session.Extractor,
		},
	}
}
