package invoice

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// corsError writes a plain error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusForError maps the distinguishable error kinds to HTTP statuses. A
// failure never disturbs stored state, so the caller can edit and retry.
func statusForError(err error) int {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return http.StatusBadGateway
	}
	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// contentTypeForUpload falls back to the file extension when the part header
// is missing a content type
func contentTypeForUpload(contentType, filename string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleExtract accepts one or more uploaded invoice files and returns the
// extracted line items plus the archived file IDs
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// 50MB total to handle batches of high-resolution phone photos
	maxFormSize := int64(50 << 20)
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			errorMsg = "Upload is too large. Maximum size is 50MB. Please compress or resize your images."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["invoices"]
	if len(fileHeaders) == 0 {
		jsonError(w, "No invoice file provided. Please choose files to upload.", http.StatusBadRequest)
		return
	}

	files := make([]UploadedFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			slog.Error("Error opening uploaded file", "filename", header.Filename, "error", err)
			jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Error("Error reading file data", "filename", header.Filename, "error", err)
			jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
			return
		}
		files = append(files, UploadedFile{
			Filename:    header.Filename,
			Data:        data,
			ContentType: contentTypeForUpload(header.Header.Get("Content-Type"), header.Filename),
		})
	}

	items, fileIDs, err := s.service.ExtractInvoices(r.Context(), files)
	if err != nil {
		slog.Error("Error extracting invoices", "files", len(files), "error", err)
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"items":    items,
		"file_ids": fileIDs,
	}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleCreateDraft stores a new working invoice
func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string     `json:"title"`
		Items   []LineItem `json:"items"`
		FileIDs []string   `json:"file_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	draft, err := s.service.CreateDraft(req.Title, req.Items, req.FileIDs)
	if err != nil {
		slog.Error("Error creating draft", "error", err)
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(draft); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListDrafts returns all drafts
func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.service.ListDrafts()
	if err != nil {
		slog.Error("Error listing drafts", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(drafts); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetDraft returns a single draft
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Draft ID required", http.StatusBadRequest)
		return
	}
	draft, err := s.service.GetDraft(id)
	if err != nil {
		corsError(w, "Draft not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(draft); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleUpdateDraft replaces a draft's title and items
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Draft ID required", http.StatusBadRequest)
		return
	}

	var req struct {
		Title string     `json:"title"`
		Items []LineItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	draft, err := s.service.UpdateDraft(id, req.Title, req.Items)
	if err != nil {
		slog.Error("Error updating draft", "id", id, "error", err)
		corsError(w, "Draft not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(draft); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleDeleteDraft deletes a draft and its archived files
func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Draft ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteDraft(id); err != nil {
		corsError(w, "Error deleting draft", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetDraftFile returns an archived source document
func (s *Server) handleGetDraftFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fileID := r.PathValue("fileID")
	if id == "" || fileID == "" {
		corsError(w, "Draft ID and file ID required", http.StatusBadRequest)
		return
	}
	data, err := s.service.GetDraftFile(id, fileID)
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}

// decodeItems reads the common {items: [...]} request body
func decodeItems(r *http.Request) ([]LineItem, error) {
	var req struct {
		Items []LineItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return req.Items, nil
}

// exportFilename returns the caller-supplied filename, or a default
func exportFilename(r *http.Request, fallback string) string {
	if name := r.URL.Query().Get("filename"); name != "" {
		return name
	}
	return fallback
}

// handleExportCSV serializes posted items to the delimited export format
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	items, err := decodeItems(r)
	if err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	data, err := s.service.ExportCSV(items)
	if err != nil {
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(r, "invoice-data.csv")+`"`)
	w.Write(data)
}

// handleExportXLSX serializes posted items to a workbook
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	items, err := decodeItems(r)
	if err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	data, err := s.service.ExportXLSX(items)
	if err != nil {
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(r, "invoice-data.xlsx")+`"`)
	w.Write(data)
}

// handleSaveToSheet submits posted items to the spreadsheet sink
func (s *Server) handleSaveToSheet(w http.ResponseWriter, r *http.Request) {
	items, err := decodeItems(r)
	if err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.SaveToSheet(r.Context(), items); err != nil {
		slog.Error("Error saving to sheet", "error", err)
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"message": "Successfully saved to spreadsheet.",
	}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
