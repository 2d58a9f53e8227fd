package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gardar/hybridparse/pkg/document"
	"github.com/gardar/hybridparse/pkg/pipeline"
	"github.com/gardar/hybridparse/pkg/searchable"
)

const (
	msgNotFound  = "Document not found."
	msgNotParsed = "Document has not been parsed."
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("Failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

// writeLookupError maps pipeline lookup errors onto 404, 400 and 500.
func (s *Server) writeLookupError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		s.writeError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, pipeline.ErrNotParsed):
		s.writeError(w, http.StatusBadRequest, msgNotParsed)
	default:
		s.logger.WithError(err).Error(action)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", action, err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxFileSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf(
				"File too large. Maximum size: %dMB", s.opts.MaxFileSize/(1024*1024)))
			return
		}
		s.writeError(w, http.StatusBadRequest, "A file is required in the 'file' form field.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read uploaded file: %v", err))
		return
	}

	rec, err := s.proc.Upload(r.Context(), pipeline.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		s.logger.WithError(err).WithField("filename", header.Filename).Error("Upload failed")
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process document: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := pipeline.Filter{
		Status: document.Status(q.Get("status")),
		Limit:  pipeline.DefaultListLimit,
	}

	if v := q.Get("has_ocr_enhancement"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "has_ocr_enhancement must be a boolean.")
			return
		}
		filter.HasOCREnhancement = &b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > pipeline.MaxListLimit {
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("limit must be an integer between 1 and %d.", pipeline.MaxListLimit))
			return
		}
		filter.Limit = n
	}

	recs, err := s.proc.List(r.Context(), filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list documents")
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve document list: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.proc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLookupError(w, err, "Failed to get document")
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ok, err := s.proc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLookupError(w, err, "Failed to delete document")
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Document deleted successfully."})
}

func (s *Server) handleReparse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.proc.Get(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, err, "Failed to reparse document")
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if !rec.IsTerminal() {
		s.writeError(w, http.StatusBadRequest, "Document is already being processed.")
		return
	}
	s.proc.Start(id)
	s.writeJSON(w, http.StatusAccepted, messageResponse{Message: "Parsing started."})
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	rec, err := s.proc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLookupError(w, err, "Failed to get document")
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if !rec.IsParsed() {
		s.writeError(w, http.StatusBadRequest, msgNotParsed)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, rec.Parsed.Content.Markdown)
}

func (s *Server) handleHOCR(w http.ResponseWriter, r *http.Request) {
	out, err := s.proc.HOCR(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLookupError(w, err, "Failed to render hOCR")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, out)
}

func (s *Server) handleSearchablePDF(w http.ResponseWriter, r *http.Request) {
	cfg := s.opts.Searchable
	if v := r.URL.Query().Get("force"); v != "" {
		force, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "force must be a boolean.")
			return
		}
		cfg.Force = force
	}

	id := chi.URLParam(r, "id")
	pdf, err := s.proc.SearchablePDF(r.Context(), id, cfg)
	if errors.Is(err, searchable.ErrAlreadySearchable) {
		s.writeError(w, http.StatusBadRequest, "Document already has an OCR text layer; pass force=true to reapply.")
		return
	}
	if err != nil {
		s.writeLookupError(w, err, "Failed to build searchable PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, id))
	w.Write(pdf)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.proc.Analytics(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to compute analytics")
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve analytics: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}
