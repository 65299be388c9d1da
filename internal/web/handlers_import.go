package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noor-ul-masajid/console/internal/sheet"
	"github.com/noor-ul-masajid/console/internal/web/templates"
)

// handleListSchemas returns every registered schema with its columns.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.ListSchemas())
}

// handleDownloadTemplate returns the header-only workbook of a schema.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	schemaKey := chi.URLParam(r, "schema")

	// Written to a buffer first so a failure can still change the status
	var buf bytes.Buffer
	filename, err := s.service.WriteTemplate(schemaKey, &buf)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeWorkbook(w, filename, buf.Bytes())
}

// handleOpenSession starts an import session. Query parameters are passed to
// the schema, e.g. ?date=2024-05-01 for attendance.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	info, err := s.service.OpenSession(r.Context(), chi.URLParam(r, "schema"), params)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, info)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.SessionInfo(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, info)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSelectFile parses the multipart "file" field into the session and
// returns the detected headers with the automatic mappings.
func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(w, r, fmt.Errorf("%w: limit is %d bytes", sheet.ErrFileTooLarge, maxSize))
			return
		}
		fail(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, errNoFile)
		return
	}
	defer file.Close()

	info, err := s.service.SelectFile(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, info)
}

// mappingRequest is the body of a mapping change. An empty excelColumn
// unmaps the field.
type mappingRequest struct {
	ExcelColumn string `json:"excelColumn"`
}

func (s *Server) handleSetMapping(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		fail(w, r, fmt.Errorf("%w: mapping index %q", errBadRequest, chi.URLParam(r, "index")))
		return
	}

	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	info, err := s.service.SetMapping(chi.URLParam(r, "id"), index, req.ExcelColumn)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, info)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Preview(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, data)
}

// handleProcess runs the import. A result with row errors is answered with
// 422 so the modal keeps the review step open.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.ProcessImport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	status := http.StatusOK
	if !result.OK() {
		status = http.StatusUnprocessableEntity
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ImportSummary(result).Render(r.Context(), w)
		return
	}
	writeJSONStatus(w, status, result)
}

// handleHistory lists recent import attempts of a schema. ?limit= caps the
// number returned.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context(), chi.URLParam(r, "schema"), parseIntParam(r, "limit", 0))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, entries)
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
