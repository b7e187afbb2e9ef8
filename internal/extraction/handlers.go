package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/docscan/internal/record"
	"github.com/zombor/docscan/internal/scanning"
)

// maxUploadSize handles high-resolution phone photos and multi-page PDFs
const maxUploadSize = int64(50 << 20)

// maxBodySize bounds JSON bodies on the validate endpoints
const maxBodySize = int64(1 << 20)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeServiceError maps pipeline errors onto status codes
func writeServiceError(w http.ResponseWriter, reqID string, err error) {
	var (
		verrs       record.ValidationErrors
		unsupported *scanning.UnsupportedFormatError
		stage       *StageError
	)
	body := map[string]any{}
	if reqID != "" {
		body["request_id"] = reqID
	}

	switch {
	case errors.As(err, &verrs):
		body["errors"] = verrs
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, ErrNoText):
		body["error"] = err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.As(err, &unsupported):
		body["error"] = unsupported.Error()
		writeJSON(w, http.StatusBadRequest, body)
	case errors.As(err, &stage):
		body["error"] = err.Error()
		writeJSON(w, http.StatusBadGateway, body)
	default:
		slog.Error("Unexpected service error", "error", err)
		body["error"] = "internal server error"
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

// policyFromRequest reads ?policy=; an empty value defers to the service default
func policyFromRequest(r *http.Request) (record.Policy, error) {
	name := r.URL.Query().Get("policy")
	if name == "" {
		return "", nil
	}
	return record.ParsePolicy(name)
}

func wantsXLSX(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("format"), "xlsx")
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

// readUpload pulls the "file" part out of a multipart form
func readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large, maximum size is 50MB")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "error parsing form")
		return nil, false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, http.StatusBadRequest, "no file provided in form field \"file\"")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusBadRequest, "error reading file")
		return nil, false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "file is empty")
		return nil, false
	}

	return &upload{
		filename:    header.Filename,
		contentType: contentTypeFor(header.Header.Get("Content-Type"), header.Filename),
		data:        data,
	}, true
}

// contentTypeFor prefers the declared type, falling back to the file extension
func contentTypeFor(declared, filename string) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

type mediaTypeInfo struct {
	MediaType  record.MediaType      `json:"media_type"`
	Activities []record.ActivityType `json:"activities"`
}

// handleMediaTypes lists every media type with the activities it permits
func (s *Server) handleMediaTypes(w http.ResponseWriter, r *http.Request) {
	media := record.MediaTypes()
	out := make([]mediaTypeInfo, 0, len(media))
	for _, m := range media {
		out = append(out, mediaTypeInfo{MediaType: m, Activities: record.AllowedActivities(m)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExtractClaim runs an uploaded document through the claim pipeline
func (s *Server) handleExtractClaim(w http.ResponseWriter, r *http.Request) {
	policy, err := policyFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	up, ok := readUpload(w, r)
	if !ok {
		return
	}

	result, err := s.service.ExtractClaim(r.Context(), up.data, up.contentType, policy)
	if err != nil {
		writeServiceError(w, result.RequestID, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExtractMenu runs an uploaded document through the menu pipeline
func (s *Server) handleExtractMenu(w http.ResponseWriter, r *http.Request) {
	policy, err := policyFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	up, ok := readUpload(w, r)
	if !ok {
		return
	}

	result, err := s.service.ExtractMenu(r.Context(), up.data, up.contentType, policy)
	if err != nil {
		writeServiceError(w, result.RequestID, err)
		return
	}

	if wantsXLSX(r) {
		s.writeWorkbook(w, exportFilename(up.filename), result.Menu, result.Failures)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleValidateClaim validates a JSON claim mapping
func (s *Server) handleValidateClaim(w http.ResponseWriter, r *http.Request) {
	policy, err := policyFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var raw record.Raw
	if err := decodeBody(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: expected a JSON object")
		return
	}

	claim, err := s.service.ValidateClaim(raw, policy)
	if err != nil {
		writeServiceError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claim": claim})
}

// handleValidateMenu validates a JSON array of items or an {"items": [...]} object
func (s *Server) handleValidateMenu(w http.ResponseWriter, r *http.Request) {
	policy, err := policyFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body json.RawMessage
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	items, err := scanning.DecodeMenu(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	menu, failures := s.service.ValidateMenu(items, policy)
	if wantsXLSX(r) {
		s.writeWorkbook(w, "menu.xlsx", menu, failures)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"menu": menu, "failures": failures})
}

func (s *Server) writeWorkbook(w http.ResponseWriter, filename string, menu record.MenuRecord, failures []record.ItemFailure) {
	data, err := MenuWorkbook(menu, failures)
	if err != nil {
		slog.Error("Error building workbook", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		slog.Error("Error writing workbook", "error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.UseNumber()
	return dec.Decode(v)
}
