package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gogpu/pixfilter"
	"github.com/gogpu/pixfilter/internal/codec"
	"github.com/gogpu/pixfilter/internal/ctxlog"
	"github.com/gogpu/pixfilter/internal/pipeline"
)

// Error messages returned in the "error" field of JSON responses.
const (
	msgUnknownFilter = "Unknown filter"
	msgMissingFile   = "Missing file"
	msgBadForm       = "Invalid multipart form"
	msgTooLarge      = "Upload too large"
	msgBadFormat     = "Unsupported output format"
	msgInternal      = "Internal error"
)

type errorResponse struct {
	Error string `json:"error"`
}

type filtersResponse struct {
	Filters []string `json:"filters"`
}

// handleFilter implements POST /api/filter.
//
// Form fields: file (required), filter_name (required), format
// ("png" default or "jpeg") and quality (JPEG only).
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(r.Context())

	if s.cfg.MaxUploadBytes > 0 {
		if r.ContentLength > s.cfg.MaxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgBadForm)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	name := r.FormValue("filter_name")
	if _, ok := s.catalog.Lookup(name); !ok {
		writeError(w, http.StatusBadRequest, msgUnknownFilter)
		return
	}

	format := codec.PNG
	if v := r.FormValue("format"); v != "" {
		f, err := codec.ParseFormat(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgBadFormat)
			return
		}
		format = f
	}
	quality := 0
	if v := r.FormValue("quality"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil || q < 1 || q > 100 {
			writeError(w, http.StatusBadRequest, "quality must be an integer in [1, 100]")
			return
		}
		quality = q
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgMissingFile)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		logger.Warn("reading upload failed", "err", err)
		writeError(w, http.StatusBadRequest, msgBadForm)
		return
	}

	res, err := pipeline.Run(r.Context(), data, name, pipeline.Options{
		Catalog:   s.catalog,
		Applier:   s.applier,
		Format:    format,
		Quality:   quality,
		MaxPixels: s.cfg.MaxPixels,
	})
	switch {
	case err == nil:
	case errors.Is(err, codec.ErrTooLarge):
		logger.Warn("rejected upload", "filter", name, "err", err)
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, pixfilter.ErrUnknownFilter):
		writeError(w, http.StatusBadRequest, msgUnknownFilter)
		return
	case pipeline.IsClientError(err):
		logger.Warn("rejected upload", "filter", name, "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		logger.Error("filter request failed", "filter", name, "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		logger.Debug("writing response failed", "err", err)
	}
}

// handleFilters implements GET /api/filters.
func (s *Server) handleFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, filtersResponse{Filters: s.catalog.Names()})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
