package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"telebot/internal/domain"
	"telebot/internal/domain/services"
	"telebot/internal/httputil"
)

// multipartOverhead is the slack allowed for multipart framing around the file part
const multipartOverhead = 64 << 10

// ArchiveHandler handles zip export and import
type ArchiveHandler struct {
	archiveService services.ArchiveService
	maxImportBytes int64
	logger         *slog.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(archiveService services.ArchiveService, maxImportBytes int64, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		archiveService: archiveService,
		maxImportBytes: maxImportBytes,
		logger:         logger,
	}
}

// ExportProject streams the project's files as a zip attachment
// GET /api/projects/{id}/export
func (h *ArchiveHandler) ExportProject(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	archive, err := h.archiveService.Export(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			handleError(w, err)
			return
		}
		h.logger.Error("failed to export project", "id", id, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to export project")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", contentDisposition(archive.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(archive.Data)
}

// ImportProject reads a zip from the raw body or a multipart "file" field
// POST /api/projects/{id}/import?mode=merge|replace
func (h *ArchiveHandler) ImportProject(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	data, err := h.readUpload(w, r)
	if err != nil {
		respondUploadError(w, err)
		return
	}

	result, err := h.archiveService.Import(r.Context(), id, data, r.URL.Query().Get("mode"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *ArchiveHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return httputil.ReadBody(w, r, h.maxImportBytes)
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImportBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, httputil.ErrBodyTooLarge
		}
		return nil, fmt.Errorf("multipart field \"file\" is required: %w", err)
	}
	defer file.Close()

	if header.Size > h.maxImportBytes {
		return nil, httputil.ErrBodyTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > h.maxImportBytes {
		return nil, httputil.ErrBodyTooLarge
	}
	return data, nil
}

func respondUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "archive too large")
		return
	}
	httputil.RespondError(w, http.StatusBadRequest, err.Error())
}

// contentDisposition builds an attachment header. Non-ASCII names get an
// ASCII fallback plus an RFC 5987 filename* parameter.
func contentDisposition(filename string) string {
	if isASCII(filename) {
		return fmt.Sprintf(`attachment; filename="%s"`, quoteEscape(filename))
	}

	fallback := strings.Map(func(r rune) rune {
		if r > 127 {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, quoteEscape(fallback), url.PathEscape(filename))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

func quoteEscape(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
