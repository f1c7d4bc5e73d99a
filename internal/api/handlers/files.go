// files.go — HTTP handlers вложений: добавление, удаление, скачивание.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/faultdesk/internal/api/errors"
	"github.com/bigkaa/faultdesk/internal/api/generated"
	"github.com/bigkaa/faultdesk/internal/service"
)

// msgFileNotFound — сообщение 404 для файла вложения.
const msgFileNotFound = "File not found"

// AddAttachments обрабатывает POST /api/fault-reports/{id}/attachments.
// Принимает файлы в поле attachment (один) и/или attachments (несколько).
func (h *ReportsHandler) AddAttachments(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	if !isMultipart(r) {
		apierrors.ValidationError(w, "attachment: No file uploaded")
		return
	}
	form, err := h.parseMultipart(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer func() { _ = form.RemoveAll() }()

	headers := append(form.File["attachment"], form.File["attachments"]...)
	uploads, closeAll, err := h.openUploads(headers)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer closeAll()

	report, err := h.reports.AddAttachments(r.Context(), id, uploads)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RemoveAttachment обрабатывает DELETE /api/fault-reports/{id}/attachments/{filename}.
func (h *ReportsHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request, id generated.ReportId, filename generated.Filename) {
	report, err := h.reports.RemoveAttachment(r.Context(), id, filename)
	if err != nil {
		apierrors.FromDomain(w, h.logger, err, "Fault report or attachment not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// FilesHandler — скачивание вложений.
type FilesHandler struct {
	download *service.DownloadService
	logger   *slog.Logger
}

// NewFilesHandler создаёт обработчик скачивания.
func NewFilesHandler(download *service.DownloadService, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		download: download,
		logger:   logger.With(slog.String("component", "files_handler")),
	}
}

// DownloadFile обрабатывает GET /api/files/{filename}.
// Отдаёт только файлы, привязанные к заявке; поддерживает Range и ETag.
func (h *FilesHandler) DownloadFile(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	if err := h.download.Serve(r.Context(), w, r, filename); err != nil {
		apierrors.FromDomain(w, h.logger, err, msgFileNotFound)
	}
}
