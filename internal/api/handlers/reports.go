// reports.go — HTTP handlers жизненного цикла заявок:
// список, создание, чтение, изменение, удаление, смена статуса,
// выдача наряда, передача в закупки, выгрузка.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/bigkaa/faultdesk/internal/api/errors"
	"github.com/bigkaa/faultdesk/internal/api/generated"
	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/export"
	"github.com/bigkaa/faultdesk/internal/service"
	"github.com/bigkaa/faultdesk/internal/storage/filestore"
)

// Сообщения ответов рабочих операций.
const (
	msgJobCardIssued      = "Job card issued to workshop planner"
	msgProcurementCreated = "The task is assigned to PM"
)

// multipartMemory — часть multipart-формы, хранимая в памяти; остальное во временных файлах.
const multipartMemory = 8 << 20

// multipartOverhead — запас на поля формы и заголовки частей.
const multipartOverhead = 1 << 20

// JobCardResponse — ответ на выдачу наряда.
type JobCardResponse struct {
	Message string             `json:"message"`
	Report  *model.FaultReport `json:"report"`
}

// ProcurementResponse — ответ на передачу в закупки.
type ProcurementResponse struct {
	Message  string                    `json:"message"`
	Priority model.ProcurementPriority `json:"priority"`
	Report   *model.FaultReport        `json:"report"`
}

// UploadLimits — ограничения multipart-запросов.
type UploadLimits struct {
	MaxFileSize int64
	MaxFiles    int
}

// maxBody — предельный размер тела multipart-запроса.
func (l UploadLimits) maxBody() int64 {
	files := l.MaxFiles
	if files < 1 {
		files = 1
	}
	return l.MaxFileSize*int64(files) + multipartOverhead
}

// ReportsHandler — обработчик endpoints заявок.
type ReportsHandler struct {
	reports   *service.ReportService
	analytics *service.AnalyticsService
	limits    UploadLimits
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewReportsHandler создаёт обработчик заявок.
// loc — часовой пояс для дат без времени в фильтрах.
func NewReportsHandler(
	reports *service.ReportService,
	analytics *service.AnalyticsService,
	limits UploadLimits,
	loc *time.Location,
	logger *slog.Logger,
) *ReportsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportsHandler{
		reports:   reports,
		analytics: analytics,
		limits:    limits,
		loc:       loc,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "reports_handler")),
	}
}

// ListFaultReports обрабатывает GET /api/fault-reports.
func (h *ReportsHandler) ListFaultReports(w http.ResponseWriter, r *http.Request, params generated.ListFaultReportsParams) {
	filter, err := listFilterParams(params).toFilter(h.loc)
	if err != nil {
		h.fail(w, err)
		return
	}
	if params.Page != nil {
		filter.Page = *params.Page
	}
	if params.Limit != nil {
		filter.Limit = *params.Limit
	}

	writeJSON(w, http.StatusOK, h.reports.List(r.Context(), filter))
}

// CreateFaultReport обрабатывает POST /api/fault-reports.
// multipart/form-data: поля заявки и до MaxFiles файлов в поле attachments.
// application/json: поля заявки без вложений.
func (h *ReportsHandler) CreateFaultReport(w http.ResponseWriter, r *http.Request) {
	var (
		in      model.CreateInput
		uploads []service.Upload
	)

	if isMultipart(r) {
		form, err := h.parseMultipart(w, r)
		if err != nil {
			h.fail(w, err)
			return
		}
		defer func() { _ = form.RemoveAll() }()

		in = model.CreateInput{
			Title:       formValue(form, "title"),
			Description: formValue(form, "description"),
			Priority:    formValue(form, "priority"),
			Department:  formValue(form, "department"),
			Location:    formValue(form, "location"),
			ReportedBy:  formValue(form, "reportedBy"),
		}

		var closeAll func()
		uploads, closeAll, err = h.openUploads(form.File["attachments"])
		if err != nil {
			h.fail(w, err)
			return
		}
		defer closeAll()
	} else {
		var req generated.FaultReportCreate
		if err := decodeJSON(r, &req); err != nil {
			h.fail(w, err)
			return
		}
		in = model.CreateInput{
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			Department:  deref(req.Department),
			Location:    deref(req.Location),
			ReportedBy:  deref(req.ReportedBy),
		}
	}

	report, err := h.reports.Create(r.Context(), in, uploads)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// GetFaultReport обрабатывает GET /api/fault-reports/{id}.
func (h *ReportsHandler) GetFaultReport(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	report, err := h.reports.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// UpdateFaultReport обрабатывает PATCH /api/fault-reports/{id}.
// Изменяются только описательные поля; статус и вложения — отдельными операциями.
func (h *ReportsHandler) UpdateFaultReport(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	var patch model.Patch
	if err := decodeJSON(r, &patch); err != nil {
		h.fail(w, err)
		return
	}

	report, err := h.reports.Update(r.Context(), id, patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// DeleteFaultReport обрабатывает DELETE /api/fault-reports/{id}.
func (h *ReportsHandler) DeleteFaultReport(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	if err := h.reports.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFaultReportStatus обрабатывает PATCH /api/fault-reports/{id}/status.
func (h *ReportsHandler) SetFaultReportStatus(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	var req generated.StatusUpdate
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		h.fail(w, err)
		return
	}

	report, err := h.reports.SetStatus(r.Context(), id, status)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// IssueJobCard обрабатывает POST /api/fault-reports/{id}/issue-job-card.
func (h *ReportsHandler) IssueJobCard(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	report, err := h.reports.IssueJobCard(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, JobCardResponse{Message: msgJobCardIssued, Report: report})
}

// GetJobCard обрабатывает GET /api/fault-reports/{id}/job-card — печатная форма наряда.
func (h *ReportsHandler) GetJobCard(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	report, err := h.reports.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	data, err := export.JobCardPDF(report, h.now())
	if err != nil {
		h.fail(w, fmt.Errorf("формирование наряда %s: %w", id, err))
		return
	}
	writeFile(w, "application/pdf", fmt.Sprintf("job-card-%s.pdf", report.ID), data)
}

// SubmitProcurementRequest обрабатывает POST /api/fault-reports/{id}/procurement-request.
func (h *ReportsHandler) SubmitProcurementRequest(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	var req generated.ProcurementRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	priority, err := model.ParseProcurementPriority(req.Priority)
	if err != nil {
		h.fail(w, err)
		return
	}

	report, err := h.reports.SubmitProcurement(r.Context(), id, priority)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProcurementResponse{
		Message:  msgProcurementCreated,
		Priority: priority,
		Report:   report,
	})
}

// ExportFaultReports обрабатывает GET /api/fault-reports/export.
// Выгружает все заявки под фильтром, без пагинации.
func (h *ReportsHandler) ExportFaultReports(w http.ResponseWriter, r *http.Request, params generated.ExportFaultReportsParams) {
	var rawFormat string
	if params.Format != nil {
		rawFormat = string(*params.Format)
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		h.fail(w, err)
		return
	}
	filter, err := exportFilterParams(params).toFilter(h.loc)
	if err != nil {
		h.fail(w, err)
		return
	}

	list := h.reports.Export(r.Context(), filter)
	now := h.now()

	var data []byte
	switch format {
	case export.FormatCSV:
		data, err = export.ReportsCSV(list)
	default:
		data, err = export.ReportsXLSX(list, h.analytics.Summarize(r.Context(), list), now)
	}
	if err != nil {
		h.fail(w, fmt.Errorf("выгрузка %s: %w", format, err))
		return
	}

	h.logger.Info("Выгрузка заявок",
		slog.String("format", string(format)),
		slog.Int("count", len(list)),
	)
	writeFile(w, format.ContentType(), format.Filename(now), data)
}

// --- multipart ---

// parseMultipart разбирает multipart-форму с ограничением размера тела.
func (h *ReportsHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.maxBody())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("тело запроса больше %d байт: %w", tooBig.Limit, filestore.ErrTooLarge)
		}
		return nil, model.NewValidationError("body", fmt.Sprintf("Invalid multipart form: %s", err.Error()))
	}
	return r.MultipartForm, nil
}

// openUploads открывает файлы формы. Файлы больше MaxFileSize отклоняются
// до записи на диск. Возвращённая функция закрывает открытые файлы.
func (h *ReportsHandler) openUploads(headers []*multipart.FileHeader) ([]service.Upload, func(), error) {
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		if h.limits.MaxFileSize > 0 && fh.Size > h.limits.MaxFileSize {
			closeAll()
			return nil, func() {}, fmt.Errorf("%s: %w", fh.Filename, filestore.ErrTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("открытие части %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		uploads = append(uploads, service.Upload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: contentType,
		})
	}
	return uploads, closeAll, nil
}

func (h *ReportsHandler) fail(w http.ResponseWriter, err error) {
	apierrors.FromDomain(w, h.logger, err, apierrors.MsgReportNotFound)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.EqualFold(mediaType, "multipart/form-data")
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
