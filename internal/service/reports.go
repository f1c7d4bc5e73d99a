// Пакет service — бизнес-логика FaultDesk.
// reports.go — жизненный цикл заявок: создание с вложениями, изменение,
// смена статуса, выдача наряда, передача в закупки, удаление.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bigkaa/faultdesk/internal/api/middleware"
	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/domain/workflow"
	"github.com/bigkaa/faultdesk/internal/storage/filestore"
	"github.com/bigkaa/faultdesk/internal/storage/reports"
	"github.com/bigkaa/faultdesk/internal/telemetry"
)

// Upload — файл из входящего запроса.
type Upload struct {
	// Reader — поток данных файла
	Reader io.Reader
	// Filename — оригинальное имя файла
	Filename string
	// ContentType — MIME-тип из multipart part
	ContentType string
}

// UploadPolicy — ограничения на вложения в одном запросе.
type UploadPolicy struct {
	// MaxFiles — максимальное число файлов в запросе
	MaxFiles int
	// AllowedExtensions — допустимые расширения (без точки, нижний регистр)
	AllowedExtensions []string
}

// Check проверяет количество файлов и их расширения.
func (p UploadPolicy) Check(uploads []Upload) error {
	if p.MaxFiles > 0 && len(uploads) > p.MaxFiles {
		return model.NewValidationError("attachments",
			fmt.Sprintf("не более %d файлов в одном запросе", p.MaxFiles))
	}
	for _, u := range uploads {
		if !p.allowed(u.Filename) {
			return model.NewValidationError("attachments",
				fmt.Sprintf("Invalid file type: %s", filepath.Base(u.Filename)))
		}
	}
	return nil
}

func (p UploadPolicy) allowed(name string) bool {
	if len(p.AllowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, a := range p.AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// ReportService — операции над заявками.
type ReportService struct {
	store  *reports.Store
	files  *filestore.FileStore
	guard  *workflow.Guard
	policy UploadPolicy
	logger *slog.Logger
}

// NewReportService создаёт сервис заявок.
func NewReportService(
	store *reports.Store,
	files *filestore.FileStore,
	guard *workflow.Guard,
	policy UploadPolicy,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		store:  store,
		files:  files,
		guard:  guard,
		policy: policy,
		logger: logger.With(slog.String("component", "report_service")),
	}
}

// Create создаёт заявку и сохраняет её вложения.
//
// Поток:
//  1. Валидация полей и файлов (до записи на диск)
//  2. Запись файлов в filestore
//  3. Создание заявки со списком handle
//
// При ошибке на шагах 2-3 все уже записанные файлы удаляются.
func (s *ReportService) Create(ctx context.Context, in model.CreateInput, uploads []Upload) (*model.FaultReport, error) {
	_, span := telemetry.StartSpan(ctx, "report.create", attribute.Int("attachments", len(uploads)))
	defer span.End()

	if err := s.validateCreate(&in, uploads); err != nil {
		middleware.OperationsTotal.WithLabelValues("create", "invalid").Inc()
		return nil, err
	}

	handles, err := s.writeUploads(uploads)
	if err != nil {
		telemetry.SetError(span, err)
		middleware.OperationsTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	in.Attachments = append(in.Attachments, handles...)
	report, err := s.store.Create(in)
	if err != nil {
		s.rollbackFiles(handles)
		telemetry.SetError(span, err)
		middleware.OperationsTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	span.SetAttributes(attribute.String("report.id", report.ID))
	middleware.OperationsTotal.WithLabelValues("create", "success").Inc()
	s.refreshGauge()

	s.logger.Info("Заявка создана",
		slog.String("id", report.ID),
		slog.String("priority", report.Priority),
		slog.Int("attachments", len(report.Attachments)),
	)
	return report, nil
}

func (s *ReportService) validateCreate(in *model.CreateInput, uploads []Upload) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := model.ParsePriority(in.Priority); err != nil {
		return err
	}
	return s.policy.Check(uploads)
}

// Get возвращает заявку по id.
func (s *ReportService) Get(ctx context.Context, id string) (*model.FaultReport, error) {
	_, span := telemetry.StartSpan(ctx, "report.get", attribute.String("report.id", id))
	defer span.End()

	return s.store.Get(id)
}

// List возвращает страницу заявок.
func (s *ReportService) List(ctx context.Context, filter model.ListFilter) *model.Page {
	_, span := telemetry.StartSpan(ctx, "report.list")
	defer span.End()

	page := s.store.List(filter)
	span.SetAttributes(attribute.Int("total", page.Total))
	return page
}

// Export возвращает все заявки, подходящие под фильтр, без пагинации.
func (s *ReportService) Export(ctx context.Context, filter model.ListFilter) []*model.FaultReport {
	_, span := telemetry.StartSpan(ctx, "report.export")
	defer span.End()

	filter.Page = 1
	filter.Limit = model.MaxLimit

	var result []*model.FaultReport
	for {
		page := s.store.List(filter)
		result = append(result, page.Data...)
		if filter.Page >= page.TotalPages {
			break
		}
		filter.Page++
	}
	if result == nil {
		result = []*model.FaultReport{}
	}
	return result
}

// Update применяет частичное обновление полей.
func (s *ReportService) Update(ctx context.Context, id string, patch model.Patch) (*model.FaultReport, error) {
	_, span := telemetry.StartSpan(ctx, "report.update", attribute.String("report.id", id))
	defer span.End()

	if patch.Priority != nil {
		if _, err := model.ParsePriority(*patch.Priority); err != nil {
			return nil, err
		}
	}

	report, err := s.store.Update(id, patch)
	s.count("update", err)
	return report, err
}

// SetStatus устанавливает статус вручную.
func (s *ReportService) SetStatus(ctx context.Context, id string, status model.Status) (*model.FaultReport, error) {
	return s.transition(ctx, "set_status", id, status, model.ActionManual)
}

// IssueJobCard выдаёт наряд планировщику мастерской: заявка переходит в approved.
func (s *ReportService) IssueJobCard(ctx context.Context, id string) (*model.FaultReport, error) {
	return s.transition(ctx, "issue_job_card", id, model.StatusApproved, model.ActionJobCard)
}

// SubmitProcurement передаёт заявку в закупки: статус assigned
// и срочность закупки сохраняются одной операцией.
func (s *ReportService) SubmitProcurement(ctx context.Context, id string, priority model.ProcurementPriority) (*model.FaultReport, error) {
	_, span := telemetry.StartSpan(ctx, "report.procurement",
		attribute.String("report.id", id),
		attribute.String("procurement.priority", string(priority)),
	)
	defer span.End()

	report, err := s.store.TransitionProcurement(id, priority, s.guard.Check)
	s.count("procurement", err)
	if err != nil {
		return nil, err
	}
	s.refreshGauge()

	s.logger.Info("Заявка передана в закупки",
		slog.String("id", id),
		slog.String("procurement_priority", string(priority)),
	)
	return report, nil
}

func (s *ReportService) transition(ctx context.Context, op, id string, to model.Status, action model.Action) (*model.FaultReport, error) {
	_, span := telemetry.StartSpan(ctx, "report."+op,
		attribute.String("report.id", id),
		attribute.String("status.to", string(to)),
	)
	defer span.End()

	report, err := s.store.Transition(id, to, action, s.guard.Check)
	s.count(op, err)
	if err != nil {
		var te *workflow.TransitionError
		if errors.As(err, &te) {
			s.logger.Warn("Недопустимый переход статуса",
				slog.String("id", id),
				slog.String("from", string(te.From)),
				slog.String("to", string(te.To)),
			)
		}
		return nil, err
	}
	s.refreshGauge()

	s.logger.Info("Статус заявки изменён",
		slog.String("id", id),
		slog.String("status", string(to)),
		slog.String("action", string(action)),
	)
	return report, nil
}

// AddAttachments сохраняет файлы и привязывает их к заявке.
// Если заявка исчезла во время записи, файлы удаляются.
func (s *ReportService) AddAttachments(ctx context.Context, id string, uploads []Upload) (*model.FaultReport, error) {
	_, span := telemetry.StartSpan(ctx, "report.add_attachments",
		attribute.String("report.id", id),
		attribute.Int("attachments", len(uploads)),
	)
	defer span.End()

	if len(uploads) == 0 {
		return nil, model.NewValidationError("attachment", "No file uploaded")
	}
	if err := s.policy.Check(uploads); err != nil {
		return nil, err
	}
	if _, err := s.store.Get(id); err != nil {
		return nil, err
	}

	handles, err := s.writeUploads(uploads)
	if err != nil {
		telemetry.SetError(span, err)
		s.count("add_attachment", err)
		return nil, err
	}

	var report *model.FaultReport
	for i, h := range handles {
		report, err = s.store.AddAttachment(id, h)
		if err != nil {
			s.rollbackFiles(handles[i:])
			s.count("add_attachment", err)
			return nil, err
		}
	}

	s.count("add_attachment", nil)
	s.logger.Info("Вложения добавлены",
		slog.String("id", id),
		slog.Int("count", len(handles)),
	)
	return report, nil
}

// RemoveAttachment отвязывает файл от заявки и удаляет его с диска.
func (s *ReportService) RemoveAttachment(ctx context.Context, id, handle string) (*model.FaultReport, error) {
	_, span := telemetry.StartSpan(ctx, "report.remove_attachment",
		attribute.String("report.id", id),
		attribute.String("file.handle", handle),
	)
	defer span.End()

	report, err := s.store.RemoveAttachment(id, handle)
	s.count("remove_attachment", err)
	if err != nil && report == nil {
		return nil, err
	}
	if err != nil {
		// Ссылка уже удалена, файл остался: его подберёт sweeper.
		telemetry.SetError(span, err)
	}
	return report, nil
}

// Delete удаляет заявку вместе с файлами вложений.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	_, span := telemetry.StartSpan(ctx, "report.delete", attribute.String("report.id", id))
	defer span.End()

	found, err := s.store.Delete(id)
	if !found {
		s.count("delete", model.ErrNotFound)
		return fmt.Errorf("заявка %s: %w", id, model.ErrNotFound)
	}
	s.refreshGauge()
	if err != nil {
		telemetry.SetError(span, err)
		s.count("delete", err)
		s.logger.Warn("Заявка удалена, часть файлов осталась на диске",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil
	}

	s.count("delete", nil)
	s.logger.Info("Заявка удалена", slog.String("id", id))
	return nil
}

// RefreshMetrics пересчитывает gauge fd_reports_total.
func (s *ReportService) RefreshMetrics() {
	s.refreshGauge()
}

// writeUploads записывает файлы по порядку. При ошибке удаляет уже записанные.
func (s *ReportService) writeUploads(uploads []Upload) ([]string, error) {
	handles := make([]string, 0, len(uploads))
	for _, u := range uploads {
		res, err := s.files.Write(u.Reader, u.Filename, u.ContentType)
		if err != nil {
			s.rollbackFiles(handles)
			if errors.Is(err, filestore.ErrTooLarge) {
				return nil, err
			}
			s.logger.Error("Ошибка записи вложения",
				slog.String("filename", u.Filename),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("сохранение вложения %s: %w", filepath.Base(u.Filename), err)
		}
		handles = append(handles, res.Handle)
	}
	return handles, nil
}

func (s *ReportService) rollbackFiles(handles []string) {
	for _, h := range handles {
		if err := s.files.Delete(h); err != nil {
			s.logger.Error("Ошибка удаления файла при откате",
				slog.String("handle", h),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *ReportService) count(op string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFound):
		result = "not_found"
	case model.IsValidation(err):
		result = "invalid"
	default:
		var te *workflow.TransitionError
		if errors.As(err, &te) {
			result = "rejected"
		} else {
			result = "error"
		}
	}
	middleware.OperationsTotal.WithLabelValues(op, result).Inc()
}

func (s *ReportService) refreshGauge() {
	for st, n := range s.store.CountByStatus() {
		middleware.ReportsTotal.WithLabelValues(string(st)).Set(float64(n))
	}
}
