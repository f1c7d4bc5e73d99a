// Пакет reports — потокобезопасное in-memory хранилище заявок.
//
// Store — единственный владелец заявок: все чтения и изменения
// проходят через него. Каждое изменение выполняется как
// copy → modify → replace под эксклюзивной блокировкой, поэтому
// read-modify-write по одному id атомарен. Читатели получают копии.
//
// Не персистентный: при рестарте содержимое теряется.
package reports

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/faultdesk/internal/domain/model"
)

// ErrDuplicateID — коллизия идентификаторов (нарушение инварианта хранилища).
var ErrDuplicateID = errors.New("коллизия идентификатора заявки")

// Files — файлы вложений: проверка наличия и удаление.
// Реализуется filestore.FileStore.
type Files interface {
	Exists(handle string) bool
	Delete(handle string) error
}

// Store — хранилище заявок.
type Store struct {
	mu      sync.RWMutex
	reports map[string]*model.FaultReport // id → заявка
	files   Files
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
}

// Option — настройка Store.
type Option func(*Store)

// WithClock задаёт источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator задаёт генератор идентификаторов (для тестов).
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New создаёт пустое хранилище. files используется для проверки
// вложений и их каскадного удаления.
func New(files Files, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		reports: make(map[string]*model.FaultReport),
		files:   files,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
		logger:  logger.With(slog.String("component", "report_store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create создаёт заявку со статусом pending.
func (s *Store) Create(in model.CreateInput) (*model.FaultReport, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	for _, handle := range in.Attachments {
		if err := s.checkFile(handle); err != nil {
			return nil, err
		}
	}

	now := s.now()
	report := &model.FaultReport{
		ID:            s.newID(),
		Title:         in.Title,
		Description:   in.Description,
		Priority:      in.Priority,
		Department:    model.OptionalString(in.Department),
		Location:      model.OptionalString(in.Location),
		ReportedBy:    model.OptionalString(in.ReportedBy),
		Status:        model.StatusPending,
		Attachments:   append(make([]string, 0, len(in.Attachments)), in.Attachments...),
		StatusHistory: []model.StatusChange{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		s.logger.Error("Коллизия идентификатора заявки", slog.String("id", report.ID))
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, report.ID)
	}
	s.reports[report.ID] = report

	return report.Clone(), nil
}

// Get возвращает копию заявки по id.
func (s *Store) Get(id string) (*model.FaultReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, notFound(id)
	}
	return r.Clone(), nil
}

// List возвращает страницу заявок с фильтрацией и сортировкой.
// Пагинация применяется после фильтрации и сортировки.
func (s *Store) List(filter model.ListFilter) *model.Page {
	f := filter.Normalize()

	s.mu.RLock()
	filtered := make([]*model.FaultReport, 0, len(s.reports))
	for _, r := range s.reports {
		if f.Match(r) {
			filtered = append(filtered, r.Clone())
		}
	}
	s.mu.RUnlock()

	model.SortReports(filtered, f.SortBy, f.SortOrder)

	total := len(filtered)
	page := &model.Page{
		Data:       []*model.FaultReport{},
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: model.TotalPages(total, f.Limit),
	}

	// Сравнение до умножения: (page-1)*limit переполняет int на больших page.
	if f.Page > page.TotalPages {
		return page
	}
	offset := (f.Page - 1) * f.Limit
	end := offset + f.Limit
	if end > total {
		end = total
	}
	page.Data = filtered[offset:end]
	return page
}

// Update применяет частичное обновление полей заявки.
func (s *Store) Update(id string, patch model.Patch) (*model.FaultReport, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(id, func(r *model.FaultReport) error {
		patch.Apply(r)
		return nil
	})
}

// SetStatus устанавливает статус заявки. Допустимость перехода
// проверяет вызывающий код.
func (s *Store) SetStatus(id string, status model.Status, action model.Action) (*model.FaultReport, error) {
	return s.Transition(id, status, action, nil)
}

// AssignProcurement переводит заявку в assigned и сохраняет
// срочность закупки одной операцией.
func (s *Store) AssignProcurement(id string, priority model.ProcurementPriority) (*model.FaultReport, error) {
	return s.TransitionProcurement(id, priority, nil)
}

// TransitionFunc решает, допустим ли переход; вызывается под блокировкой.
type TransitionFunc func(from, to model.Status) error

// Transition атомарно проверяет и выполняет смену статуса.
func (s *Store) Transition(id string, to model.Status, action model.Action, check TransitionFunc) (*model.FaultReport, error) {
	return s.mutate(id, func(r *model.FaultReport) error {
		if check != nil {
			if err := check(r.Status, to); err != nil {
				return err
			}
		}
		s.recordTransition(r, to, action)
		return nil
	})
}

// TransitionProcurement — Transition для передачи в закупки с сохранением срочности.
func (s *Store) TransitionProcurement(id string, priority model.ProcurementPriority, check TransitionFunc) (*model.FaultReport, error) {
	return s.mutate(id, func(r *model.FaultReport) error {
		if check != nil {
			if err := check(r.Status, model.StatusAssigned); err != nil {
				return err
			}
		}
		p := priority
		r.ProcurementPriority = &p
		s.recordTransition(r, model.StatusAssigned, model.ActionProcurement)
		return nil
	})
}

// Delete удаляет заявку и все файлы её вложений.
// Возвращает false, если заявка не найдена. Ошибки удаления файлов
// возвращаются после удаления заявки: заявка удалена в любом случае.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	r, ok := s.reports[id]
	if ok {
		delete(s.reports, id)
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}

	var errs []error
	for _, handle := range r.Attachments {
		if err := s.files.Delete(handle); err != nil {
			s.logger.Error("Ошибка удаления вложения",
				slog.String("id", id),
				slog.String("handle", handle),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}

	s.logger.Debug("Заявка удалена",
		slog.String("id", id),
		slog.Int("attachments", len(r.Attachments)),
	)

	return true, errors.Join(errs...)
}

// AddAttachment добавляет файл в конец списка вложений.
// Файл должен уже быть записан в хранилище файлов.
func (s *Store) AddAttachment(id, handle string) (*model.FaultReport, error) {
	if err := s.checkFile(handle); err != nil {
		return nil, err
	}
	return s.mutate(id, func(r *model.FaultReport) error {
		r.Attachments = append(r.Attachments, handle)
		return nil
	})
}

// RemoveAttachment удаляет все вхождения handle из списка вложений
// и удаляет сам файл. Если handle не привязан к заявке — ErrNotFound.
func (s *Store) RemoveAttachment(id, handle string) (*model.FaultReport, error) {
	updated, err := s.mutate(id, func(r *model.FaultReport) error {
		kept := r.Attachments[:0]
		for _, a := range r.Attachments {
			if a != handle {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(r.Attachments) {
			return fmt.Errorf("вложение %s заявки %s: %w", handle, id, model.ErrNotFound)
		}
		r.Attachments = kept
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.files.Delete(handle); err != nil {
		s.logger.Error("Ошибка удаления файла вложения",
			slog.String("id", id),
			slog.String("handle", handle),
			slog.String("error", err.Error()),
		)
		return updated, fmt.Errorf("удаление файла %s: %w", handle, err)
	}
	return updated, nil
}

// VerifyFileAccess проверяет, привязан ли файл хотя бы к одной заявке.
func (s *Store) VerifyFileAccess(handle string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reports {
		if r.HasAttachment(handle) {
			return true
		}
	}
	return false
}

// ReferencedFiles возвращает множество всех привязанных файлов.
func (s *Store) ReferencedFiles() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]struct{})
	for _, r := range s.reports {
		for _, a := range r.Attachments {
			result[a] = struct{}{}
		}
	}
	return result
}

// All возвращает копии всех заявок (порядок не определён).
func (s *Store) All() []*model.FaultReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.FaultReport, 0, len(s.reports))
	for _, r := range s.reports {
		result = append(result, r.Clone())
	}
	return result
}

// Count возвращает количество заявок.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

// CountByStatus возвращает количество заявок по каждому статусу.
func (s *Store) CountByStatus() map[model.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[model.Status]int, len(model.Statuses))
	for _, st := range model.Statuses {
		result[st] = 0
	}
	for _, r := range s.reports {
		result[r.Status]++
	}
	return result
}

// mutate выполняет изменение заявки: копия → fn → обновление updatedAt → замена.
// При ошибке fn хранилище не меняется.
func (s *Store) mutate(id string, fn func(r *model.FaultReport) error) (*model.FaultReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.reports[id]
	if !ok {
		return nil, notFound(id)
	}

	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.touch(cur.UpdatedAt)
	s.reports[id] = next

	return next.Clone(), nil
}

// touch возвращает новое значение updatedAt, строго большее prev.
func (s *Store) touch(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (s *Store) recordTransition(r *model.FaultReport, to model.Status, action model.Action) {
	r.StatusHistory = append(r.StatusHistory, model.StatusChange{
		From:   r.Status,
		To:     to,
		Action: action,
		At:     s.now(),
	})
	r.Status = to
}

// checkFile отклоняет handle, которого нет в хранилище файлов.
func (s *Store) checkFile(handle string) error {
	if !s.files.Exists(handle) {
		return model.NewValidationError("attachments", fmt.Sprintf("unknown file %q", handle))
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("заявка %s: %w", id, model.ErrNotFound)
}
