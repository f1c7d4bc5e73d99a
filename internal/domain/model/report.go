// Пакет model — доменные модели faultdesk.
// FaultReport — центральная сущность: заявка о неисправности
// с жизненным циклом статусов и списком вложений.
package model

import (
	"fmt"
	"time"
)

// Status — статус заявки в жизненном цикле.
type Status string

const (
	// StatusPending — новая заявка, ожидает рассмотрения
	StatusPending Status = "pending"
	// StatusApproved — одобрена, выдан наряд (job card)
	StatusApproved Status = "approved"
	// StatusAssigned — передана менеджеру по закупкам
	StatusAssigned Status = "assigned"
	// StatusRejected — отклонена
	StatusRejected Status = "rejected"
)

// Statuses — канонический порядок статусов (используется в аналитике).
var Statuses = []Status{StatusPending, StatusApproved, StatusAssigned, StatusRejected}

// ParseStatus преобразует строку в Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusApproved, StatusAssigned, StatusRejected:
		return st, nil
	default:
		return "", NewValidationError("status",
			fmt.Sprintf("недопустимый статус %q, допустимые: pending, approved, assigned, rejected", s))
	}
}

// Priority — приоритет заявки. Свободный текст, но по соглашению
// одно из значений low, medium, high, critical.
type Priority = string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority проверяет принадлежность приоритета к допустимому набору.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return s, nil
	default:
		return "", NewValidationError("priority",
			fmt.Sprintf("недопустимый приоритет %q, допустимые: low, medium, high, critical", s))
	}
}

// ProcurementPriority — срочность заявки на закупку.
type ProcurementPriority string

const (
	Procurement24h  ProcurementPriority = "24hrs"
	Procurement72h  ProcurementPriority = "72hrs"
	ProcurementMisc ProcurementPriority = "miscellaneous"
)

// ParseProcurementPriority проверяет срочность заявки на закупку.
func ParseProcurementPriority(s string) (ProcurementPriority, error) {
	p := ProcurementPriority(s)
	switch p {
	case Procurement24h, Procurement72h, ProcurementMisc:
		return p, nil
	default:
		return "", NewValidationError("priority",
			"Invalid priority. Must be '24hrs', '72hrs', or 'miscellaneous'")
	}
}

// Action — действие, инициировавшее смену статуса.
type Action string

const (
	ActionManual      Action = "manual"
	ActionJobCard     Action = "job_card"
	ActionProcurement Action = "procurement"
)

// StatusChange — запись о смене статуса заявки.
type StatusChange struct {
	From   Status    `json:"from"`
	To     Status    `json:"to"`
	Action Action    `json:"action"`
	At     time.Time `json:"at"`
}

// FaultReport — заявка о неисправности.
type FaultReport struct {
	// ID — уникальный идентификатор (UUID v4), не переиспользуется
	ID string `json:"id"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`

	// Необязательные поля: nil — значение отсутствует
	Department *string `json:"department"`
	Location   *string `json:"location"`
	ReportedBy *string `json:"reportedBy"`

	// Status — меняется только через операции перехода
	Status Status `json:"status"`

	// Attachments — имена файлов в файловом хранилище, порядок добавления сохраняется
	Attachments []string `json:"attachments"`

	// ProcurementPriority — срочность закупки, задаётся при передаче в закупки
	ProcurementPriority *ProcurementPriority `json:"procurementPriority"`

	// StatusHistory — история переходов
	StatusHistory []StatusChange `json:"statusHistory"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone возвращает глубокую копию заявки.
func (r *FaultReport) Clone() *FaultReport {
	c := *r
	c.Department = cloneString(r.Department)
	c.Location = cloneString(r.Location)
	c.ReportedBy = cloneString(r.ReportedBy)
	if r.ProcurementPriority != nil {
		p := *r.ProcurementPriority
		c.ProcurementPriority = &p
	}
	c.Attachments = append(make([]string, 0, len(r.Attachments)), r.Attachments...)
	c.StatusHistory = append(make([]StatusChange, 0, len(r.StatusHistory)), r.StatusHistory...)
	return &c
}

// HasAttachment проверяет, привязан ли файл к заявке.
func (r *FaultReport) HasAttachment(handle string) bool {
	for _, a := range r.Attachments {
		if a == handle {
			return true
		}
	}
	return false
}

// StringValue возвращает значение необязательного поля или "".
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OptionalString возвращает nil для пустой строки.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
