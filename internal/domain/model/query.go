package model

import (
	"math"
	"strings"
	"time"
)

// Значения пагинации по умолчанию.
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 500
)

// FilterAll — значение фильтра, означающее «без фильтра».
const FilterAll = "all"

// SortOrder — направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// CreateInput — данные для создания заявки.
type CreateInput struct {
	Title       string
	Description string
	Priority    Priority
	Department  string
	Location    string
	ReportedBy  string
	Attachments []string
}

// Validate проверяет обязательные поля.
func (in *CreateInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("title", "обязательное поле")
	}
	if strings.TrimSpace(in.Description) == "" {
		return NewValidationError("description", "обязательное поле")
	}
	if strings.TrimSpace(in.Priority) == "" {
		return NewValidationError("priority", "обязательное поле")
	}
	return nil
}

// Patch — частичное обновление заявки. Закрытый набор полей:
// статус, вложения, идентификатор и временные метки не изменяются.
// Пустая строка в необязательном поле очищает его.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Department  *string `json:"department,omitempty"`
	Location    *string `json:"location,omitempty"`
	ReportedBy  *string `json:"reportedBy,omitempty"`
}

// Validate запрещает очищать обязательные поля.
func (p *Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewValidationError("title", "не может быть пустым")
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return NewValidationError("description", "не может быть пустым")
	}
	if p.Priority != nil && strings.TrimSpace(*p.Priority) == "" {
		return NewValidationError("priority", "не может быть пустым")
	}
	return nil
}

// Apply применяет изменения к заявке.
func (p *Patch) Apply(r *FaultReport) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Department != nil {
		r.Department = OptionalString(*p.Department)
	}
	if p.Location != nil {
		r.Location = OptionalString(*p.Location)
	}
	if p.ReportedBy != nil {
		r.ReportedBy = OptionalString(*p.ReportedBy)
	}
}

// ListFilter — параметры выборки списка заявок.
type ListFilter struct {
	Search     string
	Status     string
	Priority   string
	Department string
	DateFrom   *time.Time
	DateTo     *time.Time
	SortBy     string
	SortOrder  SortOrder
	Page       int
	Limit      int
}

// Normalize приводит некорректные значения к значениям по умолчанию.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if !IsSortField(f.SortBy) {
		f.SortBy = SortCreatedAt
	}
	if f.SortOrder != SortAsc && f.SortOrder != SortDesc {
		f.SortOrder = SortDesc
	}
	if f.Status == FilterAll {
		f.Status = ""
	}
	if f.Priority == FilterAll {
		f.Priority = ""
	}
	if f.Department == FilterAll {
		f.Department = ""
	}
	return f
}

// Match проверяет, проходит ли заявка фильтры (без пагинации).
func (f *ListFilter) Match(r *FaultReport) bool {
	if f.Search != "" && !matchSearch(r, strings.ToLower(f.Search)) {
		return false
	}
	if f.Status != "" && string(r.Status) != f.Status {
		return false
	}
	if f.Priority != "" && r.Priority != f.Priority {
		return false
	}
	if f.Department != "" && StringValue(r.Department) != f.Department {
		return false
	}
	if f.DateFrom != nil && r.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.CreatedAt.After(*f.DateTo) {
		return false
	}
	return true
}

func matchSearch(r *FaultReport, term string) bool {
	fields := []string{r.Title, r.Description, StringValue(r.ReportedBy), StringValue(r.Department)}
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// Page — страница результатов выборки.
type Page struct {
	Data       []*FaultReport `json:"data"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

// TotalPages вычисляет количество страниц: ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
