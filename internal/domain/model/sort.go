package model

import (
	"sort"
	"strings"
)

// Поля сортировки (имена совпадают с JSON-полями заявки).
const (
	SortID                  = "id"
	SortTitle               = "title"
	SortDescription         = "description"
	SortPriority            = "priority"
	SortDepartment          = "department"
	SortLocation            = "location"
	SortReportedBy          = "reportedBy"
	SortStatus              = "status"
	SortProcurementPriority = "procurementPriority"
	SortCreatedAt           = "createdAt"
	SortUpdatedAt           = "updatedAt"
)

// stringKeys — извлечение строкового ключа сортировки по имени поля.
var stringKeys = map[string]func(r *FaultReport) string{
	SortID:          func(r *FaultReport) string { return r.ID },
	SortTitle:       func(r *FaultReport) string { return r.Title },
	SortDescription: func(r *FaultReport) string { return r.Description },
	SortPriority:    func(r *FaultReport) string { return r.Priority },
	SortDepartment:  func(r *FaultReport) string { return StringValue(r.Department) },
	SortLocation:    func(r *FaultReport) string { return StringValue(r.Location) },
	SortReportedBy:  func(r *FaultReport) string { return StringValue(r.ReportedBy) },
	SortStatus:      func(r *FaultReport) string { return string(r.Status) },
	SortProcurementPriority: func(r *FaultReport) string {
		if r.ProcurementPriority == nil {
			return ""
		}
		return string(*r.ProcurementPriority)
	},
}

// IsSortField проверяет, допустимо ли поле для сортировки.
func IsSortField(field string) bool {
	if field == SortCreatedAt || field == SortUpdatedAt {
		return true
	}
	_, ok := stringKeys[field]
	return ok
}

// compareBy сравнивает две заявки по полю: -1, 0, 1.
func compareBy(a, b *FaultReport, field string) int {
	switch field {
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	key, ok := stringKeys[field]
	if !ok {
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return strings.Compare(key(a), key(b))
}

// SortReports сортирует заявки по полю и направлению.
// При равенстве ключей порядок определяется id по возрастанию,
// независимо от направления.
func SortReports(reports []*FaultReport, field string, order SortOrder) {
	sort.SliceStable(reports, func(i, j int) bool {
		c := compareBy(reports[i], reports[j], field)
		if c == 0 {
			return reports[i].ID < reports[j].ID
		}
		if order == SortAsc {
			return c < 0
		}
		return c > 0
	})
}
