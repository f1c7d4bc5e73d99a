package model

import "fmt"

// StatusCount — элемент распределения по статусам.
type StatusCount struct {
	Status     Status `json:"status"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// PriorityCount — количество заявок с данным приоритетом.
type PriorityCount struct {
	Priority Priority `json:"priority"`
	Count    int      `json:"count"`
}

// DepartmentCount — количество заявок отдела.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// TrendPoint — агрегаты за один календарный день.
type TrendPoint struct {
	Date     string `json:"date"`
	Pending  int    `json:"pending"`
	Approved int    `json:"approved"`
	Assigned int    `json:"assigned"`
	Rejected int    `json:"rejected"`
	Total    int    `json:"total"`
}

// Dashboard — сводка для панели аналитики.
type Dashboard struct {
	TotalReports       int               `json:"totalReports"`
	PendingReports     int               `json:"pendingReports"`
	ApprovedReports    int               `json:"approvedReports"`
	AssignedReports    int               `json:"assignedReports"`
	RejectedReports    int               `json:"rejectedReports"`
	RecentReports      []*FaultReport    `json:"recentReports"`
	StatusDistribution []StatusCount     `json:"statusDistribution"`
	PriorityBreakdown  []PriorityCount   `json:"priorityBreakdown"`
	DepartmentActivity []DepartmentCount `json:"departmentActivity"`
}

// TrendPeriod — период для динамики.
type TrendPeriod string

const (
	Period7d  TrendPeriod = "7d"
	Period30d TrendPeriod = "30d"
	Period90d TrendPeriod = "90d"
)

// Days возвращает количество дней в периоде.
func (p TrendPeriod) Days() int {
	switch p {
	case Period7d:
		return 7
	case Period30d:
		return 30
	case Period90d:
		return 90
	default:
		return 0
	}
}

// ParseTrendPeriod преобразует строку в TrendPeriod. Пустая строка — 7d.
func ParseTrendPeriod(s string) (TrendPeriod, error) {
	if s == "" {
		return Period7d, nil
	}
	p := TrendPeriod(s)
	if p.Days() == 0 {
		return "", NewValidationError("period", fmt.Sprintf("недопустимый период %q, допустимые: 7d, 30d, 90d", s))
	}
	return p, nil
}
