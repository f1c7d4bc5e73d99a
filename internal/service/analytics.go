// analytics.go — агрегированная статистика по заявкам.
// Каждый вызов пересчитывает данные по текущему снимку хранилища.
package service

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/telemetry"
)

// recentLimit — количество последних заявок на дашборде.
const recentLimit = 10

// dateLayout — формат даты точки тренда.
const dateLayout = "2006-01-02"

// Snapshotter — источник снимка всех заявок.
type Snapshotter interface {
	All() []*model.FaultReport
}

// AnalyticsService — расчёт аналитики.
type AnalyticsService struct {
	source Snapshotter
	loc    *time.Location
	now    func() time.Time
}

// AnalyticsOption — настройка AnalyticsService.
type AnalyticsOption func(*AnalyticsService)

// WithLocation задаёт часовой пояс календарных дней тренда.
func WithLocation(loc *time.Location) AnalyticsOption {
	return func(a *AnalyticsService) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithNow задаёт источник времени (для тестов).
func WithNow(now func() time.Time) AnalyticsOption {
	return func(a *AnalyticsService) { a.now = now }
}

// NewAnalyticsService создаёт сервис аналитики. По умолчанию дни считаются в UTC.
func NewAnalyticsService(source Snapshotter, opts ...AnalyticsOption) *AnalyticsService {
	a := &AnalyticsService{
		source: source,
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// StatusDistribution возвращает распределение по всем четырём статусам.
func (a *AnalyticsService) StatusDistribution(ctx context.Context) []model.StatusCount {
	_, span := telemetry.StartSpan(ctx, "analytics.status_distribution")
	defer span.End()

	return statusDistribution(a.source.All())
}

// PriorityBreakdown возвращает количество заявок по приоритетам
// в порядке первого появления приоритета.
func (a *AnalyticsService) PriorityBreakdown(ctx context.Context) []model.PriorityCount {
	_, span := telemetry.StartSpan(ctx, "analytics.priority_breakdown")
	defer span.End()

	return priorityBreakdown(a.source.All())
}

// DepartmentActivity возвращает количество заявок по отделам.
func (a *AnalyticsService) DepartmentActivity(ctx context.Context) []model.DepartmentCount {
	_, span := telemetry.StartSpan(ctx, "analytics.department_activity")
	defer span.End()

	return departmentActivity(a.source.All())
}

// TrendData возвращает ровно period.Days() точек от старой к новой,
// последняя — сегодняшний день. Пустой period — 7d.
func (a *AnalyticsService) TrendData(ctx context.Context, period model.TrendPeriod) ([]model.TrendPoint, error) {
	_, span := telemetry.StartSpan(ctx, "analytics.trends", attribute.String("period", string(period)))
	defer span.End()

	p, err := model.ParseTrendPeriod(string(period))
	if err != nil {
		return nil, err
	}
	return a.trend(a.source.All(), p.Days()), nil
}

// Dashboard возвращает сводку для главной страницы.
func (a *AnalyticsService) Dashboard(ctx context.Context) *model.Dashboard {
	_, span := telemetry.StartSpan(ctx, "analytics.dashboard")
	defer span.End()

	d := summarize(a.source.All())
	span.SetAttributes(attribute.Int("total", d.TotalReports))
	return d
}

// Summarize строит сводку по переданному набору заявок (например, по выгрузке).
func (a *AnalyticsService) Summarize(ctx context.Context, reports []*model.FaultReport) *model.Dashboard {
	_, span := telemetry.StartSpan(ctx, "analytics.summarize", attribute.Int("total", len(reports)))
	defer span.End()

	return summarize(reports)
}

func summarize(all []*model.FaultReport) *model.Dashboard {
	dist := statusDistribution(all)

	d := &model.Dashboard{
		TotalReports:       len(all),
		RecentReports:      recent(all, recentLimit),
		StatusDistribution: dist,
		PriorityBreakdown:  priorityBreakdown(all),
		DepartmentActivity: departmentActivity(all),
	}
	for _, sc := range dist {
		switch sc.Status {
		case model.StatusPending:
			d.PendingReports = sc.Count
		case model.StatusApproved:
			d.ApprovedReports = sc.Count
		case model.StatusAssigned:
			d.AssignedReports = sc.Count
		case model.StatusRejected:
			d.RejectedReports = sc.Count
		}
	}
	return d
}

func statusDistribution(all []*model.FaultReport) []model.StatusCount {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, r := range all {
		counts[r.Status]++
	}

	result := make([]model.StatusCount, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		result = append(result, model.StatusCount{
			Status:     st,
			Count:      counts[st],
			Percentage: percentage(counts[st], len(all)),
		})
	}
	return result
}

// percentage — доля в процентах, округлённая до целого (половина вверх).
func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return (200*count + total) / (2 * total)
}

func priorityBreakdown(all []*model.FaultReport) []model.PriorityCount {
	ordered := byCreation(all)

	index := make(map[model.Priority]int)
	result := make([]model.PriorityCount, 0, 4)
	for _, r := range ordered {
		i, ok := index[r.Priority]
		if !ok {
			i = len(result)
			index[r.Priority] = i
			result = append(result, model.PriorityCount{Priority: r.Priority})
		}
		result[i].Count++
	}
	return result
}

func departmentActivity(all []*model.FaultReport) []model.DepartmentCount {
	counts := make(map[string]int)
	for _, r := range all {
		if r.Department == nil || *r.Department == "" {
			continue
		}
		counts[*r.Department]++
	}

	result := make([]model.DepartmentCount, 0, len(counts))
	for dep, n := range counts {
		result = append(result, model.DepartmentCount{Department: dep, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Department < result[j].Department
	})
	return result
}

func (a *AnalyticsService) trend(all []*model.FaultReport, days int) []model.TrendPoint {
	today := a.now().In(a.loc)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, a.loc).AddDate(0, 0, -(days - 1))

	points := make([]model.TrendPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		points[i].Date = date
		index[date] = i
	}

	for _, r := range all {
		i, ok := index[r.CreatedAt.In(a.loc).Format(dateLayout)]
		if !ok {
			continue
		}
		p := &points[i]
		switch r.Status {
		case model.StatusPending:
			p.Pending++
		case model.StatusApproved:
			p.Approved++
		case model.StatusAssigned:
			p.Assigned++
		case model.StatusRejected:
			p.Rejected++
		}
		p.Total++
	}
	return points
}

// recent возвращает limit последних заявок по createdAt.
func recent(all []*model.FaultReport, limit int) []*model.FaultReport {
	ordered := append([]*model.FaultReport(nil), all...)
	model.SortReports(ordered, model.SortCreatedAt, model.SortDesc)
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered
}

// byCreation возвращает копию среза, упорядоченную по createdAt, затем по id.
func byCreation(all []*model.FaultReport) []*model.FaultReport {
	ordered := append([]*model.FaultReport(nil), all...)
	model.SortReports(ordered, model.SortCreatedAt, model.SortAsc)
	return ordered
}
