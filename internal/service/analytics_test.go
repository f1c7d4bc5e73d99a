package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bigkaa/faultdesk/internal/domain/model"
)

// staticSource — фиксированный снимок заявок.
type staticSource []*model.FaultReport

func (s staticSource) All() []*model.FaultReport { return s }

func report(id string, status model.Status, priority, department string, created time.Time) *model.FaultReport {
	return &model.FaultReport{
		ID:         id,
		Title:      "t-" + id,
		Priority:   priority,
		Department: model.OptionalString(department),
		Status:     status,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestStatusDistribution(t *testing.T) {
	ctx := context.Background()

	t.Run("пустое хранилище", func(t *testing.T) {
		a := NewAnalyticsService(staticSource(nil))
		dist := a.StatusDistribution(ctx)
		if len(dist) != 4 {
			t.Fatalf("хотели 4 статуса, получили %d", len(dist))
		}
		for _, sc := range dist {
			if sc.Count != 0 || sc.Percentage != 0 {
				t.Errorf("%s: хотели 0/0, получили %d/%d", sc.Status, sc.Count, sc.Percentage)
			}
		}
	})

	t.Run("проценты с округлением", func(t *testing.T) {
		src := staticSource{
			report("1", model.StatusPending, "low", "", base),
			report("2", model.StatusPending, "low", "", base),
			report("3", model.StatusApproved, "low", "", base),
		}
		dist := NewAnalyticsService(src).StatusDistribution(ctx)

		want := map[model.Status][2]int{
			model.StatusPending:  {2, 67},
			model.StatusApproved: {1, 33},
			model.StatusAssigned: {0, 0},
			model.StatusRejected: {0, 0},
		}
		for i, sc := range dist {
			if sc.Status != model.Statuses[i] {
				t.Errorf("порядок статусов: позиция %d — %s", i, sc.Status)
			}
			w := want[sc.Status]
			if sc.Count != w[0] || sc.Percentage != w[1] {
				t.Errorf("%s: хотели %d/%d%%, получили %d/%d%%", sc.Status, w[0], w[1], sc.Count, sc.Percentage)
			}
		}
	})
}

func TestPercentage_HalfUp(t *testing.T) {
	if got := percentage(1, 8); got != 13 {
		t.Errorf("12.5%% должно округляться до 13, получили %d", got)
	}
	if got := percentage(1, 200); got != 1 {
		t.Errorf("0.5%% должно округляться до 1, получили %d", got)
	}
}

func TestPriorityBreakdown_FirstOccurrence(t *testing.T) {
	src := staticSource{
		report("c", model.StatusPending, "low", "", base.Add(2*time.Hour)),
		report("a", model.StatusPending, "high", "", base),
		report("b", model.StatusPending, "low", "", base.Add(time.Hour)),
		report("d", model.StatusPending, "high", "", base.Add(3*time.Hour)),
	}

	got := NewAnalyticsService(src).PriorityBreakdown(context.Background())
	want := []model.PriorityCount{{Priority: "high", Count: 2}, {Priority: "low", Count: 2}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("хотели %v, получили %v", want, got)
	}
}

func TestDepartmentActivity(t *testing.T) {
	src := staticSource{
		report("1", model.StatusPending, "low", "IT", base),
		report("2", model.StatusPending, "low", "Facilities", base),
		report("3", model.StatusPending, "low", "IT", base),
		report("4", model.StatusPending, "low", "Admin", base),
		report("5", model.StatusPending, "low", "", base),
	}

	got := NewAnalyticsService(src).DepartmentActivity(context.Background())
	want := []model.DepartmentCount{
		{Department: "IT", Count: 2},
		{Department: "Admin", Count: 1},
		{Department: "Facilities", Count: 1},
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("хотели %v, получили %v", want, got)
	}
}

func TestTrendData(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	src := staticSource{
		report("1", model.StatusPending, "low", "", now.Add(-time.Hour)),
		report("2", model.StatusApproved, "low", "", now.Add(-time.Hour)),
		report("3", model.StatusRejected, "low", "", now.AddDate(0, 0, -6)),
		report("4", model.StatusAssigned, "low", "", now.AddDate(0, 0, -7)),
	}
	a := NewAnalyticsService(src, WithNow(func() time.Time { return now }))

	points, err := a.TrendData(context.Background(), model.Period7d)
	if err != nil {
		t.Fatalf("TrendData: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("хотели 7 точек, получили %d", len(points))
	}
	if points[0].Date != "2026-03-04" || points[6].Date != "2026-03-10" {
		t.Errorf("диапазон дат: %s … %s", points[0].Date, points[6].Date)
	}

	today := points[6]
	if today.Pending != 1 || today.Approved != 1 || today.Total != 2 {
		t.Errorf("сегодня: %+v", today)
	}
	if points[0].Rejected != 1 || points[0].Total != 1 {
		t.Errorf("первый день: %+v", points[0])
	}

	total := 0
	for _, p := range points {
		total += p.Total
	}
	if total != 3 {
		t.Errorf("заявка старше периода не должна учитываться, всего %d", total)
	}

	if _, err := a.TrendData(context.Background(), "14d"); !model.IsValidation(err) {
		t.Errorf("неизвестный период: ожидалась ошибка валидации, получили %v", err)
	}
}

func TestTrendData_Empty(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC) // 9 марта 22:00 по UTC-3
	a := NewAnalyticsService(staticSource(nil), WithLocation(loc), WithNow(func() time.Time { return now }))

	for _, period := range []model.TrendPeriod{model.Period7d, ""} {
		points, err := a.TrendData(context.Background(), period)
		if err != nil {
			t.Fatalf("TrendData(%q): %v", period, err)
		}
		if len(points) != 7 {
			t.Fatalf("TrendData(%q): хотели 7 точек, получили %d", period, len(points))
		}
		if points[0].Date != "2026-03-03" || points[6].Date != "2026-03-09" {
			t.Errorf("TrendData(%q): диапазон дат %s … %s", period, points[0].Date, points[6].Date)
		}
		for _, p := range points {
			if p.Pending != 0 || p.Approved != 0 || p.Assigned != 0 || p.Rejected != 0 || p.Total != 0 {
				t.Errorf("TrendData(%q): ненулевая точка %+v", period, p)
			}
		}
	}
}

func TestTrendData_Location(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC) // 11 марта 01:00 по UTC+5
	src := staticSource{report("1", model.StatusPending, "low", "", now)}

	a := NewAnalyticsService(src, WithLocation(loc), WithNow(func() time.Time { return now }))
	points, err := a.TrendData(context.Background(), model.Period30d)
	if err != nil {
		t.Fatalf("TrendData: %v", err)
	}
	if len(points) != 30 {
		t.Fatalf("хотели 30 точек, получили %d", len(points))
	}
	last := points[len(points)-1]
	if last.Date != "2026-03-11" || last.Total != 1 {
		t.Errorf("последний день в UTC+5: %+v", last)
	}
}

func TestDashboard(t *testing.T) {
	var src staticSource
	for i := 0; i < 12; i++ {
		st := model.StatusPending
		if i%3 == 0 {
			st = model.StatusApproved
		}
		src = append(src, report(fmt.Sprintf("r%02d", i), st, "medium", "IT", base.Add(time.Duration(i)*time.Minute)))
	}

	d := NewAnalyticsService(src).Dashboard(context.Background())
	if d.TotalReports != 12 || d.ApprovedReports != 4 || d.PendingReports != 8 {
		t.Errorf("итоги: %+v", d)
	}
	if len(d.RecentReports) != 10 {
		t.Fatalf("хотели 10 последних, получили %d", len(d.RecentReports))
	}
	if d.RecentReports[0].ID != "r11" || d.RecentReports[9].ID != "r02" {
		t.Errorf("порядок последних: первая %s, последняя %s", d.RecentReports[0].ID, d.RecentReports[9].ID)
	}
	if len(d.StatusDistribution) != 4 || len(d.DepartmentActivity) != 1 || len(d.PriorityBreakdown) != 1 {
		t.Errorf("разбивки: %+v", d)
	}
}

func TestSummarize_UsesGivenSet(t *testing.T) {
	src := staticSource{
		report("1", model.StatusPending, "low", "IT", base),
		report("2", model.StatusRejected, "high", "IT", base),
	}
	a := NewAnalyticsService(src)

	d := a.Summarize(context.Background(), []*model.FaultReport{src[1]})
	if d.TotalReports != 1 || d.RejectedReports != 1 || d.PendingReports != 0 {
		t.Errorf("сводка по подмножеству: %+v", d)
	}
	if len(d.RecentReports) != 1 || d.RecentReports[0].ID != "2" {
		t.Errorf("последние заявки: %+v", d.RecentReports)
	}
}
