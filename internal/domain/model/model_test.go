package model

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

// TestParseStatus проверяет разбор статусов.
func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "approved", "assigned", "rejected"} {
		if _, err := ParseStatus(s); err != nil {
			t.Errorf("ParseStatus(%q): неожиданная ошибка: %v", s, err)
		}
	}

	_, err := ParseStatus("closed")
	if !IsValidation(err) {
		t.Errorf("ParseStatus(closed): ожидалась ошибка валидации, получено %v", err)
	}
}

// TestCreateInput_Validate проверяет обязательные поля.
func TestCreateInput_Validate(t *testing.T) {
	in := CreateInput{Title: "T", Description: "D", Priority: "high"}
	if err := in.Validate(); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	in.Title = "   "
	if err := in.Validate(); !IsValidation(err) {
		t.Errorf("пустой title: ожидалась ошибка валидации, получено %v", err)
	}

	in = CreateInput{Title: "T", Priority: "high"}
	if err := in.Validate(); !IsValidation(err) {
		t.Errorf("пустой description: ожидалась ошибка валидации, получено %v", err)
	}
}

// TestPatch_Apply проверяет частичное обновление и очистку полей.
func TestPatch_Apply(t *testing.T) {
	r := &FaultReport{
		Title:      "old",
		Department: strPtr("IT"),
		Location:   strPtr("A"),
		Status:     StatusApproved,
	}

	p := Patch{Title: strPtr("new"), Department: strPtr("")}
	p.Apply(r)

	if r.Title != "new" {
		t.Errorf("Title: ожидалось new, получено %q", r.Title)
	}
	if r.Department != nil {
		t.Errorf("Department должен быть очищен, получено %q", *r.Department)
	}
	if StringValue(r.Location) != "A" {
		t.Errorf("Location не должен меняться")
	}
	if r.Status != StatusApproved {
		t.Errorf("Status не должен меняться")
	}

	if err := (&Patch{Description: strPtr("")}).Validate(); !IsValidation(err) {
		t.Errorf("пустой description в patch: ожидалась ошибка валидации")
	}
}

// TestListFilter_Normalize проверяет значения по умолчанию.
func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{Page: -3, Limit: 0, SortBy: "nonexistent", SortOrder: "sideways", Status: "all"}.Normalize()

	if f.Page != DefaultPage || f.Limit != DefaultLimit {
		t.Errorf("page/limit: ожидалось %d/%d, получено %d/%d", DefaultPage, DefaultLimit, f.Page, f.Limit)
	}
	if f.SortBy != SortCreatedAt || f.SortOrder != SortDesc {
		t.Errorf("сортировка: ожидалось createdAt desc, получено %s %s", f.SortBy, f.SortOrder)
	}
	if f.Status != "" {
		t.Errorf("status=all должен сниматься, получено %q", f.Status)
	}

	if got := (ListFilter{Limit: 10000}).Normalize().Limit; got != MaxLimit {
		t.Errorf("limit должен ограничиваться %d, получено %d", MaxLimit, got)
	}
}

// TestListFilter_MatchSearch проверяет поиск по нескольким полям без учёта регистра.
func TestListFilter_MatchSearch(t *testing.T) {
	r := &FaultReport{Title: "Lift", Description: "noise", ReportedBy: strPtr("Tom"), Department: strPtr("Elevator Crew")}

	f := ListFilter{Search: "elevator"}
	if !f.Match(r) {
		t.Error("ожидалось совпадение по department")
	}

	f = ListFilter{Search: "tom"}
	if !f.Match(r) {
		t.Error("ожидалось совпадение по reportedBy")
	}

	f = ListFilter{Search: "window"}
	if f.Match(r) {
		t.Error("совпадения быть не должно")
	}
}

// TestSortReports_TieBreak проверяет детерминированный порядок при равных ключах.
func TestSortReports_TieBreak(t *testing.T) {
	now := time.Now()
	reports := []*FaultReport{
		{ID: "c", Priority: "high", CreatedAt: now},
		{ID: "a", Priority: "high", CreatedAt: now},
		{ID: "b", Priority: "low", CreatedAt: now},
	}

	SortReports(reports, SortPriority, SortDesc)

	got := []string{reports[0].ID, reports[1].ID, reports[2].ID}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("порядок: ожидалось %v, получено %v", want, got)
		}
	}
}

// TestTotalPages проверяет вычисление количества страниц.
func TestTotalPages(t *testing.T) {
	tests := []struct{ total, limit, want int }{
		{0, 10, 0},
		{25, 10, 3},
		{30, 10, 3},
		{1, 50, 1},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, ожидалось %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

// TestClone проверяет, что копия не разделяет срезы и указатели.
func TestClone(t *testing.T) {
	r := &FaultReport{ID: "1", Department: strPtr("IT"), Attachments: []string{"a.txt"}}
	c := r.Clone()

	c.Attachments[0] = "b.txt"
	*c.Department = "HR"

	if r.Attachments[0] != "a.txt" || *r.Department != "IT" {
		t.Error("изменение копии затронуло оригинал")
	}
}
