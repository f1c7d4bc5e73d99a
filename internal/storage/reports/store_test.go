package reports

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/storage/filestore"
)

// testLogger возвращает логгер для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// fakeFiles — Files, запоминающий удалённые файлы.
// Существующими считаются все файлы, кроме перечисленных в missing.
type fakeFiles struct {
	mu      sync.Mutex
	deleted []string
	missing map[string]bool
	fail    bool
}

func (f *fakeFiles) Exists(handle string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.missing[handle]
}

func (f *fakeFiles) Delete(handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("disk error")
	}
	f.deleted = append(f.deleted, handle)
	return nil
}

// stepClock — часы, сдвигающиеся на step при каждом вызове.
type stepClock struct {
	mu   sync.Mutex
	cur  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.cur
	c.cur = c.cur.Add(c.step)
	return t
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeFiles) {
	t.Helper()
	files := &fakeFiles{}
	return New(files, testLogger(), opts...), files
}

func validInput(title string) model.CreateInput {
	return model.CreateInput{Title: title, Description: "D", Priority: model.PriorityHigh}
}

// TestCreate проверяет значения по умолчанию новой заявки.
func TestCreate(t *testing.T) {
	s, _ := newTestStore(t)

	r, err := s.Create(validInput("T"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if r.ID == "" {
		t.Error("ID должен быть назначен")
	}
	if r.Status != model.StatusPending {
		t.Errorf("Status: ожидалось pending, получено %s", r.Status)
	}
	if len(r.Attachments) != 0 {
		t.Errorf("Attachments: ожидался пустой список, получено %v", r.Attachments)
	}
	if !r.CreatedAt.Equal(r.UpdatedAt) {
		t.Errorf("createdAt (%v) != updatedAt (%v)", r.CreatedAt, r.UpdatedAt)
	}
	if r.Department != nil || r.Location != nil || r.ReportedBy != nil {
		t.Error("необязательные поля должны отсутствовать")
	}
}

// TestCreate_Validation проверяет, что невалидная заявка не создаётся.
func TestCreate_Validation(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Create(model.CreateInput{Title: "", Description: "D", Priority: "low"})
	if !model.IsValidation(err) {
		t.Fatalf("ожидалась ошибка валидации, получено %v", err)
	}
	_, err = s.Create(model.CreateInput{Title: "T", Description: " ", Priority: "low"})
	if !model.IsValidation(err) {
		t.Fatalf("ожидалась ошибка валидации, получено %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("заявки не должны создаваться, Count=%d", s.Count())
	}
}

// TestCreate_DuplicateID проверяет обработку коллизии идентификаторов.
func TestCreate_DuplicateID(t *testing.T) {
	s, _ := newTestStore(t, WithIDGenerator(func() string { return "same" }))

	if _, err := s.Create(validInput("a")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(validInput("b")); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("ожидалась ErrDuplicateID, получено %v", err)
	}
}

// TestRoundTrip проверяет, что get возвращает созданную заявку.
func TestRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	in := model.CreateInput{
		Title:       "Elevator Maintenance Required",
		Description: "Elevator making strange noises",
		Priority:    model.PriorityHigh,
		Department:  "Maintenance",
		Location:    "Main Building",
		ReportedBy:  "Tom Brown",
		Attachments: []string{"a.pdf", "b.png"},
	}
	created, err := s.Create(in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(created, got) {
		t.Errorf("get != create:\n%+v\n%+v", got, created)
	}
}

// TestUnknownAttachment проверяет, что файлы вне хранилища не привязываются.
func TestUnknownAttachment(t *testing.T) {
	s, files := newTestStore(t)
	files.missing = map[string]bool{"ghost.pdf": true}

	in := validInput("with ghost")
	in.Attachments = []string{"a.pdf", "ghost.pdf"}
	if _, err := s.Create(in); !model.IsValidation(err) {
		t.Fatalf("Create: ожидалась ошибка валидации, получено %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("заявка не должна создаваться, Count=%d", s.Count())
	}

	r, err := s.Create(validInput("plain"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddAttachment(r.ID, "ghost.pdf"); !model.IsValidation(err) {
		t.Errorf("AddAttachment: ожидалась ошибка валидации, получено %v", err)
	}
	got, _ := s.Get(r.ID)
	if len(got.Attachments) != 0 || !got.UpdatedAt.Equal(r.UpdatedAt) {
		t.Errorf("заявка не должна меняться: %+v", got)
	}
}

// TestGet_NotFound проверяет типизированное отсутствие.
func TestGet_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Get("missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
	if _, err := s.SetStatus("missing", model.StatusApproved, model.ActionManual); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("SetStatus: ожидалась ErrNotFound, получено %v", err)
	}
	if _, err := s.AddAttachment("missing", "x"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("AddAttachment: ожидалась ErrNotFound, получено %v", err)
	}
	if ok, err := s.Delete("missing"); ok || err != nil {
		t.Errorf("Delete: ожидалось false/nil, получено %v/%v", ok, err)
	}
}

// TestSetStatus_BumpsUpdatedAt проверяет строгий рост updatedAt,
// даже если часы не сдвинулись.
func TestSetStatus_BumpsUpdatedAt(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, WithClock(func() time.Time { return frozen }))

	r, _ := s.Create(validInput("T"))
	before := r.UpdatedAt

	updated, err := s.SetStatus(r.ID, model.StatusApproved, model.ActionManual)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	got, _ := s.Get(r.ID)
	if got.Status != model.StatusApproved {
		t.Errorf("Status: ожидалось approved, получено %s", got.Status)
	}
	if !got.UpdatedAt.After(before) {
		t.Errorf("updatedAt должен вырасти: %v → %v", before, got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(r.CreatedAt) {
		t.Error("createdAt не должен меняться")
	}
	if len(updated.StatusHistory) != 1 || updated.StatusHistory[0].From != model.StatusPending {
		t.Errorf("история переходов: %+v", updated.StatusHistory)
	}
}

// TestTransition_CheckRejects проверяет, что отказ проверки не меняет заявку.
func TestTransition_CheckRejects(t *testing.T) {
	s, _ := newTestStore(t)
	r, _ := s.Create(validInput("T"))

	deny := errors.New("denied")
	_, err := s.Transition(r.ID, model.StatusAssigned, model.ActionManual, func(from, to model.Status) error {
		if from != model.StatusPending || to != model.StatusAssigned {
			t.Errorf("неверные аргументы проверки: %s → %s", from, to)
		}
		return deny
	})
	if !errors.Is(err, deny) {
		t.Fatalf("ожидалась ошибка проверки, получено %v", err)
	}

	got, _ := s.Get(r.ID)
	if got.Status != model.StatusPending || !got.UpdatedAt.Equal(r.UpdatedAt) {
		t.Error("заявка не должна меняться при отказе")
	}
}

// TestAssignProcurement проверяет сохранение срочности закупки.
func TestAssignProcurement(t *testing.T) {
	s, _ := newTestStore(t)
	r, _ := s.Create(validInput("T"))

	got, err := s.AssignProcurement(r.ID, model.Procurement72h)
	if err != nil {
		t.Fatalf("AssignProcurement: %v", err)
	}
	if got.Status != model.StatusAssigned {
		t.Errorf("Status: ожидалось assigned, получено %s", got.Status)
	}
	if got.ProcurementPriority == nil || *got.ProcurementPriority != model.Procurement72h {
		t.Errorf("ProcurementPriority не сохранён: %v", got.ProcurementPriority)
	}
}

// TestUpdate проверяет частичное обновление.
func TestUpdate(t *testing.T) {
	s, _ := newTestStore(t)
	r, _ := s.Create(model.CreateInput{Title: "T", Description: "D", Priority: "low", Department: "IT"})

	title := "New title"
	empty := ""
	got, err := s.Update(r.ID, model.Patch{Title: &title, Department: &empty})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != title || got.Description != "D" || got.Department != nil {
		t.Errorf("неверный результат: %+v", got)
	}
	if got.Status != model.StatusPending {
		t.Error("статус не должен меняться через Update")
	}
	if !got.UpdatedAt.After(r.UpdatedAt) {
		t.Error("updatedAt должен вырасти")
	}

	if _, err := s.Update(r.ID, model.Patch{Title: &empty}); !model.IsValidation(err) {
		t.Errorf("пустой title: ожидалась ошибка валидации, получено %v", err)
	}
}

// TestList_FilterByPriority проверяет точный фильтр и total независимо от limit.
func TestList_FilterByPriority(t *testing.T) {
	s, _ := newTestStore(t)
	for _, p := range []string{"low", "medium", "high", "critical", "high", "high"} {
		if _, err := s.Create(model.CreateInput{Title: "T", Description: "D", Priority: p}); err != nil {
			t.Fatal(err)
		}
	}

	page := s.List(model.ListFilter{Priority: "high", Limit: 2})
	if page.Total != 3 {
		t.Errorf("Total: ожидалось 3, получено %d", page.Total)
	}
	if len(page.Data) != 2 {
		t.Errorf("Data: ожидалось 2, получено %d", len(page.Data))
	}
	for _, r := range page.Data {
		if r.Priority != "high" {
			t.Errorf("в выборку попала заявка с приоритетом %s", r.Priority)
		}
	}

	if all := s.List(model.ListFilter{Priority: "all"}); all.Total != 6 {
		t.Errorf("priority=all: ожидалось 6, получено %d", all.Total)
	}
}

// TestList_Pagination проверяет вторую страницу из 25 заявок.
func TestList_Pagination(t *testing.T) {
	clock := &stepClock{cur: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Minute}
	s, _ := newTestStore(t, WithClock(clock.Now))

	var created []*model.FaultReport
	for i := 0; i < 25; i++ {
		r, err := s.Create(validInput(fmt.Sprintf("report-%02d", i)))
		if err != nil {
			t.Fatal(err)
		}
		created = append(created, r)
	}

	page := s.List(model.ListFilter{Page: 2, Limit: 10})
	if len(page.Data) != 10 {
		t.Fatalf("Data: ожидалось 10, получено %d", len(page.Data))
	}
	if page.TotalPages != 3 || page.Total != 25 || page.Page != 2 || page.Limit != 10 {
		t.Errorf("неверные метаданные страницы: %+v", page)
	}

	// По умолчанию createdAt desc: 11-й элемент — created[14]
	for i, r := range page.Data {
		want := created[24-10-i]
		if r.ID != want.ID {
			t.Errorf("позиция %d: ожидалось %s, получено %s", i, want.Title, r.Title)
		}
	}

	beyond := s.List(model.ListFilter{Page: 9, Limit: 10})
	if len(beyond.Data) != 0 || beyond.Total != 25 {
		t.Errorf("страница за пределами: Data=%d Total=%d", len(beyond.Data), beyond.Total)
	}
}

// TestList_HugePage проверяет, что огромный номер страницы даёт пустую страницу.
func TestList_HugePage(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Create(validInput(fmt.Sprintf("report-%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	for _, limit := range []int{1, 50, model.MaxLimit} {
		page := s.List(model.ListFilter{Page: math.MaxInt, Limit: limit})
		if len(page.Data) != 0 || page.Total != 3 {
			t.Errorf("limit=%d: Data=%d Total=%d", limit, len(page.Data), page.Total)
		}
	}
}

// TestList_Search проверяет поиск по title, description, reportedBy, department.
func TestList_Search(t *testing.T) {
	s, _ := newTestStore(t)
	inputs := []model.CreateInput{
		{Title: "Elevator stuck", Description: "D", Priority: "high"},
		{Title: "T", Description: "The ELEVATOR is noisy", Priority: "high"},
		{Title: "T", Description: "D", Priority: "high", ReportedBy: "elevator inspector"},
		{Title: "T", Description: "D", Priority: "high", Department: "Elevators"},
		{Title: "T", Description: "D", Priority: "high", Location: "elevator shaft"},
		{Title: "Window", Description: "Broken", Priority: "low"},
	}
	for _, in := range inputs {
		if _, err := s.Create(in); err != nil {
			t.Fatal(err)
		}
	}

	page := s.List(model.ListFilter{Search: "elevator"})
	if page.Total != 4 {
		t.Errorf("ожидалось 4 совпадения (location не участвует в поиске), получено %d", page.Total)
	}
}

// TestList_DateRange проверяет включительные границы createdAt.
func TestList_DateRange(t *testing.T) {
	clock := &stepClock{cur: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), step: 24 * time.Hour}
	s, _ := newTestStore(t, WithClock(clock.Now))

	var created []*model.FaultReport
	for i := 0; i < 5; i++ {
		r, _ := s.Create(validInput(fmt.Sprintf("r%d", i)))
		created = append(created, r)
	}

	from := created[1].CreatedAt
	to := created[3].CreatedAt
	page := s.List(model.ListFilter{DateFrom: &from, DateTo: &to, SortOrder: model.SortAsc})
	if page.Total != 3 {
		t.Fatalf("ожидалось 3 заявки, получено %d", page.Total)
	}
	if page.Data[0].ID != created[1].ID || page.Data[2].ID != created[3].ID {
		t.Error("границы диапазона должны быть включительными")
	}
}

// TestList_SortByTitleAsc проверяет сортировку по произвольному полю.
func TestList_SortByTitleAsc(t *testing.T) {
	s, _ := newTestStore(t)
	for _, title := range []string{"b", "c", "a"} {
		s.Create(validInput(title))
	}

	page := s.List(model.ListFilter{SortBy: "title", SortOrder: model.SortAsc})
	var got []string
	for _, r := range page.Data {
		got = append(got, r.Title)
	}
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("ожидалось a,b,c, получено %v", got)
	}
}

// TestAttachments проверяет добавление и удаление вложений.
func TestAttachments(t *testing.T) {
	s, files := newTestStore(t)
	r, _ := s.Create(validInput("T"))

	s.AddAttachment(r.ID, "a.pdf")
	s.AddAttachment(r.ID, "b.png")
	got, err := s.AddAttachment(r.ID, "a.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got.Attachments, ",") != "a.pdf,b.png,a.pdf" {
		t.Errorf("порядок вложений: %v", got.Attachments)
	}
	if !s.VerifyFileAccess("b.png") {
		t.Error("b.png должен быть доступен")
	}

	got, err = s.RemoveAttachment(r.ID, "a.pdf")
	if err != nil {
		t.Fatalf("RemoveAttachment: %v", err)
	}
	if strings.Join(got.Attachments, ",") != "b.png" {
		t.Errorf("должны удаляться все вхождения: %v", got.Attachments)
	}
	if len(files.deleted) != 1 || files.deleted[0] != "a.pdf" {
		t.Errorf("файл должен быть удалён из хранилища: %v", files.deleted)
	}
	if s.VerifyFileAccess("a.pdf") {
		t.Error("a.pdf не должен быть доступен")
	}

	if _, err := s.RemoveAttachment(r.ID, "missing.txt"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("удаление непривязанного файла: ожидалась ErrNotFound, получено %v", err)
	}
	if len(files.deleted) != 1 {
		t.Error("непривязанный файл не должен удаляться")
	}
}

// TestDelete_CascadesToFiles проверяет каскадное удаление на реальном FileStore.
func TestDelete_CascadesToFiles(t *testing.T) {
	fs, err := filestore.New(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	s := New(fs, testLogger())

	var handles []string
	for _, name := range []string{"a.txt", "b.pdf"} {
		res, err := fs.Write(strings.NewReader("data"), name, "")
		if err != nil {
			t.Fatal(err)
		}
		handles = append(handles, res.Handle)
	}

	in := validInput("T")
	in.Attachments = handles
	r, _ := s.Create(in)

	ok, err := s.Delete(r.ID)
	if !ok || err != nil {
		t.Fatalf("Delete: %v %v", ok, err)
	}

	for _, h := range handles {
		if s.VerifyFileAccess(h) {
			t.Errorf("%s всё ещё доступен", h)
		}
		if fs.Exists(h) {
			t.Errorf("%s всё ещё на диске", h)
		}
	}
	if _, err := s.Get(r.ID); !errors.Is(err, model.ErrNotFound) {
		t.Error("заявка должна быть удалена")
	}
}

// TestDelete_FileErrorStillRemovesReport проверяет поведение при ошибке диска.
func TestDelete_FileErrorStillRemovesReport(t *testing.T) {
	s, files := newTestStore(t)
	files.fail = true

	in := validInput("T")
	in.Attachments = []string{"a.txt"}
	r, _ := s.Create(in)

	ok, err := s.Delete(r.ID)
	if !ok || err == nil {
		t.Fatalf("ожидалось true и ошибка, получено %v/%v", ok, err)
	}
	if s.Count() != 0 {
		t.Error("заявка должна быть удалена")
	}
}

// TestIDsNotReused проверяет уникальность id после удаления.
func TestIDsNotReused(t *testing.T) {
	s, _ := newTestStore(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		r, _ := s.Create(validInput("T"))
		if seen[r.ID] {
			t.Fatalf("повтор id %s", r.ID)
		}
		seen[r.ID] = true
		s.Delete(r.ID)
	}
}

// TestConcurrentAttachments проверяет атомарность изменений одной заявки.
func TestConcurrentAttachments(t *testing.T) {
	s, _ := newTestStore(t)
	r, _ := s.Create(validInput("T"))

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.AddAttachment(r.ID, fmt.Sprintf("f%d.txt", i)); err != nil {
				t.Error(err)
			}
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.List(model.ListFilter{})
			s.VerifyFileAccess("f1.txt")
		}()
	}
	wg.Wait()

	got, _ := s.Get(r.ID)
	if len(got.Attachments) != n {
		t.Errorf("ожидалось %d вложений, получено %d", n, len(got.Attachments))
	}
}

// TestCountByStatus проверяет подсчёт по статусам.
func TestCountByStatus(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.Create(validInput("a"))
	s.Create(validInput("b"))
	s.SetStatus(a.ID, model.StatusRejected, model.ActionManual)

	counts := s.CountByStatus()
	if counts[model.StatusPending] != 1 || counts[model.StatusRejected] != 1 || counts[model.StatusAssigned] != 0 {
		t.Errorf("неверные счётчики: %v", counts)
	}
	if _, ok := counts[model.StatusApproved]; !ok {
		t.Error("все статусы должны присутствовать")
	}
}
