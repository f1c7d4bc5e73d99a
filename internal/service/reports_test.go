package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/domain/workflow"
	"github.com/bigkaa/faultdesk/internal/storage/filestore"
	"github.com/bigkaa/faultdesk/internal/storage/reports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var testPolicy = UploadPolicy{
	MaxFiles:          5,
	AllowedExtensions: []string{"jpeg", "jpg", "png", "gif", "pdf", "doc", "docx", "txt", "xlsx", "xls"},
}

// setupReportEnv создаёт сервис заявок поверх реальных filestore и store.
func setupReportEnv(t *testing.T, strict bool) (*ReportService, *reports.Store, *filestore.FileStore) {
	t.Helper()

	files, err := filestore.New(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("Ошибка создания FileStore: %v", err)
	}
	store := reports.New(files, testLogger())
	svc := NewReportService(store, files, workflow.NewGuard(strict), testPolicy, testLogger())
	return svc, store, files
}

func validInput() model.CreateInput {
	return model.CreateInput{
		Title:       "Broken window",
		Description: "Conference room window cracked",
		Priority:    model.PriorityHigh,
		Department:  "Facilities",
	}
}

func upload(name, content string) Upload {
	return Upload{Reader: strings.NewReader(content), Filename: name, ContentType: "text/plain"}
}

func countFiles(t *testing.T, files *filestore.FileStore) int {
	t.Helper()
	entries, err := files.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return len(entries)
}

func TestCreate_WithAttachments(t *testing.T) {
	svc, _, files := setupReportEnv(t, false)

	r, err := svc.Create(context.Background(), validInput(), []Upload{
		upload("photo.png", "png-bytes"),
		upload("notes.txt", "details"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status != model.StatusPending {
		t.Errorf("статус: хотели pending, получили %s", r.Status)
	}
	if len(r.Attachments) != 2 {
		t.Fatalf("вложений: хотели 2, получили %d", len(r.Attachments))
	}
	for _, h := range r.Attachments {
		if !files.Exists(h) {
			t.Errorf("файл %s должен существовать", h)
		}
	}
}

func TestCreate_ValidationWritesNothing(t *testing.T) {
	svc, store, files := setupReportEnv(t, false)

	tests := []struct {
		name    string
		in      model.CreateInput
		uploads []Upload
	}{
		{"пустой заголовок", model.CreateInput{Description: "d", Priority: "low"}, nil},
		{"неизвестный приоритет", model.CreateInput{Title: "t", Description: "d", Priority: "urgent"}, nil},
		{"запрещённое расширение", validInput(), []Upload{upload("virus.exe", "MZ")}},
		{"слишком много файлов", validInput(), []Upload{
			upload("1.txt", "1"), upload("2.txt", "2"), upload("3.txt", "3"),
			upload("4.txt", "4"), upload("5.txt", "5"), upload("6.txt", "6"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in, tt.uploads)
			if !model.IsValidation(err) {
				t.Fatalf("ожидалась ошибка валидации, получили %v", err)
			}
		})
	}

	if store.Count() != 0 {
		t.Errorf("заявок не должно быть, найдено %d", store.Count())
	}
	if n := countFiles(t, files); n != 0 {
		t.Errorf("файлов не должно быть, найдено %d", n)
	}
}

func TestCreate_RollbackOnTooLarge(t *testing.T) {
	svc, store, files := setupReportEnv(t, false)

	_, err := svc.Create(context.Background(), validInput(), []Upload{
		upload("small.txt", "ok"),
		upload("big.txt", strings.Repeat("x", 2048)),
	})
	if !errors.Is(err, filestore.ErrTooLarge) {
		t.Fatalf("ожидалась ErrTooLarge, получили %v", err)
	}
	if store.Count() != 0 {
		t.Error("заявка не должна быть создана")
	}
	if n := countFiles(t, files); n != 0 {
		t.Errorf("уже записанные файлы должны быть удалены, осталось %d", n)
	}
}

func TestIssueJobCard_And_Procurement(t *testing.T) {
	svc, _, _ := setupReportEnv(t, false)
	ctx := context.Background()

	r, err := svc.Create(ctx, validInput(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	approved, err := svc.IssueJobCard(ctx, r.ID)
	if err != nil {
		t.Fatalf("IssueJobCard: %v", err)
	}
	if approved.Status != model.StatusApproved {
		t.Errorf("хотели approved, получили %s", approved.Status)
	}

	assigned, err := svc.SubmitProcurement(ctx, r.ID, model.Procurement72h)
	if err != nil {
		t.Fatalf("SubmitProcurement: %v", err)
	}
	if assigned.Status != model.StatusAssigned {
		t.Errorf("хотели assigned, получили %s", assigned.Status)
	}
	if assigned.ProcurementPriority == nil || *assigned.ProcurementPriority != model.Procurement72h {
		t.Errorf("срочность закупки не сохранена: %v", assigned.ProcurementPriority)
	}
	if len(assigned.StatusHistory) != 2 {
		t.Fatalf("история: хотели 2 записи, получили %d", len(assigned.StatusHistory))
	}
	if assigned.StatusHistory[0].Action != model.ActionJobCard || assigned.StatusHistory[1].Action != model.ActionProcurement {
		t.Errorf("неверные действия в истории: %+v", assigned.StatusHistory)
	}

	if _, err := svc.IssueJobCard(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получили %v", err)
	}
}

func TestSetStatus_Guard(t *testing.T) {
	ctx := context.Background()

	t.Run("нестрогий режим разрешает любой переход", func(t *testing.T) {
		svc, _, _ := setupReportEnv(t, false)
		r, _ := svc.Create(ctx, validInput(), nil)
		if _, err := svc.SetStatus(ctx, r.ID, model.StatusRejected); err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		if _, err := svc.SetStatus(ctx, r.ID, model.StatusPending); err != nil {
			t.Fatalf("rejected → pending в нестрогом режиме: %v", err)
		}
	})

	t.Run("строгий режим", func(t *testing.T) {
		svc, store, _ := setupReportEnv(t, true)
		r, _ := svc.Create(ctx, validInput(), nil)

		_, err := svc.SubmitProcurement(ctx, r.ID, model.Procurement24h)
		var te *workflow.TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("pending → assigned: ожидалась TransitionError, получили %v", err)
		}

		got, _ := store.Get(r.ID)
		if got.Status != model.StatusPending || got.ProcurementPriority != nil {
			t.Errorf("отклонённый переход не должен менять заявку: %+v", got)
		}

		if _, err := svc.IssueJobCard(ctx, r.ID); err != nil {
			t.Fatalf("pending → approved: %v", err)
		}
		if _, err := svc.SetStatus(ctx, r.ID, model.StatusPending); !errors.As(err, &te) {
			t.Errorf("approved → pending: ожидалась TransitionError, получили %v", err)
		}
	})
}

func TestUpdate_PriorityValidation(t *testing.T) {
	svc, _, _ := setupReportEnv(t, false)
	ctx := context.Background()
	r, _ := svc.Create(ctx, validInput(), nil)

	bad := "urgent"
	if _, err := svc.Update(ctx, r.ID, model.Patch{Priority: &bad}); !model.IsValidation(err) {
		t.Errorf("ожидалась ошибка валидации, получили %v", err)
	}

	good := model.PriorityCritical
	updated, err := svc.Update(ctx, r.ID, model.Patch{Priority: &good})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Priority != model.PriorityCritical {
		t.Errorf("приоритет не обновлён: %s", updated.Priority)
	}
}

func TestAttachments_AddRemove(t *testing.T) {
	svc, _, files := setupReportEnv(t, false)
	ctx := context.Background()
	r, _ := svc.Create(ctx, validInput(), nil)

	if _, err := svc.AddAttachments(ctx, r.ID, nil); !model.IsValidation(err) {
		t.Errorf("пустой список: ожидалась ошибка валидации, получили %v", err)
	}

	updated, err := svc.AddAttachments(ctx, r.ID, []Upload{upload("a.pdf", "pdf"), upload("b.txt", "txt")})
	if err != nil {
		t.Fatalf("AddAttachments: %v", err)
	}
	if len(updated.Attachments) != 2 {
		t.Fatalf("хотели 2 вложения, получили %d", len(updated.Attachments))
	}

	handle := updated.Attachments[0]
	after, err := svc.RemoveAttachment(ctx, r.ID, handle)
	if err != nil {
		t.Fatalf("RemoveAttachment: %v", err)
	}
	if after.HasAttachment(handle) || files.Exists(handle) {
		t.Error("вложение должно быть отвязано и удалено с диска")
	}

	if _, err := svc.RemoveAttachment(ctx, r.ID, handle); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("повторное удаление: ожидалась ErrNotFound, получили %v", err)
	}

	if _, err := svc.AddAttachments(ctx, "missing", []Upload{upload("c.txt", "c")}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("несуществующая заявка: ожидалась ErrNotFound, получили %v", err)
	}
	if n := countFiles(t, files); n != 1 {
		t.Errorf("на диске должен остаться 1 файл, найдено %d", n)
	}
}

func TestDelete_Cascade(t *testing.T) {
	svc, store, files := setupReportEnv(t, false)
	ctx := context.Background()

	r, err := svc.Create(ctx, validInput(), []Upload{upload("a.txt", "a"), upload("b.txt", "b")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Count() != 0 {
		t.Error("заявка должна быть удалена")
	}
	for _, h := range r.Attachments {
		if files.Exists(h) {
			t.Errorf("файл %s должен быть удалён", h)
		}
	}

	if err := svc.Delete(ctx, r.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("повторное удаление: ожидалась ErrNotFound, получили %v", err)
	}
}

func TestExport_AllPages(t *testing.T) {
	svc, _, _ := setupReportEnv(t, false)
	ctx := context.Background()

	for i := 0; i < model.MaxLimit+3; i++ {
		if _, err := svc.Create(ctx, validInput(), nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all := svc.Export(ctx, model.ListFilter{Page: 7, Limit: 2})
	if len(all) != model.MaxLimit+3 {
		t.Errorf("экспорт: хотели %d заявок, получили %d", model.MaxLimit+3, len(all))
	}

	none := svc.Export(ctx, model.ListFilter{Status: "rejected"})
	if none == nil || len(none) != 0 {
		t.Errorf("пустой экспорт должен быть пустым срезом, получили %v", none)
	}
}

func TestUploadPolicy_Check(t *testing.T) {
	p := UploadPolicy{MaxFiles: 2, AllowedExtensions: []string{"pdf", "png"}}

	if err := p.Check([]Upload{{Filename: "SCAN.PDF"}, {Filename: "x.png"}}); err != nil {
		t.Errorf("допустимые файлы: %v", err)
	}
	if err := p.Check([]Upload{{Filename: "noext"}}); err == nil {
		t.Error("файл без расширения должен быть отклонён")
	}
	if err := p.Check([]Upload{{Filename: "a.pdf"}, {Filename: "b.pdf"}, {Filename: "c.pdf"}}); err == nil {
		t.Error("превышение MaxFiles должно быть отклонено")
	}
}
