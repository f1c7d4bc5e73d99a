package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/faultdesk/internal/storage/filestore"
)

// refSet — ReferenceSource по фиксированному набору.
type refSet map[string]struct{}

func (r refSet) ReferencedFiles() map[string]struct{} { return r }

func TestSweeperRunOnce(t *testing.T) {
	files, err := filestore.New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Ошибка создания FileStore: %v", err)
	}

	linked, err := files.Write(strings.NewReader("linked"), "linked.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}
	orphan, err := files.Write(strings.NewReader("orphan"), "orphan.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}
	tmpName := "partial_20260101000000_abcd1234.pdf.tmp"
	if err := os.WriteFile(filepath.Join(files.DataDir(), tmpName), []byte("p"), 0o640); err != nil {
		t.Fatal(err)
	}

	sw := NewSweeper(files, refSet{linked.Handle: {}}, time.Hour, 10*time.Minute, testLogger())

	// Все файлы свежие — ничего не удаляется
	res := sw.RunOnce()
	if res.OrphansDeleted != 0 || res.TempDeleted != 0 || res.Skipped != 1 {
		t.Errorf("свежие файлы: %+v", res)
	}

	// Сдвигаем время за пределы grace period
	sw.now = func() time.Time { return time.Now().Add(time.Hour) }
	res = sw.RunOnce()
	if res.OrphansDeleted != 1 || res.TempDeleted != 1 || res.Errors != 0 {
		t.Errorf("после grace period: %+v", res)
	}

	if !files.Exists(linked.Handle) {
		t.Error("привязанный файл не должен удаляться")
	}
	if files.Exists(orphan.Handle) {
		t.Error("файл без заявки должен быть удалён")
	}
	if _, err := os.Stat(filepath.Join(files.DataDir(), tmpName)); !os.IsNotExist(err) {
		t.Error("временный файл должен быть удалён")
	}
}

func TestSweeperStartStop(t *testing.T) {
	files, err := filestore.New(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	sw := NewSweeper(files, refSet{}, 10*time.Millisecond, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	sw.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	sw.Stop()
	sw.Stop()
}
