// Пакет filestore — хранение файлов вложений на диске.
// Обеспечивает streaming-запись с подсчётом SHA-256 на лету,
// чтение, удаление и перечисление файлов.
//
// Handle вложения — имя файла в директории хранения, без разделителей пути.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/storage/attr"
)

// ErrInvalidHandle — handle содержит недопустимые символы или путь.
var ErrInvalidHandle = errors.New("недопустимое имя файла")

// ErrTooLarge — файл превышает допустимый размер.
var ErrTooLarge = errors.New("файл превышает допустимый размер")

// tmpSuffix — суффикс незавершённой записи.
const tmpSuffix = ".tmp"

// FileStore — управление файлами вложений на диске.
type FileStore struct {
	// dataDir — директория хранения вложений
	dataDir string
	// maxSize — максимальный размер файла в байтах (0 — без ограничения)
	maxSize int64
}

// SaveResult — результат сохранения файла.
type SaveResult struct {
	// Handle — имя файла, сохраняемое в списке вложений заявки
	Handle string
	// FullPath — абсолютный путь файла на диске
	FullPath string
	// Size — размер записанных данных в байтах
	Size int64
	// Checksum — SHA-256 хэш содержимого
	Checksum string
}

// Entry — файл в директории хранения.
type Entry struct {
	Handle  string
	ModTime time.Time
	// Temp — незавершённая запись (*.tmp)
	Temp bool
}

// New создаёт FileStore и директорию хранения, если её нет.
func New(dataDir string, maxSize int64) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию вложений %s: %w", dataDir, err)
	}

	return &FileStore{dataDir: dataDir, maxSize: maxSize}, nil
}

// Write записывает данные из reader на диск и сохраняет attr.json.
// Формат имени: {name}_{timestamp}_{uuid8}{ext}
//
// Паттерн: temp файл → запись + SHA-256 → fsync → atomic rename.
// При ошибке temp файл удаляется.
func (fs *FileStore) Write(reader io.Reader, originalFilename, contentType string) (*SaveResult, error) {
	handle := generateHandle(originalFilename)
	fullPath := filepath.Join(fs.dataDir, handle)
	tmpPath := fullPath + tmpSuffix

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	hasher := sha256.New()
	src := io.TeeReader(reader, hasher)
	if fs.maxSize > 0 {
		src = io.LimitReader(src, fs.maxSize+1)
	}

	size, err := io.Copy(f, src)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if fs.maxSize > 0 && size > fs.maxSize {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: более %d байт", ErrTooLarge, fs.maxSize)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	meta := &model.AttachmentMeta{
		Handle:           handle,
		OriginalFilename: originalFilename,
		ContentType:      contentType,
		Size:             size,
		Checksum:         checksum,
		UploadedAt:       time.Now().UTC(),
	}
	if err := attr.Write(attr.FilePath(fullPath), meta); err != nil {
		os.Remove(fullPath)
		return nil, err
	}

	return &SaveResult{
		Handle:   handle,
		FullPath: fullPath,
		Size:     size,
		Checksum: checksum,
	}, nil
}

// Open открывает файл вложения для чтения. Вызывающий код закрывает файл.
func (fs *FileStore) Open(handle string) (*os.File, error) {
	fullPath, err := fs.path(handle)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("файл %s: %w", handle, model.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", handle, err)
	}

	return f, nil
}

// Meta возвращает метаданные вложения из attr.json.
func (fs *FileStore) Meta(handle string) (*model.AttachmentMeta, error) {
	fullPath, err := fs.path(handle)
	if err != nil {
		return nil, err
	}
	return attr.Read(attr.FilePath(fullPath))
}

// Delete удаляет файл и его attr.json. Возвращает nil, если файла уже нет.
func (fs *FileStore) Delete(handle string) error {
	fullPath, err := fs.path(handle)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", handle, err)
	}
	return attr.Delete(attr.FilePath(fullPath))
}

// Exists проверяет наличие файла на диске.
func (fs *FileStore) Exists(handle string) bool {
	fullPath, err := fs.path(handle)
	if err != nil {
		return false
	}
	info, err := os.Stat(fullPath)
	return err == nil && info.Mode().IsRegular()
}

// List перечисляет файлы вложений и незавершённые записи.
// attr.json в результат не входят.
func (fs *FileStore) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(fs.dataDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", fs.dataDir, err)
	}

	result := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		name := de.Name()
		if attr.IsAttrFile(name) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		result = append(result, Entry{
			Handle:  name,
			ModTime: info.ModTime(),
			Temp:    strings.HasSuffix(name, tmpSuffix),
		})
	}
	return result, nil
}

// RemoveTemp удаляет незавершённую запись.
func (fs *FileStore) RemoveTemp(name string) error {
	if !strings.HasSuffix(name, tmpSuffix) || !ValidHandle(name) {
		return ErrInvalidHandle
	}
	err := os.Remove(filepath.Join(fs.dataDir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления %s: %w", name, err)
	}
	return nil
}

// DataDir возвращает путь к директории хранения.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// path возвращает полный путь к файлу, проверяя handle.
func (fs *FileStore) path(handle string) (string, error) {
	if !ValidHandle(handle) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return filepath.Join(fs.dataDir, handle), nil
}

// ValidHandle проверяет, что handle — простое имя файла без пути.
func ValidHandle(handle string) bool {
	if handle == "" || handle == "." || handle == ".." {
		return false
	}
	if strings.ContainsAny(handle, `/\`) || strings.Contains(handle, "..") {
		return false
	}
	return filepath.Base(handle) == handle
}

// generateHandle генерирует имя файла для хранения на диске.
// Формат: {name}_{timestamp}_{uuid8}{ext}
// Пример: invoice_20260221150405_a1b2c3d4.pdf
func generateHandle(originalFilename string) string {
	base := filepath.Base(originalFilename)
	ext := strings.ToLower(filepath.Ext(base))
	name := sanitize(strings.TrimSuffix(base, filepath.Ext(base)))

	if len(name) > 50 {
		name = name[:50]
	}
	ext = sanitizeExt(ext)

	ts := time.Now().UTC().Format("20060102150405")
	uid := uuid.New().String()[:8]

	return fmt.Sprintf("%s_%s_%s%s", name, ts, uid, ext)
}

// sanitize оставляет только латиницу, цифры, дефис и подчёркивание.
func sanitize(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "attachment"
	}
	return result.String()
}

// sanitizeExt оставляет расширение только из латиницы и цифр.
func sanitizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	clean := strings.TrimPrefix(ext, ".")
	for _, r := range clean {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return ""
		}
	}
	if clean == "" || len(clean) > 10 || "."+clean == tmpSuffix {
		return ""
	}
	return "." + clean
}
