// Пакет attr — чтение и запись метаданных вложений (attr.json).
// Каждое вложение имеет сопутствующий <handle>.attr.json с оригинальным
// именем, MIME-типом и checksum. Запись атомарная: temp → fsync → rename.
package attr

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bigkaa/faultdesk/internal/domain/model"
)

// Suffix — суффикс файла метаданных.
const Suffix = ".attr.json"

// maxAttrFileSize — максимальный допустимый размер attr.json (4 КБ).
const maxAttrFileSize = 4096

// FilePath возвращает путь к attr.json для файла вложения.
// Пример: "/uploads/photo.jpg" → "/uploads/photo.jpg.attr.json"
func FilePath(dataFilePath string) string {
	return dataFilePath + Suffix
}

// IsAttrFile проверяет, является ли путь файлом метаданных.
func IsAttrFile(path string) bool {
	return strings.HasSuffix(path, Suffix)
}

// Write атомарно записывает метаданные вложения.
func Write(path string, meta *model.AttachmentMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации метаданных: %w", err)
	}

	if len(data) > maxAttrFileSize {
		return fmt.Errorf("размер attr.json (%d байт) превышает максимум (%d байт)", len(data), maxAttrFileSize)
	}

	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}

// Read читает метаданные вложения.
func Read(path string) (*model.AttachmentMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения attr.json %s: %w", path, err)
	}

	var meta model.AttachmentMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("ошибка десериализации attr.json %s: %w", path, err)
	}

	return &meta, nil
}

// Delete удаляет attr.json. Возвращает nil, если файла уже нет.
func Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления attr.json %s: %w", path, err)
	}
	return nil
}
