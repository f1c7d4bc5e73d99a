package model

import "time"

// AttachmentMeta — метаданные сохранённого вложения.
// Хранится рядом с файлом в <handle>.attr.json.
type AttachmentMeta struct {
	// Handle — имя файла в директории вложений
	Handle string `json:"handle"`

	// OriginalFilename — имя файла при загрузке
	OriginalFilename string `json:"original_filename"`

	// ContentType — MIME-тип
	ContentType string `json:"content_type"`

	// Size — размер в байтах
	Size int64 `json:"size"`

	// Checksum — SHA-256 содержимого
	Checksum string `json:"checksum"`

	// UploadedAt — время записи (UTC)
	UploadedAt time.Time `json:"uploaded_at"`
}
