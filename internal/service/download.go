// download.go — отдача файлов вложений.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bigkaa/faultdesk/internal/api/middleware"
	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/storage/filestore"
	"github.com/bigkaa/faultdesk/internal/telemetry"
)

// AccessChecker — проверка привязки файла к заявке.
type AccessChecker interface {
	VerifyFileAccess(handle string) bool
}

// DownloadService — сервис скачивания вложений.
type DownloadService struct {
	files  *filestore.FileStore
	access AccessChecker
	logger *slog.Logger
}

// NewDownloadService создаёт сервис скачивания.
func NewDownloadService(files *filestore.FileStore, access AccessChecker, logger *slog.Logger) *DownloadService {
	return &DownloadService{
		files:  files,
		access: access,
		logger: logger.With(slog.String("component", "download_service")),
	}
}

// Serve отдаёт файл клиенту через http.ServeContent.
// Поддерживает Range requests (206 Partial Content) и ETag (If-None-Match).
//
// Ошибки:
//   - model.ErrAccessDenied — файл не привязан ни к одной заявке;
//   - model.ErrNotFound — файл привязан, но отсутствует на диске;
//   - filestore.ErrInvalidHandle — имя содержит путь.
func (s *DownloadService) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, handle string) error {
	_, span := telemetry.StartSpan(ctx, "file.download", attribute.String("file.handle", handle))
	defer span.End()

	if !filestore.ValidHandle(handle) {
		middleware.OperationsTotal.WithLabelValues("download", "invalid").Inc()
		return fmt.Errorf("%w: %q", filestore.ErrInvalidHandle, handle)
	}

	// 1. Файл должен быть привязан к заявке
	if !s.access.VerifyFileAccess(handle) {
		middleware.OperationsTotal.WithLabelValues("download", "forbidden").Inc()
		return fmt.Errorf("файл %s: %w", handle, model.ErrAccessDenied)
	}

	// 2. Открываем файл
	file, err := s.files.Open(handle)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Файл привязан к заявке, но отсутствует на диске",
				slog.String("handle", handle),
			)
			middleware.OperationsTotal.WithLabelValues("download", "not_found").Inc()
		}
		telemetry.SetError(span, err)
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		telemetry.SetError(span, err)
		return fmt.Errorf("ошибка stat файла %s: %w", handle, err)
	}

	// 3. Заголовки из attr.json; без него — по расширению
	name := handle
	contentType := mime.TypeByExtension(filepath.Ext(handle))
	if meta, err := s.files.Meta(handle); err == nil {
		name = meta.OriginalFilename
		contentType = meta.ContentType
		w.Header().Set("ETag", fmt.Sprintf("%q", meta.Checksum))
	} else {
		s.logger.Warn("attr.json недоступен, заголовки по расширению",
			slog.String("handle", handle),
			slog.String("error", err.Error()),
		)
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Accept-Ranges", "bytes")

	http.ServeContent(w, r, name, stat.ModTime(), file)

	middleware.OperationsTotal.WithLabelValues("download", "success").Inc()
	s.logger.Debug("Файл отдан",
		slog.String("handle", handle),
		slog.Int64("size", stat.Size()),
	)
	return nil
}
