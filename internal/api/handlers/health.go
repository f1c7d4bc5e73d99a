// health.go — обработчики health endpoints для Kubernetes probes.
package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bigkaa/faultdesk/internal/api/generated"
	"github.com/bigkaa/faultdesk/internal/config"
)

const (
	statusOK   = "ok"
	statusFail = "fail"
)

// serviceName — имя сервиса в ответах health и info.
const serviceName = "faultdesk"

// HealthHandler реализует /health/live и /health/ready.
type HealthHandler struct {
	version string
	// uploadDir — директория вложений (проверка записи)
	uploadDir string
}

// NewHealthHandler создаёт обработчик health endpoints.
// Пустой uploadDir отключает проверку файловой системы.
func NewHealthHandler(uploadDir string) *HealthHandler {
	return &HealthHandler{
		version:   config.Version,
		uploadDir: uploadDir,
	}
}

// HealthLive обрабатывает GET /health/live.
// Возвращает 200, если процесс жив. Зависимости не проверяются.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    statusOK,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   serviceName,
	})
}

// HealthReady обрабатывает GET /health/ready.
// Проверяет доступность директории вложений на запись.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	status := statusOK
	httpStatus := http.StatusOK

	fsCheck := h.checkUploadDir()
	if fsCheck.Status != statusOK {
		status = statusFail
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   serviceName,
		"checks": map[string]generated.HealthCheck{
			"upload_dir": fsCheck,
		},
	})
}

func (h *HealthHandler) checkUploadDir() generated.HealthCheck {
	if h.uploadDir == "" {
		msg := "Проверка не настроена"
		return generated.HealthCheck{Status: statusOK, Message: &msg}
	}

	testFile := filepath.Join(h.uploadDir, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		msg := "Директория вложений недоступна для записи: " + err.Error()
		return generated.HealthCheck{Status: statusFail, Message: &msg}
	}
	_ = os.Remove(testFile)

	return generated.HealthCheck{Status: statusOK}
}
