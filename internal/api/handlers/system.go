// system.go — обработчик GET /api/v1/info (информация о сервисе).
package handlers

import (
	"net/http"

	"github.com/bigkaa/faultdesk/internal/config"
	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/domain/workflow"
)

// StatusCounter — количество заявок по статусам.
type StatusCounter interface {
	Count() int
	CountByStatus() map[model.Status]int
}

// ServiceInfo — ответ GET /api/v1/info.
type ServiceInfo struct {
	Service            string         `json:"service"`
	Version            string         `json:"version"`
	Reports            int            `json:"reports"`
	ByStatus           map[string]int `json:"byStatus"`
	EnforceTransitions bool           `json:"enforceTransitions"`
	// Transitions — допустимые целевые статусы для каждого статуса
	Transitions       map[string][]string `json:"transitions"`
	MaxFileSize       int64               `json:"maxFileSize"`
	MaxFiles          int                 `json:"maxFiles"`
	AllowedExtensions []string            `json:"allowedExtensions"`
	AnalyticsTimezone string              `json:"analyticsTimezone"`
}

// SystemHandler — обработчик системных endpoints.
type SystemHandler struct {
	cfg     *config.Config
	counter StatusCounter
	guard   *workflow.Guard
}

// NewSystemHandler создаёт обработчик системной информации.
func NewSystemHandler(cfg *config.Config, counter StatusCounter, guard *workflow.Guard) *SystemHandler {
	return &SystemHandler{
		cfg:     cfg,
		counter: counter,
		guard:   guard,
	}
}

// GetServiceInfo обрабатывает GET /api/v1/info.
func (h *SystemHandler) GetServiceInfo(w http.ResponseWriter, _ *http.Request) {
	byStatus := make(map[string]int, len(model.Statuses))
	counts := h.counter.CountByStatus()
	for _, st := range model.Statuses {
		byStatus[string(st)] = counts[st]
	}

	transitions := make(map[string][]string, len(model.Statuses))
	for _, from := range model.Statuses {
		targets := h.guard.AllowedTargets(from)
		names := make([]string, 0, len(targets))
		for _, to := range targets {
			names = append(names, string(to))
		}
		transitions[string(from)] = names
	}

	writeJSON(w, http.StatusOK, ServiceInfo{
		Service:            serviceName,
		Version:            config.Version,
		Reports:            h.counter.Count(),
		ByStatus:           byStatus,
		EnforceTransitions: h.guard.Strict(),
		Transitions:        transitions,
		MaxFileSize:        h.cfg.Storage.MaxFileSize,
		MaxFiles:           h.cfg.Storage.MaxFiles,
		AllowedExtensions:  h.cfg.Storage.AllowedExtensions,
		AnalyticsTimezone:  h.cfg.Analytics.Timezone,
	})
}
