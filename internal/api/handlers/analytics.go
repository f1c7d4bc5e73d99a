// analytics.go — HTTP handlers аналитики.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/faultdesk/internal/api/errors"
	"github.com/bigkaa/faultdesk/internal/api/generated"
	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/service"
)

// AnalyticsHandler — обработчик endpoints аналитики.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *slog.Logger
}

// NewAnalyticsHandler создаёт обработчик аналитики.
func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger.With(slog.String("component", "analytics_handler")),
	}
}

// GetDashboard обрабатывает GET /api/analytics/dashboard.
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analytics.Dashboard(r.Context()))
}

// GetStatusDistribution обрабатывает GET /api/analytics/status-distribution.
func (h *AnalyticsHandler) GetStatusDistribution(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analytics.StatusDistribution(r.Context()))
}

// GetPriorityBreakdown обрабатывает GET /api/analytics/priority-breakdown.
func (h *AnalyticsHandler) GetPriorityBreakdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analytics.PriorityBreakdown(r.Context()))
}

// GetDepartmentActivity обрабатывает GET /api/analytics/department-activity.
func (h *AnalyticsHandler) GetDepartmentActivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analytics.DepartmentActivity(r.Context()))
}

// GetTrends обрабатывает GET /api/analytics/trends?period=7d|30d|90d.
func (h *AnalyticsHandler) GetTrends(w http.ResponseWriter, r *http.Request, params generated.GetTrendsParams) {
	var raw string
	if params.Period != nil {
		raw = string(*params.Period)
	}
	period, err := model.ParseTrendPeriod(raw)
	if err != nil {
		apierrors.FromDomain(w, h.logger, err, "")
		return
	}

	points, err := h.analytics.TrendData(r.Context(), period)
	if err != nil {
		apierrors.FromDomain(w, h.logger, err, "")
		return
	}
	writeJSON(w, http.StatusOK, points)
}
