// handler.go — APIHandler реализует generated.ServerInterface,
// делегируя вызовы в отдельные handler'ы по доменам.
package handlers

import (
	"net/http"

	"github.com/bigkaa/faultdesk/internal/api/generated"
)

// APIHandler — единая реализация ServerInterface, собирающая
// все доменные handlers в один объект.
type APIHandler struct {
	reports   *ReportsHandler
	files     *FilesHandler
	analytics *AnalyticsHandler
	system    *SystemHandler
	health    *HealthHandler
	metrics   http.Handler
}

// NewAPIHandler создаёт единый handler для всех endpoints.
// metrics — обработчик /metrics (promhttp).
func NewAPIHandler(
	reports *ReportsHandler,
	files *FilesHandler,
	analytics *AnalyticsHandler,
	system *SystemHandler,
	health *HealthHandler,
	metrics http.Handler,
) *APIHandler {
	return &APIHandler{
		reports:   reports,
		files:     files,
		analytics: analytics,
		system:    system,
		health:    health,
		metrics:   metrics,
	}
}

// --- Fault reports ---

func (h *APIHandler) ListFaultReports(w http.ResponseWriter, r *http.Request, params generated.ListFaultReportsParams) {
	h.reports.ListFaultReports(w, r, params)
}

func (h *APIHandler) CreateFaultReport(w http.ResponseWriter, r *http.Request) {
	h.reports.CreateFaultReport(w, r)
}

func (h *APIHandler) ExportFaultReports(w http.ResponseWriter, r *http.Request, params generated.ExportFaultReportsParams) {
	h.reports.ExportFaultReports(w, r, params)
}

func (h *APIHandler) GetFaultReport(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	h.reports.GetFaultReport(w, r, id)
}

func (h *APIHandler) UpdateFaultReport(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	h.reports.UpdateFaultReport(w, r, id)
}

func (h *APIHandler) DeleteFaultReport(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	h.reports.DeleteFaultReport(w, r, id)
}

func (h *APIHandler) SetFaultReportStatus(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	h.reports.SetFaultReportStatus(w, r, id)
}

func (h *APIHandler) IssueJobCard(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	h.reports.IssueJobCard(w, r, id)
}

func (h *APIHandler) GetJobCard(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	h.reports.GetJobCard(w, r, id)
}

func (h *APIHandler) SubmitProcurementRequest(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	h.reports.SubmitProcurementRequest(w, r, id)
}

// --- Attachments ---

func (h *APIHandler) AddAttachments(w http.ResponseWriter, r *http.Request, id generated.ReportId) {
	h.reports.AddAttachments(w, r, id)
}

func (h *APIHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request, id generated.ReportId, filename generated.Filename) {
	h.reports.RemoveAttachment(w, r, id, filename)
}

func (h *APIHandler) DownloadFile(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	h.files.DownloadFile(w, r, filename)
}

// --- Analytics ---

func (h *APIHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	h.analytics.GetDashboard(w, r)
}

func (h *APIHandler) GetStatusDistribution(w http.ResponseWriter, r *http.Request) {
	h.analytics.GetStatusDistribution(w, r)
}

func (h *APIHandler) GetPriorityBreakdown(w http.ResponseWriter, r *http.Request) {
	h.analytics.GetPriorityBreakdown(w, r)
}

func (h *APIHandler) GetDepartmentActivity(w http.ResponseWriter, r *http.Request) {
	h.analytics.GetDepartmentActivity(w, r)
}

func (h *APIHandler) GetTrends(w http.ResponseWriter, r *http.Request, params generated.GetTrendsParams) {
	h.analytics.GetTrends(w, r, params)
}

// --- System ---

func (h *APIHandler) GetServiceInfo(w http.ResponseWriter, r *http.Request) {
	h.system.GetServiceInfo(w, r)
}

// --- Health ---

func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// --- Metrics ---

func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ generated.ServerInterface = (*APIHandler)(nil)
