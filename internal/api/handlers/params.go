// params.go — разбор параметров запросов и общие функции ответа.
package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/faultdesk/internal/api/errors"
	"github.com/bigkaa/faultdesk/internal/api/generated"
	"github.com/bigkaa/faultdesk/internal/domain/model"
)

// dateOnly — формат даты без времени в параметрах dateFrom/dateTo.
const dateOnly = "2006-01-02"

// filterParams — параметры фильтрации, общие для списка и выгрузки.
type filterParams struct {
	Search     *string
	Status     *string
	Priority   *string
	Department *string
	DateFrom   *string
	DateTo     *string
	SortBy     *string
	SortOrder  *string
}

func listFilterParams(p generated.ListFaultReportsParams) filterParams {
	return filterParams{
		Search:     p.Search,
		Status:     p.Status,
		Priority:   p.Priority,
		Department: p.Department,
		DateFrom:   p.DateFrom,
		DateTo:     p.DateTo,
		SortBy:     p.SortBy,
		SortOrder:  p.SortOrder,
	}
}

func exportFilterParams(p generated.ExportFaultReportsParams) filterParams {
	return filterParams{
		Search:     p.Search,
		Status:     p.Status,
		Priority:   p.Priority,
		Department: p.Department,
		DateFrom:   p.DateFrom,
		DateTo:     p.DateTo,
		SortBy:     p.SortBy,
		SortOrder:  p.SortOrder,
	}
}

// toFilter собирает model.ListFilter. Дата без времени трактуется
// в часовом поясе loc; для dateTo она включает весь день.
func (p filterParams) toFilter(loc *time.Location) (model.ListFilter, error) {
	f := model.ListFilter{
		Search:     deref(p.Search),
		Status:     deref(p.Status),
		Priority:   deref(p.Priority),
		Department: deref(p.Department),
		SortBy:     deref(p.SortBy),
		SortOrder:  model.SortOrder(deref(p.SortOrder)),
	}

	if v := deref(p.DateFrom); v != "" {
		t, _, err := parseDate(v, loc)
		if err != nil {
			return f, model.NewValidationError("dateFrom", fmt.Sprintf("Invalid date %q", v))
		}
		f.DateFrom = &t
	}
	if v := deref(p.DateTo); v != "" {
		t, wholeDay, err := parseDate(v, loc)
		if err != nil {
			return f, model.NewValidationError("dateTo", fmt.Sprintf("Invalid date %q", v))
		}
		if wholeDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.DateTo = &t
	}
	return f, nil
}

// parseDate принимает RFC 3339 или YYYY-MM-DD.
func parseDate(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation(dateOnly, s, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFile отдаёт сформированный документ как вложение.
func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decodeJSON разбирает тело запроса в v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewValidationError("body", fmt.Sprintf("Invalid JSON: %s", err.Error()))
	}
	return nil
}

// ParamErrorHandler — ответ на ошибку привязки параметров пути и запроса.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	apierrors.ValidationError(w, err.Error())
}
