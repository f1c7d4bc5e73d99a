// Пакет export — выгрузка заявок в XLSX и CSV и печатная форма наряда (PDF).
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/bigkaa/faultdesk/internal/domain/model"
)

// Format — формат выгрузки списка заявок.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// timeLayout — формат дат в выгрузках.
const timeLayout = "2006-01-02 15:04:05"

// ParseFormat разбирает формат выгрузки. Пустая строка — xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatCSV:
		return f, nil
	default:
		return "", model.NewValidationError("format",
			fmt.Sprintf("недопустимый формат %q, допустимые: xlsx, csv", s))
	}
}

// ContentType возвращает MIME-тип формата.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename возвращает имя файла выгрузки на момент at.
func (f Format) Filename(at time.Time) string {
	return fmt.Sprintf("fault-reports_%s.%s", at.UTC().Format("20060102_150405"), f)
}

// column — колонка табличной выгрузки.
type column struct {
	header string
	width  float64
	value  func(r *model.FaultReport) string
}

// columns — общий набор колонок для XLSX и CSV.
var columns = []column{
	{"ID", 38, func(r *model.FaultReport) string { return r.ID }},
	{"Title", 30, func(r *model.FaultReport) string { return r.Title }},
	{"Description", 50, func(r *model.FaultReport) string { return r.Description }},
	{"Priority", 10, func(r *model.FaultReport) string { return r.Priority }},
	{"Status", 10, func(r *model.FaultReport) string { return string(r.Status) }},
	{"Department", 16, func(r *model.FaultReport) string { return model.StringValue(r.Department) }},
	{"Location", 20, func(r *model.FaultReport) string { return model.StringValue(r.Location) }},
	{"Reported By", 18, func(r *model.FaultReport) string { return model.StringValue(r.ReportedBy) }},
	{"Procurement Priority", 14, func(r *model.FaultReport) string {
		if r.ProcurementPriority == nil {
			return ""
		}
		return string(*r.ProcurementPriority)
	}},
	{"Attachments", 12, func(r *model.FaultReport) string { return fmt.Sprintf("%d", len(r.Attachments)) }},
	{"Created At", 20, func(r *model.FaultReport) string { return r.CreatedAt.UTC().Format(timeLayout) }},
	{"Updated At", 20, func(r *model.FaultReport) string { return r.UpdatedAt.UTC().Format(timeLayout) }},
}

func headers() []string {
	result := make([]string, len(columns))
	for i, c := range columns {
		result[i] = c.header
	}
	return result
}

func record(r *model.FaultReport) []string {
	result := make([]string, len(columns))
	for i, c := range columns {
		result[i] = c.value(r)
	}
	return result
}
