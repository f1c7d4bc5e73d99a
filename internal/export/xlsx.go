package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bigkaa/faultdesk/internal/domain/model"
)

// Имена листов книги.
const (
	SheetReports   = "Reports"
	SheetAnalytics = "Analytics"
)

// sheetWriter накапливает первую ошибку excelize.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) row(row int, values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
}

func (w *sheetWriter) style(row, cols, styleID int) {
	if w.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(cols, row)
	w.err = w.f.SetCellStyle(w.sheet, from, to, styleID)
}

// ReportsXLSX выгружает заявки в книгу Excel: лист Reports со списком
// и лист Analytics со сводкой (если summary не nil).
func ReportsXLSX(reports []*model.FaultReport, summary *model.Dashboard, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReports); err != nil {
		return nil, fmt.Errorf("ошибка создания листа: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля: %w", err)
	}

	if err := writeReportsSheet(f, reports, headerStyle); err != nil {
		return nil, err
	}
	if summary != nil {
		if err := writeAnalyticsSheet(f, summary, generatedAt, headerStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("ошибка записи XLSX: %w", err)
	}
	return buf.Bytes(), nil
}

func writeReportsSheet(f *excelize.File, reports []*model.FaultReport, headerStyle int) error {
	w := &sheetWriter{f: f, sheet: SheetReports}

	hdr := make([]interface{}, len(columns))
	for i, c := range columns {
		hdr[i] = c.header
	}
	w.row(1, hdr...)
	w.style(1, len(columns), headerStyle)

	for i, r := range reports {
		rec := record(r)
		values := make([]interface{}, len(rec))
		for j, v := range rec {
			values[j] = v
		}
		w.row(i+2, values...)
	}
	if w.err != nil {
		return fmt.Errorf("ошибка заполнения листа %s: %w", SheetReports, w.err)
	}

	for i, c := range columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetReports, name, name, c.width); err != nil {
			return fmt.Errorf("ошибка ширины колонки %s: %w", name, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.AutoFilter(SheetReports, "A1:"+last+"1", nil); err != nil {
		return fmt.Errorf("ошибка автофильтра: %w", err)
	}
	return f.SetPanes(SheetReports, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeAnalyticsSheet(f *excelize.File, d *model.Dashboard, generatedAt time.Time, headerStyle int) error {
	if _, err := f.NewSheet(SheetAnalytics); err != nil {
		return fmt.Errorf("ошибка создания листа %s: %w", SheetAnalytics, err)
	}
	w := &sheetWriter{f: f, sheet: SheetAnalytics}

	row := 1
	w.row(row, "Fault Reports Summary")
	row++
	w.row(row, "Generated", generatedAt.UTC().Format(timeLayout))
	row++
	w.row(row, "Total Reports", d.TotalReports)
	row += 2

	w.row(row, "Status", "Count", "Percentage")
	w.style(row, 3, headerStyle)
	row++
	for _, sc := range d.StatusDistribution {
		w.row(row, string(sc.Status), sc.Count, sc.Percentage)
		row++
	}
	row++

	w.row(row, "Priority", "Count")
	w.style(row, 2, headerStyle)
	row++
	for _, pc := range d.PriorityBreakdown {
		w.row(row, pc.Priority, pc.Count)
		row++
	}
	row++

	w.row(row, "Department", "Count")
	w.style(row, 2, headerStyle)
	row++
	for _, dc := range d.DepartmentActivity {
		w.row(row, dc.Department, dc.Count)
		row++
	}

	if w.err != nil {
		return fmt.Errorf("ошибка заполнения листа %s: %w", SheetAnalytics, w.err)
	}
	return f.SetColWidth(SheetAnalytics, "A", "A", 24)
}
