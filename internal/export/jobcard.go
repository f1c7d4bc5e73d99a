package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/bigkaa/faultdesk/internal/domain/model"
)

// Стили наряда
var (
	headerColor    = &props.Color{Red: 44, Green: 62, Blue: 80}
	accentColor    = &props.Color{Red: 52, Green: 152, Blue: 219}
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241}
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141}

	titleStyle = props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Center, Color: headerColor}
	h2Style    = props.Text{Size: 13, Style: fontstyle.Bold, Color: headerColor, Top: 4}
	labelStyle = props.Text{Size: 10, Style: fontstyle.Bold}
	valueStyle = props.Text{Size: 10}
	smallStyle = props.Text{Size: 8, Color: darkGrayColor}

	historyHeaderCell = &props.Cell{BackgroundColor: accentColor}
	historyHeaderText = props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255}}
	historyCell     = &props.Cell{BorderType: border.Bottom, BorderColor: lightGrayColor}
	historyCellText = props.Text{Size: 9, Align: align.Center}
)

// JobCardPDF формирует печатную форму наряда по заявке.
func JobCardPDF(r *model.FaultReport, printedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14, text.NewCol(12, "Workshop Job Card", titleStyle))
	m.AddRow(4, line.NewCol(12))
	m.AddRow(6,
		text.NewCol(6, "Report "+r.ID, smallStyle),
		text.NewCol(6, "Printed: "+printedAt.UTC().Format(timeLayout),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)
	m.AddRow(6)

	section(m, "Fault")
	field(m, "Title", r.Title)
	field(m, "Priority", strings.ToUpper(r.Priority))
	field(m, "Status", string(r.Status))
	if r.ProcurementPriority != nil {
		field(m, "Procurement", string(*r.ProcurementPriority))
	}
	field(m, "Department", orDash(r.Department))
	field(m, "Location", orDash(r.Location))
	field(m, "Reported by", orDash(r.ReportedBy))
	field(m, "Reported at", r.CreatedAt.UTC().Format(timeLayout))

	section(m, "Description")
	m.AddRow(20, text.NewCol(12, r.Description, valueStyle))

	if len(r.Attachments) > 0 {
		section(m, fmt.Sprintf("Attachments (%d)", len(r.Attachments)))
		for _, a := range r.Attachments {
			m.AddRow(5, text.NewCol(12, a, smallStyle))
		}
	}

	if len(r.StatusHistory) > 0 {
		section(m, "Status History")
		m.AddRow(7,
			text.NewCol(3, "From", historyHeaderText).WithStyle(historyHeaderCell),
			text.NewCol(3, "To", historyHeaderText).WithStyle(historyHeaderCell),
			text.NewCol(2, "Action", historyHeaderText).WithStyle(historyHeaderCell),
			text.NewCol(4, "At", historyHeaderText).WithStyle(historyHeaderCell),
		)
		for _, h := range r.StatusHistory {
			m.AddRow(6,
				text.NewCol(3, string(h.From), historyCellText).WithStyle(historyCell),
				text.NewCol(3, string(h.To), historyCellText).WithStyle(historyCell),
				text.NewCol(2, string(h.Action), historyCellText).WithStyle(historyCell),
				text.NewCol(4, h.At.UTC().Format(timeLayout), historyCellText).WithStyle(historyCell),
			)
		}
	}

	section(m, "Workshop")
	field(m, "Assigned to", "")
	field(m, "Completed on", "")
	field(m, "Signature", "")

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования PDF наряда: %w", err)
	}
	return doc.GetBytes(), nil
}

func section(m core.Maroto, title string) {
	m.AddRow(9, text.NewCol(12, title, h2Style))
	m.AddRow(2, line.NewCol(12, props.Line{Color: accentColor}))
	m.AddRow(3)
}

func field(m core.Maroto, label, value string) {
	m.AddRow(6,
		text.NewCol(4, label, labelStyle),
		text.NewCol(8, value, valueStyle),
	)
}

func orDash(s *string) string {
	if v := model.StringValue(s); v != "" {
		return v
	}
	return "-"
}
