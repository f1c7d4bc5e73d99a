package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/bigkaa/faultdesk/internal/domain/model"
)

// ReportsCSV выгружает заявки в CSV (RFC 4180) с заголовком.
func ReportsCSV(reports []*model.FaultReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers()); err != nil {
		return nil, fmt.Errorf("ошибка записи CSV: %w", err)
	}
	for _, r := range reports {
		if err := w.Write(record(r)); err != nil {
			return nil, fmt.Errorf("ошибка записи CSV: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("ошибка записи CSV: %w", err)
	}
	return buf.Bytes(), nil
}
