// Пакет seed — загрузка демонстрационных заявок при старте.
// Набор заявок встроен в бинарник (reports.yaml) либо читается
// из внешнего YAML-файла того же формата.
package seed

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bigkaa/faultdesk/internal/domain/model"
)

//go:embed reports.yaml
var defaultReports []byte

// Target — хранилище, в которое загружаются заявки.
type Target interface {
	Create(in model.CreateInput) (*model.FaultReport, error)
	SetStatus(id string, status model.Status, action model.Action) (*model.FaultReport, error)
}

// Report — заявка в YAML-файле.
type Report struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Priority    string `yaml:"priority"`
	Department  string `yaml:"department"`
	Location    string `yaml:"location"`
	ReportedBy  string `yaml:"reportedBy"`
	Status      string `yaml:"status"`
}

type document struct {
	Reports []Report `yaml:"reports"`
}

// Parse разбирает YAML с заявками.
func Parse(data []byte) ([]Report, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ошибка разбора seed YAML: %w", err)
	}
	for i, r := range doc.Reports {
		if r.Status == "" {
			continue
		}
		if _, err := model.ParseStatus(r.Status); err != nil {
			return nil, fmt.Errorf("заявка #%d (%q): %w", i+1, r.Title, err)
		}
	}
	return doc.Reports, nil
}

// Load загружает заявки из файла path. Пустой path — встроенный набор.
// Возвращает количество созданных заявок.
func Load(target Target, path string, logger *slog.Logger) (int, error) {
	data := defaultReports
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("ошибка чтения seed-файла %s: %w", path, err)
		}
	}

	items, err := Parse(data)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		r, err := target.Create(model.CreateInput{
			Title:       item.Title,
			Description: item.Description,
			Priority:    item.Priority,
			Department:  item.Department,
			Location:    item.Location,
			ReportedBy:  item.ReportedBy,
		})
		if err != nil {
			return 0, fmt.Errorf("ошибка создания заявки %q: %w", item.Title, err)
		}

		if item.Status != "" && model.Status(item.Status) != model.StatusPending {
			if _, err := target.SetStatus(r.ID, model.Status(item.Status), model.ActionManual); err != nil {
				return 0, fmt.Errorf("ошибка установки статуса заявки %q: %w", item.Title, err)
			}
		}
	}

	logger.Info("Демонстрационные заявки загружены",
		slog.Int("count", len(items)),
		slog.String("source", sourceName(path)),
	)
	return len(items), nil
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
