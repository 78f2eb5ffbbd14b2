// Package export выгружает контакты пользователей в xlsx.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"asterbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Layout порядок и заголовки колонок выгрузки.
type Layout struct {
	Sheet   string
	Headers []string
	Row     func(c models.Contact) []interface{}
}

// SelectionLayout колонки выгрузки бота подбора.
var SelectionLayout = Layout{
	Sheet:   "Contacts",
	Headers: []string{"Phone Number", "Name", "City"},
	Row: func(c models.Contact) []interface{} {
		return []interface{}{c.Phone, c.Name, c.City}
	},
}

// SalesLayout колонки выгрузки бота продаж.
var SalesLayout = Layout{
	Sheet:   "Контакты",
	Headers: []string{"Имя", "Город", "Телефон"},
	Row: func(c models.Contact) []interface{} {
		return []interface{}{c.Name, c.City, c.Phone}
	},
}

type Exporter struct {
	dir    string
	logger *zerolog.Logger
}

func NewExporter(dir string, logger *zerolog.Logger) *Exporter {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	if dir == "" {
		dir = os.TempDir()
	}
	return &Exporter{dir: dir, logger: logger}
}

// WriteContacts сохраняет контакты в файл name внутри каталога выгрузок и возвращает путь.
// Вызывающий код удаляет файл после отправки.
func (e *Exporter) WriteContacts(name string, layout Layout, contacts []models.Contact) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid export file name %q", name)
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(layout.Sheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if layout.Sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	header := make([]interface{}, len(layout.Headers))
	for i, h := range layout.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(layout.Sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("error writing header: %w", err)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	lastCol, _ := excelize.ColumnNumberToName(len(layout.Headers))
	_ = f.SetCellStyle(layout.Sheet, "A1", lastCol+"1", style)
	_ = f.SetColWidth(layout.Sheet, "A", lastCol, 22)

	for i, c := range contacts {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := layout.Row(c)
		if err := f.SetSheetRow(layout.Sheet, cell, &row); err != nil {
			return "", fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", path).Int("rows", len(contacts)).Msg("contacts exported")
	return path, nil
}
