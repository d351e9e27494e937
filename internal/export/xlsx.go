package export

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"partsbot/internal"
	"partsbot/internal/catalog"
	"partsbot/internal/connectors"
)

var itemHeaders = []string{
	"Код", "Наименование", "Тип", "Парт номер", "OEM парт номер",
	"Количество", "Цена", "Валюта", "Изготовитель", "Фото",
}

func itemsFile(items []catalog.Item) *excelize.File {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	writeRow(f, sheet, 1, toAny(itemHeaders))

	for i, it := range items {
		c := it.Card
		writeRow(f, sheet, i+2, []any{
			c.Code, c.Name, c.Type, c.PartNumber, c.OEMNumber,
			numberOrText(c.Quantity), numberOrText(c.Price), c.Currency, c.Manufacturer, c.ImageURL,
		})
	}
	return f
}

func issuesFile(rows []internal.IssueRow) *excelize.File {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	writeRow(f, sheet, 1, toAny(connectors.DefaultHistoryHeader))
	for i, row := range rows {
		values := connectors.HistoryValues(connectors.DefaultHistoryHeader, row)
		for j, v := range values {
			if s, ok := v.(string); ok {
				values[j] = numberOrText(s)
			}
		}
		writeRow(f, sheet, i+2, values)
	}
	return f
}

// WriteXLSX streams search results as a workbook.
func WriteXLSX(w io.Writer, items []catalog.Item) error {
	f := itemsFile(items)
	defer f.Close()
	_, err := f.WriteTo(w)
	return err
}

func SaveXLSX(items []catalog.Item, outputPath string) error {
	return save(itemsFile(items), outputPath)
}

func WriteIssuesXLSX(w io.Writer, rows []internal.IssueRow) error {
	f := issuesFile(rows)
	defer f.Close()
	_, err := f.WriteTo(w)
	return err
}

func SaveIssuesXLSX(rows []internal.IssueRow, outputPath string) error {
	return save(issuesFile(rows), outputPath)
}

func save(f *excelize.File, outputPath string) error {
	defer f.Close()
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeRow(f *excelize.File, sheet string, r int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, r)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// numberOrText keeps numeric cells numeric so sums work in the sheet.
func numberOrText(s string) any {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(t, ",", "."), 64); err == nil {
		return v
	}
	return s
}
