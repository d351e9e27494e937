package xlsx

import (
	"context"
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"partsbot/internal"
	"partsbot/internal/connectors"
)

// Connector serves a local workbook laid out like the shared spreadsheet:
// an inventory sheet, an optional users sheet and a history sheet.
type Connector struct {
	path         string
	sapSheet     string
	usersSheet   string
	historySheet string

	mu sync.Mutex
}

func NewConnector(path, sapSheet, usersSheet, historySheet string) *Connector {
	return &Connector{path: path, sapSheet: sapSheet, usersSheet: usersSheet, historySheet: historySheet}
}

func (c *Connector) Name() string { return "xlsx" }

func (c *Connector) LoadRecords(ctx context.Context) ([]internal.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadRecords(f, c.sapSheet)
}

func (c *Connector) LoadUserRows(ctx context.Context) ([][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(c.usersSheet); idx < 0 {
		return nil, nil
	}
	return f.GetRows(c.usersSheet)
}

func (c *Connector) AppendIssue(ctx context.Context, row internal.IssueRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(c.historySheet); idx < 0 {
		if _, err := f.NewSheet(c.historySheet); err != nil {
			return err
		}
		for i, h := range connectors.DefaultHistoryHeader {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(c.historySheet, cell, h)
		}
	}

	rows, err := f.GetRows(c.historySheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("sheet %q has no header row", c.historySheet)
	}

	values := connectors.HistoryValues(rows[0], row)
	next := len(rows) + 1
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, next)
		if err := f.SetCellValue(c.historySheet, cell, v); err != nil {
			return err
		}
	}
	return f.Save()
}

// ReadRecords reads sheet from an open workbook, falling back to the first
// sheet when the named one is absent.
func ReadRecords(f *excelize.File, sheet string) ([]internal.Record, error) {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 || sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return connectors.RowsToRecords(rows), nil
}
