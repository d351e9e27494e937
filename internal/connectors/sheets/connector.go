package sheets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"partsbot/internal"
	"partsbot/internal/config"
	"partsbot/internal/connectors"
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// Connector reads the SAP and users sheets and appends to the history sheet
// of one Google spreadsheet.
type Connector struct {
	service       *gsheets.Service
	spreadsheetID string
	sapSheet      string
	usersSheet    string
	historySheet  string

	mu sync.Mutex
}

func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	if err := cfg.Require("GOOGLE_APPLICATION_CREDENTIALS_JSON", cfg.GoogleApplicationCredentialsJSON); err != nil {
		return nil, err
	}
	id := cfg.SpreadsheetID
	if id == "" {
		id = SpreadsheetIDFromURL(cfg.SpreadsheetURL)
	}
	if err := cfg.Require("SPREADSHEET_URL", id); err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.GoogleApplicationCredentialsJSON), gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}
	svc, err := gsheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{
		service:       svc,
		spreadsheetID: id,
		sapSheet:      cfg.SAPSheetName,
		usersSheet:    cfg.UsersSheetName,
		historySheet:  cfg.HistorySheetName,
	}, nil
}

// SpreadsheetIDFromURL extracts the document id from a sheets URL. A bare id
// is returned as is.
func SpreadsheetIDFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := spreadsheetIDPattern.FindStringSubmatch(raw); len(m) > 1 {
		return m[1]
	}
	if strings.Contains(raw, "/") {
		return ""
	}
	return raw
}

func (c *Connector) Name() string { return "sheets" }

func (c *Connector) LoadRecords(ctx context.Context) ([]internal.Record, error) {
	values, err := c.readGrid(ctx, quoteRange(c.sapSheet))
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", c.sapSheet, err)
	}
	return connectors.RowsToRecords(values), nil
}

func (c *Connector) LoadUserRows(ctx context.Context) ([][]string, error) {
	exists, err := c.hasSheet(ctx, c.usersSheet)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return c.readGrid(ctx, quoteRange(c.usersSheet))
}

func (c *Connector) AppendIssue(ctx context.Context, row internal.IssueRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	exists, err := c.hasSheet(ctx, c.historySheet)
	if err != nil {
		return err
	}
	if !exists {
		if err := c.createHistorySheet(ctx); err != nil {
			return fmt.Errorf("create history sheet: %w", err)
		}
	}

	header, err := c.readGrid(ctx, quoteRange(c.historySheet)+"!1:1")
	if err != nil {
		return err
	}
	if len(header) == 0 || len(header[0]) == 0 {
		return errors.New("history sheet has no header row")
	}

	vr := &gsheets.ValueRange{Values: [][]any{connectors.HistoryValues(header[0], row)}}
	_, err = c.service.Spreadsheets.Values.Append(c.spreadsheetID, quoteRange(c.historySheet)+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (c *Connector) readGrid(ctx context.Context, rng string) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		out = append(out, cells)
	}
	return out, nil
}

func (c *Connector) hasSheet(ctx context.Context, title string) (bool, error) {
	sp, err := c.service.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, err
	}
	for _, s := range sp.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (c *Connector) createHistorySheet(ctx context.Context) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title:          c.historySheet,
					GridProperties: &gsheets.GridProperties{RowCount: 1000, ColumnCount: 12},
				},
			},
		}},
	}
	if _, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return err
	}

	header := make([]any, len(connectors.DefaultHistoryHeader))
	for i, h := range connectors.DefaultHistoryHeader {
		header[i] = h
	}
	_, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, quoteRange(c.historySheet)+"!A1", &gsheets.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func quoteRange(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
