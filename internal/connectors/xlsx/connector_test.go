package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"partsbot/internal"
)

func mkWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for r, row := range rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				_ = f.SetCellValue(name, cell, v)
			}
		}
	}
	_ = f.DeleteSheet(first)
	path := filepath.Join(t.TempDir(), "parts.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRecordsAndUsers(t *testing.T) {
	path := mkWorkbook(t, map[string][][]any{
		"SAP": {
			{"Код", "Наименование", "Количество"},
			{"UZ000664", "Фильтр", 4},
		},
		"Пользователи": {
			{"user_id", "role"},
			{"42", "admin"},
		},
	})
	c := NewConnector(path, "SAP", "Пользователи", "История")

	records, err := c.LoadRecords(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0]["код"] != "uz000664" || records[0]["количество"] != "4" {
		t.Fatalf("records=%v", records)
	}

	users, err := c.LoadUserRows(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[1][0] != "42" {
		t.Fatalf("users=%v", users)
	}
}

func TestAppendIssueCreatesHistory(t *testing.T) {
	path := mkWorkbook(t, map[string][][]any{
		"SAP": {{"Код"}, {"a1"}},
	})
	c := NewConnector(path, "SAP", "Пользователи", "История")

	row := internal.IssueRow{CreatedAt: "2026-10-19 10:00:00", UserID: 7, UserName: "Пётр", Code: "a1", Qty: 2, Comment: "x"}
	if err := c.AppendIssue(context.Background(), row); err != nil {
		t.Fatal(err)
	}
	if err := c.AppendIssue(context.Background(), row); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("История")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%v", rows)
	}
	if rows[1][5] != "a1" || rows[1][6] != "2" {
		t.Fatalf("row=%v", rows[1])
	}
}

func TestUsersSheetMissing(t *testing.T) {
	path := mkWorkbook(t, map[string][][]any{"SAP": {{"Код"}, {"a1"}}})
	c := NewConnector(path, "SAP", "Пользователи", "История")
	users, err := c.LoadUserRows(context.Background())
	if err != nil || users != nil {
		t.Fatalf("users=%v err=%v", users, err)
	}
}
