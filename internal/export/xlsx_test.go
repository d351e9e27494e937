package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"partsbot/internal"
	"partsbot/internal/catalog"
)

func TestWriteXLSX(t *testing.T) {
	items := []catalog.Item{
		{Card: internal.Card{Code: "uz000664", Name: "Фильтр", Quantity: "3", Price: "12,5", Currency: "usd"}},
		{Card: internal.Card{Code: "uz000665", Name: "Ремень", Quantity: "нет"}},
	}
	buf := bytes.NewBuffer(nil)
	if err := WriteXLSX(buf, items); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0][0] != "Код" || rows[1][0] != "uz000664" || rows[1][5] != "3" || rows[1][6] != "12.5" {
		t.Fatalf("row=%v", rows[1])
	}
	if rows[2][5] != "нет" {
		t.Fatalf("qty text=%q", rows[2][5])
	}
}

func TestSaveIssuesXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "history.xlsx")
	rows := []internal.IssueRow{{CreatedAt: "2026-10-19 12:30:00", UserID: 7, UserName: "Иван", Code: "uz000664", Qty: 1.5, Comment: "ремонт"}}
	if err := SaveIssuesXLSX(rows, out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0][0] != "Дата" || got[1][2] != "Иван" || got[1][6] != "1.5" {
		t.Fatalf("rows=%v", got)
	}
}
