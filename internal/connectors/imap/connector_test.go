package imap

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jhillyerd/enmime"
	"github.com/xuri/excelize/v2"
)

func mkStockXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{{"Код", "Наименование", "Количество"}, {"UZ000664", "Фильтр", 3}}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func mkMessage(t *testing.T, attach []byte, name string) []byte {
	t.Helper()
	b := enmime.Builder().
		From("Склад", "stock@example.com").
		To("Bot", "bot@example.com").
		Subject("Остатки").
		Text([]byte("см. вложение"))
	if attach != nil {
		b = b.AddAttachment(attach, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name)
	}
	part, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	buf := bytes.NewBuffer(nil)
	if err := part.Encode(buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRecordsFromMessage(t *testing.T) {
	raw := mkMessage(t, mkStockXLSX(t), "stock.xlsx")
	records, name, err := RecordsFromMessage(raw, "SAP")
	if err != nil {
		t.Fatal(err)
	}
	if name != "stock.xlsx" {
		t.Fatalf("name=%s", name)
	}
	if len(records) != 1 || records[0]["код"] != "uz000664" {
		t.Fatalf("records=%v", records)
	}
}

func TestRecordsFromMessageWithoutWorkbook(t *testing.T) {
	raw := mkMessage(t, nil, "")
	if _, _, err := RecordsFromMessage(raw, "SAP"); !errors.Is(err, ErrNoStockSheet) {
		t.Fatalf("err=%v", err)
	}
}
