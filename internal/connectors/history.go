package connectors

import (
	"strings"

	"partsbot/internal"
	"partsbot/internal/util"
)

// DefaultHistoryHeader is written when the history sheet has to be created.
var DefaultHistoryHeader = []string{"Дата", "ID", "Имя", "Тип", "Наименование", "Код", "Количество", "Коментарий"}

// HistoryValues lays out row under an existing header. Columns are matched by
// lowercase name in Russian or English; unknown columns stay empty.
func HistoryValues(header []string, row internal.IssueRow) []any {
	qty := util.FormatNumber(row.Qty)
	byKey := map[string]any{
		"дата":         row.CreatedAt,
		"timestamp":    row.CreatedAt,
		"id":           row.UserID,
		"user_id":      row.UserID,
		"имя":          row.UserName,
		"name":         row.UserName,
		"тип":          row.Type,
		"type":         row.Type,
		"наименование": row.Name,
		"name_item":    row.Name,
		"код":          row.Code,
		"code":         row.Code,
		"количество":   qty,
		"qty":          qty,
		"коментарий":   row.Comment,
		"комментарий":  row.Comment,
		"comment":      row.Comment,
	}

	out := make([]any, len(header))
	for i, h := range header {
		if v, ok := byKey[strings.ToLower(strings.TrimSpace(h))]; ok {
			out[i] = v
		} else {
			out[i] = ""
		}
	}
	return out
}
