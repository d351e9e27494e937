package connectors

import (
	"strings"

	"partsbot/internal"
)

var lowercasedColumns = []string{internal.ColCode, internal.ColPartNumber, internal.ColOEMPart, internal.ColOEM}

// RowsToRecords turns a sheet grid (header row first) into records. Headers
// are trimmed and lowercased; code-like columns are lowercased so lookups can
// compare directly. Fully empty rows are dropped.
func RowsToRecords(values [][]string) []internal.Record {
	if len(values) == 0 {
		return nil
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]internal.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := internal.Record{}
		empty := true
		for i, h := range headers {
			if h == "" {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
			rec[h] = cell
		}
		if empty {
			continue
		}
		for _, col := range lowercasedColumns {
			if v, ok := rec[col].(string); ok {
				rec[col] = strings.ToLower(strings.TrimSpace(v))
			}
		}
		if v, ok := rec[internal.ColImage].(string); ok {
			rec[internal.ColImage] = strings.TrimSpace(v)
		}
		out = append(out, rec)
	}
	return out
}
