package connectors

import (
	"context"

	"partsbot/internal"
)

// RecordSource loads the full inventory table.
type RecordSource interface {
	Name() string
	LoadRecords(ctx context.Context) ([]internal.Record, error)
}

// UserSource returns the raw users table, header row first.
type UserSource interface {
	LoadUserRows(ctx context.Context) ([][]string, error)
}

// HistorySink receives every accepted issue.
type HistorySink interface {
	AppendIssue(ctx context.Context, row internal.IssueRow) error
}
