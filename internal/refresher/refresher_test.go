package refresher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"partsbot/internal"
	"partsbot/internal/catalog"
)

type countingSource struct{ calls int }

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) LoadRecords(context.Context) ([]internal.Record, error) {
	c.calls++
	return []internal.Record{{"код": "a1", "наименование": "Болт"}}, nil
}

func TestRunCycleReloadsAndExports(t *testing.T) {
	src := &countingSource{}
	cat := catalog.New(src, nil, nil, time.Hour, nil)
	dir := t.TempDir()
	svc := NewService(cat, nil, time.Hour, dir)

	ctx := context.Background()
	if err := svc.RunCycle(ctx); err != nil {
		t.Fatal(err)
	}
	if err := svc.RunCycle(ctx); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Fatalf("calls=%d", src.calls)
	}
	if _, err := os.Stat(filepath.Join(dir, "catalog.xlsx")); err != nil {
		t.Fatal(err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	src := &countingSource{}
	svc := NewService(catalog.New(src, nil, nil, time.Hour, nil), nil, time.Hour, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
