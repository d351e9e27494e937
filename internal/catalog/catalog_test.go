package catalog

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"partsbot/internal"
	"partsbot/internal/fields"
	"partsbot/internal/storage"
)

func sampleRecords() []internal.Record {
	return []internal.Record{
		{
			"код": "uz000664", "наименование": "Фильтр масляный", "тип": "Фильтр",
			"парт номер": "pi8808drg500", "oem парт номер": "hf-35", "oem": "hifi",
			"количество": 3, "image": "https://i.ibb.co/x/UZ000664.jpg",
		},
		{
			"код": "uz000665", "наименование": "Filter hydraulic", "тип": "Filter",
			"парт номер": "p550", "oem": "donaldson", "image": "https://img.example.com/set-uz-12.png",
		},
		{"код": "uz0006", "наименование": "Ремень", "тип": "Belt", "oem парт номер": "b-12"},
	}
}

func codes(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Card.Code)
	}
	return out
}

func TestSearchTiers(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), fields.DefaultAliases(), "test", time.Now())

	cases := []struct {
		q     string
		tier  string
		codes []string
	}{
		{"UZ 000 664", TierExact, []string{"uz000664"}},
		{"PI8808-DRG500", TierExact, []string{"uz000664"}},
		{"HF35", TierExact, []string{"uz000664"}},
		{"filter hydraulic", TierIndex, []string{"uz000665"}},
		{"filter ремень", TierIndex, []string{"uz000665", "uz0006"}},
		{"масляный", TierIndex, []string{"uz000664"}},
		{"масл", TierFallback, []string{"uz000664"}},
		{"zzz", TierNone, []string{}},
	}
	for _, tc := range cases {
		res, err := snap.Search(tc.q)
		if err != nil {
			t.Fatalf("%q: %v", tc.q, err)
		}
		if res.Tier != tc.tier {
			t.Fatalf("%q: tier=%s want %s", tc.q, res.Tier, tc.tier)
		}
		if got := codes(res.Items); !reflect.DeepEqual(got, tc.codes) {
			t.Fatalf("%q: codes=%v want %v", tc.q, got, tc.codes)
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), fields.DefaultAliases(), "test", time.Now())
	if _, err := snap.Search("   "); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("err=%v", err)
	}
}

func TestSearchRankingTieBreaksOnCodeLength(t *testing.T) {
	records := []internal.Record{
		{"код": "ab-100", "наименование": "pump"},
		{"код": "a1", "наименование": "pump"},
		{"код": "c7", "наименование": "pump housing", "тип": "pump"},
	}
	snap := BuildSnapshot(records, fields.DefaultAliases(), "test", time.Now())
	res, err := snap.Search("pump")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c7", "a1", "ab-100"}
	if got := codes(res.Items); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFindByCodeAndImage(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), fields.DefaultAliases(), "test", time.Now())

	item, ok := snap.FindByCode(" UZ000665 ")
	if !ok || item.Card.Name != "Filter hydraulic" {
		t.Fatalf("item=%v ok=%v", item, ok)
	}
	if _, ok := snap.FindByCode("nope"); ok {
		t.Fatal("unexpected hit")
	}

	if got := snap.FindImage("UZ000664"); got != "https://i.ibb.co/x/UZ000664.jpg" {
		t.Fatalf("indexed image=%q", got)
	}
	if got := snap.FindImage("uz-12"); got != "https://img.example.com/set-uz-12.png" {
		t.Fatalf("scanned image=%q", got)
	}
	if got := snap.FindImage("---"); got != "" {
		t.Fatalf("empty key image=%q", got)
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page, more := Page(items, 0, 2, 10)
	if !reflect.DeepEqual(page, []int{1, 2}) || !more {
		t.Fatalf("page=%v more=%v", page, more)
	}
	page, more = Page(items, 4, 0, 2)
	if !reflect.DeepEqual(page, []int{5}) || more {
		t.Fatalf("page=%v more=%v", page, more)
	}
	page, more = Page(items, 9, 2, 10)
	if len(page) != 0 || more {
		t.Fatalf("page=%v more=%v", page, more)
	}
	page, more = Page(items, 1, math.MaxInt, 10)
	if !reflect.DeepEqual(page, []int{2, 3, 4, 5}) || more {
		t.Fatalf("page=%v more=%v", page, more)
	}
}

type fakeSource struct {
	records []internal.Record
	err     error
	calls   int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) LoadRecords(context.Context) ([]internal.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestEnsureFreshHonoursTTL(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	c := New(src, nil, nil, time.Minute, nil)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := c.EnsureFresh(ctx, false); err != nil {
		t.Fatal(err)
	}
	if _, err := c.EnsureFresh(ctx, false); err != nil {
		t.Fatal(err)
	}
	if src.calls != 1 {
		t.Fatalf("calls=%d", src.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.EnsureFresh(ctx, false); err != nil {
		t.Fatal(err)
	}
	if _, err := c.EnsureFresh(ctx, true); err != nil {
		t.Fatal(err)
	}
	if src.calls != 3 {
		t.Fatalf("calls=%d", src.calls)
	}
}

func TestEnsureFreshKeepsPreviousOnError(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	c := New(src, nil, nil, time.Minute, nil)
	ctx := context.Background()
	if _, err := c.EnsureFresh(ctx, false); err != nil {
		t.Fatal(err)
	}

	src.err = errors.New("sheets down")
	snap, err := c.EnsureFresh(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 3 {
		t.Fatalf("len=%d", snap.Len())
	}
	if _, err := c.Reload(ctx); err == nil {
		t.Fatal("expected reload error")
	}
}

func TestEnsureFreshFallsBackToStorage(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "parts.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	good := New(&fakeSource{records: sampleRecords()}, db, nil, time.Minute, nil)
	if n, err := good.Reload(ctx); err != nil || n != 3 {
		t.Fatalf("n=%d err=%v", n, err)
	}

	cold := New(&fakeSource{err: errors.New("offline")}, db, nil, time.Minute, nil)
	snap, err := cold.EnsureFresh(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Source != "storage" || snap.Len() != 3 {
		t.Fatalf("source=%s len=%d", snap.Source, snap.Len())
	}
	res, err := cold.Search(ctx, "uz000664")
	if err != nil || len(res.Items) != 1 {
		t.Fatalf("res=%v err=%v", res, err)
	}

	empty := New(&fakeSource{err: errors.New("offline")}, nil, nil, time.Minute, nil)
	if _, err := empty.EnsureFresh(ctx, false); err == nil {
		t.Fatal("expected error without any snapshot")
	}
}
