package storage

import (
	"path/filepath"
	"testing"

	"partsbot/internal"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "parts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReplaceAndListRecords(t *testing.T) {
	db := openTemp(t)
	code := func(r internal.Record) string {
		s, _ := r["код"].(string)
		return s
	}

	first := []internal.Record{{"код": "a1"}, {"код": "a2"}}
	if err := db.ReplaceRecords(first, code); err != nil {
		t.Fatal(err)
	}
	second := []internal.Record{{"код": "b1", "количество": 3}}
	if err := db.ReplaceRecords(second, code); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0]["код"] != "b1" {
		t.Fatalf("records=%v", got)
	}
	if got[0]["количество"] != float64(3) {
		t.Fatalf("qty=%#v", got[0]["количество"])
	}
}

func TestIssuesNewestFirst(t *testing.T) {
	db := openTemp(t)
	rows := []internal.IssueRow{
		{ID: "1", CreatedAt: "2026-01-01 10:00:00", UserID: 7, Code: "a1", Qty: 1},
		{ID: "2", CreatedAt: "2026-01-02 10:00:00", UserID: 8, Code: "a2", Qty: 2.5},
		{ID: "3", CreatedAt: "2026-01-03 10:00:00", UserID: 7, Code: "a3", Qty: 3},
	}
	for _, r := range rows {
		if err := db.InsertIssue(r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.ListIssues(0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "3" {
		t.Fatalf("all=%v", all)
	}

	mine, err := db.ListIssues(7, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].Code != "a3" {
		t.Fatalf("mine=%v", mine)
	}
}

func TestUsersAndMetadata(t *testing.T) {
	db := openTemp(t)
	users := []internal.UserRow{{UserID: 1, Role: internal.RoleAdmin}, {UserID: 2, Role: internal.RoleBlocked}}
	if err := db.ReplaceUsers(users); err != nil {
		t.Fatal(err)
	}
	got, err := db.ListUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Role != internal.RoleBlocked {
		t.Fatalf("users=%v", got)
	}

	missing, err := db.GetMetadata("catalog.last_load")
	if err != nil || missing != nil {
		t.Fatalf("missing=%v err=%v", missing, err)
	}
	if err := db.SetMetadata("catalog.last_load", "x"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("catalog.last_load", "y"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("catalog.last_load")
	if err != nil || v == nil || *v != "y" {
		t.Fatalf("v=%v err=%v", v, err)
	}
}
