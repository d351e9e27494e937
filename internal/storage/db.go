package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"partsbot/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
  rowNo INTEGER PRIMARY KEY,
  code TEXT NOT NULL DEFAULT '',
  raw_json TEXT NOT NULL,
  loadedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_records_code ON records(code);

CREATE TABLE IF NOT EXISTS issues (
  id TEXT PRIMARY KEY,
  createdAt TEXT NOT NULL,
  userId INTEGER NOT NULL,
  userName TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  code TEXT NOT NULL,
  qty REAL NOT NULL,
  comment TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_issues_user ON issues(userId);
CREATE INDEX IF NOT EXISTS idx_issues_code ON issues(code);

CREATE TABLE IF NOT EXISTS users (
  userId INTEGER PRIMARY KEY,
  role TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceRecords swaps the stored inventory snapshot in one transaction.
// codeOf extracts the indexed code column for each record.
func (d *DB) ReplaceRecords(records []internal.Record, codeOf func(internal.Record) string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO records (rowNo, code, raw_json) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		blob, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode record %d: %w", i+1, err)
		}
		if _, err := stmt.Exec(i+1, codeOf(r), string(blob)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRecords() ([]internal.Record, error) {
	rows, err := d.conn.Query(`SELECT raw_json FROM records ORDER BY rowNo ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Record
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var r internal.Record
		if err := json.Unmarshal([]byte(blob), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) InsertIssue(row internal.IssueRow) error {
	_, err := d.conn.Exec(`
INSERT INTO issues (id, createdAt, userId, userName, type, name, code, qty, comment)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, row.ID, row.CreatedAt, row.UserID, row.UserName, row.Type, row.Name, row.Code, row.Qty, row.Comment)
	return err
}

// ListIssues returns the newest history rows first. userID 0 means all users.
func (d *DB) ListIssues(userID int64, limit int) ([]internal.IssueRow, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
SELECT id, createdAt, userId, userName, type, name, code, qty, comment
FROM issues`
	args := []any{}
	if userID != 0 {
		query += ` WHERE userId = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY createdAt DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.IssueRow
	for rows.Next() {
		var row internal.IssueRow
		if err := rows.Scan(&row.ID, &row.CreatedAt, &row.UserID, &row.UserName, &row.Type, &row.Name, &row.Code, &row.Qty, &row.Comment); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) ReplaceUsers(users []internal.UserRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM users`); err != nil {
		return err
	}
	for _, u := range users {
		if _, err := tx.Exec(`
INSERT INTO users (userId, role) VALUES (?, ?)
ON CONFLICT(userId) DO UPDATE SET role = excluded.role, updatedAt = CURRENT_TIMESTAMP
`, u.UserID, string(u.Role)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListUsers() ([]internal.UserRow, error) {
	rows, err := d.conn.Query(`SELECT userId, role FROM users ORDER BY userId`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.UserRow
	for rows.Next() {
		var u internal.UserRow
		var role string
		if err := rows.Scan(&u.UserID, &role); err != nil {
			return nil, err
		}
		u.Role = internal.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) Ping() error {
	return d.conn.Ping()
}
