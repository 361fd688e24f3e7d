// Package sessiontest writes Telethon and Pyrogram SQLite session files for
// tests.
package sessiontest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// TelethonDDL is the table layout Telethon's SQLite session creates.
var TelethonDDL = []string{
	`CREATE TABLE version (version INTEGER PRIMARY KEY)`,
	`CREATE TABLE sessions (dc_id INTEGER PRIMARY KEY, server_address TEXT, port INTEGER, auth_key BLOB, takeout_id INTEGER)`,
	`CREATE TABLE entities (id INTEGER PRIMARY KEY, hash INTEGER NOT NULL, username TEXT, phone INTEGER, name TEXT, date INTEGER)`,
	`CREATE TABLE sent_files (md5_digest BLOB, file_size INTEGER, type INTEGER, id INTEGER, hash INTEGER, PRIMARY KEY(md5_digest, file_size, type))`,
	`CREATE TABLE update_state (id INTEGER PRIMARY KEY, pts INTEGER, qts INTEGER, date INTEGER, seq INTEGER)`,
}

// PyrogramDDL is the table layout Pyrogram's SQLite storage creates. The
// api_id column only exists in newer files; see PyrogramLegacySessions.
var PyrogramDDL = []string{
	`CREATE TABLE sessions (dc_id INTEGER PRIMARY KEY, api_id INTEGER, test_mode INTEGER, auth_key BLOB, date INTEGER NOT NULL, user_id INTEGER, is_bot INTEGER)`,
	`CREATE TABLE peers (id INTEGER PRIMARY KEY, access_hash INTEGER, type INTEGER NOT NULL, username TEXT, phone_number TEXT, last_update_on INTEGER NOT NULL DEFAULT (CAST(STRFTIME('%s', 'now') AS INTEGER)))`,
	`CREATE TABLE version (number INTEGER PRIMARY KEY)`,
	`CREATE INDEX idx_peers_id ON peers (id)`,
}

// PyrogramLegacySessions replaces the first PyrogramDDL statement for files
// written before api_id was stored.
const PyrogramLegacySessions = `CREATE TABLE sessions (dc_id INTEGER PRIMARY KEY, test_mode INTEGER, auth_key BLOB, date INTEGER NOT NULL, user_id INTEGER, is_bot INTEGER)`

// TelethonRow is one row of Telethon's sessions table.
type TelethonRow struct {
	DC        int    `db:"dc_id"`
	Address   string `db:"server_address"`
	Port      int    `db:"port"`
	AuthKey   []byte `db:"auth_key"`
	TakeoutID *int64 `db:"takeout_id"`
}

// PyrogramRow is one row of Pyrogram's sessions table.
type PyrogramRow struct {
	DC       int    `db:"dc_id"`
	APIID    *int64 `db:"api_id"`
	TestMode bool   `db:"test_mode"`
	AuthKey  []byte `db:"auth_key"`
	Date     int64  `db:"date"`
	UserID   *int64 `db:"user_id"`
	IsBot    bool   `db:"is_bot"`
}

// Key returns a 256-byte auth key filled with b.
func Key(b byte) []byte {
	key := make([]byte, 256)
	for i := range key {
		key[i] = b
	}
	return key
}

// Exec creates path and runs stmts against it.
func Exec(tb testing.TB, path string, stmts ...string) {
	tb.Helper()
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		tb.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			tb.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

// WriteTelethon creates a Telethon session file at path holding rows.
func WriteTelethon(tb testing.TB, path string, rows ...TelethonRow) {
	tb.Helper()
	Exec(tb, path, TelethonDDL...)
	insert(tb, path,
		`INSERT INTO sessions (dc_id, server_address, port, auth_key, takeout_id)
		 VALUES (:dc_id, :server_address, :port, :auth_key, :takeout_id)`,
		rows)
}

// WritePyrogram creates a Pyrogram session file at path holding rows. When
// legacy is set the sessions table has no api_id column.
func WritePyrogram(tb testing.TB, path string, legacy bool, rows ...PyrogramRow) {
	tb.Helper()
	ddl := append([]string(nil), PyrogramDDL...)
	query := `INSERT INTO sessions (dc_id, api_id, test_mode, auth_key, date, user_id, is_bot)
		 VALUES (:dc_id, :api_id, :test_mode, :auth_key, :date, :user_id, :is_bot)`
	if legacy {
		ddl[0] = PyrogramLegacySessions
		query = `INSERT INTO sessions (dc_id, test_mode, auth_key, date, user_id, is_bot)
		 VALUES (:dc_id, :test_mode, :auth_key, :date, :user_id, :is_bot)`
	}
	Exec(tb, path, ddl...)
	insert(tb, path, query, rows)
}

func insert[T any](tb testing.TB, path, query string, rows []T) {
	tb.Helper()
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		tb.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	for _, row := range rows {
		if _, err := db.NamedExec(query, row); err != nil {
			tb.Fatalf("insert row: %v", err)
		}
	}
}
