// Package schema recognizes Telethon and Pyrogram SQLite session files by
// their exact table and column layout.
//
// [Validate] is safe to call on arbitrary, untrusted files: the store is
// opened read-only and every failure, including "not a database", is reported
// as false.
package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrStoreValidation is returned when a store is unreadable or its layout does
// not match the expected schema.
var ErrStoreValidation = errors.New("session store validation failed")

// Schema is the exact set of tables and columns a session store must have.
// OptionalColumns are removed from every table's column set before comparing.
type Schema struct {
	Name            string
	Tables          map[string][]string
	OptionalColumns []string
}

// Telethon is the layout of a Telethon .session file.
var Telethon = Schema{
	Name: "telethon",
	Tables: map[string][]string{
		"sessions":     {"dc_id", "server_address", "port", "auth_key", "takeout_id"},
		"entities":     {"id", "hash", "username", "phone", "name", "date"},
		"sent_files":   {"md5_digest", "file_size", "type", "id", "hash"},
		"update_state": {"id", "pts", "qts", "date", "seq"},
		"version":      {"version"},
	},
}

// Pyrogram is the layout of a Pyrogram .session file. Newer files add api_id
// to the sessions table.
var Pyrogram = Schema{
	Name: "pyrogram",
	Tables: map[string][]string{
		"sessions": {"dc_id", "test_mode", "auth_key", "date", "user_id", "is_bot"},
		"peers":    {"id", "access_hash", "type", "username", "phone_number", "last_update_on"},
		"version":  {"number"},
	},
	OptionalColumns: []string{"api_id"},
}

var dsnEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// Open opens the SQLite file at path read-only. The file is not touched until
// the first query.
func Open(path string) (*sqlx.DB, error) {
	dsn := "file:" + dsnEscaper.Replace(path) + "?mode=ro&_query_only=true"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Validate reports whether the file at path matches s exactly.
func Validate(path string, s Schema) bool {
	return ValidateFile(context.Background(), path, s) == nil
}

// ValidateFile opens path, checks it against s and closes it again.
func ValidateFile(ctx context.Context, path string, s Schema) error {
	db, err := Open(path)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrStoreValidation, err)
	}
	defer db.Close()

	return Check(ctx, db, s)
}

// Check compares the tables and columns of db with s.
func Check(ctx context.Context, db *sqlx.DB, s Schema) error {
	var tables []string
	if err := db.SelectContext(ctx, &tables, `SELECT name FROM sqlite_master WHERE type = 'table'`); err != nil {
		return fmt.Errorf("%w: list tables: %v", ErrStoreValidation, err)
	}

	if !sameSet(tables, tableNames(s)) {
		return fmt.Errorf("%w: %s tables mismatch: have %v", ErrStoreValidation, s.Name, sorted(tables))
	}

	for _, table := range tableNames(s) {
		var columns []string
		if err := db.SelectContext(ctx, &columns, `SELECT name FROM pragma_table_info(?)`, table); err != nil {
			return fmt.Errorf("%w: table %s: %v", ErrStoreValidation, table, err)
		}
		columns = without(columns, s.OptionalColumns)
		if !sameSet(columns, s.Tables[table]) {
			return fmt.Errorf("%w: %s table %s columns mismatch: have %v", ErrStoreValidation, s.Name, table, sorted(columns))
		}
	}

	return nil
}

func tableNames(s Schema) []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sameSet(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, v := range have {
		set[v] = struct{}{}
	}
	if len(set) != len(want) {
		return false
	}
	for _, v := range want {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

func without(values, drop []string) []string {
	if len(drop) == 0 {
		return values
	}
	out := values[:0]
outer:
	for _, v := range values {
		for _, d := range drop {
			if v == d {
				continue outer
			}
		}
		out = append(out, v)
	}
	return out
}

func sorted(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
