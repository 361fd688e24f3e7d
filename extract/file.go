package extract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/netip"

	"github.com/jmoiron/sqlx"

	"github.com/MrEthical07/tgsession/dc"
	"github.com/MrEthical07/tgsession/schema"
	"github.com/MrEthical07/tgsession/session"
)

// Stores may hold several rows after a DC migration; the oldest one wins.
const (
	telethonRowQuery = `SELECT dc_id, server_address, port, auth_key, takeout_id FROM sessions ORDER BY rowid LIMIT 1`
	pyrogramRowQuery = `SELECT * FROM sessions ORDER BY rowid LIMIT 1`
)

type telethonRow struct {
	DC        int64          `db:"dc_id"`
	Address   sql.NullString `db:"server_address"`
	Port      sql.NullInt64  `db:"port"`
	AuthKey   []byte         `db:"auth_key"`
	TakeoutID sql.NullInt64  `db:"takeout_id"`
}

// api_id only exists in newer files, so the row is read with an unsafe mapper.
type pyrogramRow struct {
	DC       int64         `db:"dc_id"`
	APIID    sql.NullInt64 `db:"api_id"`
	TestMode sql.NullBool  `db:"test_mode"`
	AuthKey  []byte        `db:"auth_key"`
	UserID   sql.NullInt64 `db:"user_id"`
	IsBot    sql.NullBool  `db:"is_bot"`
}

// TelethonFile reads the session stored in the Telethon SQLite file at path.
func TelethonFile(ctx context.Context, path string) (*session.Record, error) {
	var row telethonRow
	if err := readRow(ctx, path, schema.Telethon, telethonRowQuery, &row, false); err != nil {
		return nil, err
	}

	if !row.Address.Valid || !row.Port.Valid {
		return nil, fmt.Errorf("%w: missing server address or port", ErrIncompleteRow)
	}
	ip, err := netip.ParseAddr(row.Address.String)
	if err != nil {
		return nil, fmt.Errorf("%w: server address %q: %v", ErrIncompleteRow, row.Address.String, err)
	}
	if row.Port.Int64 < 0 || row.Port.Int64 > math.MaxUint16 {
		return nil, fmt.Errorf("%w: port %d", session.ErrFieldRange, row.Port.Int64)
	}
	if row.DC < math.MinInt32 || row.DC > math.MaxInt32 {
		return nil, fmt.Errorf("%w: dc %d", session.ErrFieldRange, row.DC)
	}

	if len(row.AuthKey) == 0 {
		return nil, fmt.Errorf("%w: missing auth key", ErrIncompleteRow)
	}

	r := session.NewRecord(int(row.DC), session.Endpoint{IP: ip, Port: uint16(row.Port.Int64)}, row.AuthKey)
	if row.TakeoutID.Valid {
		id := row.TakeoutID.Int64
		r.TakeoutID = &id
	}
	return r, nil
}

// PyrogramFile reads the session stored in the Pyrogram SQLite file at path
// and resolves its endpoint through resolver.
func PyrogramFile(ctx context.Context, path string, resolver dc.Resolver) (*session.Record, error) {
	var row pyrogramRow
	if err := readRow(ctx, path, schema.Pyrogram, pyrogramRowQuery, &row, true); err != nil {
		return nil, err
	}
	if row.DC < math.MinInt32 || row.DC > math.MaxInt32 {
		return nil, fmt.Errorf("%w: dc %d", session.ErrFieldRange, row.DC)
	}

	if len(row.AuthKey) == 0 {
		return nil, fmt.Errorf("%w: missing auth key", ErrIncompleteRow)
	}

	endpoint, err := resolve(resolver, int(row.DC))
	if err != nil {
		return nil, err
	}

	r := session.NewRecord(int(row.DC), endpoint, row.AuthKey)
	r.TestMode = row.TestMode.Bool
	r.IsBot = row.IsBot.Bool
	if row.UserID.Valid {
		id := row.UserID.Int64
		r.UserID = &id
	}
	if row.APIID.Valid && row.APIID.Int64 >= 0 && row.APIID.Int64 <= math.MaxUint32 {
		id := uint32(row.APIID.Int64)
		r.APIID = &id
	}
	return r, nil
}

func readRow(ctx context.Context, path string, s schema.Schema, query string, dest any, unsafe bool) error {
	db, err := schema.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer db.Close()

	if err := schema.Check(ctx, db, s); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	var q sqlx.QueryerContext = db
	if unsafe {
		q = db.Unsafe()
	}
	if err := sqlx.GetContext(ctx, q, dest, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMissingRow
		}
		return fmt.Errorf("read %s sessions row: %w", s.Name, err)
	}
	return nil
}

func resolve(resolver dc.Resolver, dcID int) (session.Endpoint, error) {
	if resolver == nil {
		resolver = dc.Default()
	}
	addr, err := resolver.Resolve(dcID)
	if err != nil {
		return session.Endpoint{}, err
	}
	return session.Endpoint{IP: addr.Addr(), Port: addr.Port()}, nil
}
