package store

import (
	"context"
	"database/sql"
	stderrors "errors"

	_ "modernc.org/sqlite"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	category TEXT NOT NULL,
	id TEXT NOT NULL,
	value BLOB NOT NULL,
	PRIMARY KEY (category, id)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS roots (
	kind TEXT PRIMARY KEY,
	id TEXT NOT NULL
) WITHOUT ROWID;
`

// SQLite is a Store in a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	log := logging.GetLogger("store")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreRead, "open sqlite %s", path)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, errors.ErrStoreWrite, "apply %q", pragma)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrStoreWrite, "create schema")
	}

	log.Debug().Str("path", path).Msg("Opened sqlite store")
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, category, id string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM entities WHERE category = ? AND id = ?`, category, id).Scan(&v)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf(errors.ErrNotFound, "no %s record %q", category, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreRead, "get %s/%s", category, id)
	}
	return v, nil
}

func (s *SQLite) Put(ctx context.Context, category, id string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entities (category, id, value) VALUES (?, ?, ?)
		 ON CONFLICT (category, id) DO UPDATE SET value = excluded.value`,
		category, id, value)
	if err != nil {
		return errors.Wrapf(err, errors.ErrStoreWrite, "put %s/%s", category, id)
	}
	return nil
}

func (s *SQLite) Scan(ctx context.Context, category, prefix string) ([]Record, error) {
	query := `SELECT id, value FROM entities WHERE category = ? AND id >= ?`
	args := []any{category, prefix}
	if end := prefixEnd(prefix); end != "" {
		query += ` AND id < ?`
		args = append(args, end)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreRead, "scan %s/%s*", category, prefix)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Value); err != nil {
			return nil, errors.Wrapf(err, errors.ErrStoreRead, "scan %s row", category)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreRead, "scan %s", category)
	}
	return out, nil
}

func (s *SQLite) GetRoot(ctx context.Context, kind string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM roots WHERE kind = ?`, kind).Scan(&id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrStoreRead, "get root %s", kind)
	}
	return id, true, nil
}

func (s *SQLite) CompareAndSwapRoot(ctx context.Context, kind, prev, next string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if prev == "" {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO roots (kind, id) VALUES (?, ?) ON CONFLICT (kind) DO NOTHING`, kind, next)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE roots SET id = ? WHERE kind = ? AND id = ?`, next, kind, prev)
	}
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrStoreWrite, "swap root %s", kind)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrStoreWrite, "swap root %s", kind)
	}
	return n == 1, nil
}

func (s *SQLite) Delete(ctx context.Context, category, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE category = ? AND id = ?`, category, id)
	if err != nil {
		return errors.Wrapf(err, errors.ErrStoreWrite, "delete %s/%s", category, id)
	}
	return nil
}

func (s *SQLite) DeleteRoot(ctx context.Context, kind, prev string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roots WHERE kind = ? AND id = ?`, kind, prev)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrStoreWrite, "delete root %s", kind)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrStoreWrite, "delete root %s", kind)
	}
	return n == 1, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
