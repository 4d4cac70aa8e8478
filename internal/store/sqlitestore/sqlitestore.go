package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/idilsaglam/mailcheck/internal/model"
)

// SQLite-backed storage for the email checklist. One local file, one table.
// The app is single-user and single-threaded, so one connection is enough.

var (
	// ErrDuplicateEmail is returned when an insert would repeat an existing email.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidStatus is returned when a write carries a status outside the fixed set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrNotFound is returned by Get for an unknown id.
	ErrNotFound = errors.New("entry not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS emails (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	email  TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'unused',
	number TEXT
)`

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and initializes the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.Initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Initialize creates the emails table if absent. Safe to call repeatedly.
func (s *Store) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emails`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// BulkInsert inserts rows in one transaction and returns how many were added.
// A row whose email is already present (in the table or earlier in rows) is
// skipped, so the first occurrence wins. Any other failure rolls back the batch.
func (s *Store) BulkInsert(ctx context.Context, rows []model.SeedRow) (int, error) {
	for _, r := range rows {
		if !r.Status.Valid() {
			return 0, fmt.Errorf("seed %s: %w: %q", r.Email, ErrInvalidStatus, r.Status)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO emails(email, status, number) VALUES(?, ?, ?) ON CONFLICT(email) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, r.Email, string(r.Status), nullable(r.Number))
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.Email, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Insert adds one entry and returns its id.
func (s *Store) Insert(ctx context.Context, email string, status model.Status, number string) (int64, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO emails(email, status, number) VALUES(?, ?, ?)`,
		email, string(status), nullable(number))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert id: %w", err)
	}
	return id, nil
}

// ListAll returns every entry ordered by status rank, then id.
func (s *Store) ListAll(ctx context.Context) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, status, number FROM emails ORDER BY `+orderClause()+`, id`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (model.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, email, status, number FROM emails WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, ErrNotFound
	}
	return e, err
}

// UpdateStatus sets the status of id. Unknown ids are a no-op.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE emails SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// UpdateNumber sets the number of id; blank input clears it.
func (s *Store) UpdateNumber(ctx context.Context, id int64, number string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE emails SET number = ? WHERE id = ?`, nullable(number), id); err != nil {
		return fmt.Errorf("update number: %w", err)
	}
	return nil
}

// DeleteByID removes id. Unknown ids are a no-op.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM emails WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// DeleteByIDs removes every id in one transaction: either all are deleted
// or none are. Unknown ids are skipped.
func (s *Store) DeleteByIDs(ctx context.Context, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM emails WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (model.Entry, error) {
	var (
		e      model.Entry
		status string
		number sql.NullString
	)
	if err := sc.Scan(&e.ID, &e.Email, &status, &number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Entry{}, err
		}
		return model.Entry{}, fmt.Errorf("scan: %w", err)
	}
	e.Status = model.Status(status)
	if number.Valid {
		n := number.String
		e.Number = &n
	}
	return e, nil
}

// orderClause renders model.SortOrder as a SQL CASE so ordering is applied by
// the query every time rows are listed.
func orderClause() string {
	var b strings.Builder
	b.WriteString("CASE status")
	for i, st := range model.SortOrder {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", st, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(model.SortOrder))
	return b.String()
}

func nullable(number string) any {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil
	}
	return number
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
