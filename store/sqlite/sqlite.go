/*
Package sqlite provides a SQLite-backed implementation of the payroll storage.

PURPOSE:
  Persists companies, employees, the extra-field catalogue, payment types and
  payments, and serves payroll.PaymentSource to the payslip generator. The
  payroll engine never sees SQL; it receives plain payroll.Payment values.

INTERFACES IMPLEMENTED:
  payroll.PaymentSource: One employee's payments for a year

KEY TABLES:
  companies, employees:        Tenants and payslip recipients
  extra_field_types:           Attribute catalogue (unique names)
  extra_fields:                Global values of fixed-value field types
  entity_attributes:           Attribute bags of companies/employees/payments
  payment_types, payments:     The data the engine aggregates

CONSISTENCY:
  EmployeePayments reads the employee, its payments, their types and their
  attributes inside one read-only transaction, so a payslip's year and
  period totals always come from the same snapshot.

CONCURRENCY:
  Uses sync.RWMutex to serialize writers. Readers share the lock.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

MIGRATION:
  Versioned SQL files under migrations/ are embedded and applied with
  golang-migrate on New().

USAGE:
  store, err := sqlite.New("./data/payslip.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  gen := &payroll.Generator{Source: store}

SEE ALSO:
  - payroll/store.go: PaymentSource contract
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"
	"github.com/warp/payslip-engine/payroll"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// dateLayout keeps naive dates sortable as text, at whole seconds.
const dateLayout = "2006-01-02 15:04:05"

// Store implements the payroll storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrateUp applies the embedded migrations on db. The migrate instance is
// not closed: closing it would close db as well.
func migrateUp(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// write runs fn in a read-write transaction under the writer lock.
func (s *Store) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// read runs fn in a read-only transaction, giving it a consistent snapshot.
func (s *Store) read(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		tables := []string{
			"entity_attributes", "payments", "payment_types", "extra_fields",
			"extra_field_types", "employees", "companies",
		}
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	return payroll.WholeSecond(t).Format(dateLayout)
}

// parseDate also accepts rows written with fractional seconds.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return payroll.WholeSecond(t), nil
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*t), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func isForeignKeyError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// exists reports whether a row with id is in table.
func exists(ctx context.Context, q queryer, table, id string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", table, err)
	}
	return n > 0, nil
}

// affected maps "no row changed" to notFound.
func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
