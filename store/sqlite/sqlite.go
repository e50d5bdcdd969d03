/*
Package sqlite provides a SQLite-backed store for rent agreements.

PURPOSE:
  Persists the INPUTS of billing: resident rent agreements (cadence, rate,
  stay). Prorated amounts are always computed on demand by a billing
  session and are never written here.

KEY TABLES:
  rent_agreements: One row per agreement. end_at is NULL while the stay is
                   ongoing. amount is stored as TEXT to keep decimal precision.
                   start_at/end_at are UTC sort keys; start_offset/end_offset
                   hold the original UTC offset in seconds so calendar math
                   sees the same wall clock after a reload.

INDEXES:
  - idx_rent_agreements_stay: Window filtering (start_at, end_at)
  - idx_rent_agreements_resident: Per-resident lookups

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened with WAL so readers
  do not block each other.

USAGE:
  store, err := sqlite.New("./data/rent.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  agreements, err := store.ListAgreementsActiveIn(ctx, window)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - rent/types.go: Agreement type
  - rent/session.go: Consumes the agreements
*/
package sqlite

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/rent-engine/generic"
	"github.com/warp/rent-engine/rent"
)

// ErrAgreementNotFound is returned when an agreement id does not exist.
var ErrAgreementNotFound = errors.New("agreement not found")

// Fixed-width UTC layout so stored instants compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const agreementColumns = `id, resident_id, room, cadence, amount, start_at, start_offset, end_at, end_offset`

// Store implements agreement persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store, err := NewFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewFromDB wraps an open database handle and migrates the schema.
func NewFromDB(db *sql.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rent_agreements (
		id TEXT PRIMARY KEY,
		resident_id TEXT NOT NULL,
		room TEXT NOT NULL DEFAULT '',
		cadence TEXT NOT NULL,
		amount TEXT NOT NULL,
		start_at TEXT NOT NULL,
		start_offset INTEGER NOT NULL DEFAULT 0,
		end_at TEXT,
		end_offset INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rent_agreements_stay
		ON rent_agreements(start_at, end_at);
	CREATE INDEX IF NOT EXISTS idx_rent_agreements_resident
		ON rent_agreements(resident_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// AGREEMENTS
// =============================================================================

// SaveAgreement inserts or replaces an agreement. An empty ID is assigned a
// new UUID; the stored agreement is returned.
func (s *Store) SaveAgreement(ctx context.Context, a rent.Agreement) (rent.Agreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	start, startOffset := encodeInstant(a.Stay.Start())
	var (
		end       sql.NullString
		endOffset sql.NullInt64
	)
	if e, ok := a.Stay.End(); ok {
		at, off := encodeInstant(e)
		end = sql.NullString{String: at, Valid: true}
		endOffset = sql.NullInt64{Int64: int64(off), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO rent_agreements
			(`+agreementColumns+`, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ResidentID, a.Room, string(a.Cadence), a.Amount.String(),
		start, startOffset, end, endOffset,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return rent.Agreement{}, errors.Wrapf(err, "failed to save agreement %s", a.ID)
	}
	return a, nil
}

// GetAgreement returns one agreement or ErrAgreementNotFound.
func (s *Store) GetAgreement(ctx context.Context, id string) (rent.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+agreementColumns+`
		FROM rent_agreements WHERE id = ?`, id)
	a, err := scanAgreement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rent.Agreement{}, errors.Wrapf(ErrAgreementNotFound, "id %s", id)
	}
	return a, err
}

// ListAgreements returns all agreements ordered by start.
func (s *Store) ListAgreements(ctx context.Context) ([]rent.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+agreementColumns+`
		FROM rent_agreements ORDER BY start_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list agreements")
	}
	defer rows.Close()
	return scanAgreements(rows)
}

// ListAgreementsActiveIn returns agreements whose stay intersects window:
// started before the window ends and ended (if at all) after it starts.
func (s *Store) ListAgreementsActiveIn(ctx context.Context, window generic.Interval) ([]rent.Agreement, error) {
	end, ok := window.End()
	if !ok {
		return nil, errors.Mark(errors.New("window requires an end"), generic.ErrInvalidInterval)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+agreementColumns+`
		FROM rent_agreements
		WHERE start_at < ? AND (end_at IS NULL OR end_at > ?)
		ORDER BY start_at, id`,
		end.UTC().Format(timeLayout), window.Start().UTC().Format(timeLayout))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active agreements")
	}
	defer rows.Close()
	return scanAgreements(rows)
}

// DeleteAgreement removes an agreement or returns ErrAgreementNotFound.
func (s *Store) DeleteAgreement(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM rent_agreements WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete agreement %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return errors.Wrapf(ErrAgreementNotFound, "id %s", id)
	}
	return nil
}

// =============================================================================
// SCANNING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanAgreements(rows *sql.Rows) ([]rent.Agreement, error) {
	agreements := []rent.Agreement{}
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		agreements = append(agreements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate agreements")
	}
	return agreements, nil
}

func scanAgreement(row scanner) (rent.Agreement, error) {
	var (
		a                      rent.Agreement
		cadence, amount, start string
		startOffset            int
		end                    sql.NullString
		endOffset              sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.ResidentID, &a.Room, &cadence, &amount,
		&start, &startOffset, &end, &endOffset); err != nil {
		return rent.Agreement{}, err
	}

	a.Cadence = generic.Cadence(cadence)

	var err error
	if a.Amount, err = decimal.NewFromString(amount); err != nil {
		return rent.Agreement{}, errors.Wrapf(err, "agreement %s: amount", a.ID)
	}

	startAt, err := decodeInstant(start, startOffset)
	if err != nil {
		return rent.Agreement{}, errors.Wrapf(err, "agreement %s: start_at", a.ID)
	}

	var endAt *time.Time
	if end.Valid {
		t, err := decodeInstant(end.String, int(endOffset.Int64))
		if err != nil {
			return rent.Agreement{}, errors.Wrapf(err, "agreement %s: end_at", a.ID)
		}
		endAt = &t
	}

	if a.Stay, err = generic.NewInterval(startAt, endAt); err != nil {
		return rent.Agreement{}, errors.Wrapf(err, "agreement %s", a.ID)
	}
	return a, nil
}

// encodeInstant splits t into its UTC sort key and its UTC offset in seconds.
func encodeInstant(t time.Time) (string, int) {
	_, offset := t.Zone()
	return t.UTC().Format(timeLayout), offset
}

// decodeInstant rebuilds an instant in a fixed zone carrying its original offset.
func decodeInstant(s string, offset int) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if offset == 0 {
		return t, nil
	}
	return t.In(time.FixedZone("", offset)), nil
}
