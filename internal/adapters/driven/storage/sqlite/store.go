package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hangang-labs/aptsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RecordStore = (*Store)(nil)

// Store is the SQLite-backed record store. Each dataset lands in its
// own table with an identical column shape; the identity of the raw
// upstream row is the primary key, which is what makes re-ingestion
// idempotent.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.aptsync/data/records.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".aptsync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "records.db")

	// WAL mode lets concurrent dataset runs write without blocking
	// each other's reads.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// tableFor maps a dataset to its table. The set is closed: an unknown
// dataset is a programming error upstream of the store and is reported,
// never defaulted.
func tableFor(dataset domain.Dataset) (string, error) {
	switch dataset {
	case domain.DatasetSale:
		return "sale_records", nil
	case domain.DatasetRent:
		return "rent_records", nil
	case domain.DatasetAptInfo:
		return "aptinfo_records", nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedDataset, dataset)
	}
}

// UpsertBatch writes a batch in one transaction. Records sharing an
// identity within the batch are deduplicated keeping the last
// occurrence before any SQL runs; on conflict with a stored row every
// column except id and created_at is overwritten.
func (s *Store) UpsertBatch(ctx context.Context, dataset domain.Dataset, records []domain.CanonicalRecord) (int, error) {
	table, err := tableFor(dataset)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	deduped := dedupeLastWins(records)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			id, report_year, record_date, price_krw, deposit_krw, rent_krw,
			area_m2, floor, build_year, households, apt_code, building_name,
			building_use, gu_key, dong_key, name_key, lot_key, raw,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			report_year = excluded.report_year,
			record_date = excluded.record_date,
			price_krw = excluded.price_krw,
			deposit_krw = excluded.deposit_krw,
			rent_krw = excluded.rent_krw,
			area_m2 = excluded.area_m2,
			floor = excluded.floor,
			build_year = excluded.build_year,
			households = excluded.households,
			apt_code = excluded.apt_code,
			building_name = excluded.building_name,
			building_use = excluded.building_use,
			gu_key = excluded.gu_key,
			dong_key = excluded.dong_key,
			name_key = excluded.name_key,
			lot_key = excluded.lot_key,
			raw = excluded.raw,
			updated_at = excluded.updated_at
	`, table))
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range deduped {
		rawJSON, err := json.Marshal(r.Raw)
		if err != nil {
			return 0, fmt.Errorf("marshalling raw row %d: %w", r.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			r.ID, r.ReportYear, r.RecordDate, r.PriceKRW, r.DepositKRW, r.RentKRW,
			r.AreaM2, r.Floor, r.BuildYear, r.Households, r.AptCode, r.BuildingName,
			r.BuildingUse, r.GuKey, r.DongKey, r.NameKey, r.LotKey, string(rawJSON),
			now, now)
		if err != nil {
			return 0, fmt.Errorf("upserting row %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}

	return len(deduped), nil
}

// dedupeLastWins collapses identity duplicates within a batch, keeping
// the last occurrence and the first occurrence's position.
func dedupeLastWins(records []domain.CanonicalRecord) []domain.CanonicalRecord {
	seen := make(map[int64]int, len(records))
	out := make([]domain.CanonicalRecord, 0, len(records))
	for _, r := range records {
		if i, ok := seen[r.ID]; ok {
			out[i] = r
			continue
		}
		seen[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

// LatestAnchor returns the most recently committed record's identity
// for a dataset. Creation time breaks the tie first, identity second,
// so the answer is stable across calls.
func (s *Store) LatestAnchor(ctx context.Context, dataset domain.Dataset) (*domain.AnchorPoint, error) {
	table, err := tableFor(dataset)
	if err != nil {
		return nil, err
	}

	var anchor domain.AnchorPoint
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, created_at FROM %s
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, table))
	if err := row.Scan(&anchor.ID, &anchor.CommittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no records for %s", domain.ErrNotFound, dataset)
		}
		return nil, fmt.Errorf("reading anchor: %w", err)
	}

	return &anchor, nil
}

// Count returns the number of stored rows for a dataset.
func (s *Store) Count(ctx context.Context, dataset domain.Dataset) (int64, error) {
	table, err := tableFor(dataset)
	if err != nil {
		return 0, err
	}

	var n int64
	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return n, nil
}

// Record fetches one stored record by identity. Used by the locate
// command to show what an identity refers to.
func (s *Store) Record(ctx context.Context, dataset domain.Dataset, id int64) (*domain.CanonicalRecord, error) {
	table, err := tableFor(dataset)
	if err != nil {
		return nil, err
	}

	var (
		r       domain.CanonicalRecord
		rawJSON string
	)
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, report_year, record_date, price_krw, deposit_krw, rent_krw,
			area_m2, floor, build_year, households, apt_code, building_name,
			building_use, gu_key, dong_key, name_key, lot_key, raw
		FROM %s WHERE id = ?
	`, table), id)
	err = row.Scan(&r.ID, &r.ReportYear, &r.RecordDate, &r.PriceKRW, &r.DepositKRW, &r.RentKRW,
		&r.AreaM2, &r.Floor, &r.BuildYear, &r.Households, &r.AptCode, &r.BuildingName,
		&r.BuildingUse, &r.GuKey, &r.DongKey, &r.NameKey, &r.LotKey, &rawJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: record %d in %s", domain.ErrNotFound, id, dataset)
		}
		return nil, fmt.Errorf("reading record: %w", err)
	}

	r.Dataset = dataset
	if err := json.Unmarshal([]byte(rawJSON), &r.Raw); err != nil {
		return nil, fmt.Errorf("decoding raw row %d: %w", id, err)
	}

	return &r, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
