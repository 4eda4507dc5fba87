// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/repolens/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoRecord is returned by LatestRecord when nothing has been saved.
var ErrNoRecord = errors.New("no saved record")

// Store wraps SQLite access for fetched records and the search log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			identifier TEXT NOT NULL,
			data TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			identifier TEXT NOT NULL,
			success INTEGER NOT NULL,
			error_code TEXT NOT NULL,
			processing_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_fetched_at ON records(fetched_at);`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_searches_kind_identifier ON searches(kind, identifier);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRecord stores a fetched record and drops records that expired before it was fetched.
func (s *Store) SaveRecord(ctx context.Context, rec model.Record) (id int64, err error) {
	if rec.Kind == model.KindUnknown {
		return 0, fmt.Errorf("record has no kind")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (kind, identifier, data, fetched_at) VALUES (?, ?, ?, ?)`,
		rec.Kind.String(),
		rec.Identifier,
		string(rec.Data),
		rec.FetchedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	cutoff := rec.FetchedAt.Add(-model.RecordTTL).UTC().Format(timeLayout)
	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE fetched_at < ?`, cutoff); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// LatestRecord returns the most recently fetched record. Expiry is left to the reader.
func (s *Store) LatestRecord(ctx context.Context) (model.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, identifier, data, fetched_at FROM records ORDER BY fetched_at DESC, id DESC LIMIT 1`)
	var (
		rec       model.Record
		kind      string
		data      string
		fetchedAt string
	)
	if err := row.Scan(&rec.ID, &kind, &rec.Identifier, &data, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Record{}, ErrNoRecord
		}
		return model.Record{}, err
	}
	rec.Kind, _ = model.ParseKind(kind)
	rec.Data = json.RawMessage(data)
	parsed, err := time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return model.Record{}, fmt.Errorf("record %d: %w", rec.ID, err)
	}
	rec.FetchedAt = parsed
	return rec, nil
}

// ClearRecords removes every saved record and reports how many were deleted.
func (s *Store) ClearRecords(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LogSearch appends one submission to the search log.
func (s *Store) LogSearch(ctx context.Context, entry model.SearchEntry) (int64, error) {
	success := 0
	if entry.Success {
		success = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (kind, identifier, success, error_code, processing_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Kind.String(),
		entry.Identifier,
		success,
		entry.ErrorCode,
		entry.ProcessingTime.Milliseconds(),
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentSearches returns up to limit log entries, newest first.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]model.SearchEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, identifier, success, error_code, processing_ms, created_at
		 FROM searches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.SearchEntry
	for rows.Next() {
		var (
			entry     model.SearchEntry
			kind      string
			success   int
			ms        int64
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &kind, &entry.Identifier, &success, &entry.ErrorCode, &ms, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		entry.Kind, _ = model.ParseKind(kind)
		entry.Success = success != 0
		entry.ProcessingTime = time.Duration(ms) * time.Millisecond
		entry.CreatedAt = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Summary aggregates the search log. top bounds the most-searched lists.
func (s *Store) Summary(ctx context.Context, top int) (model.SearchSummary, error) {
	var (
		summary    model.SearchSummary
		successful sql.NullInt64
		avgMs      sql.NullFloat64
	)
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), SUM(success), AVG(processing_ms) FROM searches`)
	if err := row.Scan(&summary.Total, &successful, &avgMs); err != nil {
		return model.SearchSummary{}, err
	}
	summary.Successful = int(successful.Int64)
	summary.AverageProcessing = time.Duration(avgMs.Float64 * float64(time.Millisecond))

	var err error
	if summary.TopAccounts, err = s.topSearched(ctx, model.KindAccount, top); err != nil {
		return model.SearchSummary{}, err
	}
	if summary.TopProjects, err = s.topSearched(ctx, model.KindProject, top); err != nil {
		return model.SearchSummary{}, err
	}
	return summary, nil
}

func (s *Store) topSearched(ctx context.Context, kind model.Kind, limit int) ([]model.SearchCount, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, COUNT(*) AS searches
		 FROM searches
		 WHERE kind = ? AND identifier != ''
		 GROUP BY identifier
		 ORDER BY searches DESC, identifier ASC
		 LIMIT ?`, kind.String(), limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.SearchCount
	for rows.Next() {
		var sc model.SearchCount
		if err := rows.Scan(&sc.Identifier, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
