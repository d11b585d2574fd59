package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/michaelhaar/type-safe-sql-query/pkg/analyzer"
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
)

var _ analyzer.ResultStore = (*SQLiteStore)(nil)

// LookupResult returns the stored result for an analyzer key.
func (s *SQLiteStore) LookupResult(ctx context.Context, key string) (*core.Result, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("database not opened")
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT result_json FROM analyses WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up result: %w", err)
	}

	var r core.Result
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, false, fmt.Errorf("failed to decode result %s: %w", key, err)
	}
	return &r, true, nil
}

// SaveResult stores r under key, replacing any previous entry.
func (s *SQLiteStore) SaveResult(ctx context.Context, key string, r *core.Result) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (key, fingerprint, query, kind, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			query = excluded.query,
			kind = excluded.kind,
			result_json = excluded.result_json,
			created_at = excluded.created_at
	`, key, fingerprintOf(key), r.Query, string(r.Kind), string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// CountResults returns the number of stored results.
func (s *SQLiteStore) CountResults(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}

// PruneResults deletes results computed against any schema other than
// the one with the given fingerprint, and returns how many were removed.
func (s *SQLiteStore) PruneResults(ctx context.Context, keepFingerprint string) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE fingerprint <> ?`, keepFingerprint)
	if err != nil {
		return 0, fmt.Errorf("failed to prune results: %w", err)
	}
	return res.RowsAffected()
}

// fingerprintOf extracts the schema half of an analyzer key.
func fingerprintOf(key string) string {
	if len(key) == 32 {
		return key[16:]
	}
	return ""
}
