package datasource

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore mirrors seed rows into a SQLite database so other tools can
// query pools without parsing the CSV.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const seedRowsSchema = `
CREATE TABLE IF NOT EXISTS seed_rows (
	seed           INTEGER PRIMARY KEY,
	status         TEXT NOT NULL,
	score          REAL,
	bucket         TEXT,
	reason         TEXT,
	elapsed_ms     REAL NOT NULL DEFAULT 0,
	expanded_nodes INTEGER NOT NULL DEFAULT 0,
	unique_states  INTEGER NOT NULL DEFAULT 0,
	updated_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_seed_rows_status ON seed_rows(status);
CREATE INDEX IF NOT EXISTS idx_seed_rows_bucket ON seed_rows(bucket);
`

// OpenSQLiteStore opens (or creates) the row store at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if _, err := db.Exec(seedRowsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// UpsertRows writes rows in one transaction, replacing any prior row with
// the same seed.
func (s *SQLiteStore) UpsertRows(rows []SeedRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO seed_rows
			(seed, status, score, bucket, reason, elapsed_ms, expanded_nodes, unique_states, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(seed) DO UPDATE SET
			status = excluded.status,
			score = excluded.score,
			bucket = excluded.bucket,
			reason = excluded.reason,
			elapsed_ms = excluded.elapsed_ms,
			expanded_nodes = excluded.expanded_nodes,
			unique_states = excluded.unique_states,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		var score any
		if row.Score != nil {
			score = *row.Score
		}
		if _, err := stmt.Exec(
			row.Seed, row.Status, score, row.Bucket, row.Reason,
			row.ElapsedMS, row.ExpandedNodes, row.UniqueStates, now,
		); err != nil {
			return fmt.Errorf("upsert seed %d: %w", row.Seed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRows reads every stored row ordered by seed.
func (s *SQLiteStore) LoadRows() ([]SeedRow, error) {
	rows, err := s.db.Query(`
		SELECT seed, status, score, bucket, reason, elapsed_ms, expanded_nodes, unique_states
		FROM seed_rows
		ORDER BY seed
	`)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []SeedRow
	for rows.Next() {
		var row SeedRow
		var score sql.NullFloat64
		var bucket, reason sql.NullString
		if err := rows.Scan(
			&row.Seed, &row.Status, &score, &bucket, &reason,
			&row.ElapsedMS, &row.ExpandedNodes, &row.UniqueStates,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if score.Valid {
			v := score.Float64
			row.Score = &v
		}
		if bucket.Valid {
			row.Bucket = bucket.String
		}
		if reason.Valid {
			row.Reason = reason.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
