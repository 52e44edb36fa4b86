package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const surveySchema = `
CREATE TABLE IF NOT EXISTS surveys (
    id TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL, -- unix nanoseconds
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    runs INTEGER NOT NULL,
    steps INTEGER NOT NULL,
    window_size INTEGER NOT NULL,
    alive_probability REAL NOT NULL,
    seed INTEGER NOT NULL,
    converged INTEGER NOT NULL,
    dynamic INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attractors (
    survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    rank INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    cells BLOB NOT NULL,
    population INTEGER NOT NULL,
    torque REAL NOT NULL,
    hits INTEGER NOT NULL,
    frequency REAL NOT NULL,
    PRIMARY KEY (survey_id, rank)
);
CREATE INDEX IF NOT EXISTS idx_attractors_torque ON attractors(torque);
`

// SQLiteStore persists surveys in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path. ":memory:" gives a
// private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), surveySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveSurvey(ctx context.Context, sv *Survey) error {
	prepare(sv)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO surveys
		(id, created_at, width, height, runs, steps, window_size, alive_probability, seed, converged, dynamic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.CreatedAt.UnixNano(), sv.Width, sv.Height, sv.Runs,
		sv.Steps, sv.Window, sv.AliveProbability, sv.Seed, sv.Converged, sv.Dynamic)
	if err != nil {
		return fmt.Errorf("failed to insert survey: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM attractors WHERE survey_id = ?`, sv.ID); err != nil {
		return fmt.Errorf("failed to clear attractors: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attractors
		(survey_id, rank, width, height, cells, population, torque, hits, frequency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare attractor insert: %w", err)
	}
	defer stmt.Close()
	for _, a := range sv.Attractors {
		if _, err := stmt.ExecContext(ctx, sv.ID, a.Rank, a.Width, a.Height, a.Cells,
			a.Population, a.Torque, a.Hits, a.Frequency); err != nil {
			return fmt.Errorf("failed to insert attractor %d: %w", a.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit survey: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Surveys(ctx context.Context) ([]Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, width, height, runs, steps, window_size, alive_probability, seed, converged, dynamic
		FROM surveys ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query surveys: %w", err)
	}
	defer rows.Close()

	var out []Survey
	for rows.Next() {
		var sv Survey
		var created int64
		if err := rows.Scan(&sv.ID, &created, &sv.Width, &sv.Height, &sv.Runs, &sv.Steps,
			&sv.Window, &sv.AliveProbability, &sv.Seed, &sv.Converged, &sv.Dynamic); err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		sv.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Attractors(ctx context.Context, id string) ([]Attractor, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM surveys WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up survey: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSurveyNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rank, width, height, cells, population, torque, hits, frequency
		FROM attractors WHERE survey_id = ? ORDER BY rank`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query attractors: %w", err)
	}
	defer rows.Close()

	var out []Attractor
	for rows.Next() {
		var a Attractor
		if err := rows.Scan(&a.Rank, &a.Width, &a.Height, &a.Cells, &a.Population,
			&a.Torque, &a.Hits, &a.Frequency); err != nil {
			return nil, fmt.Errorf("failed to scan attractor: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
