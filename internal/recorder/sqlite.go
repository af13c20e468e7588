package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"PriceLabeler/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			source      TEXT,
			symbol      TEXT,
			bars        INTEGER,
			window_secs INTEGER,
			tie_policy  TEXT,
			windows     INTEGER,
			longs       INTEGER,
			shorts      INTEGER,
			collisions  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS labels (
			run_id    TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			close     REAL,
			position  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_labels_run ON labels(run_id)`,

		`CREATE TABLE IF NOT EXISTS features (
			run_id  TEXT NOT NULL,
			rank    INTEGER NOT NULL,
			formula TEXT NOT NULL,
			score   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_features_run ON features(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run header, its labeled bars and its features in one transaction.
// Unlabeled bars are not stored.
func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	s := snap.Series
	sum := snap.Summary
	if _, err = tx.Exec(`INSERT INTO runs
		(id, started_at, source, symbol, bars, window_secs, tie_policy, windows, longs, shorts, collisions)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		snap.ID, snap.StartedAt.Unix(), snap.Source, s.Symbol, s.Len(),
		int64(snap.Options.Window.Seconds()), string(snap.Options.TiePolicy),
		sum.Windows, sum.Longs, sum.Shorts, sum.Collisions,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	labelStmt, err := tx.Prepare(`INSERT INTO labels (run_id, timestamp, close, position) VALUES (?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare labels: %w", err)
	}
	defer labelStmt.Close()
	for i, l := range s.Labels {
		if l == model.LabelNone {
			continue
		}
		b := s.Bars[i]
		if _, err = labelStmt.Exec(snap.ID, b.Time.Unix(), b.Close, string(l)); err != nil {
			return fmt.Errorf("insert label: %w", err)
		}
	}

	for _, f := range snap.Features {
		if _, err = tx.Exec(`INSERT INTO features (run_id, rank, formula, score) VALUES (?,?,?,?)`,
			snap.ID, f.Rank, f.Formula, f.Score); err != nil {
			return fmt.Errorf("insert feature: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountLabels returns how many labels of each kind a run stored.
func (r *SQLiteRecorder) CountLabels(runID string) (map[model.Label]int, error) {
	rows, err := r.db.Query(`SELECT position, COUNT(*) FROM labels WHERE run_id = ? GROUP BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Label]int)
	for rows.Next() {
		var pos string
		var n int
		if err := rows.Scan(&pos, &n); err != nil {
			return nil, err
		}
		out[model.Label(pos)] = n
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
