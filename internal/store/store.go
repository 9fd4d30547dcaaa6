// Package store handles SQLite persistence of prediction history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/churnform/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Fixed-width so lexical order in SQLite matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for prediction history.
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
		`CREATE TABLE IF NOT EXISTS predictions (
			id INTEGER PRIMARY KEY,
			request_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			request_json TEXT NOT NULL,
			churn_prediction REAL,
			churn_probability REAL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertPrediction stores a successful prediction.
func (s *Store) InsertPrediction(ctx context.Context, entry model.HistoryEntry) (int64, error) {
	reqJSON, err := json.Marshal(entry.Request)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions (request_id, created_at, endpoint, request_json, churn_prediction, churn_probability)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		entry.CreatedAt.UTC().Format(timeLayout),
		entry.Endpoint,
		string(reqJSON),
		finiteOrNull(entry.Result.Prediction),
		finiteOrNull(entry.Result.Probability),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListPredictions returns stored predictions, oldest first.
func (s *Store) ListPredictions(ctx context.Context, cfg model.HistoryConfig) ([]model.HistoryEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, request_id, created_at, endpoint, request_json, churn_prediction, churn_probability
		FROM predictions
		WHERE %s
		ORDER BY created_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var createdAt, reqJSON string
		var prediction, probability sql.NullFloat64
		if err := rows.Scan(&entry.ID, &entry.RequestID, &createdAt, &entry.Endpoint, &reqJSON, &prediction, &probability); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = parsed
		if err := json.Unmarshal([]byte(reqJSON), &entry.Request); err != nil {
			return nil, fmt.Errorf("failed to decode request for prediction %d: %w", entry.ID, err)
		}
		entry.Result = model.PredictionResult{
			Prediction:  nullToNaN(prediction),
			Probability: nullToNaN(probability),
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(entries) > cfg.Last {
		entries = entries[len(entries)-cfg.Last:]
	}
	return entries, nil
}

func finiteOrNull(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
