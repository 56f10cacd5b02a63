// Package sqlite keeps a history of served predictions in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/fire-weather-api/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed sql/insert-prediction.sql
var insertPredictionSQL string

//go:embed sql/get-recent-predictions.sql
var getRecentPredictionsSQL string

// Store implements predict.Recorder and serves the prediction history.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return s, nil
}

func buildDSN(path string) (string, error) {
	if path == "" {
		return "", errors.New("history database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	// busy_timeout keeps concurrent request writers from failing with "database is locked".
	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
		"_synchronous=NORMAL",
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

// Record inserts p.
func (s *Store) Record(ctx context.Context, p domain.Prediction) error {
	in := p.Input
	_, err := s.db.ExecContext(ctx, insertPredictionSQL,
		p.ID, p.Timestamp.UTC().UnixNano(),
		in.Temperature, in.RH, in.Ws, in.Rain, in.FFMC, in.DMC, in.ISI, in.Classes, in.Region,
		p.Result,
	)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", p.ID, err)
	}
	return nil
}

// Recent returns up to limit predictions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Prediction, error) {
	if limit <= 0 {
		return []domain.Prediction{}, nil
	}
	rows, err := s.db.QueryContext(ctx, getRecentPredictionsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent predictions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("close prediction rows", "error", err)
		}
	}()

	out := make([]domain.Prediction, 0, limit)
	for rows.Next() {
		var (
			p  domain.Prediction
			ns int64
		)
		in := &p.Input
		if err := rows.Scan(
			&p.ID, &ns,
			&in.Temperature, &in.RH, &in.Ws, &in.Rain, &in.FFMC, &in.DMC, &in.ISI, &in.Classes, &in.Region,
			&p.Result,
		); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.Timestamp = time.Unix(0, ns).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
