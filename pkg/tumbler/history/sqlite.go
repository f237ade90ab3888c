package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS snapshots (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	source_id  TEXT NOT NULL,
	seed       INTEGER,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL
)`

// SQLiteStore persists snapshots in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the snapshot database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Push appends snap.
func (s *SQLiteStore) Push(ctx context.Context, snap models.Snapshot) error {
	payload, seed, err := encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, source_id, seed, created_at, payload) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.SourceID, seed, snap.CreatedAt.UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Replace overwrites the most recent entry, or pushes into an empty store.
func (s *SQLiteStore) Replace(ctx context.Context, snap models.Snapshot) error {
	payload, seed, err := encode(snap)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE snapshots SET id = ?, source_id = ?, seed = ?, created_at = ?, payload = ?
		 WHERE seq = (SELECT MAX(seq) FROM snapshots)`,
		snap.ID, snap.SourceID, seed, snap.CreatedAt.UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return s.Push(ctx, snap)
	}
	return nil
}

// Get returns the snapshot with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (models.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE id = ?`, id)
	return scan(row)
}

// Latest returns the most recent snapshot.
func (s *SQLiteStore) Latest(ctx context.Context) (models.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots ORDER BY seq DESC LIMIT 1`)
	return scan(row)
}

// List returns up to limit snapshots, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM snapshots ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		snap, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (models.Snapshot, error) {
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Snapshot{}, ErrNotFound
		}
		return models.Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func encode(snap models.Snapshot) (string, sql.NullInt64, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", sql.NullInt64{}, fmt.Errorf("encode snapshot: %w", err)
	}
	var seed sql.NullInt64
	if snap.Seed != nil {
		seed = sql.NullInt64{Int64: int64(*snap.Seed), Valid: true}
	}
	return string(payload), seed, nil
}
