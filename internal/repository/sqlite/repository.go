package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS wrapped_awards (
		league_key TEXT PRIMARY KEY,
		awards     TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// Repository stores awards in a single SQLite file.
type Repository struct {
	db *sql.DB
}

func NewRepository(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating wrapped_awards: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Get(ctx context.Context, leagueKey string) ([]models.Award, bool, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT awards FROM wrapped_awards WHERE league_key = ?`, leagueKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading awards for %s: %w", leagueKey, err)
	}

	var awards []models.Award
	if err := json.Unmarshal([]byte(data), &awards); err != nil {
		return nil, false, fmt.Errorf("decoding awards for %s: %w", leagueKey, err)
	}
	return awards, true, nil
}

func (r *Repository) Put(ctx context.Context, leagueKey string, awards []models.Award) error {
	data, err := json.Marshal(awards)
	if err != nil {
		return fmt.Errorf("encoding awards for %s: %w", leagueKey, err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT OR IGNORE INTO wrapped_awards (league_key, awards) VALUES (?, ?)`, leagueKey, string(data))
	if err != nil {
		return fmt.Errorf("writing awards for %s: %w", leagueKey, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
