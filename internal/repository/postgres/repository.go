package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS wrapped_awards (
		league_key TEXT PRIMARY KEY,
		awards     JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository connects to dsn and creates the awards table if needed.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create wrapped_awards: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Get(ctx context.Context, leagueKey string) ([]models.Award, bool, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `
		SELECT awards
		FROM wrapped_awards
		WHERE league_key = $1
	`, leagueKey).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading awards for %s: %w", leagueKey, err)
	}

	var awards []models.Award
	if err := json.Unmarshal(data, &awards); err != nil {
		return nil, false, fmt.Errorf("decoding awards for %s: %w", leagueKey, err)
	}
	return awards, true, nil
}

// Put stores awards unless the league already has a row.
func (r *Repository) Put(ctx context.Context, leagueKey string, awards []models.Award) error {
	data, err := json.Marshal(awards)
	if err != nil {
		return fmt.Errorf("encoding awards for %s: %w", leagueKey, err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO wrapped_awards (league_key, awards)
		VALUES ($1, $2)
		ON CONFLICT (league_key) DO NOTHING
	`, leagueKey, data)
	if err != nil {
		return fmt.Errorf("writing awards for %s: %w", leagueKey, err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}
