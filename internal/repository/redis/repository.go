package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

const keyPrefix = "wrapped:awards:"

// Repository keeps each league's awards under one key. Writes use SETNX so
// the first complete result set wins.
type Repository struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRepository(ctx context.Context, url string, ttl time.Duration) (*Repository, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRepositoryFromClient(client, ttl), nil
}

// NewRepositoryFromClient wraps an existing client. A zero ttl keeps keys
// forever.
func NewRepositoryFromClient(client *goredis.Client, ttl time.Duration) *Repository {
	return &Repository{client: client, ttl: ttl}
}

func (r *Repository) Get(ctx context.Context, leagueKey string) ([]models.Award, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+leagueKey).Bytes()
	if errors.Is(err, goredis.Nil) {
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

func (r *Repository) Put(ctx context.Context, leagueKey string, awards []models.Award) error {
	data, err := json.Marshal(awards)
	if err != nil {
		return fmt.Errorf("encoding awards for %s: %w", leagueKey, err)
	}
	if err := r.client.SetNX(ctx, keyPrefix+leagueKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing awards for %s: %w", leagueKey, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.client.Close()
}
