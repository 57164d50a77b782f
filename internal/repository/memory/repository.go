package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

// Repository is an in-process award cache. The first write for a league wins.
type Repository struct {
	awards map[string][]models.Award
	mu     sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{awards: make(map[string][]models.Award)}
}

func (r *Repository) Put(_ context.Context, leagueKey string, awards []models.Award) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.awards[leagueKey]; ok {
		return nil
	}
	r.awards[leagueKey] = slices.Clone(awards)
	return nil
}

func (r *Repository) Get(_ context.Context, leagueKey string) ([]models.Award, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	awards, ok := r.awards[leagueKey]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(awards), true, nil
}

func (r *Repository) Close() error {
	return nil
}
