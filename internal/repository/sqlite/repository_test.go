package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(context.Background(), filepath.Join(t.TempDir(), "wrapped.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_Miss(t *testing.T) {
	repo := newTestRepository(t)

	awards, ok, err := repo.Get(context.Background(), "423.l.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, awards)
}

func TestRepository_FirstWriteWins(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := []models.Award{
		{ID: "official_standings", Title: "Standings", Type: models.DisplayList},
		{ID: "alternative_realities", Type: models.DisplayTable, Headers: []string{"A", "B"}},
	}
	require.NoError(t, repo.Put(ctx, "423.l.1", first))
	require.NoError(t, repo.Put(ctx, "423.l.1", []models.Award{{ID: "most_dropped"}}))

	got, ok, err := repo.Get(ctx, "423.l.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, got)
}

func TestRepository_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrapped.db")
	ctx := context.Background()

	repo, err := NewRepository(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.Put(ctx, "423.l.1", []models.Award{{ID: "most_hits"}}))
	require.NoError(t, repo.Close())

	repo, err = NewRepository(ctx, path)
	require.NoError(t, err)
	defer repo.Close()

	got, ok, err := repo.Get(ctx, "423.l.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "most_hits", got[0].ID)
}

func TestRepository_ConcurrentPuts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Put(ctx, "423.l.1", []models.Award{{ID: "run", Title: string(rune('a' + i))}}))
		}()
	}
	wg.Wait()

	got, ok, err := repo.Get(ctx, "423.l.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 1)
}
