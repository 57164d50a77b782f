package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/fantasywrapped/internal/api/yahoo"
	"github.com/omarshaarawi/fantasywrapped/internal/awards"
	"github.com/omarshaarawi/fantasywrapped/internal/models"
	"github.com/omarshaarawi/fantasywrapped/internal/repository/memory"
)

var creds = models.Credentials{AccessToken: "access", RefreshToken: "refresh"}

type fakeOpener struct {
	err   error
	calls atomic.Int32
}

func (f *fakeOpener) Open(context.Context, string, models.Credentials) (awards.Source, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

type plan []awards.Computation

func (p plan) Computations() []awards.Computation { return p }

func computation(name string, run func(ctx context.Context) error, ids ...string) awards.Computation {
	return awards.Computation{
		Name: name,
		IDs:  ids,
		Run: func(ctx context.Context, _ awards.Source) ([]models.Result, error) {
			if err := run(ctx); err != nil {
				return nil, err
			}
			out := make([]models.Result, 0, len(ids))
			for _, id := range ids {
				out = append(out, models.Result{ID: id, Data: []models.ListItem{{Rank: 1, MainText: id}}})
			}
			return out, nil
		},
	}
}

func instant(context.Context) error { return nil }

func blockUntil(ch <-chan struct{}) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func ids(list []models.Award) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestStream_EmitsInCompletionOrder(t *testing.T) {
	release := make(chan struct{})
	p := plan{
		computation("slow", blockUntil(release), awards.IDStandings),
		computation("fast", instant, awards.IDClosestMatchups, awards.IDBiggestBlowouts),
	}
	store := memory.NewRepository()
	svc := NewWrappedService(&fakeOpener{}, store, p, nil, Config{})

	var got []models.Award
	run, err := svc.Stream(context.Background(), "423.l.1", creds, func(a models.Award) error {
		got = append(got, a)
		if a.ID == awards.IDBiggestBlowouts {
			close(release)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{awards.IDClosestMatchups, awards.IDBiggestBlowouts, awards.IDStandings}, ids(got))
	assert.Equal(t, `"Official" Results`, got[2].Title)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.Awards)
	assert.True(t, run.Persisted)
	assert.False(t, run.Cached)

	cached, ok, err := store.Get(context.Background(), "423.l.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, got, cached)
}

func TestStream_ReplaysCacheWithoutCredentials(t *testing.T) {
	store := memory.NewRepository()
	cached := []models.Award{awards.Failed(awards.IDStandings, errors.New("x")), {ID: awards.IDMostDropped}}
	require.NoError(t, store.Put(context.Background(), "423.l.1", cached))

	opener := &fakeOpener{}
	svc := NewWrappedService(opener, store, plan{computation("never", instant, awards.IDStandings)}, nil, Config{ReplayDelay: time.Millisecond})

	got, run, err := svc.Collect(context.Background(), "423.l.1", models.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	assert.True(t, run.Cached)
	assert.Zero(t, opener.calls.Load())
}

func TestStream_RequiresCredentialsOnMiss(t *testing.T) {
	opener := &fakeOpener{}
	svc := NewWrappedService(opener, memory.NewRepository(), plan{}, nil, Config{})

	_, _, err := svc.Collect(context.Background(), "423.l.1", models.Credentials{})
	require.ErrorIs(t, err, yahoo.ErrAuth)
	assert.Zero(t, opener.calls.Load())
}

func TestStream_OpenFailureEmitsNothing(t *testing.T) {
	openErr := &yahoo.DataShapeError{Path: "/league/423.l.1", Field: "playoff_start_week"}
	svc := NewWrappedService(&fakeOpener{err: openErr}, memory.NewRepository(), plan{computation("a", instant, awards.IDStandings)}, nil, Config{})

	emitted := 0
	_, err := svc.Stream(context.Background(), "423.l.1", creds, func(models.Award) error {
		emitted++
		return nil
	})
	var shapeErr *yahoo.DataShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Zero(t, emitted)
}

func TestStream_FailedMetricEmitsErrorRecordAndSkipsCache(t *testing.T) {
	boom := errors.New("upstream 502")
	p := plan{
		computation("ok", instant, awards.IDStandings),
		computation("broken", func(context.Context) error { return boom }, awards.IDDraftBusts, awards.IDDraftSteals),
	}
	store := memory.NewRepository()
	svc := NewWrappedService(&fakeOpener{}, store, p, nil, Config{})

	got, run, err := svc.Collect(context.Background(), "423.l.1", creds)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2, run.Failed)
	assert.False(t, run.Persisted)

	for _, a := range got {
		if a.ID == awards.IDStandings {
			assert.False(t, a.Failed())
			continue
		}
		assert.True(t, a.Failed())
		assert.Equal(t, "upstream 502", a.Error)
	}

	_, ok, err := store.Get(context.Background(), "423.l.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStream_MetricTimeout(t *testing.T) {
	never := make(chan struct{})
	p := plan{computation("stuck", blockUntil(never), awards.IDWorstDrops)}
	svc := NewWrappedService(&fakeOpener{}, memory.NewRepository(), p, nil, Config{MetricTimeout: 20 * time.Millisecond})

	got, run, err := svc.Collect(context.Background(), "423.l.1", creds)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Failed())
	assert.Contains(t, got[0].Error, context.DeadlineExceeded.Error())
	assert.False(t, run.Persisted)
}

func TestStream_ResultCountMismatchIsAnError(t *testing.T) {
	short := awards.Computation{
		Name: "short",
		IDs:  []string{awards.IDDraftBusts, awards.IDDraftSteals},
		Run: func(context.Context, awards.Source) ([]models.Result, error) {
			return []models.Result{{ID: awards.IDDraftBusts}}, nil
		},
	}
	svc := NewWrappedService(&fakeOpener{}, memory.NewRepository(), plan{short}, nil, Config{})

	got, _, err := svc.Collect(context.Background(), "423.l.1", creds)
	require.NoError(t, err)
	assert.Equal(t, []string{awards.IDDraftBusts, awards.IDDraftSteals}, ids(got))
	assert.True(t, got[0].Failed())
	assert.True(t, got[1].Failed())
}

func TestStream_RecoversPanics(t *testing.T) {
	p := plan{computation("panics", func(context.Context) error { panic("nil map") }, awards.IDMostHits)}
	svc := NewWrappedService(&fakeOpener{}, memory.NewRepository(), p, nil, Config{})

	got, _, err := svc.Collect(context.Background(), "423.l.1", creds)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error, "panic: nil map")
}

func TestStream_ConsumerGoneCancelsRun(t *testing.T) {
	never := make(chan struct{})
	var canceled atomic.Int32
	p := plan{
		computation("fast", instant, awards.IDStandings),
		computation("slow", func(ctx context.Context) error {
			err := blockUntil(never)(ctx)
			canceled.Add(1)
			return err
		}, awards.IDWorstDrops),
	}
	store := memory.NewRepository()
	svc := NewWrappedService(&fakeOpener{}, store, p, nil, Config{})

	gone := errors.New("write: broken pipe")
	_, err := svc.Stream(context.Background(), "423.l.1", creds, func(models.Award) error { return gone })
	require.ErrorIs(t, err, gone)

	assert.Eventually(t, func() bool { return canceled.Load() == 1 }, time.Second, 5*time.Millisecond)
	_, ok, err := store.Get(context.Background(), "423.l.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStream_CancelledContextSkipsPersist(t *testing.T) {
	never := make(chan struct{})
	p := plan{
		computation("fast", instant, awards.IDStandings),
		computation("slow", blockUntil(never), awards.IDWorstDrops),
	}
	store := memory.NewRepository()
	svc := NewWrappedService(&fakeOpener{}, store, p, nil, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.Stream(ctx, "423.l.1", creds, func(models.Award) error {
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	_, ok, err := store.Get(context.Background(), "423.l.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStream_UsesRunIDFromContext(t *testing.T) {
	svc := NewWrappedService(&fakeOpener{}, memory.NewRepository(), plan{computation("a", instant, awards.IDStandings)}, nil, Config{})

	_, run, err := svc.Collect(WithRunID(context.Background(), "run-1"), "423.l.1", creds)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
}
