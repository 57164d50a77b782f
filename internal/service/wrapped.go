package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/omarshaarawi/fantasywrapped/internal/api/yahoo"
	"github.com/omarshaarawi/fantasywrapped/internal/awards"
	"github.com/omarshaarawi/fantasywrapped/internal/models"
	"github.com/omarshaarawi/fantasywrapped/internal/observability"
)

// Opener loads a league for one run.
type Opener interface {
	Open(ctx context.Context, leagueKey string, creds models.Credentials) (awards.Source, error)
}

// Store is the per-league award cache. Put is write-once: a second Put for
// the same league keeps the first value.
type Store interface {
	Get(ctx context.Context, leagueKey string) ([]models.Award, bool, error)
	Put(ctx context.Context, leagueKey string, awards []models.Award) error
}

// Planner lists the computations a run fans out.
type Planner interface {
	Computations() []awards.Computation
}

// EmitFunc receives each award as soon as it is ready. A non-nil error
// stops the run.
type EmitFunc func(models.Award) error

type Config struct {
	// MetricTimeout bounds a single computation. Zero means no limit.
	MetricTimeout time.Duration
	// ReplayDelay spaces out awards replayed from the cache.
	ReplayDelay time.Duration
}

// Run summarizes one Stream call.
type Run struct {
	ID        string
	LeagueKey string
	Cached    bool
	Awards    int
	Failed    int
	Requests  int64
	Persisted bool
}

type WrappedService struct {
	opener  Opener
	store   Store
	planner Planner
	metrics *observability.Metrics
	cfg     Config
}

func NewWrappedService(opener Opener, store Store, planner Planner, metrics *observability.Metrics, cfg Config) *WrappedService {
	return &WrappedService{opener: opener, store: store, planner: planner, metrics: metrics, cfg: cfg}
}

type runIDKey struct{}

// WithRunID makes the next Stream on ctx use id instead of a fresh one.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func runID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

type outcome struct {
	computation awards.Computation
	results     []models.Result
	err         error
	requests    int64
	elapsed     time.Duration
}

// Stream emits every award for leagueKey. A cached league is replayed
// without touching upstream; otherwise all computations run concurrently
// and awards are emitted in completion order. An error is returned only
// when nothing could be emitted, or when emit or ctx stopped the run.
func (s *WrappedService) Stream(ctx context.Context, leagueKey string, creds models.Credentials, emit EmitFunc) (Run, error) {
	run := Run{ID: runID(ctx), LeagueKey: leagueKey}
	done := s.metrics.StreamStarted()
	source, status := "live", "ok"
	defer func() { done(source, status) }()

	cached, ok, err := s.store.Get(ctx, leagueKey)
	switch {
	case err != nil:
		s.metrics.CacheLookup("error")
		slog.Error("Error reading award cache", "run", run.ID, "league", leagueKey, "error", err)
	case ok:
		s.metrics.CacheLookup("hit")
		source, run.Cached = "cache", true
		if err := s.replay(ctx, cached, emit, &run); err != nil {
			status = "canceled"
			return run, err
		}
		slog.Info("Replayed cached awards", "run", run.ID, "league", leagueKey, "awards", run.Awards)
		return run, nil
	default:
		s.metrics.CacheLookup("miss")
	}

	if creds.Empty() {
		status = "error"
		return run, fmt.Errorf("league %s is not cached: %w", leagueKey, yahoo.ErrAuth)
	}

	start := time.Now()
	openCtx, openCounter := yahoo.WithRequestCounter(ctx)
	src, err := s.opener.Open(openCtx, leagueKey, creds)
	run.Requests += openCounter.Count()
	if err != nil {
		status = "error"
		return run, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	computations := s.planner.Computations()
	results := make(chan outcome)
	for _, c := range computations {
		go func() {
			o := s.compute(ctx, c, src)
			select {
			case results <- o:
			case <-ctx.Done():
			}
		}()
	}

	var emitted []models.Award
	for range computations {
		var o outcome
		select {
		case o = <-results:
		case <-ctx.Done():
		}
		if err := ctx.Err(); err != nil {
			status = "canceled"
			return run, err
		}
		run.Requests += o.requests
		for _, award := range s.describe(o) {
			if err := emit(award); err != nil {
				status = "canceled"
				return run, fmt.Errorf("emitting %s: %w", award.ID, err)
			}
			emitted = append(emitted, award)
			run.Awards++
			if award.Failed() {
				run.Failed++
			}
		}
	}

	if err := ctx.Err(); err != nil {
		status = "canceled"
		return run, err
	}
	if run.Failed > 0 {
		status = "partial"
		slog.Info("Skipping award cache write", "run", run.ID, "league", leagueKey, "failed", run.Failed)
	} else {
		err := s.store.Put(ctx, leagueKey, emitted)
		s.metrics.CacheWrite(err)
		if err != nil {
			slog.Error("Error writing award cache", "run", run.ID, "league", leagueKey, "error", err)
		} else {
			run.Persisted = true
		}
	}

	slog.Info("Computed awards",
		"run", run.ID,
		"league", leagueKey,
		"awards", run.Awards,
		"failed", run.Failed,
		"requests", run.Requests,
		"duration", time.Since(start),
	)
	return run, nil
}

// Collect runs Stream and returns the awards in emission order.
func (s *WrappedService) Collect(ctx context.Context, leagueKey string, creds models.Credentials) ([]models.Award, Run, error) {
	var out []models.Award
	run, err := s.Stream(ctx, leagueKey, creds, func(a models.Award) error {
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, run, err
	}
	return out, run, nil
}

func (s *WrappedService) compute(ctx context.Context, c awards.Computation, src awards.Source) (o outcome) {
	o.computation = c
	if s.cfg.MetricTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.MetricTimeout)
		defer cancel()
	}
	ctx, counter := yahoo.WithRequestCounter(ctx)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.err = fmt.Errorf("computing %s: panic: %v", c.Name, r)
		}
		o.requests = counter.Count()
		o.elapsed = time.Since(start)
	}()

	o.results, o.err = c.Run(ctx, src)
	if o.err == nil && len(o.results) != len(c.IDs) {
		o.err = fmt.Errorf("computing %s: got %d results, want %d", c.Name, len(o.results), len(c.IDs))
	}
	return o
}

func (s *WrappedService) describe(o outcome) []models.Award {
	name := o.computation.Name
	if o.err != nil {
		result := "error"
		if errors.Is(o.err, context.Canceled) {
			result = "canceled"
		}
		s.metrics.MetricCompleted(name, result, o.elapsed)
		slog.Error("Error computing award", "metric", name, "requests", o.requests, "duration", o.elapsed, "error", o.err)

		out := make([]models.Award, 0, len(o.computation.IDs))
		for _, id := range o.computation.IDs {
			out = append(out, awards.Failed(id, o.err))
		}
		return out
	}

	s.metrics.MetricCompleted(name, "ok", o.elapsed)
	slog.Info("Computed award", "metric", name, "requests", o.requests, "duration", o.elapsed)

	out := make([]models.Award, 0, len(o.results))
	for _, r := range o.results {
		out = append(out, awards.Describe(r))
	}
	return out
}

func (s *WrappedService) replay(ctx context.Context, cached []models.Award, emit EmitFunc, run *Run) error {
	for i, award := range cached {
		if i > 0 && s.cfg.ReplayDelay > 0 {
			select {
			case <-time.After(s.cfg.ReplayDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := emit(award); err != nil {
			return fmt.Errorf("replaying %s: %w", award.ID, err)
		}
		run.Awards++
	}
	return nil
}
