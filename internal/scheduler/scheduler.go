package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
	"github.com/omarshaarawi/fantasywrapped/internal/service"
)

type Collector interface {
	Collect(ctx context.Context, leagueKey string, creds models.Credentials) ([]models.Award, service.Run, error)
}

type Config struct {
	Cron     string
	Leagues  []string
	Creds    models.Credentials
	Location *time.Location
}

// Scheduler precomputes awards for configured leagues so that later
// requests replay from the cache.
type Scheduler struct {
	s           gocron.Scheduler
	wrapped     Collector
	cfg         Config
	sendMessage func(string) error
}

// NewScheduler builds the scheduler. sendMessage may be nil.
func NewScheduler(wrapped Collector, cfg Config, sendMessage func(string) error) (*Scheduler, error) {
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		wrapped:     wrapped,
		cfg:         cfg,
		sendMessage: sendMessage,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.s.NewJob(
		gocron.CronJob(s.cfg.Cron, false),
		gocron.NewTask(s.Warm, ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create warm job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

// Warm computes every configured league in turn and announces the ones
// that were not already cached.
func (s *Scheduler) Warm(ctx context.Context) {
	for _, league := range s.cfg.Leagues {
		if ctx.Err() != nil {
			return
		}
		list, run, err := s.wrapped.Collect(ctx, league, s.cfg.Creds)
		if err != nil {
			slog.Error("Failed to warm league", "league", league, "error", err)
			continue
		}
		slog.Info("Warmed league", "league", league, "run", run.ID, "cached", run.Cached, "persisted", run.Persisted)

		if run.Cached || s.sendMessage == nil {
			continue
		}
		if err := s.sendMessage(service.FormatSummary(league, list)); err != nil {
			slog.Error("Failed to announce league", "league", league, "error", err)
		}
	}
}
