package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
	"github.com/omarshaarawi/fantasywrapped/internal/service"
)

// handleWrapped streams one JSON award per line. Headers are held back
// until the first award so that setup failures still get a real status.
func (s *Server) handleWrapped(w http.ResponseWriter, r *http.Request) {
	leagueKey := chi.URLParam(r, "leagueKey")
	runID := uuid.NewString()
	ctx := service.WithRunID(r.Context(), runID)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	started := false

	emit := func(award models.Award) error {
		if !started {
			started = true
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("X-Accel-Buffering", "no")
			w.Header().Set(headerRunID, runID)
			w.WriteHeader(http.StatusOK)
			if flusher != nil {
				flusher.Flush()
			}
			if err := sleep(ctx, s.cfg.PrimeDelay); err != nil {
				return err
			}
		}
		if err := enc.Encode(award); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	_, err := s.wrapped.Stream(ctx, leagueKey, credentials(r), emit)
	switch {
	case err == nil:
		if !started {
			w.Header().Set(headerRunID, runID)
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
		}
	case started, errors.Is(err, context.Canceled):
		slog.Info("Stream ended early", "run", runID, "league", leagueKey, "error", err)
	default:
		w.Header().Set(headerRunID, runID)
		writeError(w, statusFor(err), err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
