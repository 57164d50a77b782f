package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/omarshaarawi/fantasywrapped/internal/api/yahoo"
	"github.com/omarshaarawi/fantasywrapped/internal/models"
	"github.com/omarshaarawi/fantasywrapped/internal/observability"
	"github.com/omarshaarawi/fantasywrapped/internal/service"
)

const (
	headerRefreshToken = "X-Refresh-Token"
	headerRunID        = "X-Run-ID"
)

// Wrapped is the award coordinator as seen by the transport layer.
type Wrapped interface {
	Stream(ctx context.Context, leagueKey string, creds models.Credentials, emit service.EmitFunc) (service.Run, error)
	Collect(ctx context.Context, leagueKey string, creds models.Credentials) ([]models.Award, service.Run, error)
}

type Config struct {
	AllowedOrigins []string
	// PrimeDelay is held between the response headers and the first award.
	PrimeDelay time.Duration
	// ToolCreds authenticates MCP tool calls, which carry no caller token.
	ToolCreds models.Credentials
	Gatherer  prometheus.Gatherer
	Version   string
}

type Server struct {
	wrapped Wrapped
	cfg     Config
}

func New(wrapped Wrapped, cfg Config) *Server {
	return &Server{wrapped: wrapped, cfg: cfg}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", headerRefreshToken, "Mcp-Session-Id"},
		ExposedHeaders: []string{headerRunID},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", observability.Handler(s.cfg.Gatherer))
	}
	r.Get("/wrapped/{leagueKey}", s.handleWrapped)
	r.Get("/ws/wrapped/{leagueKey}", s.handleWebSocket)
	r.Handle("/mcp", s.mcpHandler())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// credentials reads "Authorization: Bearer <access>" and the optional
// refresh token header.
func credentials(r *http.Request) models.Credentials {
	var creds models.Credentials
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			creds.AccessToken = strings.TrimSpace(token)
		}
	}
	creds.RefreshToken = strings.TrimSpace(r.Header.Get(headerRefreshToken))
	return creds
}

// statusFor maps an error returned before anything was streamed.
func statusFor(err error) int {
	var upstream *yahoo.UpstreamError
	var shape *yahoo.DataShapeError
	switch {
	case errors.Is(err, yahoo.ErrAuth):
		return http.StatusUnauthorized
	case errors.As(err, &upstream), errors.As(err, &shape):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
