package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
	"github.com/omarshaarawi/fantasywrapped/internal/service"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS configuration.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// handleWebSocket sends one JSON message per award, then closes normally.
// Credentials come from the same headers as the NDJSON endpoint.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	leagueKey := chi.URLParam(r, "leagueKey")
	creds := credentials(r)
	runID := uuid.NewString()

	conn, err := upgrader.Upgrade(w, r, http.Header{headerRunID: []string{runID}})
	if err != nil {
		slog.Error("WebSocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(service.WithRunID(r.Context(), runID))
	defer cancel()

	// The client never sends anything; a read error means it went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	_, err = s.wrapped.Stream(ctx, leagueKey, creds, func(award models.Award) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(award)
	})

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("WebSocket stream failed", "run", runID, "league", leagueKey, "error", err)
		conn.WriteJSON(wsError{Error: err.Error(), Status: statusFor(err)})
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "stream failed"))
		return
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
