package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = pingPeriod + writeWait
)

type watchMessage struct {
	Type    string              `json:"type"`
	Quizzes []model.QuizSummary `json:"quizzes"`
	Message string              `json:"message"`
}

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
}

// checkOrigin accepts same-host origins and the configured allow list.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && u.Host == r.Host {
		return true
	}
	return slices.Contains(h.config.AllowedOrigins, "*") || slices.Contains(h.config.AllowedOrigins, origin)
}

// handleWatchQuizzes streams the caller's quiz list over a websocket,
// sending a fresh snapshot whenever it changes.
func (h *Handler) handleWatchQuizzes(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snaps, err := h.watcher.Watch(ctx, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user", user.ID, "error", err)
		return
	}
	defer conn.Close()
	slog.Debug("quiz list watcher connected", "user", user.ID)

	// Reads only detect the client going away; incoming messages are ignored.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.Debug("quiz list watcher read error", "user", user.ID, "error", err)
				}
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case list, ok := <-snaps:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := watchMessage{Type: "quizzes", Quizzes: list, Message: listMessage(r, len(list))}
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("quiz list watcher write failed", "user", user.ID, "error", err)
				return
			}
			slog.Debug("sent quiz list snapshot", "user", user.ID, "ids", ownerQuizIDs(list))
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
