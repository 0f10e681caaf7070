package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"planetwars-server/internal/game"
	"planetwars-server/internal/match"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type StandingFeed interface {
	Subscribe() (<-chan match.Standing, func())
}

// LiveHandler streams one standing per turn over a websocket and closes
// the socket once the match is terminated.
type LiveHandler struct {
	feed     StandingFeed
	upgrader websocket.Upgrader
}

// NewLiveHandler accepts upgrades from origin, or from clients that send
// no Origin header at all.
func NewLiveHandler(feed StandingFeed, origin string) *LiveHandler {
	return &LiveHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return o == "" || o == origin
			},
		},
	}
}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "match_live", "remote_addr", r.RemoteAddr)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	logger.Debug("Live viewer connected")

	done := make(chan struct{})
	go readPump(conn, done, logger)
	writePump(conn, updates, done, logger)

	logger.Debug("Live viewer disconnected")
}

// readPump discards anything the viewer sends and keeps the read deadline
// moving on pongs. done is closed when the connection goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}, logger *slog.Logger) {
	defer close(done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Live viewer read failed", "error", err)
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, updates <-chan match.Standing, done <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return

		case standing := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(standing); err != nil {
				logger.Debug("Live viewer write failed", "error", err)
				return
			}
			if standing.State == game.StateTerminated {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match finished")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
