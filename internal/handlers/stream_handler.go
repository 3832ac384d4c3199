package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/alexnjoya/mindlink/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// TickInterval is how often a stream advances the session clock
	TickInterval = time.Second
)

// StreamMessageType names a frame sent over a session stream
type StreamMessageType string

const (
	StreamState StreamMessageType = "state"
	StreamEnded StreamMessageType = "ended"
	StreamError StreamMessageType = "error"
)

// StreamMessage is one frame of a session stream
type StreamMessage struct {
	Type    StreamMessageType    `json:"type"`
	Payload *service.EventResult `json:"payload,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// StreamHandler drives a session's clock from the server and pushes every
// tick to the client over a websocket
type StreamHandler struct {
	games    *service.GameService
	logger   *zap.Logger
	upgrader websocket.Upgrader
	interval time.Duration
}

// NewStreamHandler creates a new stream handler. Origins outside
// allowedOrigins are refused; an empty list accepts any origin.
func NewStreamHandler(games *service.GameService, logger *zap.Logger, allowedOrigins []string) *StreamHandler {
	h := &StreamHandler{games: games, logger: logger, interval: TickInterval}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if len(allowedOrigins) == 0 || origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Stream upgrades the request and ticks the session until it ends or the
// client goes away
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	player, _ := GetPlayerFromContext(r.Context())
	id := r.PathValue("id")

	// Fail before the upgrade so the client gets a proper status code
	first, err := h.games.Get(r.Context(), player, id)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to open session stream", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.String("session_id", id), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.readPump(conn, cancel)

	if err := h.write(conn, StreamMessage{Type: StreamState, Payload: first}); err != nil {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	lastPing := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := h.games.Tick(ctx, player, id)
			if err != nil {
				h.closeWithError(conn, id, err)
				return
			}
			if result.Result != nil {
				h.write(conn, StreamMessage{Type: StreamEnded, Payload: result})
				h.close(conn, websocket.CloseNormalClosure, "session ended")
				return
			}
			if err := h.write(conn, StreamMessage{Type: StreamState, Payload: result}); err != nil {
				return
			}

			if time.Since(lastPing) >= pingPeriod {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
				lastPing = time.Now()
			}
		}
	}
}

// readPump only watches for the client closing. Inbound frames are ignored;
// game events go through the regular endpoints.
func (h *StreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, msg StreamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (h *StreamHandler) close(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}

func (h *StreamHandler) closeWithError(conn *websocket.Conn, id string, err error) {
	msg := ErrInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		msg = ErrSessionNotFound
	case errors.Is(err, service.ErrForbidden):
		msg = ErrForbidden
	default:
		h.logger.Error("session stream failed", zap.String("session_id", id), zap.Error(err))
	}
	h.write(conn, StreamMessage{Type: StreamError, Error: msg})
	h.close(conn, websocket.CloseInternalServerErr, msg)
}
