package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	mdwerror "github.com/msto63/spi/foundation/core/error"
	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/history"
	"github.com/msto63/spi/pkg/core/logging"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`    // "eval", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSEvalPayload represents the eval message payload
type WSEvalPayload struct {
	ID     string `json:"id,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Source string `json:"source"`
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"`    // "result", "error", "pong"
	Payload interface{} `json:"payload"` // Response-specific payload
}

// WSResultPayload carries a successful evaluation
type WSResultPayload struct {
	ID string `json:"id,omitempty"`
	*pascal.Result
}

// WSErrorPayload represents an error payload. Offset is -1 when the error
// has no source position.
type WSErrorPayload struct {
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Offset  int    `json:"offset"`
}

// WSConfig holds per-connection limits
type WSConfig struct {
	IdleTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxInputLength int
}

// WebSocketHandler evaluates sources sent over WebSocket connections
type WebSocketHandler struct {
	engine       pascal.Executor
	journal      history.Recorder
	logger       *logging.Logger
	upgrader     websocket.Upgrader
	idleTimeout  time.Duration
	writeTimeout time.Duration
	readLimit    int64
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(engine pascal.Executor, journal history.Recorder, logger *logging.Logger, cfg WSConfig) *WebSocketHandler {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 120 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	readLimit := int64(-1)
	if cfg.MaxInputLength > 0 {
		// A \uXXXX escape takes six bytes per input byte, plus the envelope
		readLimit = int64(cfg.MaxInputLength)*6 + 4096
	}
	return &WebSocketHandler{
		engine:  engine,
		journal: journal,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local use
			},
		},
		idleTimeout:  cfg.IdleTimeout,
		writeTimeout: cfg.WriteTimeout,
		readLimit:    readLimit,
	}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// handleConnection serves one connection. Messages are evaluated in order,
// so responses arrive in request order.
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	session := uuid.New().String()
	h.logger.Info("WebSocket connection established", "session", session, "remote", conn.RemoteAddr().String())

	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}
	conn.SetReadDeadline(time.Now().Add(h.idleTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.idleTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "session", session, "error", err)
			} else {
				h.logger.Info("WebSocket connection closed", "session", session)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(h.idleTimeout))

		switch msg.Type {
		case "ping":
			h.sendResponse(conn, WSResponse{Type: "pong", Payload: nil})

		case "eval":
			var payload WSEvalPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(conn, "", string(mdwerror.CodeInvalidInput), "Invalid eval payload", -1)
				continue
			}
			h.handleEval(ctx, conn, session, payload)

		default:
			h.sendError(conn, "", string(mdwerror.CodeInvalidInput), "Unknown message type: "+msg.Type, -1)
		}
	}
}

// handleEval evaluates one payload and replies with a result or an error
func (h *WebSocketHandler) handleEval(ctx context.Context, conn *websocket.Conn, session string, payload WSEvalPayload) {
	mode := pascal.ModeProgram
	if payload.Mode != "" {
		parsed, err := pascal.ParseMode(payload.Mode)
		if err != nil {
			h.sendError(conn, payload.ID, string(mdwerror.GetCode(err)), err.Error(), -1)
			return
		}
		mode = parsed
	}

	runID := uuid.New().String()
	ctx = pascal.ContextWithRunID(ctx, runID)
	h.logger.Debug("Evaluating", "session", session, "run_id", runID, "mode", string(mode))

	res, err := h.engine.Execute(ctx, mode, payload.Source)

	if h.journal != nil {
		entry := history.NewEntry(history.SourceWebsocket, mode, payload.Source, res, err)
		entry.ID = runID
		if jerr := h.journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
			h.logger.Warn("Failed to record run", "run_id", runID, "error", jerr)
		}
	}

	if err != nil {
		h.sendError(conn, payload.ID, string(mdwerror.GetCode(err)), err.Error(), pascal.ErrorOffset(err))
		return
	}
	h.sendResponse(conn, WSResponse{
		Type:    "result",
		Payload: WSResultPayload{ID: payload.ID, Result: res},
	})
}

// sendResponse sends a response message via WebSocket
func (h *WebSocketHandler) sendResponse(conn *websocket.Conn, resp WSResponse) {
	conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Error("WebSocket send error", "error", err)
	}
}

// sendError sends an error response via WebSocket
func (h *WebSocketHandler) sendError(conn *websocket.Conn, id, code, message string, offset int) {
	h.sendResponse(conn, WSResponse{
		Type: "error",
		Payload: WSErrorPayload{
			ID:      id,
			Code:    code,
			Message: message,
			Offset:  offset,
		},
	})
}
