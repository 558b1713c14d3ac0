package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

const maxLeaderboardLimit = 100

type WSHandler struct {
	service  *app.QuizService
	sessions app.SessionRepository
	topN     int
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, sessions app.SessionRepository, topN int, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service:  service,
		sessions: sessions,
		topN:     topN,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index  int    `json:"index"`
	Choice string `json:"choice"`
}

type submitScorePayload struct {
	Username string `json:"username"`
}

type leaderboardPayload struct {
	Limit int `json:"limit"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type scoreSubmittedPayload struct {
	Entry domain.LeaderboardEntry `json:"entry"`
}

type connState struct {
	conn        *websocket.Conn
	session     *app.Session
	displayName string
	logger      *zap.Logger
}

// ServeWS upgrades the request and drives one session from the connection's read loop.
// Passing ?session=<id> resumes a session after a reconnect.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session, release, err := h.sessions.Acquire(sessionID)
	if errors.Is(err, app.ErrSessionBusy) {
		http.Error(w, "session already in use", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	defer release()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &connState{
		conn:        conn,
		session:     session,
		displayName: r.URL.Query().Get("name"),
		logger:      h.logger.With(zap.String("session", sessionID)),
	}
	c.logger.Debug("connection opened")

	if err := c.send("state", session.Snapshot()); err != nil {
		return
	}

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("ws read error", zap.Error(err))
			}
			break
		}
		if err := h.handle(ctx, c, data); err != nil {
			c.logger.Warn("ws write error", zap.Error(err))
			break
		}
	}
	c.logger.Debug("connection closed")
}

// handle processes one inbound message. Domain errors are reported to the client and the
// loop continues; only a failed write ends the connection.
func (h *WSHandler) handle(ctx context.Context, c *connState, data []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("message handler panicked", zap.Any("panic", p), zap.Stack("stack"))
			err = c.send("error", errorPayload{Message: "Something went wrong. Please try again.", Code: "internal"})
		}
	}()

	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return c.send("error", errorPayload{Message: "Malformed message.", Code: "bad_request"})
	}

	switch msg.Type {
	case "state":
		return c.send("state", c.session.Snapshot())

	case "start":
		cfg := c.session.Config()
		if len(msg.Payload) > 0 {
			cfg = domain.QuizConfiguration{}
			if err := json.Unmarshal(msg.Payload, &cfg); err != nil {
				return c.send("error", errorPayload{Message: "Invalid quiz settings.", Code: "bad_request"})
			}
		}
		snap, err := h.service.StartSession(ctx, c.session, cfg)
		return c.reply(snap, err)

	case "answer":
		var p answerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return c.send("error", errorPayload{Message: "Invalid answer.", Code: "bad_request"})
		}
		snap, _, err := h.service.SubmitAnswer(c.session, p.Index, p.Choice)
		return c.reply(snap, err)

	case "reset":
		return c.send("state", h.service.ResetSession(c.session))

	case "restart":
		snap, err := h.service.RestartSameConfig(ctx, c.session)
		return c.reply(snap, err)

	case "review":
		snap, err := h.service.ToggleReview(ctx, c.session)
		if err != nil {
			return c.reply(snap, err)
		}
		if snap.ReviewMode {
			items, err := h.service.Review(c.session)
			if err != nil {
				return c.reply(snap, err)
			}
			if err := c.send("review", items); err != nil {
				return err
			}
		}
		return c.send("state", snap)

	case "submitScore":
		var p submitScorePayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				return c.send("error", errorPayload{Message: "Invalid score submission.", Code: "bad_request"})
			}
		}
		if p.Username == "" {
			p.Username = c.displayName
		}
		snap, entry, err := h.service.SubmitScore(ctx, c.session, p.Username)
		if err != nil {
			return c.reply(snap, err)
		}
		if err := c.send("scoreSubmitted", scoreSubmittedPayload{Entry: entry}); err != nil {
			return err
		}
		return c.send("state", snap)

	case "leaderboard":
		var p leaderboardPayload
		if len(msg.Payload) > 0 {
			_ = json.Unmarshal(msg.Payload, &p)
		}
		return c.send("leaderboard", h.service.Leaderboard().TopN(ctx, clampLimit(p.Limit, h.topN)))

	default:
		return c.send("error", errorPayload{Message: fmt.Sprintf("Unsupported message type %q.", msg.Type), Code: "unsupported"})
	}
}

// reply sends an error followed by the unchanged state, or just the new state.
func (c *connState) reply(snap domain.SessionSnapshot, err error) error {
	if err != nil {
		c.logger.Debug("transition rejected", zap.Error(err))
		if werr := c.send("error", toErrorPayload(err)); werr != nil {
			return werr
		}
	}
	return c.send("state", snap)
}

func (c *connState) send(typ string, payload any) error {
	data, err := json.Marshal(outboundMessage{Type: typ, Payload: payload})
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	return limit
}
