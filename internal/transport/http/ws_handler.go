package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
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

type startPayload struct {
	TopicID       string                `json:"topicId"`
	QuestionCount *domain.QuestionCount `json:"questionCount"`
	ExtraTopicIDs []string              `json:"extraTopicIds"`
	Duration      int                   `json:"duration"`
}

type leaderboardRequest struct {
	Window  string `json:"window"`
	Subject string `json:"subject"`
}

type submitResult struct {
	Result       domain.Result        `json:"result"`
	Achievements []domain.Achievement `json:"achievements"`
}

type leaderboardPayload struct {
	Window  domain.LeaderboardWindow  `json:"window"`
	Subject string                    `json:"subject,omitempty"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and serves the quiz-taking protocol:
// start -> session, submit -> result, leaderboard -> leaderboard.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("user_id", userID))
	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				// drain so the reader never blocks on a dead connection
				for range send {
				}
				return
			}
		}
	}()

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage(domain.ErrInvalidInput, "invalid start payload")
				continue
			}
			count := domain.QuestionCount{All: true}
			if payload.QuestionCount != nil {
				count = *payload.QuestionCount
			}
			session, err := h.service.StartSession(ctx, payload.TopicID, domain.SessionOptions{
				QuestionCount:   count,
				ExtraTopicIDs:   payload.ExtraTopicIDs,
				DurationSeconds: payload.Duration,
			})
			if err != nil {
				send <- h.failure(log, "start", err)
				continue
			}
			send <- outboundMessage{Type: "session", Payload: session}
		case "submit":
			var submission domain.Submission
			if err := json.Unmarshal(inbound.Payload, &submission); err != nil {
				send <- errorMessage(domain.ErrInvalidInput, "invalid submit payload")
				continue
			}
			result, unlocked, err := h.service.SubmitAttempt(ctx, userID, submission)
			if err != nil {
				send <- h.failure(log, "submit", err)
				continue
			}
			send <- outboundMessage{Type: "result", Payload: submitResult{Result: result, Achievements: unlocked}}
		case "leaderboard":
			var payload leaderboardRequest
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- errorMessage(domain.ErrInvalidInput, "invalid leaderboard payload")
					continue
				}
			}
			window, err := domain.ParseLeaderboardWindow(payload.Window)
			if err != nil {
				send <- errorMessage(err, err.Error())
				continue
			}
			entries, err := h.service.Leaderboard(ctx, window, payload.Subject)
			if err != nil {
				send <- h.failure(log, "leaderboard", err)
				continue
			}
			send <- outboundMessage{Type: "leaderboard", Payload: leaderboardPayload{Window: window, Subject: payload.Subject, Entries: entries}}
		default:
			send <- errorMessage(domain.ErrInvalidInput, "unsupported message type")
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) failure(log *zap.Logger, op string, err error) outboundMessage {
	msg := errorMessage(err, err.Error())
	if msg.Payload.(errorPayload).Code == "internal" {
		log.Error("ws request failed", zap.String("op", op), zap.Error(err))
		msg.Payload = errorPayload{Code: "internal", Message: "internal error"}
	}
	return msg
}

func errorMessage(err error, message string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Code: errorCode(err), Message: message}}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrTopicNotFound), errors.Is(err, domain.ErrSubjectNotFound), errors.Is(err, domain.ErrQuizNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
