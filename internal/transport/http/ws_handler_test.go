package http

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	conn := dialTestServer(t, "/ws?userId=u1")

	send(t, conn, "start", map[string]any{"topicId": "t1", "questionCount": 2})
	var session domain.QuizSession
	readNext(t, conn, "session", &session)
	if session.QuestionCount != 2 || len(session.Questions) != 2 {
		t.Fatalf("unexpected session %+v", session)
	}

	answers := make([]map[string]any, 0, len(session.Questions))
	for _, q := range session.Questions {
		answers = append(answers, map[string]any{"questionId": q.ID, "selectedOptionId": "o2"})
	}
	send(t, conn, "submit", map[string]any{"topicId": "t1", "answers": answers, "timeSpent": 40})
	var result submitResult
	readNext(t, conn, "result", &result)
	if result.Result.Score != 2 || result.Result.Percentage != 100 {
		t.Fatalf("unexpected result %+v", result.Result)
	}
	types := make(map[string]bool)
	for _, a := range result.Achievements {
		types[a.Type] = true
	}
	if !types[app.AchievementFirstQuiz] || !types["perfect_score_t1"] {
		t.Fatalf("expected first quiz and perfect score, got %+v", result.Achievements)
	}

	send(t, conn, "leaderboard", map[string]any{"window": "weekly"})
	var board leaderboardPayload
	readNext(t, conn, "leaderboard", &board)
	if board.Window != domain.WindowWeekly || len(board.Entries) != 1 || board.Entries[0].DisplayName != "Asha" {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
}

func TestWebSocketErrors(t *testing.T) {
	conn := dialTestServer(t, "/ws?userId=u1")

	cases := []struct {
		typ     string
		payload any
		code    string
	}{
		{typ: "start", payload: map[string]any{"topicId": "missing"}, code: "not_found"},
		{typ: "start", payload: map[string]any{"topicId": "t1", "questionCount": "some"}, code: "invalid_input"},
		{typ: "submit", payload: map[string]any{"topicId": "t1", "answers": []any{}}, code: "invalid_input"},
		{typ: "leaderboard", payload: map[string]any{"window": "yearly"}, code: "invalid_input"},
		{typ: "dance", payload: nil, code: "invalid_input"},
	}
	for _, tc := range cases {
		send(t, conn, tc.typ, tc.payload)
		var payload errorPayload
		readNext(t, conn, "error", &payload)
		if payload.Code != tc.code {
			t.Fatalf("%s: expected code %s, got %+v", tc.typ, tc.code, payload)
		}
	}
}

func TestWebSocketRequiresUser(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	store.AddSubject(domain.Subject{ID: "s1", Name: "Math"})
	store.AddTopic(domain.Topic{ID: "t1", Name: "Arithmetic", SubjectID: "s1"})
	store.AddUser("u1", domain.UserDisplay{Name: "Asha"})
	for i := 1; i <= 3; i++ {
		store.AddQuestion(domain.Question{
			ID:      fmt.Sprintf("q%d", i),
			TopicID: "t1",
			Text:    fmt.Sprintf("What is %d + 1?", i),
			Options: []domain.Option{
				{ID: "o1", Text: "0"},
				{ID: "o2", Text: fmt.Sprint(i + 1)},
			},
			CorrectOptionID: "o2",
		})
	}

	service := app.NewQuizService(store, app.Options{
		AnswerKeys: memory.NewAnswerKeyCache(store, time.Minute),
		Rand:       rand.New(rand.NewSource(1)),
	})
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service, nil).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dialTestServer(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	server := newTestServer(t)
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn, expect string, into any) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%s)", expect, msg.Type, msg.Payload)
	}
	if err := json.Unmarshal(msg.Payload, into); err != nil {
		t.Fatalf("decode %s payload: %v", expect, err)
	}
}
