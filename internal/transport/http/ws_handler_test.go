package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"livepoll-service/internal/app"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	coord := app.NewCoordinator(zerolog.Nop(), nil)
	handler := NewWSHandler(coord, zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server, "ws" + server.URL[len("http"):] + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readUntil reads messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read while waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			var payload map[string]any
			if len(msg.Payload) > 0 {
				if err := json.Unmarshal(msg.Payload, &payload); err != nil {
					t.Fatalf("decode %s payload: %v", want, err)
				}
			}
			return payload
		}
	}
	t.Fatalf("never received %s", want)
	return nil
}

func TestWebSocketPollFlow(t *testing.T) {
	_, url := newTestServer(t)

	teacher := dial(t, url)
	send(t, teacher, "register-teacher", nil)
	readUntil(t, teacher, "joined")

	student := dial(t, url)
	send(t, student, "register-student", map[string]any{"name": "Alice"})
	readUntil(t, student, "joined")

	send(t, teacher, "create-question", map[string]any{
		"text":               "2+2?",
		"options":            []string{"3", "4", "5"},
		"correctOptionIndex": 1,
		"timerSeconds":       30,
	})
	q := readUntil(t, student, "new-question")
	questionID, _ := q["id"].(string)
	if questionID == "" {
		t.Fatalf("expected question id, got %+v", q)
	}

	send(t, student, "submit-response", map[string]any{
		"questionId":          questionID,
		"selectedOptionIndex": 1,
	})
	readUntil(t, student, "answer-submitted")
	results := readUntil(t, student, "real-time-results")
	if got := results["totalResponses"].(float64); got != 1 {
		t.Fatalf("expected 1 response, got %v", got)
	}

	// Duplicate submissions are rejected, not overwritten.
	send(t, student, "submit-response", map[string]any{
		"questionId":          questionID,
		"selectedOptionIndex": 0,
	})
	errPayload := readUntil(t, student, "error")
	if errPayload["code"] != "already-answered" {
		t.Fatalf("expected already-answered, got %+v", errPayload)
	}

	send(t, teacher, "end-question", map[string]any{"questionId": questionID})
	final := readUntil(t, teacher, "poll-results")
	if got := final["totalResponses"].(float64); got != 1 {
		t.Fatalf("expected 1 final response, got %v", got)
	}
}

func TestWebSocketRejectsMalformedPayloads(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)

	send(t, conn, "bogus-type", nil)
	errPayload := readUntil(t, conn, "error")
	if errPayload["code"] != "invalid-payload" {
		t.Fatalf("expected invalid-payload, got %+v", errPayload)
	}

	// A one-option question fails validation before reaching the coordinator.
	send(t, conn, "create-question", map[string]any{
		"text":               "?",
		"options":            []string{"only"},
		"correctOptionIndex": 0,
		"timerSeconds":       30,
	})
	errPayload = readUntil(t, conn, "error")
	if errPayload["code"] != "invalid-payload" {
		t.Fatalf("expected invalid-payload for short options, got %+v", errPayload)
	}
}

func TestWebSocketHeartbeat(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)

	send(t, conn, "heartbeat", nil)
	readUntil(t, conn, "heartbeat-ack")
}

func TestWebSocketNameCollisionKeepsConnectionOpen(t *testing.T) {
	_, url := newTestServer(t)

	first := dial(t, url)
	send(t, first, "register-student", map[string]any{"name": "Alice"})
	readUntil(t, first, "joined")

	second := dial(t, url)
	send(t, second, "register-student", map[string]any{"name": "Alice"})
	errPayload := readUntil(t, second, "error")
	if errPayload["code"] != "name-taken" {
		t.Fatalf("expected name-taken, got %+v", errPayload)
	}

	// Retrying with a fresh name on the same connection works.
	send(t, second, "register-student", map[string]any{"name": "Bob"})
	readUntil(t, second, "joined")
}
