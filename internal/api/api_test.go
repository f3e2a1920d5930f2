package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivvyas2/NYUHacks/internal/agent"
	"github.com/shivvyas2/NYUHacks/internal/api"
	"github.com/shivvyas2/NYUHacks/internal/bank"
	"github.com/shivvyas2/NYUHacks/internal/event"
	"github.com/shivvyas2/NYUHacks/internal/leaderboard"
	"github.com/shivvyas2/NYUHacks/internal/session"
)

func TestAPI_GameFlow(t *testing.T) {
	e, _ := makeAPI(t)

	// Create a session.
	var created struct {
		SessionID string `json:"session_id"`
		Score     int    `json:"score"`
		Lives     int    `json:"lives"`
	}
	w := doJSON(e, http.MethodPost, "/api/sessions", map[string]any{
		"player_name": "alice",
		"game_type":   "mario",
	}, &created)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, 0, created.Score)
	assert.Equal(t, 3, created.Lives)

	// Play three wrong answers; the session ends on the third.
	for i := 1; i <= 3; i++ {
		var q struct {
			QuestionID string   `json:"question_id"`
			Options    []string `json:"options"`
			Correct    int      `json:"correct"`
			TimeLimit  int      `json:"time_limit"`
		}
		w = doJSON(e, http.MethodGet, fmt.Sprintf("/api/sessions/%s/question", created.SessionID), nil, &q)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotEmpty(t, q.QuestionID)
		require.Len(t, q.Options, 4)
		assert.Equal(t, 30, q.TimeLimit)

		var answered struct {
			IsCorrect      bool `json:"is_correct"`
			LivesRemaining int  `json:"lives_remaining"`
			SessionActive  bool `json:"session_active"`
			PowerMode      bool `json:"power_mode"`
		}
		w = doJSON(e, http.MethodPost, fmt.Sprintf("/api/sessions/%s/answer", created.SessionID), map[string]any{
			"question_id":     q.QuestionID,
			"selected_answer": (q.Correct + 1) % 4,
			"time_taken":      5,
		}, &answered)
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, answered.IsCorrect)
		assert.False(t, answered.PowerMode)
		assert.Equal(t, 3-i, answered.LivesRemaining)
		assert.Equal(t, i != 3, answered.SessionActive)
	}

	// The finished session is on the leaderboard.
	var board struct {
		Leaderboard []struct {
			PlayerName string  `json:"player_name"`
			Score      int     `json:"score"`
			Accuracy   float64 `json:"accuracy"`
		} `json:"leaderboard"`
		TotalEntries int `json:"total_entries"`
	}
	w = doJSON(e, http.MethodGet, "/api/leaderboard?game_type=mario", nil, &board)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, board.Leaderboard, 1)
	assert.Equal(t, 1, board.TotalEntries)
	assert.Equal(t, "alice", board.Leaderboard[0].PlayerName)
	assert.Equal(t, 0.0, board.Leaderboard[0].Accuracy)

	// Stats survive termination.
	var stats struct {
		Accuracy               float64  `json:"accuracy"`
		SessionDurationSeconds *float64 `json:"session_duration_seconds"`
		IsActive               bool     `json:"is_active"`
	}
	w = doJSON(e, http.MethodGet, fmt.Sprintf("/api/sessions/%s/stats", created.SessionID), nil, &stats)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, stats.IsActive)
	assert.NotNil(t, stats.SessionDurationSeconds)

	// Further answers against the ended session are rejected.
	w = doJSON(e, http.MethodPost, fmt.Sprintf("/api/sessions/%s/answer", created.SessionID), map[string]any{
		"question_id": "any", "selected_answer": 0, "time_taken": 1,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Errors(t *testing.T) {
	e, _ := makeAPI(t)

	tests := map[string]struct {
		method   string
		path     string
		body     map[string]any
		wantCode int
	}{
		"unknown session question":            {http.MethodGet, "/api/sessions/nope/question", nil, http.StatusNotFound},
		"unknown session stats":               {http.MethodGet, "/api/sessions/nope/stats", nil, http.StatusNotFound},
		"unknown session end":                 {http.MethodPost, "/api/sessions/nope/end", nil, http.StatusNotFound},
		"invalid game type on create":         {http.MethodPost, "/api/sessions", map[string]any{"player_name": "a", "game_type": "tetris"}, http.StatusBadRequest},
		"missing player name on create":       {http.MethodPost, "/api/sessions", map[string]any{"game_type": "mario"}, http.StatusBadRequest},
		"invalid game type on leaderboard":    {http.MethodGet, "/api/leaderboard?game_type=tetris", nil, http.StatusBadRequest},
		"non-integer limit on leaderboard":    {http.MethodGet, "/api/leaderboard?limit=ten", nil, http.StatusBadRequest},
		"invalid topic on questions":          {http.MethodGet, "/api/questions?topic=science", nil, http.StatusBadRequest},
		"invalid difficulty on questions":     {http.MethodGet, "/api/questions?difficulty=insane", nil, http.StatusBadRequest},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			var detail struct {
				Detail string `json:"detail"`
			}
			w := doJSON(e, tt.method, tt.path, tt.body, &detail)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.NotEmpty(t, detail.Detail)
		})
	}
}

func TestAPI_EndSession_Idempotent(t *testing.T) {
	e, _ := makeAPI(t)

	var created struct {
		SessionID string `json:"session_id"`
	}
	doJSON(e, http.MethodPost, "/api/sessions", map[string]any{
		"player_name": "bob", "game_type": "pac-man",
	}, &created)

	for i := 0; i < 2; i++ {
		var ended struct {
			Message    string `json:"message"`
			FinalScore int    `json:"final_score"`
		}
		w := doJSON(e, http.MethodPost, fmt.Sprintf("/api/sessions/%s/end", created.SessionID), nil, &ended)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Session ended", ended.Message)
	}

	var board struct {
		TotalEntries int `json:"total_entries"`
	}
	doJSON(e, http.MethodGet, "/api/leaderboard", nil, &board)
	assert.Equal(t, 1, board.TotalEntries)
}

func TestAPI_GetQuestions(t *testing.T) {
	t.Run("static questions respect topic, difficulty and limit", func(t *testing.T) {
		e, _ := makeAPI(t)

		var resp struct {
			Questions []struct {
				Category  string `json:"category"`
				Points    int    `json:"points"`
				TimeLimit int    `json:"time_limit"`
			} `json:"questions"`
			Total int `json:"total"`
		}
		w := doJSON(e, http.MethodGet, "/api/questions?topic=math&difficulty=easy&limit=3", nil, &resp)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, resp.Questions, 3)
		assert.Equal(t, 3, resp.Total)
		for _, q := range resp.Questions {
			assert.Equal(t, "math", q.Category)
			assert.Equal(t, 10, q.Points)
		}
	})

	t.Run("agent failure falls back to static questions", func(t *testing.T) {
		e, _ := makeAPIWithAgent(t, &failingCompleter{})

		var resp struct {
			Total int `json:"total"`
		}
		w := doJSON(e, http.MethodGet, "/api/questions?use_agent=true&limit=2", nil, &resp)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("agent output is served when generation succeeds", func(t *testing.T) {
		e, _ := makeAPIWithAgent(t, staticCompleter(`[
  {"question": "Generated?", "options": ["a","b","c","d"], "correct_answer": 0, "topic": "math", "explanation": "x"}
]`))

		var resp struct {
			Questions []struct {
				Question string `json:"question"`
			} `json:"questions"`
		}
		w := doJSON(e, http.MethodGet, "/api/questions?use_agent=true", nil, &resp)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, resp.Questions, 1)
		assert.Equal(t, "Generated?", resp.Questions[0].Question)
	})
}

func TestAPI_PublishLeaderboardUpdated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{rs.Addr()}})
	t.Cleanup(func() { rc.Close() })

	eb := event.NewBus()
	e := makeEngine(t, api.Config{
		EventBus:     eb,
		Redis:        rc,
		PubsubPrefix: "test",
	})

	sub := rc.Subscribe(ctx, "test:game:mario")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx) // wait for the subscription to be live
	require.NoError(t, err)

	var created struct {
		SessionID string `json:"session_id"`
	}
	doJSON(e, http.MethodPost, "/api/sessions", map[string]any{
		"player_name": "alice", "game_type": "mario",
	}, &created)
	w := doJSON(e, http.MethodPost, fmt.Sprintf("/api/sessions/%s/end", created.SessionID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var n struct {
		Event string `json:"event"`
		Data  struct {
			GameType string `json:"game_type"`
			Entries  []struct {
				PlayerName string `json:"player_name"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
	assert.Equal(t, "leaderboard.updated", n.Event)
	assert.Equal(t, "mario", n.Data.GameType)
	require.Len(t, n.Data.Entries, 1)
	assert.Equal(t, "alice", n.Data.Entries[0].PlayerName)

	eb.Stop()
}

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, string) (string, error) {
	return "", fmt.Errorf("model unavailable")
}

type staticCompleter string

func (s staticCompleter) Complete(context.Context, string) (string, error) {
	return string(s), nil
}

func makeAPI(t *testing.T) (*gin.Engine, *event.Bus) {
	t.Helper()

	eb := event.NewBus()
	return makeEngine(t, api.Config{EventBus: eb}), eb
}

func makeAPIWithAgent(t *testing.T, completer agent.Completer) (*gin.Engine, *event.Bus) {
	t.Helper()

	eb := event.NewBus()
	return makeEngine(t, api.Config{
		EventBus: eb,
		Agent:    agent.NewService(agent.Config{Completer: completer}),
	}), eb
}

// makeEngine wires real services behind the API so tests exercise the full
// request path. The supplied config only needs the API-specific knobs.
func makeEngine(t *testing.T, c api.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lb := leaderboard.NewService(leaderboard.Config{EventBus: c.EventBus})
	qss := session.NewService(session.Config{
		Bank:        bank.Default(),
		Leaderboard: lb,
		EventBus:    c.EventBus,
	})

	e := gin.New()
	c.Engine = e
	c.Session = qss
	c.Leaderboard = lb
	c.Bank = bank.Default()
	api.New(c)

	return e
}

func doJSON(e *gin.Engine, method, path string, body map[string]any, out any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	if out != nil && w.Code < 500 {
		_ = json.Unmarshal(w.Body.Bytes(), out)
	}
	return w
}
