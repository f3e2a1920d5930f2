// Package history records per-user answer attempts in the hosted Postgres
// backend and aggregates them into per-topic accuracy for the agent.
package history

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shivvyas2/NYUHacks/internal/domain"
	"github.com/shivvyas2/NYUHacks/internal/event"
)

// GuestUserID is the user ID recorded for anonymous players.
const GuestUserID = "00000000-0000-0000-0000-000000000000"

type Config struct {
	DB       *pgxpool.Pool
	EventBus *event.Bus
}

// Service is best-effort: attempts are written off the answer event, and
// failures are logged without ever reaching gameplay.
type Service struct {
	db *pgxpool.Pool
}

func NewService(c Config) *Service {
	s := &Service{db: c.DB}

	if c.EventBus != nil {
		c.EventBus.Subscribe(domain.EventNameAnswerSubmitted, func(ctx context.Context, e event.Event) error {
			return s.recordAnswer(ctx, e.(domain.EventAnswerSubmitted))
		})
	}

	return s
}

func (s *Service) recordAnswer(ctx context.Context, e domain.EventAnswerSubmitted) error {
	userID := e.UserID
	if userID == "" {
		userID = GuestUserID
	}

	err := s.InsertAttempt(ctx, Attempt{
		UserID:     userID,
		SessionID:  e.SessionID,
		Topic:      string(e.Question.Category),
		Difficulty: string(e.Question.Difficulty),
		Correct:    e.Answer.IsCorrect,
		TimeTaken:  e.Answer.TimeTaken,
	})
	if err != nil {
		slog.ErrorContext(ctx, "history: record attempt failed",
			"session_id", e.SessionID,
			"error", err,
		)
	}

	// The attempt log never blocks or fails gameplay.
	return nil
}

type Attempt struct {
	UserID     string
	SessionID  string
	Topic      string
	Difficulty string
	Correct    bool
	TimeTaken  float64
}

func (s *Service) InsertAttempt(ctx context.Context, a Attempt) error {
	const stmt = `
INSERT INTO question_attempts (user_id, session_id, topic, difficulty, correct, time_taken)
VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := s.db.Exec(ctx, stmt, a.UserID, a.SessionID, a.Topic, a.Difficulty, a.Correct, a.TimeTaken)
	return err
}

// TopicStats aggregates a user's attempts per topic, weakest first.
func (s *Service) TopicStats(ctx context.Context, userID string) ([]domain.TopicStat, error) {
	const stmt = `
SELECT topic,
       COUNT(*) AS attempts,
       COUNT(*) FILTER (WHERE correct) AS correct
FROM question_attempts
WHERE user_id = $1
GROUP BY topic
ORDER BY COUNT(*) FILTER (WHERE correct)::float / COUNT(*) ASC;`

	rows, err := s.db.Query(ctx, stmt, userID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.TopicStat, error) {
		var ts domain.TopicStat
		if err := r.Scan(&ts.Topic, &ts.Attempts, &ts.Correct); err != nil {
			return domain.TopicStat{}, err
		}
		if ts.Attempts > 0 {
			ts.Accuracy = decimal.NewFromInt(int64(ts.Correct) * 100).
				Div(decimal.NewFromInt(int64(ts.Attempts))).
				Round(2).
				InexactFloat64()
		}
		return ts, nil
	})
}
