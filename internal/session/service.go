// Package session owns the game session store and its scoring state machine:
// creation, question issuance, answer evaluation, life and score updates,
// termination, and the leaderboard insert at termination.
package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shivvyas2/NYUHacks/internal/bank"
	"github.com/shivvyas2/NYUHacks/internal/domain"
	"github.com/shivvyas2/NYUHacks/internal/errors"
	"github.com/shivvyas2/NYUHacks/internal/event"
	"github.com/shivvyas2/NYUHacks/internal/leaderboard"
)

const startingLives = 3

type Config struct {
	Bank        *bank.Bank
	Leaderboard *leaderboard.Service
	EventBus    *event.Bus

	// Difficulty selects the difficulty for the next issued question. Nil
	// means the fixed medium policy; kept injectable so score-based selection
	// can land without touching the API.
	Difficulty func(s *domain.GameSession) domain.Difficulty
}

// Service holds all active and ended sessions. Handlers run concurrently, so
// every read-modify-write on a session happens under the store mutex; no I/O
// is performed while it is held.
type Service struct {
	bank       *bank.Bank
	lb         *leaderboard.Service
	eb         *event.Bus
	difficulty func(s *domain.GameSession) domain.Difficulty

	mu       sync.Mutex
	sessions map[string]*domain.GameSession
}

func NewService(c Config) *Service {
	if c.Difficulty == nil {
		c.Difficulty = func(*domain.GameSession) domain.Difficulty { return domain.DifficultyMedium }
	}

	return &Service{
		bank:       c.Bank,
		lb:         c.Leaderboard,
		eb:         c.EventBus,
		difficulty: c.Difficulty,
		sessions:   make(map[string]*domain.GameSession),
	}
}

type CreateSessionRequest struct {
	PlayerName string
	GameType   string
}

// CreateSession starts a new session with score 0, three lives and an empty history.
func (s *Service) CreateSession(_ context.Context, req CreateSessionRequest) (*domain.GameSession, error) {
	if req.PlayerName == "" {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("player_name is required"))
	}
	if !domain.GameType(req.GameType).Valid() {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("unrecognized game type: %q", req.GameType))
	}

	ss := &domain.GameSession{
		SessionID:  uuid.NewString(),
		PlayerName: req.PlayerName,
		GameType:   domain.GameType(req.GameType),
		StartedAt:  time.Now().UTC(),
		Lives:      startingLives,
		IsActive:   true,
	}

	s.mu.Lock()
	s.sessions[ss.SessionID] = ss
	s.mu.Unlock()

	return snapshot(ss), nil
}

type GetSessionRequest struct {
	SessionID string
}

func (s *Service) GetSession(_ context.Context, req GetSessionRequest) (*domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, err := s.lookup(req.SessionID)
	if err != nil {
		return nil, err
	}

	return snapshot(ss), nil
}

type IssueQuestionRequest struct {
	SessionID string
}

// IssueQuestion draws a question at the session's current difficulty,
// excluding bank entries already issued in this session; once all entries of
// that difficulty have been seen, the exclusion is dropped and a repeat may be
// issued. The returned question carries a fresh identifier and is appended to
// the session's history.
func (s *Service) IssueQuestion(_ context.Context, req IssueQuestionRequest) (*domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, err := s.lookup(req.SessionID)
	if err != nil {
		return nil, err
	}
	if !ss.IsActive {
		return nil, errSessionEnded(ss.SessionID)
	}

	issued := make(map[string]struct{}, len(ss.Questions))
	for _, q := range ss.Questions {
		issued[q.Source] = struct{}{}
	}

	q, err := s.bank.Draw(s.difficulty(ss), issued)
	if err != nil {
		return nil, err
	}

	ss.Questions = append(ss.Questions, q)
	ss.QuestionsAsked++

	return &q, nil
}

type SubmitAnswerRequest struct {
	SessionID  string
	QuestionID string
	// SelectedAnswer is the chosen option index.
	SelectedAnswer int
	// TimeTaken is the answer time in seconds.
	TimeTaken float64
	// UserID identifies the authenticated player for the attempt history;
	// empty for anonymous players.
	UserID string
}

type SubmitAnswerResponse struct {
	IsCorrect      bool
	CorrectAnswer  int
	Explanation    string
	PointsEarned   int
	TotalScore     int
	LivesRemaining int
	SessionActive  bool
}

// SubmitAnswer evaluates an answer against a question previously issued in the
// session. Correct answers earn the question's points plus a time bonus of
// floor((time_limit - time_taken)/2), clamped at zero. Wrong answers cost a
// life; at zero lives the session ends and exactly one leaderboard entry is
// recorded.
func (s *Service) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	s.mu.Lock()

	ss, err := s.lookup(req.SessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !ss.IsActive {
		s.mu.Unlock()
		return nil, errSessionEnded(ss.SessionID)
	}

	var question *domain.Question
	for i := range ss.Questions {
		if ss.Questions[i].QuestionID == req.QuestionID {
			question = &ss.Questions[i]
			break
		}
	}
	if question == nil {
		s.mu.Unlock()
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("question not found: session=%s question=%s", req.SessionID, req.QuestionID))
	}

	isCorrect := req.SelectedAnswer == question.Correct

	record := domain.AnswerRecord{
		QuestionID:     req.QuestionID,
		SelectedAnswer: req.SelectedAnswer,
		TimeTaken:      req.TimeTaken,
		IsCorrect:      isCorrect,
	}
	ss.Answers = append(ss.Answers, record)

	pointsEarned := 0
	ended := false
	if isCorrect {
		pointsEarned = question.Points + timeBonus(question.TimeLimit, req.TimeTaken)
		ss.Score += pointsEarned
		ss.CorrectAnswers++
	} else {
		ss.Lives--
		ss.WrongAnswers++
		if ss.Lives <= 0 {
			s.terminate(ctx, ss)
			ended = true
		}
	}

	resp := &SubmitAnswerResponse{
		IsCorrect:      isCorrect,
		CorrectAnswer:  question.Correct,
		Explanation:    question.Explanation,
		PointsEarned:   pointsEarned,
		TotalScore:     ss.Score,
		LivesRemaining: ss.Lives,
		SessionActive:  ss.IsActive,
	}
	events := []event.Event{domain.EventAnswerSubmitted{
		SessionID: ss.SessionID,
		UserID:    req.UserID,
		Question:  *question,
		Answer:    record,
	}}
	if ended {
		events = append(events, domain.EventSessionEnded{Session: *snapshot(ss)})
	}
	s.mu.Unlock()

	if s.eb != nil {
		for _, e := range events {
			s.eb.Publish(ctx, e)
		}
	}

	return resp, nil
}

type EndSessionRequest struct {
	SessionID string
}

type EndSessionResponse struct {
	FinalScore int
	Stats      domain.SessionStats
}

// EndSession is idempotent: the first call on an active session deactivates it
// and records a leaderboard entry; later calls only return the final snapshot.
func (s *Service) EndSession(ctx context.Context, req EndSessionRequest) (*EndSessionResponse, error) {
	s.mu.Lock()

	ss, err := s.lookup(req.SessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	var events []event.Event
	if ss.IsActive {
		s.terminate(ctx, ss)
		events = append(events, domain.EventSessionEnded{Session: *snapshot(ss)})
	}

	resp := &EndSessionResponse{
		FinalScore: ss.Score,
		Stats:      computeStats(ss),
	}
	s.mu.Unlock()

	if s.eb != nil {
		for _, e := range events {
			s.eb.Publish(ctx, e)
		}
	}

	return resp, nil
}

type GetStatsRequest struct {
	SessionID string
}

// GetStats derives accuracy, average answer time and duration from the
// session's answer history. Nothing is stored; each call recomputes.
func (s *Service) GetStats(_ context.Context, req GetStatsRequest) (*domain.SessionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, err := s.lookup(req.SessionID)
	if err != nil {
		return nil, err
	}

	stats := computeStats(ss)
	return &stats, nil
}

// lookup returns the live session for the ID. Caller must hold s.mu.
func (s *Service) lookup(sessionID string) (*domain.GameSession, error) {
	ss, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("session not found: %s", sessionID))
	}
	return ss, nil
}

// terminate deactivates the session and records its leaderboard entry. Caller
// must hold s.mu and must not have terminated the session already; the ended
// state is terminal, so this runs at most once per session.
func (s *Service) terminate(ctx context.Context, ss *domain.GameSession) {
	now := time.Now().UTC()
	ss.IsActive = false
	ss.EndedAt = &now

	answered := len(ss.Answers)
	accuracy := 0.0
	if answered > 0 {
		accuracy = float64(ss.CorrectAnswers) / float64(answered) * 100
	}

	if s.lb != nil {
		s.lb.Record(ctx, domain.LeaderboardEntry{
			PlayerName:        ss.PlayerName,
			GameType:          ss.GameType,
			Score:             ss.Score,
			QuestionsAnswered: answered,
			Accuracy:          accuracy,
			CompletedAt:       now,
		})
	}
}

func timeBonus(timeLimit int, timeTaken float64) int {
	bonus := int(math.Floor((float64(timeLimit) - timeTaken) / 2))
	if bonus < 0 {
		return 0
	}
	return bonus
}

func computeStats(ss *domain.GameSession) domain.SessionStats {
	answered := len(ss.Answers)

	accuracy := decimal.Zero
	avgTime := decimal.Zero
	if answered > 0 {
		accuracy = decimal.NewFromInt(int64(ss.CorrectAnswers) * 100).
			Div(decimal.NewFromInt(int64(answered))).
			Round(2)

		total := decimal.Zero
		for _, a := range ss.Answers {
			total = total.Add(decimal.NewFromFloat(a.TimeTaken))
		}
		avgTime = total.Div(decimal.NewFromInt(int64(answered))).Round(2)
	}

	var duration *float64
	if ss.EndedAt != nil {
		d := ss.EndedAt.Sub(ss.StartedAt).Seconds()
		duration = &d
	}

	return domain.SessionStats{
		SessionID:              ss.SessionID,
		PlayerName:             ss.PlayerName,
		GameType:               ss.GameType,
		Score:                  ss.Score,
		LivesRemaining:         ss.Lives,
		QuestionsAnswered:      answered,
		CorrectAnswers:         ss.CorrectAnswers,
		WrongAnswers:           ss.WrongAnswers,
		Accuracy:               accuracy.InexactFloat64(),
		AverageTimePerQuestion: avgTime.InexactFloat64(),
		SessionDurationSeconds: duration,
		IsActive:               ss.IsActive,
	}
}

func errSessionEnded(sessionID string) error {
	return errors.New(errors.CodeFailedPrecondition,
		errors.WithMessagef("session has ended: %s", sessionID))
}

// snapshot copies a session so callers never share the store's mutable state.
func snapshot(ss *domain.GameSession) *domain.GameSession {
	out := *ss
	out.Questions = append([]domain.Question(nil), ss.Questions...)
	out.Answers = append([]domain.AnswerRecord(nil), ss.Answers...)
	if ss.EndedAt != nil {
		endedAt := *ss.EndedAt
		out.EndedAt = &endedAt
	}
	return &out
}
