// Package agent generates personalized SAT questions through an
// OpenRouter-backed model, steered by the user's weakest topics from the
// attempt history. Every failure falls back to static bank questions at the
// call site; nothing here retries.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/shivvyas2/NYUHacks/internal/domain"
)

const (
	defaultQuestionCount = 10
	maxWeakTopics        = 2
	// minAttempts is the number of attempts a topic needs before its accuracy
	// is trusted for personalization.
	minAttempts = 3
)

// Completer produces text for a prompt. *Client satisfies it; tests substitute
// their own.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// StatsProvider reports a user's per-topic performance, weakest topic first.
type StatsProvider interface {
	TopicStats(ctx context.Context, userID string) ([]domain.TopicStat, error)
}

type Config struct {
	Completer Completer
	// Stats is optional; without it every user gets the generic topic mix.
	Stats StatsProvider
}

type Service struct {
	completer Completer
	stats     StatsProvider
}

func NewService(c Config) *Service {
	return &Service{
		completer: c.Completer,
		stats:     c.Stats,
	}
}

type GenerateRequest struct {
	// UserID selects whose history steers topic choice; empty means anonymous.
	UserID string
	Count  int
	// Topic pins generation to one topic instead of the weak-topic heuristic.
	Topic      string
	Difficulty string
}

// Generate asks the model for Count questions and returns only the ones that
// parse and validate. An empty result is an error so callers fall back to the
// static bank.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) ([]domain.Question, error) {
	if req.Count <= 0 {
		req.Count = defaultQuestionCount
	}
	if req.Difficulty == "" {
		req.Difficulty = string(domain.DifficultyMedium)
	}

	topics := s.pickTopics(ctx, req)
	prompt := buildPrompt(topics, req.Difficulty, req.Count)

	output, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("agent: complete: %w", err)
	}

	questions, err := parseQuestions(output, req.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("agent: parse output: %w", err)
	}
	if len(questions) > req.Count {
		questions = questions[:req.Count]
	}

	return questions, nil
}

// pickTopics returns the topics to generate for: the pinned topic if given,
// then the user's weakest topics with enough attempts, then the full category
// list for users without history.
func (s *Service) pickTopics(ctx context.Context, req GenerateRequest) []string {
	if req.Topic != "" {
		return []string{req.Topic}
	}

	fallback := make([]string, 0, 3)
	for _, c := range domain.Categories() {
		fallback = append(fallback, string(c))
	}

	if s.stats == nil || req.UserID == "" {
		return fallback
	}

	stats, err := s.stats.TopicStats(ctx, req.UserID)
	if err != nil {
		slog.WarnContext(ctx, "agent: topic stats unavailable, using generic topics",
			"user_id", req.UserID,
			"error", err,
		)
		return fallback
	}

	weak := make([]string, 0, maxWeakTopics)
	for _, ts := range stats {
		if ts.Attempts < minAttempts {
			continue
		}
		weak = append(weak, ts.Topic)
		if len(weak) == maxWeakTopics {
			break
		}
	}
	if len(weak) == 0 {
		return fallback
	}

	return weak
}

func buildPrompt(topics []string, difficulty string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d SAT-style multiple-choice questions at %s difficulty ", count, difficulty)
	fmt.Fprintf(&b, "covering these topics: %s.\n\n", strings.Join(topics, ", "))
	b.WriteString("Respond with a JSON array only, no prose. Each element must have:\n")
	b.WriteString(`  "question": the question text` + "\n")
	b.WriteString(`  "options": exactly 4 answer strings` + "\n")
	b.WriteString(`  "correct_answer": index 0-3 of the right option` + "\n")
	b.WriteString(`  "topic": one of math, reading, writing` + "\n")
	b.WriteString(`  "explanation": why the right option is correct` + "\n")
	return b.String()
}

type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Topic         string   `json:"topic"`
	Explanation   string   `json:"explanation"`
}

func parseQuestions(output, difficulty string) ([]domain.Question, error) {
	raw := stripCodeFence(output)

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, fmt.Errorf("unmarshal question array: %w", err)
	}

	questions := make([]domain.Question, 0, len(generated))
	for _, g := range generated {
		if g.Question == "" || len(g.Options) != 4 {
			continue
		}
		if g.CorrectAnswer < 0 || g.CorrectAnswer >= len(g.Options) {
			continue
		}
		category := domain.Category(g.Topic)
		if !category.Valid() {
			category = domain.CategoryMath
		}
		questions = append(questions, domain.Question{
			QuestionID:  uuid.NewString(),
			Category:    category,
			Difficulty:  domain.Difficulty(difficulty),
			Question:    g.Question,
			Options:     g.Options,
			Correct:     g.CorrectAnswer,
			Explanation: g.Explanation,
			Points:      pointsFor(domain.Difficulty(difficulty)),
			TimeLimit:   30,
		})
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("no usable questions in output")
	}

	return questions, nil
}

func pointsFor(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyEasy:
		return 10
	case domain.DifficultyHard:
		return 20
	default:
		return 15
	}
}

// stripCodeFence unwraps ```json fences that chat models wrap JSON output in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
