package domain

import (
	"time"
)

// GameType identifies which frontend game a session belongs to.
type GameType string

const (
	GameTypeSubwaySurfers GameType = "subway-surfers"
	GameTypeSquidGame     GameType = "squid-game"
	GameTypeMario         GameType = "mario"
	GameTypePacMan        GameType = "pac-man"
)

// GameTypes lists every supported game, in a stable order.
func GameTypes() []GameType {
	return []GameType{GameTypeSubwaySurfers, GameTypeSquidGame, GameTypeMario, GameTypePacMan}
}

func (g GameType) Valid() bool {
	switch g {
	case GameTypeSubwaySurfers, GameTypeSquidGame, GameTypeMario, GameTypePacMan:
		return true
	}
	return false
}

// Category is a SAT question section.
type Category string

const (
	CategoryMath    Category = "math"
	CategoryReading Category = "reading"
	CategoryWriting Category = "writing"
)

func Categories() []Category {
	return []Category{CategoryMath, CategoryReading, CategoryWriting}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryMath, CategoryReading, CategoryWriting:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a single multiple-choice question. Once issued to a session it
// is immutable.
type Question struct {
	// QuestionID is an opaque token, regenerated on every issuance so the
	// identifier a client sees is decoupled from the bank entry.
	QuestionID string
	// Source identifies the bank entry the question was drawn from. Sessions
	// use it to avoid re-issuing the same content.
	Source      string
	Category    Category
	Difficulty  Difficulty
	Question    string
	Options     []string
	Correct     int
	Explanation string
	Points      int
	TimeLimit   int
}

// AnswerRecord is one submitted answer. Append-only: never mutated after creation.
type AnswerRecord struct {
	QuestionID     string
	SelectedAnswer int
	TimeTaken      float64
	IsCorrect      bool
}

// GameSession is one player's continuous attempt at a game. Owned exclusively
// by the session service; mutated only through its operations.
type GameSession struct {
	SessionID      string
	PlayerName     string
	GameType       GameType
	StartedAt      time.Time
	EndedAt        *time.Time
	Score          int
	Lives          int
	QuestionsAsked int
	CorrectAnswers int
	WrongAnswers   int
	Questions      []Question
	Answers        []AnswerRecord
	IsActive       bool
}

// LeaderboardEntry is a completed-session summary. Created once at session
// termination and never mutated thereafter.
type LeaderboardEntry struct {
	PlayerName        string
	GameType          GameType
	Score             int
	QuestionsAnswered int
	Accuracy          float64
	CompletedAt       time.Time
}

// SessionStats is a derived view over a session's answer history; recomputed
// on every read, never stored.
type SessionStats struct {
	SessionID              string
	PlayerName             string
	GameType               GameType
	Score                  int
	LivesRemaining         int
	QuestionsAnswered      int
	CorrectAnswers         int
	WrongAnswers           int
	Accuracy               float64
	AverageTimePerQuestion float64
	// SessionDurationSeconds is nil while the session is still active.
	SessionDurationSeconds *float64
	IsActive               bool
}

// TopicStat aggregates a user's historical performance on one topic.
type TopicStat struct {
	Topic    string
	Attempts int
	Correct  int
	Accuracy float64
}
