package domain

const (
	EventNameAnswerSubmitted    = "answer.submitted"
	EventNameSessionEnded       = "session.ended"
	EventNameLeaderboardUpdated = "leaderboard.updated"
)

// EventAnswerSubmitted is published after every answer submission, whether or
// not it was correct. UserID is the guest ID when the player is anonymous.
type EventAnswerSubmitted struct {
	SessionID string
	UserID    string
	Question  Question
	Answer    AnswerRecord
}

func (EventAnswerSubmitted) Name() string { return EventNameAnswerSubmitted }

type EventSessionEnded struct {
	Session GameSession
}

func (EventSessionEnded) Name() string { return EventNameSessionEnded }

// EventLeaderboardUpdated carries the new top of the board for the game the
// finished session belonged to.
type EventLeaderboardUpdated struct {
	GameType GameType
	Entries  []LeaderboardEntry
}

func (EventLeaderboardUpdated) Name() string { return EventNameLeaderboardUpdated }
