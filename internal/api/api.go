// Package api translates the HTTP surface onto the session, leaderboard and
// agent services. Handlers are stateless; all game state lives in the services.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/shivvyas2/NYUHacks/internal/agent"
	"github.com/shivvyas2/NYUHacks/internal/auth"
	"github.com/shivvyas2/NYUHacks/internal/bank"
	"github.com/shivvyas2/NYUHacks/internal/domain"
	"github.com/shivvyas2/NYUHacks/internal/errors"
	"github.com/shivvyas2/NYUHacks/internal/event"
	"github.com/shivvyas2/NYUHacks/internal/leaderboard"
	"github.com/shivvyas2/NYUHacks/internal/session"
)

type Config struct {
	Engine      *gin.Engine
	EventBus    *event.Bus
	Session     *session.Service
	Leaderboard *leaderboard.Service
	Bank        *bank.Bank
	// Agent is optional; without it the questions endpoint always serves the
	// static bank.
	Agent *agent.Service
	// Redis is optional; without it leaderboard updates are not fanned out.
	Redis        Redis
	PubsubPrefix string
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type API struct {
	qss *session.Service
	ls  *leaderboard.Service
	bk  *bank.Bank
	ag  *agent.Service

	redis  Redis
	prefix string
}

func New(c Config) *API {
	a := &API{
		qss:    c.Session,
		ls:     c.Leaderboard,
		bk:     c.Bank,
		ag:     c.Agent,
		redis:  c.Redis,
		prefix: c.PubsubPrefix,
	}

	e := c.Engine
	e.GET("/", a.Root)
	e.GET("/health", a.Health)

	g := e.Group("/api")
	g.POST("/sessions", a.CreateSession)
	g.GET("/sessions/:id", a.GetSession)
	g.GET("/sessions/:id/question", a.GetQuestion)
	g.POST("/sessions/:id/answer", a.SubmitAnswer)
	g.GET("/sessions/:id/stats", a.GetStats)
	g.POST("/sessions/:id/end", a.EndSession)
	g.GET("/leaderboard", a.GetLeaderboard)
	g.GET("/questions", a.GetQuestions)

	if a.redis != nil {
		c.EventBus.Subscribe(domain.EventNameLeaderboardUpdated, func(ctx context.Context, e event.Event) error {
			return a.PublishLeaderboardUpdated(ctx, e.(domain.EventLeaderboardUpdated))
		})
	}

	return a
}

func (a *API) Root(c *gin.Context) {
	games := make([]string, 0, 4)
	for _, g := range domain.GameTypes() {
		games = append(games, string(g))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Educational Game API",
		"status":          "running",
		"games_supported": games,
		"endpoints": gin.H{
			"health":         "GET /health",
			"create_session": "POST /api/sessions",
			"get_question":   "GET /api/sessions/{session_id}/question",
			"submit_answer":  "POST /api/sessions/{session_id}/answer",
			"get_stats":      "GET /api/sessions/{session_id}/stats",
			"leaderboard":    "GET /api/leaderboard",
		},
	})
}

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type createSessionRequest struct {
	PlayerName string `json:"player_name"`
	GameType   string `json:"game_type"`
}

type createSessionResponse struct {
	SessionID  string `json:"session_id"`
	PlayerName string `json:"player_name"`
	GameType   string `json:"game_type"`
	Score      int    `json:"score"`
	Lives      int    `json:"lives"`
	Message    string `json:"message"`
}

func (a *API) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	ss, err := a.qss.CreateSession(c.Request.Context(), session.CreateSessionRequest{
		PlayerName: req.PlayerName,
		GameType:   req.GameType,
	})
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, createSessionResponse{
		SessionID:  ss.SessionID,
		PlayerName: ss.PlayerName,
		GameType:   string(ss.GameType),
		Score:      ss.Score,
		Lives:      ss.Lives,
		Message:    "Session created! Start playing and call /question when you hit an obstacle.",
	})
}

type answerView struct {
	QuestionID     string  `json:"question_id"`
	SelectedAnswer int     `json:"selected_answer"`
	TimeTaken      float64 `json:"time_taken"`
	IsCorrect      bool    `json:"is_correct"`
}

type sessionView struct {
	SessionID      string         `json:"session_id"`
	PlayerName     string         `json:"player_name"`
	GameType       string         `json:"game_type"`
	StartedAt      time.Time      `json:"started_at"`
	EndedAt        *time.Time     `json:"ended_at"`
	Score          int            `json:"score"`
	Lives          int            `json:"lives"`
	QuestionsAsked int            `json:"questions_asked"`
	CorrectAnswers int            `json:"correct_answers"`
	WrongAnswers   int            `json:"wrong_answers"`
	Questions      []questionView `json:"questions"`
	Answers        []answerView   `json:"answers"`
	IsActive       bool           `json:"is_active"`
}

func (a *API) GetSession(c *gin.Context) {
	ss, err := a.qss.GetSession(c.Request.Context(), session.GetSessionRequest{
		SessionID: c.Param("id"),
	})
	if err != nil {
		renderError(c, err)
		return
	}

	view := sessionView{
		SessionID:      ss.SessionID,
		PlayerName:     ss.PlayerName,
		GameType:       string(ss.GameType),
		StartedAt:      ss.StartedAt,
		EndedAt:        ss.EndedAt,
		Score:          ss.Score,
		Lives:          ss.Lives,
		QuestionsAsked: ss.QuestionsAsked,
		CorrectAnswers: ss.CorrectAnswers,
		WrongAnswers:   ss.WrongAnswers,
		Questions:      make([]questionView, 0, len(ss.Questions)),
		Answers:        make([]answerView, 0, len(ss.Answers)),
		IsActive:       ss.IsActive,
	}
	for _, q := range ss.Questions {
		view.Questions = append(view.Questions, newQuestionView(q))
	}
	for _, ans := range ss.Answers {
		view.Answers = append(view.Answers, answerView{
			QuestionID:     ans.QuestionID,
			SelectedAnswer: ans.SelectedAnswer,
			TimeTaken:      ans.TimeTaken,
			IsCorrect:      ans.IsCorrect,
		})
	}

	c.JSON(http.StatusOK, view)
}

type questionView struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Correct    int      `json:"correct"`
	Category   string   `json:"category"`
	QuestionID string   `json:"question_id"`
	Points     int      `json:"points"`
	TimeLimit  int      `json:"time_limit"`
}

func newQuestionView(q domain.Question) questionView {
	return questionView{
		Question:   q.Question,
		Options:    q.Options,
		Correct:    q.Correct,
		Category:   string(q.Category),
		QuestionID: q.QuestionID,
		Points:     q.Points,
		TimeLimit:  q.TimeLimit,
	}
}

func (a *API) GetQuestion(c *gin.Context) {
	q, err := a.qss.IssueQuestion(c.Request.Context(), session.IssueQuestionRequest{
		SessionID: c.Param("id"),
	})
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, newQuestionView(*q))
}

type submitAnswerRequest struct {
	QuestionID     string  `json:"question_id"`
	SelectedAnswer int     `json:"selected_answer"`
	TimeTaken      float64 `json:"time_taken"`
}

type submitAnswerResponse struct {
	IsCorrect      bool   `json:"is_correct"`
	CorrectAnswer  int    `json:"correct_answer"`
	Explanation    string `json:"explanation"`
	PointsEarned   int    `json:"points_earned"`
	TotalScore     int    `json:"total_score"`
	LivesRemaining int    `json:"lives_remaining"`
	SessionActive  bool   `json:"session_active"`
	PowerMode      bool   `json:"power_mode"`
}

func (a *API) SubmitAnswer(c *gin.Context) {
	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	userID := ""
	if id, ok := auth.IdentityFromContext(c); ok {
		userID = id.UserID
	}

	resp, err := a.qss.SubmitAnswer(c.Request.Context(), session.SubmitAnswerRequest{
		SessionID:      c.Param("id"),
		QuestionID:     req.QuestionID,
		SelectedAnswer: req.SelectedAnswer,
		TimeTaken:      req.TimeTaken,
		UserID:         userID,
	})
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitAnswerResponse{
		IsCorrect:      resp.IsCorrect,
		CorrectAnswer:  resp.CorrectAnswer,
		Explanation:    resp.Explanation,
		PointsEarned:   resp.PointsEarned,
		TotalScore:     resp.TotalScore,
		LivesRemaining: resp.LivesRemaining,
		SessionActive:  resp.SessionActive,
		PowerMode:      resp.IsCorrect,
	})
}

type statsView struct {
	SessionID              string   `json:"session_id"`
	PlayerName             string   `json:"player_name"`
	GameType               string   `json:"game_type"`
	Score                  int      `json:"score"`
	LivesRemaining         int      `json:"lives_remaining"`
	QuestionsAnswered      int      `json:"questions_answered"`
	CorrectAnswers         int      `json:"correct_answers"`
	WrongAnswers           int      `json:"wrong_answers"`
	Accuracy               float64  `json:"accuracy"`
	AverageTimePerQuestion float64  `json:"average_time_per_question"`
	SessionDurationSeconds *float64 `json:"session_duration_seconds"`
	IsActive               bool     `json:"is_active"`
}

func newStatsView(stats domain.SessionStats) statsView {
	return statsView{
		SessionID:              stats.SessionID,
		PlayerName:             stats.PlayerName,
		GameType:               string(stats.GameType),
		Score:                  stats.Score,
		LivesRemaining:         stats.LivesRemaining,
		QuestionsAnswered:      stats.QuestionsAnswered,
		CorrectAnswers:         stats.CorrectAnswers,
		WrongAnswers:           stats.WrongAnswers,
		Accuracy:               stats.Accuracy,
		AverageTimePerQuestion: stats.AverageTimePerQuestion,
		SessionDurationSeconds: stats.SessionDurationSeconds,
		IsActive:               stats.IsActive,
	}
}

func (a *API) GetStats(c *gin.Context) {
	stats, err := a.qss.GetStats(c.Request.Context(), session.GetStatsRequest{
		SessionID: c.Param("id"),
	})
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, newStatsView(*stats))
}

type endSessionResponse struct {
	Message    string    `json:"message"`
	FinalScore int       `json:"final_score"`
	Stats      statsView `json:"stats"`
}

func (a *API) EndSession(c *gin.Context) {
	resp, err := a.qss.EndSession(c.Request.Context(), session.EndSessionRequest{
		SessionID: c.Param("id"),
	})
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, endSessionResponse{
		Message:    "Session ended",
		FinalScore: resp.FinalScore,
		Stats:      newStatsView(resp.Stats),
	})
}

type leaderboardEntryView struct {
	PlayerName        string    `json:"player_name"`
	GameType          string    `json:"game_type"`
	Score             int       `json:"score"`
	QuestionsAnswered int       `json:"questions_answered"`
	Accuracy          float64   `json:"accuracy"`
	CompletedAt       time.Time `json:"completed_at"`
}

type leaderboardResponse struct {
	Leaderboard  []leaderboardEntryView `json:"leaderboard"`
	TotalEntries int                    `json:"total_entries"`
}

func (a *API) GetLeaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			renderError(c, errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("limit must be an integer: %q", raw)))
			return
		}
		limit = n
	}

	resp, err := a.ls.Get(c.Request.Context(), leaderboard.GetRequest{
		GameType: c.Query("game_type"),
		Limit:    limit,
	})
	if err != nil {
		renderError(c, err)
		return
	}

	out := leaderboardResponse{
		Leaderboard:  make([]leaderboardEntryView, 0, len(resp.Entries)),
		TotalEntries: resp.TotalEntries,
	}
	for _, e := range resp.Entries {
		out.Leaderboard = append(out.Leaderboard, leaderboardEntryView{
			PlayerName:        e.PlayerName,
			GameType:          string(e.GameType),
			Score:             e.Score,
			QuestionsAnswered: e.QuestionsAnswered,
			Accuracy:          e.Accuracy,
			CompletedAt:       e.CompletedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

type questionsResponse struct {
	Questions []questionView `json:"questions"`
	Total     int            `json:"total"`
}

// GetQuestions serves bank questions, or agent-generated ones when
// use_agent=true. Agent failures fall back to the static bank.
func (a *API) GetQuestions(c *gin.Context) {
	topic := c.Query("topic")
	if topic != "" && !domain.Category(topic).Valid() {
		renderError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("unrecognized topic: %q", topic)))
		return
	}

	difficulty := c.DefaultQuery("difficulty", string(domain.DifficultyMedium))
	if !domain.Difficulty(difficulty).Valid() {
		renderError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("unrecognized difficulty: %q", difficulty)))
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			renderError(c, errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("limit must be a positive integer: %q", raw)))
			return
		}
		limit = n
	}

	var questions []domain.Question
	if c.Query("use_agent") == "true" && a.ag != nil {
		userID := ""
		if id, ok := auth.IdentityFromContext(c); ok {
			userID = id.UserID
		}

		generated, err := a.ag.Generate(c.Request.Context(), agent.GenerateRequest{
			UserID:     userID,
			Count:      limit,
			Topic:      topic,
			Difficulty: difficulty,
		})
		if err != nil {
			slog.WarnContext(c.Request.Context(), "api: agent generation failed, serving static questions",
				"error", err,
			)
		} else {
			questions = generated
		}
	}

	if len(questions) == 0 {
		questions = a.staticQuestions(topic, difficulty, limit)
	}
	if len(questions) > limit {
		questions = questions[:limit]
	}

	out := questionsResponse{
		Questions: make([]questionView, 0, len(questions)),
		Total:     len(questions),
	}
	for _, q := range questions {
		out.Questions = append(out.Questions, newQuestionView(q))
	}

	c.JSON(http.StatusOK, out)
}

func (a *API) staticQuestions(topic, difficulty string, limit int) []domain.Question {
	categories := domain.Categories()
	if topic != "" {
		categories = []domain.Category{domain.Category(topic)}
	}

	var questions []domain.Question
	for _, category := range categories {
		questions = append(questions, a.bk.Questions(category, domain.Difficulty(difficulty))...)
		if len(questions) >= limit {
			break
		}
	}
	return questions
}

func renderError(c *gin.Context, err error) {
	e := errors.Convert(err)
	if e.Code == errors.CodeInternal {
		slog.ErrorContext(c.Request.Context(), "api: internal error", "error", err)
	}
	c.JSON(e.HTTPStatusCode(), gin.H{"detail": e.Message})
}
