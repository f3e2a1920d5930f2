package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/shivvyas2/NYUHacks/internal/agent"
	"github.com/shivvyas2/NYUHacks/internal/api"
	"github.com/shivvyas2/NYUHacks/internal/auth"
	"github.com/shivvyas2/NYUHacks/internal/bank"
	"github.com/shivvyas2/NYUHacks/internal/event"
	"github.com/shivvyas2/NYUHacks/internal/history"
	"github.com/shivvyas2/NYUHacks/internal/leaderboard"
	"github.com/shivvyas2/NYUHacks/internal/session"
	"github.com/shivvyas2/NYUHacks/internal/telemetry"
)

type Config struct {
	HTTP struct {
		Port int32
	}

	Redis struct {
		Pubsub struct {
			Addrs  []string
			Pass   string
			Prefix string
		}
	}

	Postgres struct {
		History struct {
			Addr string
			User string
			Pass string
			Name string
		}
	}

	Agent struct {
		BaseURL string
		APIKey  string
		Model   string
	}
}

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis    redis.UniversalClient
		postgres *pgxpool.Pool
	}

	service struct {
		bank        *bank.Bank
		session     *session.Service
		leaderboard *leaderboard.Service
		history     *history.Service
		agent       *agent.Service
	}

	http *http.Server
}

// Init wires infra, services and the HTTP API. Redis, Postgres and the agent
// are optional: features backed by unset config are simply disabled.
func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	s.eb = event.NewBus()

	if err := s.initInfra(); err != nil {
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initInfra() error {
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := s.initPostgres(); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	return nil
}

func (s *Server) initRedis() error {
	if len(s.c.Redis.Pubsub.Addrs) == 0 {
		slog.Info("server: redis not configured, leaderboard notifications disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    s.c.Redis.Pubsub.Addrs,
		Password: s.c.Redis.Pubsub.Pass,
	})

	if err := telemetry.MonitorRedis(r); err != nil {
		return err
	}

	if err := r.Ping(ctx).Err(); err != nil {
		return err
	}

	s.infra.redis = r
	return nil
}

func (s *Server) initPostgres() error {
	pg := s.c.Postgres.History
	if pg.Addr == "" {
		slog.Info("server: postgres not configured, attempt history disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cc, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s/%s", pg.User, pg.Pass, pg.Addr, pg.Name))
	if err != nil {
		return err
	}

	db, err := pgxpool.NewWithConfig(ctx, cc)
	if err != nil {
		return err
	}

	if err := db.Ping(ctx); err != nil {
		return err
	}

	s.infra.postgres = db
	return nil
}

func (s *Server) initService() {
	s.service.bank = bank.Default()

	s.service.leaderboard = leaderboard.NewService(leaderboard.Config{
		EventBus: s.eb,
	})

	s.service.session = session.NewService(session.Config{
		Bank:        s.service.bank,
		Leaderboard: s.service.leaderboard,
		EventBus:    s.eb,
	})

	if s.infra.postgres != nil {
		s.service.history = history.NewService(history.Config{
			DB:       s.infra.postgres,
			EventBus: s.eb,
		})
	}

	if s.c.Agent.APIKey != "" {
		c := agent.Config{
			Completer: agent.NewClient(agent.ClientConfig{
				BaseURL: s.c.Agent.BaseURL,
				APIKey:  s.c.Agent.APIKey,
				Model:   s.c.Agent.Model,
			}),
		}
		if s.service.history != nil {
			c.Stats = s.service.history
		}
		s.service.agent = agent.NewService(c)
	}
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery())
	e.Use(telemetry.HTTPLogger())
	e.Use(auth.Middleware())

	c := api.Config{
		Engine:       e,
		EventBus:     s.eb,
		Session:      s.service.session,
		Leaderboard:  s.service.leaderboard,
		Bank:         s.service.bank,
		Agent:        s.service.agent,
		PubsubPrefix: s.c.Redis.Pubsub.Prefix,
	}
	if s.infra.redis != nil {
		c.Redis = s.infra.redis
	}
	api.New(c)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.eb.Stop()

	if s.infra.redis != nil {
		if err := s.infra.redis.Close(); err != nil {
			slog.ErrorContext(ctx, "server: close redis failed", "error", err)
		}
	}
	if s.infra.postgres != nil {
		s.infra.postgres.Close()
	}

	slog.InfoContext(ctx, "server: shutdown completed")
}
