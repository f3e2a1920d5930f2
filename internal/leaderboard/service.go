package leaderboard

import (
	"context"
	"sort"
	"sync"

	"github.com/shivvyas2/NYUHacks/internal/domain"
	"github.com/shivvyas2/NYUHacks/internal/errors"
	"github.com/shivvyas2/NYUHacks/internal/event"
)

const (
	defaultCapacity = 100
	defaultLimit    = 10
)

type Config struct {
	EventBus *event.Bus
	// Capacity bounds the number of retained entries. Zero means the default of 100.
	Capacity int
}

// Service owns the bounded, score-sorted list of completed-session summaries.
// The store is volatile and process-lifetime only.
type Service struct {
	eb       *event.Bus
	capacity int

	mu      sync.Mutex
	entries []domain.LeaderboardEntry
}

func NewService(c Config) *Service {
	if c.Capacity <= 0 {
		c.Capacity = defaultCapacity
	}

	return &Service{
		eb:       c.EventBus,
		capacity: c.Capacity,
	}
}

// Record inserts a completed-session entry, keeping the list sorted by score
// descending and evicting the lowest score once the capacity is exceeded.
func (s *Service) Record(ctx context.Context, entry domain.LeaderboardEntry) {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Score > s.entries[j].Score
	})
	if len(s.entries) > s.capacity {
		s.entries = s.entries[:s.capacity]
	}
	top := s.top(entry.GameType, defaultLimit)
	s.mu.Unlock()

	if s.eb != nil {
		s.eb.Publish(ctx, domain.EventLeaderboardUpdated{
			GameType: entry.GameType,
			Entries:  top,
		})
	}
}

type GetRequest struct {
	// GameType filters entries when non-empty.
	GameType string
	// Limit caps the number of returned entries. Zero means the default of 10.
	Limit int
}

type GetResponse struct {
	Entries []domain.LeaderboardEntry
	// TotalEntries counts every retained entry matching the filter, not just
	// the returned page.
	TotalEntries int
}

// Get returns the top entries by score descending, optionally filtered by game
// type. Reads never mutate stored order.
func (s *Service) Get(_ context.Context, req GetRequest) (*GetResponse, error) {
	if req.GameType != "" && !domain.GameType(req.GameType).Valid() {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("unrecognized game type: %q", req.GameType))
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, e := range s.entries {
		if req.GameType == "" || e.GameType == domain.GameType(req.GameType) {
			total++
		}
	}

	return &GetResponse{
		Entries:      s.top(domain.GameType(req.GameType), req.Limit),
		TotalEntries: total,
	}, nil
}

// top returns up to limit entries for the game type ("" means all). Caller
// must hold s.mu.
func (s *Service) top(gameType domain.GameType, limit int) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, 0, limit)
	for _, e := range s.entries {
		if gameType != "" && e.GameType != gameType {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out
}
