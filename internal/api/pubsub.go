package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shivvyas2/NYUHacks/internal/domain"
)

type (
	Notification struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}

	Leaderboard struct {
		GameType string             `json:"game_type"`
		Entries  []LeaderboardEntry `json:"entries"`
	}

	LeaderboardEntry struct {
		PlayerName string    `json:"player_name"`
		Score      int       `json:"score"`
		Accuracy   float64   `json:"accuracy"`
		Completed  time.Time `json:"completed_at"`
	}
)

// PublishLeaderboardUpdated pushes the new top of a game's board to its redis
// channel, so connected frontends can refresh without polling.
func (a *API) PublishLeaderboardUpdated(ctx context.Context, e domain.EventLeaderboardUpdated) error {
	data := Leaderboard{
		GameType: string(e.GameType),
		Entries:  make([]LeaderboardEntry, 0, len(e.Entries)),
	}

	for _, entry := range e.Entries {
		data.Entries = append(data.Entries, LeaderboardEntry{
			PlayerName: entry.PlayerName,
			Score:      entry.Score,
			Accuracy:   entry.Accuracy,
			Completed:  entry.CompletedAt,
		})
	}

	return a.publishNotification(ctx, string(e.GameType), e.Name(), data)
}

func (a *API) publishNotification(ctx context.Context, game, event string, data any) error {
	n := Notification{
		Event: event,
		Data:  data,
	}

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", event, err)
	}

	return a.redis.Publish(ctx, fmt.Sprintf("%s:game:%s", a.prefix, game), b).Err()
}
