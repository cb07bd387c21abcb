// Package storage keeps aggregated agent results in Redis.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/x-nimmt/internal/match"
)

const (
	// Redis key
	agentStatsKey  = "xnimmt:agent:stats:"
	leaderboardKey = "xnimmt:leaderboard:avg"

	maxRecordRetries = 16
)

// AgentStats 智能体累计统计
type AgentStats struct {
	Name string `json:"name"`

	Matches int `json:"matches"` // 参与的比赛数
	Games   int `json:"games"`   // 完成的对局数（按座位计）
	Wins    int `json:"wins"`
	Draws   int `json:"draws"` // 与他人并列最高分
	Losses  int `json:"losses"`

	TotalPoints int `json:"total_points"` // 累计罚分，≤ 0

	LastMatchID  string `json:"last_match_id"`
	LastPlayedAt int64  `json:"last_played_at"`
}

// AveragePoints is the mean score per game; closer to zero is better.
func (s *AgentStats) AveragePoints() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalPoints) / float64(s.Games)
}

// WinRate in percent.
func (s *AgentStats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games) * 100
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	Name          string  `json:"name"`
	Games         int     `json:"games"`
	AveragePoints float64 `json:"average_points"`
	WinRate       float64 `json:"win_rate"`
}

// Leaderboard 排行榜管理器
type Leaderboard struct {
	redis *redis.Client
}

// NewLeaderboard wraps an existing client.
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client}
}

// Connect 创建 Redis 客户端并测试连接
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}
	return rdb, nil
}

// GetAgentStats returns nil without error for an agent never recorded.
func (lb *Leaderboard) GetAgentStats(ctx context.Context, name string) (*AgentStats, error) {
	return loadStats(ctx, lb.redis, name)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func loadStats(ctx context.Context, c getter, name string) (*AgentStats, error) {
	data, err := c.Get(ctx, agentStatsKey+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats AgentStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode stats of %q: %w", name, err)
	}
	return &stats, nil
}

// seatOutcome 统计一个座位在各局中的胜/平/负
func seatOutcome(scores [][]int, seat int) (wins, draws, losses int) {
	for _, game := range scores {
		best := slices.Max(game)
		if game[seat] != best {
			losses++
			continue
		}
		tied := 0
		for _, s := range game {
			if s == best {
				tied++
			}
		}
		if tied == 1 {
			wins++
		} else {
			draws++
		}
	}
	return wins, draws, losses
}

// RecordMatch folds a finished match into the stats of every agent that took
// part. An agent filling several seats is counted once per seat, but the
// match only once. The stats keys are watched, so concurrent writers retry
// instead of overwriting each other.
func (lb *Leaderboard) RecordMatch(ctx context.Context, s *match.Summary) error {
	if s.Played() == 0 {
		return nil
	}

	var keys []string
	for _, name := range s.Players {
		if key := agentStatsKey + name; !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}

	txf := func(tx *redis.Tx) error {
		updated, order, err := foldMatch(ctx, tx, s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, name := range order {
				stats := updated[name]
				data, err := json.Marshal(stats)
				if err != nil {
					return err
				}
				pipe.Set(ctx, agentStatsKey+name, data, 0)
				pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: stats.AveragePoints(), Member: name})
			}
			return nil
		})
		return err
	}

	for range maxRecordRetries {
		err := lb.redis.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("record match %s: %w after %d attempts", s.MatchID, redis.TxFailedErr, maxRecordRetries)
}

// foldMatch reads the current stats and adds the match to them.
func foldMatch(ctx context.Context, c getter, s *match.Summary) (map[string]*AgentStats, []string, error) {
	updated := map[string]*AgentStats{}
	var order []string
	for seat, name := range s.Players {
		stats, ok := updated[name]
		if !ok {
			var err error
			if stats, err = loadStats(ctx, c, name); err != nil {
				return nil, nil, err
			}
			if stats == nil {
				stats = &AgentStats{Name: name}
			}
			stats.Matches++
			stats.LastMatchID = s.MatchID
			stats.LastPlayedAt = time.Now().Unix()
			updated[name] = stats
			order = append(order, name)
		}

		wins, draws, losses := seatOutcome(s.Scores, seat)
		stats.Games += s.Played()
		stats.Wins += wins
		stats.Draws += draws
		stats.Losses += losses
		stats.TotalPoints += s.Totals[seat]
	}
	return updated, order, nil
}

// GetLeaderboard 获取排行榜，平均罚分最少者在前
func (lb *Leaderboard) GetLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	results, err := lb.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(results))
	for _, result := range results {
		name, _ := result.Member.(string)
		stats, err := lb.GetAgentStats(ctx, name)
		if err != nil {
			return nil, err
		}
		if stats == nil {
			continue
		}
		entries = append(entries, &LeaderboardEntry{
			Rank:          len(entries) + 1,
			Name:          name,
			Games:         stats.Games,
			AveragePoints: result.Score,
			WinRate:       stats.WinRate(),
		})
	}
	return entries, nil
}

// GetAgentRank returns the 1-based rank, or -1 when the agent is not ranked.
func (lb *Leaderboard) GetAgentRank(ctx context.Context, name string) (int64, error) {
	rank, err := lb.redis.ZRevRank(ctx, leaderboardKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
