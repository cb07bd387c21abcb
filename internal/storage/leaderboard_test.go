package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/x-nimmt/internal/match"
)

func newTestLeaderboard(t *testing.T) *Leaderboard {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLeaderboard(client)
}

func summaryOf(id string, players []string, games ...[]int) *match.Summary {
	s := match.NewSummary(id, players, len(games))
	for i, scores := range games {
		s.Add(match.GameResult{Index: i, Scores: scores})
	}
	return s
}

func TestLeaderboard_RecordMatch_NewAgents(t *testing.T) {
	t.Parallel()

	lb := newTestLeaderboard(t)
	ctx := context.Background()

	s := summaryOf("m1", []string{"expectimax", "random"},
		[]int{-2, -9},
		[]int{-5, -5},
		[]int{-7, -1},
	)
	require.NoError(t, lb.RecordMatch(ctx, s))

	stats, err := lb.GetAgentStats(ctx, "expectimax")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, AgentStats{
		Name:         "expectimax",
		Matches:      1,
		Games:        3,
		Wins:         1,
		Draws:        1,
		Losses:       1,
		TotalPoints:  -14,
		LastMatchID:  "m1",
		LastPlayedAt: stats.LastPlayedAt,
	}, *stats)
	assert.InDelta(t, -14.0/3, stats.AveragePoints(), 1e-9)
	assert.InDelta(t, 100.0/3, stats.WinRate(), 1e-9)

	missing, err := lb.GetAgentStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLeaderboard_RecordMatch_SameAgentInSeveralSeats(t *testing.T) {
	t.Parallel()

	lb := newTestLeaderboard(t)
	ctx := context.Background()

	s := summaryOf("m1", []string{"random", "random", "expectimax"}, []int{-4, -6, -1})
	require.NoError(t, lb.RecordMatch(ctx, s))
	require.NoError(t, lb.RecordMatch(ctx, summaryOf("m2", []string{"random", "expectimax"}, []int{0, -3})))

	stats, err := lb.GetAgentStats(ctx, "random")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Matches)
	assert.Equal(t, 3, stats.Games)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 2, stats.Losses)
	assert.Equal(t, -10, stats.TotalPoints)
	assert.Equal(t, "m2", stats.LastMatchID)
}

func TestLeaderboard_RecordMatch_Concurrent(t *testing.T) {
	t.Parallel()

	lb := newTestLeaderboard(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- lb.RecordMatch(ctx, summaryOf(fmt.Sprintf("m%d", i), []string{"a", "b"}, []int{-1, -3}))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stats, err := lb.GetAgentStats(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, writers, stats.Matches)
	assert.Equal(t, writers, stats.Games)
	assert.Equal(t, writers, stats.Wins)
	assert.Equal(t, -writers, stats.TotalPoints)

	stats, err = lb.GetAgentStats(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, writers, stats.Losses)
	assert.Equal(t, -3*writers, stats.TotalPoints)
}

func TestLeaderboard_RecordMatch_NothingPlayed(t *testing.T) {
	t.Parallel()

	lb := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordMatch(ctx, match.NewSummary("m", []string{"a", "b"}, 4)))
	stats, err := lb.GetAgentStats(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestLeaderboard_GetLeaderboard(t *testing.T) {
	t.Parallel()

	lb := newTestLeaderboard(t)
	ctx := context.Background()

	s := summaryOf("m1", []string{"good", "bad", "mid"},
		[]int{-1, -10, -4},
		[]int{-3, -8, -4},
	)
	require.NoError(t, lb.RecordMatch(ctx, s))

	entries, err := lb.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "good", entries[0].Name)
	assert.Equal(t, 1, entries[0].Rank)
	assert.InDelta(t, -2.0, entries[0].AveragePoints, 1e-9)
	assert.InDelta(t, 100.0, entries[0].WinRate, 1e-9)
	assert.Equal(t, "mid", entries[1].Name)
	assert.Equal(t, "bad", entries[2].Name)
	assert.Equal(t, 3, entries[2].Rank)

	top, err := lb.GetLeaderboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "good", top[0].Name)

	none, err := lb.GetLeaderboard(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLeaderboard_GetAgentRank(t *testing.T) {
	t.Parallel()

	lb := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordMatch(ctx, summaryOf("m", []string{"a", "b"}, []int{-6, -2})))

	rank, err := lb.GetAgentRank(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)

	rank, err = lb.GetAgentRank(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	rank, err = lb.GetAgentRank(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rank)
}

func TestConnect(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb, err := Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = Connect(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
