package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/x-nimmt/internal/config"
	"github.com/palemoky/x-nimmt/internal/match"
	"github.com/palemoky/x-nimmt/internal/storage"
	"github.com/palemoky/x-nimmt/internal/testutil"
	"github.com/palemoky/x-nimmt/internal/ui"
)

var _ leaderboard = (*testutil.MockLeaderboard)(nil)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseFlags_OnlyExplicitFlagsOverride(t *testing.T) {
	t.Parallel()

	o, err := parseFlags([]string{"-games", "7", "-players", "random, expectimax", "-seed", "-1"})
	require.NoError(t, err)

	cfg := config.Default()
	o.apply(cfg)
	assert.Equal(t, 7, cfg.Game.Games)
	assert.Equal(t, int64(-1), cfg.Game.Seed)
	assert.Equal(t, []string{"random", "expectimax"}, cfg.Game.Players)
	assert.Equal(t, 1, cfg.Match.Workers, "unset flags keep the configured value")

	_, err = parseFlags([]string{"-nope"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Setenv("XNIMMT_LOG_DIR", t.TempDir())

	path := writeConfig(t, `
game:
  players: [expectimax, random]
  games: 4
  verbose: 1
`)

	var out bytes.Buffer
	code := run(context.Background(), []string{"-config", path, "-workers", "2"}, &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "XNimmt! game settings:")
	assert.Contains(t, out.String(), "=== Win rate over 4 games ===")
}

func TestRun_ConfigErrors(t *testing.T) {
	t.Setenv("XNIMMT_LOG_DIR", t.TempDir())

	var out bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"-config", "/nonexistent/config.yaml"}, &out))
	assert.Equal(t, 2, run(context.Background(), []string{"-config", writeConfig(t, "{}"), "-players", "random"}, &out))
	assert.Equal(t, 2, run(context.Background(), []string{"-config", writeConfig(t, "{}"), "-players", "random,human"}, &out))
}

func TestRun_RecordsToLeaderboard(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("XNIMMT_LOG_DIR", t.TempDir())
	t.Setenv("XNIMMT_REDIS_ENABLED", "true")
	t.Setenv("XNIMMT_REDIS_ADDR", mr.Addr())

	var out bytes.Buffer
	code := run(context.Background(), []string{"-config", writeConfig(t, "{}"), "-games", "3"}, &out)
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), "=== Leaderboard ===")
	assert.Contains(t, out.String(), "expectimax")
	assert.True(t, mr.Exists("xnimmt:leaderboard:avg"))
}

func newTestRunner(t *testing.T, games int) *match.Runner {
	t.Helper()
	cfg := config.Default()
	cfg.Game.Games = games
	r, err := match.NewRunner(cfg.MatchConfig(1))
	require.NoError(t, err)
	return r
}

func TestRunInBackground_ClosesUpdates(t *testing.T) {
	t.Parallel()

	updates := make(chan tea.Msg, 16)
	done := runInBackground(context.Background(), newTestRunner(t, 3), 2, updates)

	var msgs []tea.Msg
	for msg := range updates {
		msgs = append(msgs, msg)
	}
	require.Len(t, msgs, 4)
	for _, msg := range msgs[:3] {
		assert.IsType(t, ui.ProgressMsg{}, msg)
	}
	final, ok := msgs[3].(ui.DoneMsg)
	require.True(t, ok)
	require.NoError(t, final.Err)
	assert.Equal(t, 3, final.Summary.Played())

	res := <-done
	require.NoError(t, res.err)
	assert.Same(t, final.Summary, res.summary)
}

func TestRunInBackground_ClosesUpdatesWhenNobodyListens(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	updates := make(chan tea.Msg)
	res := <-runInBackground(ctx, newTestRunner(t, 3), 1, updates)
	assert.ErrorIs(t, res.err, context.Canceled)

	// A listen left pending by a quit UI returns instead of blocking.
	model := ui.NewProgressModel("x", 3, updates, nil)
	assert.IsType(t, ui.DoneMsg{}, model.Init()())
}

func TestPublish(t *testing.T) {
	t.Parallel()

	s := match.NewSummary("m1", []string{"expectimax", "random"}, 1)
	s.Add(match.GameResult{Scores: []int{-1, -5}})

	lb := &testutil.MockLeaderboard{}
	lb.On("RecordMatch", mock.Anything, s).Return(nil)
	lb.On("GetLeaderboard", mock.Anything, leaderboardSize).Return([]*storage.LeaderboardEntry{
		{Rank: 1, Name: "expectimax", Games: 1, AveragePoints: -1, WinRate: 100},
		{Rank: 2, Name: "random", Games: 1, AveragePoints: -5},
	}, nil)

	var out bytes.Buffer
	require.NoError(t, publish(context.Background(), lb, s, &out))
	lb.AssertExpectations(t)
	assert.Contains(t, out.String(), " 1. expectimax   avg   -1.00  win rate 100.0%  (1 games)")
	assert.Contains(t, out.String(), " 2. random")
}

func TestPublish_RecordFails(t *testing.T) {
	t.Parallel()

	s := match.NewSummary("m2", []string{"a", "b"}, 1)
	lb := &testutil.MockLeaderboard{}
	lb.On("RecordMatch", mock.Anything, s).Return(errors.New("connection refused"))

	err := publish(context.Background(), lb, s, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "m2")
	lb.AssertNotCalled(t, "GetLeaderboard", mock.Anything, mock.Anything)
}
