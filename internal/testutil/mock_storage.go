//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/x-nimmt/internal/match"
	"github.com/palemoky/x-nimmt/internal/storage"
)

// MockLeaderboard 排行榜 mock，实现命令行所需的 RecordMatch 与 GetLeaderboard
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordMatch(ctx context.Context, s *match.Summary) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, limit int) ([]*storage.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.LeaderboardEntry), args.Error(1)
}
