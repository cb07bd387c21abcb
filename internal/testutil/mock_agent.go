//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/x-nimmt/internal/game/card"
	"github.com/palemoky/x-nimmt/internal/game/rule"
)

// MockAgent 智能体 mock
type MockAgent struct {
	mock.Mock
	AgentName string
	Resets    int
}

func (m *MockAgent) Name() string {
	return m.AgentName
}

func (m *MockAgent) Choose(hand card.Hand, table rule.Table) (int, error) {
	args := m.Called(hand, table)
	return args.Int(0), args.Error(1)
}

func (m *MockAgent) ResetForNewDeal() {
	m.Resets++
}

// LowestAgent always plays its smallest card.
type LowestAgent struct {
	Resets int
}

func (a *LowestAgent) Name() string { return "lowest" }

func (a *LowestAgent) Choose(hand card.Hand, _ rule.Table) (int, error) {
	return hand[0].Number, nil
}

func (a *LowestAgent) ResetForNewDeal() { a.Resets++ }

// PanicAgent panics on every decision.
type PanicAgent struct{}

func (PanicAgent) Name() string { return "panic" }

func (PanicAgent) Choose(card.Hand, rule.Table) (int, error) {
	panic("agent exploded")
}
