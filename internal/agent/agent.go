// Package agent contains the decision-making players of X Nimmt!.
package agent

import (
	"slices"
	"sync"

	"github.com/palemoky/x-nimmt/internal/apperrors"
	"github.com/palemoky/x-nimmt/internal/game/card"
	"github.com/palemoky/x-nimmt/internal/game/rule"
)

// Agent chooses which card to play each round.
type Agent interface {
	Name() string
	// Choose returns the number of a card held in hand.
	Choose(hand card.Hand, table rule.Table) (int, error)
}

// DealResetter is implemented by agents that keep per-deal state.
type DealResetter interface {
	ResetForNewDeal()
}

// Settings describes the game an agent is built for, plus search tuning.
type Settings struct {
	Deck           card.Deck
	NumRows        int
	MaxCardsInHand int
	XthCardTakes   int

	MaxDepth int
	Pruning  bool
	Seed     uint64
}

// Factory builds a fresh agent instance.
type Factory func(Settings) Agent

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func init() {
	Register(RandomName, func(s Settings) Agent { return NewRandom(s) })
	Register(ExpectimaxName, func(s Settings) Agent { return NewExpectimax(s) })
}

// Register makes a factory available under name, replacing any previous one.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrUnknownAgent, nil, "%q (known: %v)", name, namesLocked())
	}
	return f, nil
}

// New builds the agent registered under name.
func New(name string, s Settings) (Agent, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return f(s), nil
}

// Names lists registered agent names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
