package game

import (
	"context"
	"fmt"

	"github.com/palemoky/x-nimmt/internal/agent"
	"github.com/palemoky/x-nimmt/internal/apperrors"
	"github.com/palemoky/x-nimmt/internal/game/card"
	"github.com/palemoky/x-nimmt/internal/game/rule"
	"github.com/palemoky/x-nimmt/internal/logger"
)

// Settings 定义一局游戏的参数
type Settings struct {
	NumPlayers       int
	NumRows          int
	NumCardsInDeck   int
	MaxCardsInHand   int
	XthCardTakes     int
	AutoPlayLastCard bool // 最后一张牌自动打出，不询问智能体
}

// CardsNeeded is the minimum deck size for one deal.
func (s Settings) CardsNeeded() int {
	return s.MaxCardsInHand*s.NumPlayers + s.NumRows
}

// Validate reports the first configuration error in s.
func (s Settings) Validate() error {
	switch {
	case s.NumPlayers < 2:
		return apperrors.Wrap(apperrors.ErrTooFewPlayers, nil, "got %d", s.NumPlayers)
	case s.NumRows < 1:
		return apperrors.Wrap(apperrors.ErrNoRows, nil, "got %d", s.NumRows)
	case s.MaxCardsInHand < 1:
		return apperrors.Wrap(apperrors.ErrBadHandSize, nil, "got %d", s.MaxCardsInHand)
	case s.XthCardTakes < 1:
		return apperrors.Wrap(apperrors.ErrBadThreshold, nil, "got %d", s.XthCardTakes)
	case s.NumCardsInDeck < s.CardsNeeded():
		return apperrors.Wrap(apperrors.ErrDeckTooSmall, nil,
			"need %d cards for %d players with %d in hand and %d rows, got %d",
			s.CardsNeeded(), s.NumPlayers, s.MaxCardsInHand, s.NumRows, s.NumCardsInDeck)
	}
	return nil
}

// Listener receives the events of a deal, mostly for verbose output.
type Listener interface {
	OnDeal(hands []card.Hand, table rule.Table)
	OnSelect(player int, c card.Card)
	OnRound(round rule.Round)
}

// NopListener ignores every event.
type NopListener struct{}

func (NopListener) OnDeal([]card.Hand, rule.Table) {}
func (NopListener) OnSelect(int, card.Card)        {}
func (NopListener) OnRound(rule.Round)             {}

// Game 定义游戏状态
type Game struct {
	Settings Settings
	Deck     card.Deck

	listener Listener
}

// NewGame validates the settings and builds the deck.
func NewGame(s Settings) (*Game, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Game{
		Settings: s,
		Deck:     card.NewDeck(s.NumCardsInDeck),
		listener: NopListener{},
	}, nil
}

// SetListener replaces the event listener; nil restores the no-op listener.
func (g *Game) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	g.listener = l
}

// AgentSettings describes this game to an agent factory.
func (g *Game) AgentSettings() agent.Settings {
	return agent.Settings{
		Deck:           g.Deck,
		NumRows:        g.Settings.NumRows,
		MaxCardsInHand: g.Settings.MaxCardsInHand,
		XthCardTakes:   g.Settings.XthCardTakes,
	}
}

// Deal 发牌: hands first, then one starting card per row.
func (g *Game) Deal(deck card.Deck) ([]card.Hand, rule.Table, error) {
	s := g.Settings
	if len(deck) < s.CardsNeeded() {
		return nil, nil, apperrors.Wrap(apperrors.ErrDeckTooSmall, nil, "dealing from %d cards", len(deck))
	}

	hands := make([]card.Hand, s.NumPlayers)
	for p := range hands {
		hands[p] = card.NewHand(deck[:s.MaxCardsInHand]...)
		deck = deck[s.MaxCardsInHand:]
	}
	return hands, rule.NewTable(deck[:s.NumRows]...), nil
}

// Play runs one deal from deck and returns every player's score delta.
// Scores are zero or negative; closer to zero is better.
func (g *Game) Play(ctx context.Context, agents []agent.Agent, deck card.Deck) ([]int, error) {
	if len(agents) != g.Settings.NumPlayers {
		return nil, apperrors.Wrap(apperrors.ErrBadConfig, nil,
			"%d agents for %d players", len(agents), g.Settings.NumPlayers)
	}

	hands, table, err := g.Deal(deck)
	if err != nil {
		return nil, err
	}

	for _, a := range agents {
		if r, ok := a.(agent.DealResetter); ok {
			r.ResetForNewDeal()
		}
	}
	g.listener.OnDeal(hands, table)

	scores := make([]int, len(agents))
	for len(hands[0]) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		plays := make([]rule.Play, len(agents))
		for p, a := range agents {
			c, err := g.selectCard(p, a, hands[p], table)
			if err != nil {
				return nil, err
			}
			g.listener.OnSelect(p, c)
			plays[p] = rule.Play{Player: p, Card: c}
			hands[p] = hands[p].Remove(c.Number)
		}

		round := rule.PlayRound(table, plays, g.Settings.XthCardTakes)
		for _, res := range round.Resolutions {
			scores[res.Player] += res.Points
		}
		table = round.Table
		g.listener.OnRound(round)
	}

	return scores, nil
}

// selectCard asks the agent for a card and checks it is held.
func (g *Game) selectCard(player int, a agent.Agent, hand card.Hand, table rule.Table) (card.Card, error) {
	if len(hand) == 1 && g.Settings.AutoPlayLastCard {
		return hand[0], nil
	}

	number, err := choose(a, card.NewHand(hand...), table.Clone())
	if err != nil {
		return card.Card{}, err
	}

	c, ok := hand.Find(number)
	if !ok {
		return card.Card{}, apperrors.Wrap(apperrors.ErrCardNotInHand, nil,
			"agent %q (player %d) played %d holding %v", a.Name(), player+1, number, hand)
	}
	return c, nil
}

// choose shields the game from agent errors and panics.
func choose(a agent.Agent, hand card.Hand, table rule.Table) (number int, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			err = apperrors.Wrap(apperrors.ErrAgentFailed, fmt.Errorf("panic: %v", r), "agent %q", a.Name())
		}
	}()

	number, err = a.Choose(hand, table)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrAgentFailed, err, "agent %q", a.Name())
	}
	return number, nil
}
