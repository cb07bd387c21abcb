package rule

import (
	"slices"

	"github.com/palemoky/x-nimmt/internal/game/card"
)

// Play is one player's card for the current round.
type Play struct {
	Player int
	Card   card.Card
}

// Resolution records how a single play was resolved.
type Resolution struct {
	Play
	Points int
	Row    int
	Taken  bool
}

// Round is the outcome of resolving every play of a round.
type Round struct {
	Table       Table
	Resolutions []Resolution // in resolution order, ascending by card number
}

// Points returns the total delta the round gave to player.
func (r Round) Points(player int) int {
	sum := 0
	for _, res := range r.Resolutions {
		if res.Player == player {
			sum += res.Points
		}
	}
	return sum
}

// PlayRound resolves the plays against the table from the smallest card to the
// largest, so a card sees every smaller card of the same round already placed.
func PlayRound(t Table, plays []Play, takeThreshold int) Round {
	ordered := slices.Clone(plays)
	slices.SortStableFunc(ordered, func(a, b Play) int { return a.Card.Number - b.Card.Number })

	round := Round{Table: t, Resolutions: make([]Resolution, 0, len(ordered))}
	for _, p := range ordered {
		res := Resolve(round.Table, p.Card, takeThreshold)
		round.Table = res.Table
		round.Resolutions = append(round.Resolutions, Resolution{
			Play:   p,
			Points: res.Points,
			Row:    res.Row,
			Taken:  res.Taken,
		})
	}
	return round
}
