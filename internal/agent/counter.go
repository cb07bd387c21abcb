package agent

import (
	"slices"

	"github.com/palemoky/x-nimmt/internal/game/card"
	"github.com/palemoky/x-nimmt/internal/game/rule"
)

// CardCounter tracks the card numbers the owner has not seen during a deal.
type CardCounter struct {
	all     []int
	removed map[int]struct{}
	prev    rule.Table
}

// NewCardCounter creates a counter for the given deck
func NewCardCounter(deck card.Deck) *CardCounter {
	all := deck.Numbers()
	slices.Sort(all)
	return &CardCounter{
		all:     all,
		removed: make(map[int]struct{}),
	}
}

// Reset forgets everything learned during the current deal
func (cc *CardCounter) Reset() {
	clear(cc.removed)
	cc.prev = nil
}

// Observe records a new table snapshot. Cards that were on the previous
// snapshot and are gone now were taken with a row and stay out of play.
func (cc *CardCounter) Observe(table rule.Table) {
	if cc.prev != nil {
		current := make(map[int]struct{})
		for _, n := range table.Numbers() {
			current[n] = struct{}{}
		}
		for _, n := range cc.prev.Numbers() {
			if _, ok := current[n]; !ok {
				cc.removed[n] = struct{}{}
			}
		}
	}
	cc.prev = table.Clone()
}

// Unseen returns, ascending, the deck numbers that are not in hand, not on the
// table and not previously taken.
func (cc *CardCounter) Unseen(hand card.Hand, table rule.Table) []int {
	seen := make(map[int]struct{}, len(hand)+len(cc.removed)+len(table)*2)
	for _, c := range hand {
		seen[c.Number] = struct{}{}
	}
	for _, n := range table.Numbers() {
		seen[n] = struct{}{}
	}

	unseen := make([]int, 0, len(cc.all))
	for _, n := range cc.all {
		if _, ok := seen[n]; ok {
			continue
		}
		if _, ok := cc.removed[n]; ok {
			continue
		}
		unseen = append(unseen, n)
	}
	return unseen
}

// Removed returns the numbers known to have been taken this deal
func (cc *CardCounter) Removed() []int {
	out := make([]int, 0, len(cc.removed))
	for n := range cc.removed {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
