package card

import (
	"slices"
	"strings"
)

// Hand is the set of cards a player holds, kept ascending by number.
type Hand []Card

// NewHand copies cards into a sorted hand.
func NewHand(cards ...Card) Hand {
	h := make(Hand, len(cards))
	copy(h, cards)
	h.Sort()
	return h
}

// Sort orders the hand by card number.
func (h Hand) Sort() {
	slices.SortFunc(h, func(a, b Card) int { return a.Number - b.Number })
}

// Find returns the card with the given number.
func (h Hand) Find(number int) (Card, bool) {
	i := slices.IndexFunc(h, func(c Card) bool { return c.Number == number })
	if i < 0 {
		return Card{}, false
	}
	return h[i], true
}

// Contains reports whether the hand holds the card number.
func (h Hand) Contains(number int) bool {
	_, ok := h.Find(number)
	return ok
}

// Remove returns a new hand without the card number. The receiver is not modified.
func (h Hand) Remove(number int) Hand {
	out := make(Hand, 0, len(h))
	for _, c := range h {
		if c.Number != number {
			out = append(out, c)
		}
	}
	return out
}

// Numbers returns the card numbers in hand order.
func (h Hand) Numbers() []int {
	out := make([]int, len(h))
	for i, c := range h {
		out[i] = c.Number
	}
	return out
}

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
