package card

import (
	"fmt"
	"math/rand/v2"
)

// Card 定义一张牌. Number is unique within a deck and is the card's identity.
type Card struct {
	Number int
	Points int
}

func (c Card) String() string {
	return fmt.Sprintf("%d(%d)", c.Number, c.Points)
}

// pointRules are applied in order; a number matching several rules keeps the
// points of the last one.
var pointRules = []struct {
	divisor int
	points  int
}{
	{3, 2},
	{5, 3},
	{7, 5},
}

const (
	defaultPoints = 1
	middlePoints  = 7
)

// PointsFor returns the penalty value of card number n in a deck of size.
func PointsFor(n, size int) int {
	if n == size/2 {
		return middlePoints
	}
	points := defaultPoints
	for _, r := range pointRules {
		if n%r.divisor == 0 {
			points = r.points
		}
	}
	return points
}

// Deck 定义一副牌
type Deck []Card

// NewDeck builds the cards numbered 1..size.
func NewDeck(size int) Deck {
	deck := make(Deck, 0, size)
	for n := 1; n <= size; n++ {
		deck = append(deck, Card{Number: n, Points: PointsFor(n, size)})
	}
	return deck
}

// Shuffled returns a permuted copy of the deck; the receiver is left untouched.
func (d Deck) Shuffled(rng *rand.Rand) Deck {
	out := make(Deck, len(d))
	copy(out, d)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Lookup indexes the deck by card number.
func (d Deck) Lookup() map[int]Card {
	m := make(map[int]Card, len(d))
	for _, c := range d {
		m[c.Number] = c
	}
	return m
}

// Numbers returns every card number in deck order.
func (d Deck) Numbers() []int {
	out := make([]int, len(d))
	for i, c := range d {
		out[i] = c.Number
	}
	return out
}
