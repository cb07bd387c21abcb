package agent

import (
	"math"
	"slices"

	"github.com/palemoky/x-nimmt/internal/apperrors"
	"github.com/palemoky/x-nimmt/internal/game/card"
	"github.com/palemoky/x-nimmt/internal/game/rule"
	"github.com/palemoky/x-nimmt/internal/logger"
)

const (
	// ExpectimaxName is the registry name of the search agent.
	ExpectimaxName = "expectimax"

	// DefaultMaxDepth trades strength for speed; the branching factor is the
	// number of unseen cards, so every extra level is far more expensive.
	DefaultMaxDepth = 3
)

// SearchStats counts the work done by the last decision.
type SearchStats struct {
	Nodes   int
	Cutoffs int
}

// Expectimax searches simultaneous single-card moves against one opponent
// whose card is drawn uniformly from the unseen set.
//
// Values are expected penalty points still to come, so lower is better and
// every value is non-negative. The cutoffs rely on that: a partial sum divided
// by the full branch count is a lower bound on the final average.
type Expectimax struct {
	deck      map[int]card.Card
	threshold int
	maxDepth  int
	pruning   bool
	counter   *CardCounter
	stats     SearchStats
}

// NewExpectimax builds a search agent; MaxDepth <= 0 selects DefaultMaxDepth.
func NewExpectimax(s Settings) *Expectimax {
	depth := s.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	return &Expectimax{
		deck:      s.Deck.Lookup(),
		threshold: s.XthCardTakes,
		maxDepth:  depth,
		pruning:   s.Pruning,
		counter:   NewCardCounter(s.Deck),
	}
}

func (e *Expectimax) Name() string { return ExpectimaxName }

// ResetForNewDeal drops the table history of the previous deal.
func (e *Expectimax) ResetForNewDeal() {
	e.counter.Reset()
}

// Stats reports the node and cutoff counts of the last Choose call.
func (e *Expectimax) Stats() SearchStats {
	return e.stats
}

// Choose picks the card with the lowest expected penalty, ties going to the
// smaller card number.
func (e *Expectimax) Choose(hand card.Hand, table rule.Table) (int, error) {
	if len(hand) == 0 {
		return 0, apperrors.Wrap(apperrors.ErrAgentFailed, nil, "empty hand")
	}

	e.counter.Observe(table)
	unseen := e.counter.Unseen(hand, table)

	sorted := card.NewHand(hand...)
	e.stats = SearchStats{}

	best, bestNumber := math.Inf(1), sorted[0].Number
	for _, c := range sorted {
		cutoff := math.Inf(1)
		if e.pruning {
			cutoff = best
		}
		score := e.search(table, sorted, unseen, c, e.maxDepth, cutoff)
		if score < best || (score == best && c.Number < bestNumber) {
			best, bestNumber = score, c.Number
		}
	}

	logger.LogDebug("expectimax: played %d score=%.3f unseen=%d nodes=%d cutoffs=%d",
		bestNumber, best, len(unseen), e.stats.Nodes, e.stats.Cutoffs)
	return bestNumber, nil
}

// search returns the expected penalty of playing mine now and then playing
// optimally for depth-1 more rounds. Once the running lower bound reaches
// cutoff the bound is returned instead of the exact average.
func (e *Expectimax) search(t rule.Table, hand card.Hand, unseen []int, mine card.Card, depth int, cutoff float64) float64 {
	e.stats.Nodes++
	if depth == 0 {
		return e.Evaluate(t, hand, unseen)
	}

	rest := hand.Remove(mine.Number)

	replies := unseen
	if len(replies) == 0 {
		// Nobody left to answer: the round is my card alone.
		replies = []int{0}
	}
	branches := float64(len(replies))

	total := 0.0
	for i, opp := range replies {
		plays := []rule.Play{{Player: 0, Card: mine}}
		if opp != 0 {
			plays = append(plays, rule.Play{Player: 1, Card: e.deck[opp]})
		}
		round := rule.PlayRound(t, plays, e.threshold)
		cost := float64(-round.Points(0))
		nextUnseen := without(unseen, mine.Number, opp)

		var value float64
		if depth-1 == 0 || len(rest) == 0 {
			value = cost + e.Evaluate(round.Table, rest, nextUnseen)
		} else {
			value = cost + e.bestFollowUp(round.Table, rest, nextUnseen, depth-1)
		}

		total += value
		if bound := total / branches; bound >= cutoff {
			if i < len(replies)-1 {
				e.stats.Cutoffs++
			}
			return bound
		}
	}
	return total / branches
}

// bestFollowUp is the cheapest continuation over the cards left in hand. Each
// child is cut off at the best sibling so far, which never changes the minimum.
func (e *Expectimax) bestFollowUp(t rule.Table, hand card.Hand, unseen []int, depth int) float64 {
	best := math.Inf(1)
	for _, next := range hand {
		cutoff := math.Inf(1)
		if e.pruning {
			cutoff = best
		}
		if v := e.search(t, hand, unseen, next, depth, cutoff); v < best {
			best = v
			if best == 0 {
				break
			}
		}
	}
	return best
}

// Evaluate is the heuristic penalty estimate of a position: the cheapest
// immediate penalty among cards in hand, plus the chance that the next unseen
// card undercuts every row times the cost of the row it would take.
func (e *Expectimax) Evaluate(t rule.Table, hand card.Hand, unseen []int) float64 {
	immediate := 0.0
	if len(hand) > 0 {
		cheapest := math.MaxInt
		for _, c := range hand {
			cheapest = min(cheapest, rule.Penalty(t, c, e.threshold))
		}
		immediate = float64(cheapest)
	}

	forced := 0.0
	if len(t) > 0 && len(unseen) > 0 {
		minTop := t.MinTop()
		under := 0
		for _, n := range unseen {
			if n < minTop {
				under++
			}
		}
		p := float64(under) / float64(len(unseen))
		forced = p * float64(t[t.CheapestRow()].Points())
	}

	return immediate + forced
}

// without returns unseen minus the given numbers, keeping order.
func without(unseen []int, drop ...int) []int {
	out := make([]int, 0, len(unseen))
	for _, n := range unseen {
		if !slices.Contains(drop, n) {
			out = append(out, n)
		}
	}
	return out
}
