package match

import (
	"slices"
	"time"
)

// GameResult is the outcome of one game of a match.
type GameResult struct {
	Index   int
	Scores  []int
	Elapsed time.Duration
	Err     error
}

// Failure records a game abandoned because an agent broke its contract.
type Failure struct {
	Game int
	Err  error
}

// Summary aggregates the games of a match.
type Summary struct {
	MatchID string
	Players []string // agent name per seat
	Games   int      // games scheduled

	Scores   [][]int // per played game, per seat
	Totals   []int
	Wins     []int
	Draws    int
	Failures []Failure

	Elapsed time.Duration // summed game time
	Wall    time.Duration
}

// NewSummary starts an empty summary for games scheduled games.
func NewSummary(id string, players []string, games int) *Summary {
	return &Summary{
		MatchID: id,
		Players: slices.Clone(players),
		Games:   games,
		Totals:  make([]int, len(players)),
		Wins:    make([]int, len(players)),
	}
}

// Played is the number of games that finished normally.
func (s *Summary) Played() int {
	return len(s.Scores)
}

// Completed counts finished and abandoned games.
func (s *Summary) Completed() int {
	return len(s.Scores) + len(s.Failures)
}

// Add records one game result.
func (s *Summary) Add(r GameResult) {
	s.Elapsed += r.Elapsed
	if r.Err != nil {
		s.Failures = append(s.Failures, Failure{Game: r.Index, Err: r.Err})
		return
	}

	s.Scores = append(s.Scores, r.Scores)
	best := slices.Max(r.Scores)
	winner, winners := 0, 0
	for p, score := range r.Scores {
		s.Totals[p] += score
		if score == best {
			winner = p
			winners++
		}
	}
	if winners == 1 {
		s.Wins[winner]++
	} else {
		s.Draws++
	}
}

// Average is a seat's mean score per played game.
func (s *Summary) Average(player int) float64 {
	if s.Played() == 0 {
		return 0
	}
	return float64(s.Totals[player]) / float64(s.Played())
}

// WinRate is the share of played games the seat won outright.
func (s *Summary) WinRate(player int) float64 {
	return float64(s.Wins[player]) / float64(max(1, s.Played()))
}

// DrawRate is the share of played games without a single winner.
func (s *Summary) DrawRate() float64 {
	return float64(s.Draws) / float64(max(1, s.Played()))
}

// AverageTime is the mean time spent per completed game.
func (s *Summary) AverageTime() time.Duration {
	if s.Completed() == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Completed())
}

// Remaining estimates the time left for the scheduled games.
func (s *Summary) Remaining() time.Duration {
	return s.AverageTime() * time.Duration(s.Games-s.Completed())
}

// Snapshot returns a copy that stays valid while the match goes on. Per-game
// score slices are never modified once added, so they are shared.
func (s *Summary) Snapshot() *Summary {
	c := *s
	c.Players = slices.Clone(s.Players)
	c.Scores = slices.Clone(s.Scores)
	c.Totals = slices.Clone(s.Totals)
	c.Wins = slices.Clone(s.Wins)
	c.Failures = slices.Clone(s.Failures)
	return &c
}
