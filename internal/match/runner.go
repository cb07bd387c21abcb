// Package match plays many games between a fixed set of agents and keeps
// the statistics.
package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/x-nimmt/internal/agent"
	"github.com/palemoky/x-nimmt/internal/apperrors"
	"github.com/palemoky/x-nimmt/internal/game"
	"github.com/palemoky/x-nimmt/internal/game/card"
	"github.com/palemoky/x-nimmt/internal/logger"
)

// Config describes a match.
type Config struct {
	Game       game.Settings
	Agents     []string // registry name per seat
	Games      int
	Seed       uint64
	Tournament bool // contract violations only abandon the offending game

	MaxDepth int
	Pruning  bool
}

// ProgressFunc is called after every completed game with a snapshot of the
// match so far. Calls never overlap.
type ProgressFunc func(s *Summary, last GameResult)

// Runner plays the games of one match.
type Runner struct {
	cfg       Config
	id        string
	game      *game.Game
	factories []agent.Factory
	decks     []card.Deck
	progress  ProgressFunc
}

// NewRunner validates the configuration and pre-shuffles every deck from the
// seed, so a match replays identically however it is scheduled.
func NewRunner(cfg Config) (*Runner, error) {
	s := cfg.Game
	s.NumPlayers = len(cfg.Agents)
	g, err := game.NewGame(s)
	if err != nil {
		return nil, err
	}
	if cfg.Games < 1 {
		return nil, apperrors.Wrap(apperrors.ErrNoGames, nil, "got %d", cfg.Games)
	}

	factories := make([]agent.Factory, len(cfg.Agents))
	for i, name := range cfg.Agents {
		if factories[i], err = agent.Lookup(name); err != nil {
			return nil, err
		}
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5851f42d4c957f2d))
	decks := make([]card.Deck, cfg.Games)
	for i := range decks {
		decks[i] = g.Deck.Shuffled(rng)
	}

	cfg.Game = s
	return &Runner{
		cfg:       cfg,
		id:        uuid.NewString(),
		game:      g,
		factories: factories,
		decks:     decks,
	}, nil
}

// ID identifies this match in logs and the leaderboard.
func (r *Runner) ID() string { return r.id }

// Deck is the unshuffled deck the match is played with.
func (r *Runner) Deck() card.Deck { return r.game.Deck }

// SetListener forwards game events of sequential runs to l.
func (r *Runner) SetListener(l game.Listener) { r.game.SetListener(l) }

// OnProgress registers the per-game callback.
func (r *Runner) OnProgress(f ProgressFunc) { r.progress = f }

// agentsFor builds fresh agents for one game. Seeds depend only on the game
// index and seat.
func (r *Runner) agentsFor(index int) []agent.Agent {
	agents := make([]agent.Agent, len(r.factories))
	for seat, f := range r.factories {
		s := r.game.AgentSettings()
		s.MaxDepth = r.cfg.MaxDepth
		s.Pruning = r.cfg.Pruning
		s.Seed = r.cfg.Seed + uint64(index)*1_000_003 + uint64(seat)
		agents[seat] = f(s)
	}
	return agents
}

func (r *Runner) playGame(ctx context.Context, g *game.Game, index int) GameResult {
	start := time.Now()
	scores, err := g.Play(ctx, r.agentsFor(index), r.decks[index])
	return GameResult{Index: index, Scores: scores, Elapsed: time.Since(start), Err: err}
}

// fatal decides whether a game error ends the whole match.
func (r *Runner) fatal(res GameResult) error {
	if res.Err == nil {
		return nil
	}
	if r.cfg.Tournament && apperrors.IsContractViolation(res.Err) {
		logger.LogError("match %s: game %d abandoned: %v", r.id, res.Index+1, res.Err)
		return nil
	}
	return fmt.Errorf("game %d: %w", res.Index+1, res.Err)
}

// Run plays every game in order on the calling goroutine.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	logger.LogInfo("match %s: %d games, agents %v, seed %d", r.id, r.cfg.Games, r.cfg.Agents, r.cfg.Seed)
	start := time.Now()
	summary := NewSummary(r.id, r.cfg.Agents, r.cfg.Games)

	for i := range r.decks {
		res := r.playGame(ctx, r.game, i)
		if err := r.fatal(res); err != nil {
			summary.Wall = time.Since(start)
			return summary, err
		}
		summary.Add(res)
		if r.progress != nil {
			r.progress(summary.Snapshot(), res)
		}
	}

	summary.Wall = time.Since(start)
	logger.LogInfo("match %s finished in %s", r.id, summary.Wall)
	return summary, nil
}

// RunParallel spreads the games over workers goroutines. Each worker owns its
// game and agents; results are merged in game order, so the summary matches
// Run. Listener events are not delivered.
func (r *Runner) RunParallel(ctx context.Context, workers int) (*Summary, error) {
	if workers <= 1 {
		return r.Run(ctx)
	}

	logger.LogInfo("match %s: %d games on %d workers, agents %v, seed %d",
		r.id, r.cfg.Games, workers, r.cfg.Agents, r.cfg.Seed)
	start := time.Now()

	results := make([]*GameResult, len(r.decks))
	live := NewSummary(r.id, r.cfg.Agents, r.cfg.Games)
	var mu sync.Mutex

	eg, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	eg.Go(func() error {
		defer close(jobs)
		for i := range r.decks {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	for range workers {
		eg.Go(func() error {
			g, err := game.NewGame(r.cfg.Game)
			if err != nil {
				return err
			}
			for i := range jobs {
				res := r.playGame(gctx, g, i)
				if err := r.fatal(res); err != nil {
					return err
				}

				mu.Lock()
				results[i] = &res
				live.Add(res)
				if r.progress != nil {
					r.progress(live.Snapshot(), res)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	err := eg.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary := NewSummary(r.id, r.cfg.Agents, r.cfg.Games)
	for _, res := range results {
		if res != nil {
			summary.Add(*res)
		}
	}
	summary.Wall = time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.LogError("match %s cancelled after %d games", r.id, summary.Completed())
		}
		return summary, err
	}
	logger.LogInfo("match %s finished in %s", r.id, summary.Wall)
	return summary, nil
}
