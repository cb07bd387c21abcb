package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/palemoky/x-nimmt/internal/game"
	"github.com/palemoky/x-nimmt/internal/game/card"
	"github.com/palemoky/x-nimmt/internal/game/rule"
	"github.com/palemoky/x-nimmt/internal/match"
)

// Verbose levels
const (
	VerboseSilent = 0 // only the final win rates
	VerboseGames  = 1 // selections, round-end tables and per-game scores
	VerboseRounds = 2 // adds hand-size headers and every resolution
)

// Printer writes match output as plain text. It listens to game events for
// round details and to match progress for per-game summaries.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	verbose int
	players []string
	games   int

	deal      int // deals seen so far
	cardsLeft int
	selected  int // selections in the current round
}

var _ game.Listener = (*Printer)(nil)

// NewPrinter 创建文本输出器
func NewPrinter(w io.Writer, verbose int, players []string, games int) *Printer {
	return &Printer{w: w, verbose: verbose, players: players, games: games}
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}

// Settings prints the game settings and the deck.
func (p *Printer) Settings(deck card.Deck, s game.Settings) {
	if p.verbose < VerboseGames {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(RenderSettings(deck, s))
	p.println(titleStyle.Render("Game play:"))
	p.println(fmt.Sprintf("  Num rounds:       %d", p.games))
}

func (p *Printer) OnDeal(hands []card.Hand, table rule.Table) {
	if p.verbose < VerboseGames {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deal++
	p.cardsLeft = len(hands[0])
	p.selected = 0
	p.println(fmt.Sprintf("\nRound %d/%d", p.deal, p.games))
	p.println("\n  Table:")
	p.println(RenderTable(table))
}

func (p *Printer) OnSelect(player int, c card.Card) {
	if p.verbose < VerboseGames {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == 0 && p.verbose >= VerboseRounds {
		if p.cardsLeft == 1 {
			p.println("\n  - 1 card left in hand -")
		} else {
			p.println(fmt.Sprintf("\n  - %d cards left in hand -", p.cardsLeft))
		}
	}
	p.selected++
	p.println(RenderSelection(p.players, player, c))
}

// OnRound prints the resolutions at VerboseRounds and the resulting table at
// VerboseGames and above.
func (p *Printer) OnRound(round rule.Round) {
	if p.verbose < VerboseGames {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verbose >= VerboseRounds {
		for _, res := range round.Resolutions {
			p.println(RenderResolution(p.players, res))
		}
	}
	p.println("  Table:")
	p.println(RenderTable(round.Table))
	p.cardsLeft--
	p.selected = 0
}

// Progress is a match.ProgressFunc.
func (p *Printer) Progress(s *match.Summary, last match.GameResult) {
	if p.verbose < VerboseGames {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	// Parallel runs deliver no deal events, so the header is printed here.
	if p.deal != last.Index+1 {
		p.println(fmt.Sprintf("\nRound %d/%d", last.Index+1, s.Games))
	}
	if last.Err != nil {
		p.println(errorStyle.Render(fmt.Sprintf("  Game %d abandoned: %v", last.Index+1, last.Err)))
	} else {
		p.println(RenderGameScore(s.Players, last.Index+1, last.Scores))
	}
	p.println("\n" + RenderAverages(s))
}

// Finish prints the final statistics whatever the verbose level.
func (p *Printer) Finish(s *match.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println("\n" + RenderWinRates(s))
}
