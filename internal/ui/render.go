// Package ui renders match output for the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/palemoky/x-nimmt/internal/game"
	"github.com/palemoky/x-nimmt/internal/game/card"
	"github.com/palemoky/x-nimmt/internal/game/rule"
	"github.com/palemoky/x-nimmt/internal/match"
)

// FormatDuration 格式化耗时，如 "1 h, 2 min, 5 s"，不足一秒保留毫秒
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	var sb strings.Builder
	if secs > 3600 {
		hours := int(secs / 3600)
		fmt.Fprintf(&sb, "%d h, ", hours)
		secs -= float64(hours) * 3600
	}
	if secs > 60 {
		minutes := int(secs / 60)
		fmt.Fprintf(&sb, "%d min, ", minutes)
		secs -= float64(minutes) * 60
	}
	if secs < 1 {
		fmt.Fprintf(&sb, "%.3f s", secs)
	} else {
		fmt.Fprintf(&sb, "%d s", int(secs))
	}
	return sb.String()
}

// PlayerLabel 如 "Player 2 (random)"
func PlayerLabel(players []string, p int) string {
	return fmt.Sprintf("Player %d (%s)", p+1, players[p])
}

// RenderSettings 渲染游戏设置
func RenderSettings(deck card.Deck, s game.Settings) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("XNimmt! game settings:"))
	sb.WriteString("\n")
	cards := make([]string, len(deck))
	for i, c := range deck {
		cards[i] = c.String()
	}
	fmt.Fprintf(&sb, " %s %s\n", labelStyle.Render("Deck:"), strings.Join(cards, " "))
	fmt.Fprintf(&sb, " %s %d\n", labelStyle.Render("Cards in hand:"), s.MaxCardsInHand)
	fmt.Fprintf(&sb, " %s %d\n", labelStyle.Render("Xth card takes:"), s.XthCardTakes)
	fmt.Fprintf(&sb, " %s %d\n", labelStyle.Render("Num rows:"), s.NumRows)
	fmt.Fprintf(&sb, " %s %d", labelStyle.Render("Num players:"), s.NumPlayers)
	return sb.String()
}

// RenderTable 渲染桌面，每行一排牌
func RenderTable(t rule.Table) string {
	lines := make([]string, len(t))
	for r, row := range t {
		lines[r] = fmt.Sprintf("  %d: [%s]  %s", r+1, row, penaltyStyle.Render(fmt.Sprintf("-%d", row.Points())))
	}
	return strings.Join(lines, "\n")
}

// RenderSelection 渲染一次出牌选择
func RenderSelection(players []string, p int, c card.Card) string {
	return fmt.Sprintf("  %s selected card %s.", PlayerLabel(players, p), c)
}

// RenderResolution 渲染一张牌的结算
func RenderResolution(players []string, res rule.Resolution) string {
	who := PlayerLabel(players, res.Player)
	if res.Taken {
		return takeStyle.Render(fmt.Sprintf("  - Resolve: %s %s takes row %d with %d.", who, res.Card, res.Row+1, res.Points))
	}
	return fmt.Sprintf("  - Resolve: %s %s to row %d.", who, res.Card, res.Row+1)
}

// RenderGameScore 渲染单局得分
func RenderGameScore(players []string, game int, scores []int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  Score in game %d: ", game)
	for p, score := range scores {
		fmt.Fprintf(&sb, "\n    %s: %.2f", PlayerLabel(players, p), float64(score))
	}
	return sb.String()
}

// RenderAverages 渲染当前平均分与耗时估计
func RenderAverages(s *match.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Average score after game %d: ", s.Played())
	for p := range s.Players {
		fmt.Fprintf(&sb, "\n  %s: %.2f", PlayerLabel(s.Players, p), s.Average(p))
	}
	sb.WriteString("\n")
	if s.Completed() < s.Games {
		avg := s.AverageTime()
		fmt.Fprintf(&sb, "Average running time per game %s.\n", FormatDuration(avg))
		fmt.Fprintf(&sb, "Time remaining %s.\n", FormatDuration(s.Remaining()))
		fmt.Fprintf(&sb, "Expected total running time %s.", FormatDuration(avg*time.Duration(s.Games)))
	} else {
		fmt.Fprintf(&sb, "Total running time %s.", FormatDuration(s.Elapsed))
	}
	return sb.String()
}

// RenderWinRates 渲染胜率汇总
func RenderWinRates(s *match.Summary) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf(" === Win rate over %d games ===", s.Played())))

	best := 0
	for p := range s.Players {
		if s.Wins[p] > s.Wins[best] {
			best = p
		}
	}
	for p := range s.Players {
		line := fmt.Sprintf("  %s: %d wins  (%.1f%%)", PlayerLabel(s.Players, p), s.Wins[p], s.WinRate(p)*100)
		if p == best && s.Wins[p] > 0 {
			line = winnerStyle.Render(line)
		}
		sb.WriteString("\n" + line)
	}
	if s.Draws > 0 {
		fmt.Fprintf(&sb, "\n  Draws: %d (%.1f%%)", s.Draws, s.DrawRate()*100)
	}
	for _, f := range s.Failures {
		sb.WriteString("\n" + errorStyle.Render(fmt.Sprintf("  Game %d abandoned: %v", f.Game+1, f.Err)))
	}
	return sb.String()
}
