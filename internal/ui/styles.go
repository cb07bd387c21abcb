package ui

import "github.com/charmbracelet/lipgloss"

// Lipgloss Styles - shared by the printer and the progress TUI
var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	penaltyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Bold(true)
	takeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	winnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)
