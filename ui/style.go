package ui

import "github.com/charmbracelet/lipgloss"

var (
	clrBorder = lipgloss.Color("#30363d")
	clrSubtle = lipgloss.Color("#8b949e")
	clrGold   = lipgloss.Color("#e3b341")
	clrGreen  = lipgloss.Color("#3fb950")
	clrRed    = lipgloss.Color("#f85149")
	clrWhite  = lipgloss.Color("#e6edf3")
	clrTitle  = lipgloss.Color("#58a6ff")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

var (
	titleStyle   = bold(clrTitle)
	subtleStyle  = fg(clrSubtle)
	errorStyle   = fg(clrRed)
	selectStyle  = bold(clrGold)
	targetStyle  = bold(clrGreen).Underline(true)
	focusStyle   = lipgloss.NewStyle().Reverse(true)
	buttonStyle  = fg(clrWhite)
	labelStyle   = fg(clrSubtle).Width(10)
	consoleStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(clrBorder)
)

func box(highlight bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(clrBorder).
		Padding(0, 1).
		MarginRight(1)
	if highlight {
		s = s.BorderForeground(clrGreen)
	}
	return s
}
