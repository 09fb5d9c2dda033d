package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	time    lipgloss.Style
	file    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		time:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		file:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		empty:   lipgloss.NewStyle().Faint(true),
	}
}
