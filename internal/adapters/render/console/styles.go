package console

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	module  lipgloss.Style
	detail  lipgloss.Style
	success lipgloss.Style
	notice  lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		module:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		empty:   lipgloss.NewStyle().Faint(true),
	}
}
