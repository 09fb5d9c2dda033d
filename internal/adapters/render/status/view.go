package status

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
)

func renderView(header string, entries []Entry, s styles) string {
	lines := []string{
		header,
		s.header.Render(fmt.Sprintf("sent: %d", len(entries))),
	}

	if len(entries) == 0 {
		lines = append(lines, s.empty.Render("Waiting for changes..."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, entry := range entries {
		lines = append(lines, renderEntry(entry, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderEntry(entry Entry, s styles) string {
	stamp := s.time.Render(entry.At.Format("15:04:05"))
	file := s.file.Render(displayPath(entry))

	if entry.Err != nil {
		return fmt.Sprintf("%s %s %s %s", s.failure.Render("x"), stamp, file, s.failure.Render(entry.Err.Error()))
	}

	return fmt.Sprintf("%s %s %s", s.success.Render("ok"), stamp, file)
}

func displayPath(entry Entry) string {
	if entry.Workspace == "" {
		return entry.File
	}

	rel, err := filepath.Rel(filepath.Dir(entry.Workspace), entry.File)
	if err != nil {
		return entry.File
	}
	return rel
}
