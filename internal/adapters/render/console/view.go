package console

import (
	"fmt"

	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

func renderUnregistered(report domain.UnregisterReport, s styles) string {
	lines := []string{
		s.notice.Render(fmt.Sprintf("unregister %s", report.Identity)),
	}

	for _, class := range report.Unregistered {
		lines = append(lines, s.detail.Render(fmt.Sprintf("  - %s unregistered", class)))
	}
	for _, failure := range report.ClassFailures {
		lines = append(lines, s.failure.Render(fmt.Sprintf("  * %s: %v", failure.Class, failure.Err)))
	}
	if len(report.Evicted) > 0 {
		lines = append(lines, s.header.Render(fmt.Sprintf("  modules evicted: %d", len(report.Evicted))))
	}
	for _, failure := range report.EvictionFailures {
		lines = append(lines, s.failure.Render(fmt.Sprintf("  * %s: %v", failure.Module, failure.Err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderOutcome(outcome domain.Outcome, s styles) string {
	lines := []string{s.title.Render(outcomeTitle(outcome))}

	if outcome.Request.TargetFilePath != "" {
		lines = append(lines, s.header.Render(fmt.Sprintf("file: %s", outcome.Request.TargetFilePath)))
	}
	if outcome.RequestID != "" {
		lines = append(lines, s.empty.Render(fmt.Sprintf("request: %s", outcome.RequestID)))
	}
	lines = append(lines, statusLine(outcome, s))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func outcomeTitle(outcome domain.Outcome) string {
	if outcome.Target.Identity == "" {
		return "Reload request"
	}

	return fmt.Sprintf("Reload %s (%s)", outcome.Target.Identity, outcome.Target.Mode)
}

func statusLine(outcome domain.Outcome, s styles) string {
	switch outcome.Status {
	case domain.OutcomeOK:
		return s.success.Render("reloaded")
	case domain.OutcomeRegisterMissing:
		return s.warning.Render("imported, no register entry point")
	case domain.OutcomeExitRequested:
		return s.warning.Render("add-on requested exit, bridge keeps running")
	default:
		label := string(outcome.Status)
		if outcome.Err != nil {
			label = fmt.Sprintf("%s: %v", label, outcome.Err)
		}
		return s.failure.Render(label)
	}
}
