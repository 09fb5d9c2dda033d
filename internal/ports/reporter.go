package ports

import "github.com/bnema/addon-bridge/internal/domain"

// Reporter receives operator-facing summaries.
type Reporter interface {
	Unregistered(report domain.UnregisterReport)
	Reloaded(outcome domain.Outcome)
}

type NopReporter struct{}

func (NopReporter) Unregistered(domain.UnregisterReport) {}

func (NopReporter) Reloaded(domain.Outcome) {}
