package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/bnema/addon-bridge/internal/ports"
)

// Reporter prints operator-facing reload summaries.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
}

var _ ports.Reporter = (*Reporter)(nil)

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		out:    out,
		styles: newStyles(),
	}
}

func (r *Reporter) Unregistered(report domain.UnregisterReport) {
	r.write(renderUnregistered(report, r.styles))
}

func (r *Reporter) Reloaded(outcome domain.Outcome) {
	r.write(renderOutcome(outcome, r.styles))
}

func (r *Reporter) write(block string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintln(r.out, block)
}
