package status

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const DefaultHistory = 8

// Entry is one reload request sent by watch mode.
type Entry struct {
	Workspace string
	File      string
	At        time.Time
	Err       error
}

type entryMsg Entry

// Model is the live watch view: a spinner plus the most recent sends, newest
// first.
type Model struct {
	spinner spinner.Model
	label   string
	entries []Entry
	history int
	styles  styles
}

func NewModel(label string, history int) Model {
	if history <= 0 {
		history = DefaultHistory
	}

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return Model{
		spinner: s,
		label:   label,
		history: history,
		styles:  newStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case entryMsg:
		m.entries = append([]Entry{Entry(msg)}, m.entries...)
		if len(m.entries) > m.history {
			m.entries = m.entries[:m.history]
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	header := m.spinner.View() + " " + m.styles.title.Render(m.label)
	return renderView(header, m.entries, m.styles)
}

func (m Model) Entries() []Entry {
	return m.entries
}

// Program wraps a running watch view.
type Program struct {
	program *tea.Program
}

func NewProgram(ctx context.Context, model Model, input io.Reader, output io.Writer) *Program {
	return &Program{
		program: tea.NewProgram(
			model,
			tea.WithInput(input),
			tea.WithOutput(output),
			tea.WithContext(ctx),
		),
	}
}

// Record adds a send to the view. Safe to call from any goroutine.
func (p *Program) Record(entry Entry) {
	p.program.Send(entryMsg(entry))
}

func (p *Program) Run() error {
	_, err := p.program.Run()
	return err
}

func (p *Program) Quit() {
	p.program.Quit()
}
