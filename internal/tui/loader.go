package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/folio/internal/model"
)

// loadTimeout bounds the resume fetch behind the loader.
const loadTimeout = 30 * time.Second

type fetchDoneMsg struct {
	resume model.Resume
	err    error
}

type loaderModel struct {
	source  string
	fetchFn func(ctx context.Context) (model.Resume, error)
	spinner spinner.Model
	result  model.Resume
	err     error
	done    bool
}

func newLoaderModel(source string, fetchFn func(ctx context.Context) (model.Resume, error)) loaderModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	return loaderModel{source: source, fetchFn: fetchFn, spinner: s}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doFetch(), m.spinner.Tick)
}

func (m loaderModel) doFetch() tea.Cmd {
	fetchFn := m.fetchFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		r, err := fetchFn(ctx)
		return fetchDoneMsg{resume: r, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		m.result = msg.resume
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = fmt.Errorf("cancelled")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Loading portfolio from %s...\n", m.spinner.View(), m.source)
}

// RunLoader shows a spinner while fetching the resume. It renders inline (no alt screen).
func RunLoader(source string, fetchFn func(ctx context.Context) (model.Resume, error)) (model.Resume, error) {
	p := tea.NewProgram(newLoaderModel(source, fetchFn))
	result, err := p.Run()
	if err != nil {
		return model.Resume{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
