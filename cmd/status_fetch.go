package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bnema/orderlink/internal/adapters/debughttp"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type snapshotFetchedMsg struct {
	doc debughttp.SnapshotDoc
	err error
}

// snapshotFetchModel spins while a snapshot is fetched and leaves a one-line
// summary of what came back.
type snapshotFetchModel struct {
	spinner spinner.Model
	addr    string
	fetch   tea.Cmd
	summary lipgloss.Style

	doc  debughttp.SnapshotDoc
	err  error
	done bool
}

func newSnapshotFetchModel(addr string, fetch tea.Cmd) snapshotFetchModel {
	return snapshotFetchModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("39"))),
		),
		addr:    addr,
		fetch:   fetch,
		summary: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (m snapshotFetchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m snapshotFetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case snapshotFetchedMsg:
		m.done = true
		m.doc = msg.doc
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m snapshotFetchModel) View() string {
	switch {
	case !m.done:
		return fmt.Sprintf("%s Fetching snapshot from %s...", m.spinner.View(), m.addr)
	case m.err != nil:
		return ""
	default:
		return m.summary.Render(snapshotSummary(m.addr, m.doc)) + "\n"
	}
}

func snapshotSummary(addr string, doc debughttp.SnapshotDoc) string {
	connected := 0
	for _, conn := range doc.Connections {
		if conn.Phase == "connected" {
			connected++
		}
	}

	return fmt.Sprintf("%s: %s (%d connected), %s",
		addr,
		plural(len(doc.Connections), "connection"),
		connected,
		plural(len(doc.Records), "order"),
	)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// fetchSnapshot reads the snapshot at addr, drawing the spinner on output
// unless it is nil.
func fetchSnapshot(ctx context.Context, client *http.Client, addr string, output io.Writer) (debughttp.SnapshotDoc, error) {
	if output == nil {
		return debughttp.FetchSnapshot(ctx, client, addr)
	}

	fetchCmd := func() tea.Msg {
		doc, err := debughttp.FetchSnapshot(ctx, client, addr)
		return snapshotFetchedMsg{doc: doc, err: err}
	}

	p := tea.NewProgram(
		newSnapshotFetchModel(addr, fetchCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return debughttp.SnapshotDoc{}, err
	}

	result, ok := finalModel.(snapshotFetchModel)
	if !ok {
		return debughttp.SnapshotDoc{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.doc, result.err
}
