package status

import (
	"errors"
	"io"

	"github.com/bnema/orderlink/internal/application"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// summary is the header line of the status view.
type summary struct {
	connections int
	connected   int
	buffering   int
	stalled     int
	notifying   int
	orders      int
}

func summarize(snapshot application.Snapshot, opts RenderOptions) summary {
	sum := summary{
		connections: len(snapshot.Connections),
		connected:   snapshot.Connected(),
		orders:      len(snapshot.Records),
	}
	for _, conn := range snapshot.Connections {
		if conn.NotificationsEnabled {
			sum.notifying++
		}
		if conn.BufferedBytes > 0 {
			sum.buffering++
		}
		if isStalled(conn, opts) {
			sum.stalled++
		}
	}
	return sum
}

// snapshotMsg hands the snapshot to the program once it is running.
type snapshotMsg struct {
	snapshot application.Snapshot
}

type model struct {
	opts    RenderOptions
	styles  styles
	pending application.Snapshot
	output  string
}

func (m model) Init() tea.Cmd {
	snapshot := m.pending
	return func() tea.Msg {
		return snapshotMsg{snapshot: snapshot}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.output = renderView(msg.snapshot, summarize(msg.snapshot, m.opts), m.opts, m.styles)
		m.pending = application.Snapshot{}
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render draws the connection table and the order log of snapshot.
func Render(snapshot application.Snapshot, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		model{opts: opts, styles: newStyles(), pending: snapshot},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
