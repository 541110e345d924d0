package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultRecentOrders = 10
	barWidth            = 16
	maxOrderText        = 48
)

type RenderOptions struct {
	Now time.Time
	// StaleAfter flags a connection whose partial message has not changed
	// state for this long. Zero disables the check.
	StaleAfter time.Duration
	// BufferLimit scales the buffer bar. Zero hides the bar.
	BufferLimit int
	// RecentOrders caps the order log section. Zero means 10.
	RecentOrders int
}

func renderView(snapshot application.Snapshot, sum summary, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Order Link"),
		renderHeader(sum, s),
	}

	if len(snapshot.Connections) == 0 {
		lines = append(lines, s.empty.Render("No connections yet."))
	} else {
		conns := make([]string, 0, len(snapshot.Connections))
		for _, conn := range snapshot.Connections {
			conns = append(conns, connectionLine(conn, opts, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, conns...)))
	}

	lines = append(lines, s.section.Render(renderOrders(snapshot.Records, opts, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderHeader(sum summary, s styles) string {
	header := s.header.Render(fmt.Sprintf(
		"connections: %d (connected %d)  orders: %d",
		sum.connections, sum.connected, sum.orders,
	))
	if sum.notifying > 0 {
		header += s.header.Render(fmt.Sprintf("  notifying: %d", sum.notifying))
	}
	if sum.buffering > 0 {
		header += s.header.Render(fmt.Sprintf("  buffering: %d", sum.buffering))
	}
	if sum.stalled > 0 {
		header += s.warning.Render(fmt.Sprintf("  stalled: %d", sum.stalled))
	}
	return header
}

func connectionLine(conn application.ConnectionStatus, opts RenderOptions, s styles) string {
	parts := []string{
		s.peer.Render(peerTitle(conn)),
		" ",
		phaseStyle(conn.State.Phase, s).Render(string(conn.State.Phase)),
	}

	if conn.NotificationsEnabled {
		parts = append(parts, " ", s.detail.Render("notify:on"))
	} else {
		parts = append(parts, " ", s.barTextFaint.Render("notify:off"))
	}

	if conn.BufferedBytes > 0 {
		parts = append(parts, " ", s.detail.Render(fmt.Sprintf("buffered %s", formatBytes(conn.BufferedBytes))))
		if opts.BufferLimit > 0 {
			parts = append(parts, " ", renderBufferBar(conn.BufferedBytes, opts.BufferLimit, barWidth, s))
		}
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	if isStalled(conn, opts) {
		line += " " + s.warning.Render("[stalled]")
	}

	return line
}

func peerTitle(conn application.ConnectionStatus) string {
	if conn.State.Phase == domain.PhaseConnected && conn.State.Peer.Name != "" {
		return fmt.Sprintf("%s (%s)", conn.State.Peer.Name, conn.ID)
	}
	return string(conn.ID)
}

func phaseStyle(phase domain.ConnectionPhase, s styles) lipgloss.Style {
	switch phase {
	case domain.PhaseConnected:
		return s.phaseOn
	case domain.PhaseConnecting:
		return s.phaseWait
	default:
		return s.phaseOff
	}
}

// isStalled reports a partial message that has been sitting in the buffer
// since before the stale window.
func isStalled(conn application.ConnectionStatus, opts RenderOptions) bool {
	if opts.Now.IsZero() || opts.StaleAfter <= 0 || conn.BufferedBytes == 0 || conn.State.ChangedAt.IsZero() {
		return false
	}
	return opts.Now.Sub(conn.State.ChangedAt) > opts.StaleAfter
}

func renderOrders(records []domain.Record, opts RenderOptions, s styles) string {
	if len(records) == 0 {
		return s.empty.Render("No orders received.")
	}

	limit := opts.RecentOrders
	if limit <= 0 {
		limit = defaultRecentOrders
	}

	start := 0
	if len(records) > limit {
		start = len(records) - limit
	}

	lines := []string{s.header.Render(fmt.Sprintf("recent orders (%d of %d)", len(records)-start, len(records)))}
	for _, record := range records[start:] {
		lines = append(lines, orderLine(record, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func orderLine(record domain.Record, opts RenderOptions, s styles) string {
	age := formatAge(record.CompletedAt, opts.Now)
	ageStyle := lipgloss.NewStyle().Foreground(ageColor(record.CompletedAt, opts.Now))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.orderSeq.Render(fmt.Sprintf("#%d", record.Seq)),
		" ",
		s.detail.Render(truncate(record.Text(), maxOrderText)),
		" ",
		s.orderMeta.Render(fmt.Sprintf("from %s", record.ConnectionID)),
		" ",
		ageStyle.Render(age),
	)
}

func renderBufferBar(buffered, limit, width int, s styles) string {
	if width <= 0 || limit <= 0 {
		return ""
	}

	fraction := float64(buffered) / float64(limit)
	filled := int(math.Round(float64(width) * fraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	return fmt.Sprintf("%.1fKiB", float64(n)/1024)
}

func formatAge(at, now time.Time) string {
	if at.IsZero() {
		return ""
	}
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return at.Format("15:04 on 02 Jan")
	}
}

func truncate(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 faded to 255 bright.
	baseColor := 240.0
	targetColor := 255.0

	interpolated := baseColor + (targetColor-baseColor)*normalized
	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}

// ageColor fades an order from bright to grey over its first hour.
func ageColor(at, now time.Time) lipgloss.Color {
	if now.IsZero() || at.IsZero() || at.After(now) {
		return lipgloss.Color("255")
	}

	window := time.Hour
	return interpolateColor(window.Seconds()-now.Sub(at).Seconds(), 0, window.Seconds())
}
