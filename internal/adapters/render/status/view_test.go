package status

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmptySnapshot(t *testing.T) {
	output, err := Render(application.Snapshot{}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Order Link")
	assert.Contains(t, output, "connections: 0 (connected 0)  orders: 0")
	assert.Contains(t, output, "No connections yet.")
	assert.Contains(t, output, "No orders received.")
}

func TestRenderConnectionsAndOrders(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	connected := domain.Connected(domain.NewPeer("AA:BB", "Till 1"))
	connected.ChangedAt = now.Add(-10 * time.Minute)

	record := domain.NewRecord("AA:BB", []byte("ORDER#123,ITEM=Latte"), now.Add(-5*time.Minute))
	record.Seq = 1

	output, err := Render(application.Snapshot{
		TakenAt: now,
		Connections: []application.ConnectionStatus{
			{ID: "AA:BB", State: connected, BufferedBytes: 12, NotificationsEnabled: true},
			{ID: "CC:DD", State: domain.Disconnected()},
		},
		Records: []domain.Record{record},
	}, RenderOptions{Now: now, StaleAfter: time.Minute, BufferLimit: 64})

	require.NoError(t, err)
	assert.Contains(t, output, "connections: 2 (connected 1)  orders: 1")
	assert.Contains(t, output, "Till 1 (AA:BB) connected notify:on buffered 12B [")
	assert.Contains(t, output, "[stalled]")
	assert.Contains(t, output, "CC:DD disconnected notify:off")
	assert.Contains(t, output, "#1 ORDER#123,ITEM=Latte from AA:BB 5m ago")
}

func TestSummarizeCountsActivity(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	stale := domain.Connected(domain.NewPeer("AA:BB", "Till 1"))
	stale.ChangedAt = now.Add(-time.Hour)
	fresh := domain.Connected(domain.NewPeer("CC:DD", "Till 2"))
	fresh.ChangedAt = now

	snapshot := application.Snapshot{
		Connections: []application.ConnectionStatus{
			{ID: "AA:BB", State: stale, BufferedBytes: 4, NotificationsEnabled: true},
			{ID: "CC:DD", State: fresh, BufferedBytes: 2},
			{ID: "EE:FF", State: domain.Disconnected()},
		},
	}
	opts := RenderOptions{Now: now, StaleAfter: time.Minute}

	assert.Equal(t, summary{connections: 3, connected: 2, buffering: 2, stalled: 1, notifying: 1}, summarize(snapshot, opts))

	output, err := Render(snapshot, opts)
	require.NoError(t, err)
	assert.Contains(t, output, "connections: 3 (connected 2)  orders: 0  notifying: 1  buffering: 2  stalled: 1")
}

func TestRenderCapsRecentOrders(t *testing.T) {
	records := make([]domain.Record, 0, 15)
	for i := 1; i <= 15; i++ {
		record := domain.NewRecord("AA:BB", []byte(fmt.Sprintf("order-%02d", i)), time.Time{})
		record.Seq = uint64(i)
		records = append(records, record)
	}

	output, err := Render(application.Snapshot{Records: records}, RenderOptions{RecentOrders: 3})
	require.NoError(t, err)

	assert.Contains(t, output, "recent orders (3 of 15)")
	assert.Contains(t, output, "order-15")
	assert.Contains(t, output, "order-13")
	assert.NotContains(t, output, "order-12")
}

func TestRenderBufferBarClamps(t *testing.T) {
	s := newStyles()

	bar := renderBufferBar(200, 100, 8, s)
	assert.Equal(t, "["+strings.Repeat("=", 8)+"]", stripANSI(bar))

	bar = renderBufferBar(0, 100, 8, s)
	assert.Equal(t, "["+strings.Repeat("-", 8)+"]", stripANSI(bar))
}

func TestTruncateCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestInterpolateColorBounds(t *testing.T) {
	assert.Equal(t, lipgloss.Color("240"), interpolateColor(-5, 0, 10))
	assert.Equal(t, lipgloss.Color("255"), interpolateColor(50, 0, 10))
	assert.Equal(t, lipgloss.Color("255"), interpolateColor(1, 3, 3))
}

func stripANSI(s string) string {
	var out strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && r == 'm':
			inEscape = false
		case !inEscape:
			out.WriteRune(r)
		}
	}
	return out.String()
}
