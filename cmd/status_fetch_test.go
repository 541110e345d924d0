package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/orderlink/internal/adapters/debughttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFetchModelSummarizesSnapshot(t *testing.T) {
	m := newSnapshotFetchModel("127.0.0.1:8080", nil)
	assert.Contains(t, m.View(), "Fetching snapshot from 127.0.0.1:8080...")

	doc := debughttp.SnapshotDoc{
		Connections: []debughttp.ConnectionDoc{
			{ID: "AA:BB", Phase: "connected"},
			{ID: "CC:DD", Phase: "disconnected"},
		},
		Records: []debughttp.RecordDoc{{Seq: 1, ConnectionID: "AA:BB", Text: "LATTE"}},
	}

	updated, cmd := m.Update(snapshotFetchedMsg{doc: doc})
	require.NotNil(t, cmd)

	final, ok := updated.(snapshotFetchModel)
	require.True(t, ok)
	assert.Equal(t, doc, final.doc)
	assert.Contains(t, final.View(), "127.0.0.1:8080: 2 connections (1 connected), 1 order")
}

func TestSnapshotFetchModelKeepsError(t *testing.T) {
	fetchErr := errors.New("connection refused")

	updated, _ := newSnapshotFetchModel("127.0.0.1:8080", nil).Update(snapshotFetchedMsg{err: fetchErr})
	final := updated.(snapshotFetchModel)

	assert.ErrorIs(t, final.err, fetchErr)
	assert.Empty(t, final.View())
}

func TestFetchSnapshotWithoutSpinner(t *testing.T) {
	server := newSnapshotServer(t)

	doc, err := fetchSnapshot(context.Background(), server.Client(), server.URL, nil)
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "MOCHA", doc.Records[0].Text)
}
