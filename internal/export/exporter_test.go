package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AABur/tgfolder-export/internal/logger"
	"github.com/AABur/tgfolder-export/internal/telegram"
)

type fakeResolver struct {
	filters []tg.DialogFilterClass
	resolve func(peer tg.InputPeerClass) (telegram.Entity, error)
}

func (f *fakeResolver) DialogFilters(_ context.Context) ([]tg.DialogFilterClass, error) {
	return f.filters, nil
}

func (f *fakeResolver) ResolveEntity(_ context.Context, peer tg.InputPeerClass) (telegram.Entity, error) {
	return f.resolve(peer)
}

// testLogger returns a logger writing JSON events into buf.
func testLogger(buf *bytes.Buffer) *logger.Logger {
	return &logger.Logger{Logger: zerolog.New(buf)}
}

func TestExportFolder_SkipsRecoverableError(t *testing.T) {
	// Arrange: first peer is a private channel, second resolves fine
	resolver := &fakeResolver{
		resolve: func(peer tg.InputPeerClass) (telegram.Entity, error) {
			if p, ok := peer.(*tg.InputPeerChannel); ok && p.ChannelID == 1 {
				return nil, tgerr.New(400, "CHANNEL_PRIVATE")
			}
			return &tg.User{ID: 2, FirstName: "Jane"}, nil
		},
	}
	var buf bytes.Buffer
	exporter := NewExporter(resolver, testLogger(&buf))

	// Act
	folder, err := exporter.ExportFolder(context.Background(), 3, "Work", []tg.InputPeerClass{
		&tg.InputPeerChannel{ChannelID: 1},
		&tg.InputPeerUser{UserID: 2},
	})

	// Assert: one surviving peer, exactly one error event logged
	require.NoError(t, err)
	require.Len(t, folder.Peers, 1)
	assert.Equal(t, int64(2), folder.Peers[0].ID)
	assert.Equal(t, 1, strings.Count(buf.String(), `"level":"error"`))
	assert.Contains(t, buf.String(), "CHANNEL_PRIVATE")
	assert.Contains(t, buf.String(), "Work")
}

func TestExportFolder_UnrecoverableErrorAborts(t *testing.T) {
	resolver := &fakeResolver{
		resolve: func(tg.InputPeerClass) (telegram.Entity, error) {
			return nil, errors.New("connection reset")
		},
	}
	exporter := NewExporter(resolver, testLogger(&bytes.Buffer{}))

	_, err := exporter.ExportFolder(context.Background(), 1, "Work", []tg.InputPeerClass{
		&tg.InputPeerUser{UserID: 1},
	})

	assert.Error(t, err)
}

func TestExportFolder_UnknownEntityAborts(t *testing.T) {
	resolver := &fakeResolver{
		resolve: func(tg.InputPeerClass) (telegram.Entity, error) {
			return &tg.UserEmpty{ID: 5}, nil
		},
	}
	exporter := NewExporter(resolver, testLogger(&bytes.Buffer{}))

	_, err := exporter.ExportFolder(context.Background(), 1, "Work", []tg.InputPeerClass{
		&tg.InputPeerUser{UserID: 5},
	})

	var unknownErr *UnknownEntityError
	require.ErrorAs(t, err, &unknownErr)
}

func TestExportFolder_PreservesPeerOrder(t *testing.T) {
	resolver := &fakeResolver{
		resolve: func(peer tg.InputPeerClass) (telegram.Entity, error) {
			p := peer.(*tg.InputPeerUser)
			return &tg.User{ID: p.UserID}, nil
		},
	}
	exporter := NewExporter(resolver, testLogger(&bytes.Buffer{}))

	folder, err := exporter.ExportFolder(context.Background(), 1, "People", []tg.InputPeerClass{
		&tg.InputPeerUser{UserID: 30},
		&tg.InputPeerUser{UserID: 10},
		&tg.InputPeerUser{UserID: 20},
	})

	require.NoError(t, err)
	require.Len(t, folder.Peers, 3)
	assert.Equal(t, []int64{30, 10, 20}, []int64{
		folder.Peers[0].ID, folder.Peers[1].ID, folder.Peers[2].ID,
	})
}

func TestExportAll_SkipsDefaultFolder(t *testing.T) {
	resolver := &fakeResolver{
		filters: []tg.DialogFilterClass{
			&tg.DialogFilterDefault{},
			&tg.DialogFilter{
				ID:           2,
				Title:        tg.TextWithEntities{Text: "Work"},
				IncludePeers: []tg.InputPeerClass{&tg.InputPeerUser{UserID: 1}},
			},
			&tg.DialogFilterChatlist{
				ID:           3,
				Title:        tg.TextWithEntities{Text: "Shared"},
				IncludePeers: []tg.InputPeerClass{&tg.InputPeerUser{UserID: 2}},
			},
		},
		resolve: func(peer tg.InputPeerClass) (telegram.Entity, error) {
			p := peer.(*tg.InputPeerUser)
			return &tg.User{ID: p.UserID}, nil
		},
	}
	exporter := NewExporter(resolver, testLogger(&bytes.Buffer{}))

	result, err := exporter.ExportAll(context.Background())

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Work", result[0].Title)
	assert.Equal(t, 2, result[0].ID)
	assert.Equal(t, "Shared", result[1].Title)
}

func TestExportAll_EmptyFolderKeepsEmptyPeerList(t *testing.T) {
	resolver := &fakeResolver{
		filters: []tg.DialogFilterClass{
			&tg.DialogFilter{ID: 1, Title: tg.TextWithEntities{Text: "Empty"}},
		},
		resolve: func(tg.InputPeerClass) (telegram.Entity, error) {
			t.Fatal("resolve should not be called")
			return nil, nil
		},
	}
	exporter := NewExporter(resolver, testLogger(&bytes.Buffer{}))

	result, err := exporter.ExportAll(context.Background())

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.NotNil(t, result[0].Peers, "peers must serialize as [], not null")
	assert.Empty(t, result[0].Peers)
}
