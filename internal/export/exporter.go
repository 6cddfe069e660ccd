package export

import (
	"context"

	"github.com/gotd/td/tg"

	"github.com/AABur/tgfolder-export/internal/logger"
	"github.com/AABur/tgfolder-export/internal/telegram"
)

// Folder is the exported record for a single dialog filter.
type Folder struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Peers []Peer `json:"peers"`
}

// Resolver is the remote surface the exporter needs.
type Resolver interface {
	DialogFilters(ctx context.Context) ([]tg.DialogFilterClass, error)
	ResolveEntity(ctx context.Context, peer tg.InputPeerClass) (telegram.Entity, error)
}

// Exporter walks the account's dialog filters and resolves their peers.
type Exporter struct {
	resolver Resolver
	log      *logger.Logger
}

// NewExporter creates an Exporter with an explicit logging handle.
func NewExporter(r Resolver, log *logger.Logger) *Exporter {
	return &Exporter{resolver: r, log: log}
}

// ExportAll fetches the dialog-filter list once and exports every custom
// folder in the order received. The always-present default folder is
// skipped; so is any filter variant without peer lists.
func (e *Exporter) ExportAll(ctx context.Context) ([]Folder, error) {
	filters, err := e.resolver.DialogFilters(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Folder, 0, len(filters))
	for _, flt := range filters {
		var (
			id      int
			title   string
			include []tg.InputPeerClass
		)
		switch f := flt.(type) {
		case *tg.DialogFilter:
			id, title, include = f.ID, f.Title.Text, f.IncludePeers
		case *tg.DialogFilterChatlist:
			id, title, include = f.ID, f.Title.Text, f.IncludePeers
		default:
			continue
		}

		e.log.Info().Str("folder", title).Int("peers", len(include)).Msg("export: processing folder")
		folder, err := e.ExportFolder(ctx, id, title, include)
		if err != nil {
			return nil, err
		}
		result = append(result, folder)
	}
	return result, nil
}

// ExportFolder resolves each included peer in order. A peer failing with a
// recoverable rpc error is logged at error level and dropped, keeping the
// rest of the folder intact; any other error aborts the export.
func (e *Exporter) ExportFolder(ctx context.Context, id int, title string, include []tg.InputPeerClass) (Folder, error) {
	folder := Folder{ID: id, Title: title, Peers: []Peer{}}

	for _, peer := range include {
		ent, err := e.resolver.ResolveEntity(ctx, peer)
		if err != nil {
			if telegram.IsRecoverableResolveError(err) {
				e.log.Error().
					Str("folder", title).
					Str("peer", peer.String()).
					Str("error_type", telegram.ErrorType(err)).
					Err(err).
					Msg("export: failed to resolve peer, skipping")
				continue
			}
			return Folder{}, err
		}

		record, err := ExportEntity(ent)
		if err != nil {
			return Folder{}, err
		}
		folder.Peers = append(folder.Peers, record)
	}
	return folder, nil
}
