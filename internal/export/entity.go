// Package export turns dialog filters and their resolved peers into
// exportable folder records and renders them as JSON or text.
package export

import (
	"fmt"
	"strings"

	"github.com/gotd/td/tg"

	"github.com/AABur/tgfolder-export/internal/telegram"
)

// PeerType classifies an exported peer.
type PeerType string

// The supported peer types.
const (
	TypeUser    PeerType = "user"
	TypeChannel PeerType = "channel"
	TypeGroup   PeerType = "group"
)

// Peer is the exported record for a single resolved peer.
// Name and Username stay null in JSON when absent, never omitted.
type Peer struct {
	Type     PeerType `json:"type"`
	ID       int64    `json:"id"`
	Name     *string  `json:"name"`
	Username *string  `json:"username"`
}

// UnknownEntityError reports an entity variant outside {user, channel, chat}.
// It signals a data-model invariant violation, not an expected runtime
// condition, so callers abort on it.
type UnknownEntityError struct {
	Entity telegram.Entity
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity type: %T", e.Entity)
}

// Classify maps an entity to its peer type. Broadcast channels are
// "channel"; megagroups and legacy chats are "group".
func Classify(ent telegram.Entity) (PeerType, error) {
	switch e := ent.(type) {
	case *tg.User:
		return TypeUser, nil
	case *tg.Channel:
		if e.Broadcast {
			return TypeChannel, nil
		}
		return TypeGroup, nil
	case *tg.Chat:
		return TypeGroup, nil
	default:
		return "", &UnknownEntityError{Entity: ent}
	}
}

// DisplayName extracts the display name. Channel and chat titles pass
// through verbatim. User names are first and last name joined with a space
// and trimmed; absent parts count as empty, so a user always gets a string,
// possibly empty.
func DisplayName(ent telegram.Entity) (*string, error) {
	switch e := ent.(type) {
	case *tg.User:
		name := strings.TrimSpace(e.FirstName + " " + e.LastName)
		return &name, nil
	case *tg.Channel:
		title := e.Title
		return &title, nil
	case *tg.Chat:
		title := e.Title
		return &title, nil
	default:
		return nil, &UnknownEntityError{Entity: ent}
	}
}

// ExportEntity builds the exported peer record for an entity.
func ExportEntity(ent telegram.Entity) (Peer, error) {
	typ, err := Classify(ent)
	if err != nil {
		return Peer{}, err
	}
	name, err := DisplayName(ent)
	if err != nil {
		return Peer{}, err
	}

	return Peer{
		Type:     typ,
		ID:       ent.GetID(),
		Name:     name,
		Username: username(ent),
	}, nil
}

// username returns the public username for variants that carry one;
// legacy chats never do.
func username(ent telegram.Entity) *string {
	switch e := ent.(type) {
	case *tg.User:
		if u, ok := e.GetUsername(); ok {
			return &u
		}
	case *tg.Channel:
		if u, ok := e.GetUsername(); ok {
			return &u
		}
	}
	return nil
}
