// Package telegram provides Telegram MTProto client wrapper.
package telegram

import (
	"context"
	"fmt"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/glebarez/sqlite"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/AABur/tgfolder-export/internal/config"
	"github.com/AABur/tgfolder-export/internal/logger"
)

// Client wraps gotgproto client and provides the calls the folder exporter
// needs: the dialog-filter list and per-peer entity resolution.
type Client struct {
	proto       *gotgproto.Client
	rateLimiter *RateLimiter
	log         *logger.Logger
}

// Dial creates an authenticated client backed by the sqlite session file at
// sessionPath. On first run gotgproto drives an interactive phone login;
// later runs reuse the stored session.
func Dial(cfg *config.Config, sessionPath string, log *logger.Logger) (*Client, error) {
	proto, err := gotgproto.NewClient(
		cfg.AppID,
		cfg.AppHash,
		gotgproto.ClientTypePhone(""), // empty phone = prompt or use stored session
		&gotgproto.ClientOpts{
			Session:          sessionMaker.SqlSession(sqlite.Open(sessionPath)),
			DisableCopyright: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	return &Client{
		proto:       proto,
		rateLimiter: DefaultRateLimiter(),
		log:         log,
	}, nil
}

// Close stops the underlying client.
func (c *Client) Close() {
	if c.proto != nil {
		c.proto.Stop()
	}
}

// Self returns the authorized user.
func (c *Client) Self() *tg.User {
	return c.proto.Self
}

// DialogFilters fetches the account's dialog-filter (folder) list in the
// order the server returns it.
func (c *Client) DialogFilters(ctx context.Context) ([]tg.DialogFilterClass, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.log.Debug().Msg("telegram: requesting dialog filters")
	filters, err := c.proto.API().MessagesGetDialogFilters(ctx)
	if err != nil {
		c.noteFloodWait(err)
		return nil, fmt.Errorf("get dialog filters: %w", err)
	}
	return filters.Filters, nil
}

// ResolveEntity resolves a folder peer reference to the full entity.
func (c *Client) ResolveEntity(ctx context.Context, peer tg.InputPeerClass) (Entity, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	switch p := peer.(type) {
	case *tg.InputPeerUser:
		return c.resolveUser(ctx, &tg.InputUser{UserID: p.UserID, AccessHash: p.AccessHash})
	case *tg.InputPeerSelf:
		return c.resolveUser(ctx, &tg.InputUserSelf{})
	case *tg.InputPeerChannel:
		return c.resolveChannel(ctx, p.ChannelID, p.AccessHash)
	case *tg.InputPeerChat:
		return c.resolveChat(ctx, p.ChatID)
	default:
		return nil, fmt.Errorf("unsupported input peer %T", peer)
	}
}

func (c *Client) resolveUser(ctx context.Context, id tg.InputUserClass) (Entity, error) {
	users, err := c.proto.API().UsersGetUsers(ctx, []tg.InputUserClass{id})
	if err != nil {
		c.noteFloodWait(err)
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("get user: empty response")
	}
	return asEntity(users[0])
}

func (c *Client) resolveChannel(ctx context.Context, channelID, accessHash int64) (Entity, error) {
	chats, err := c.proto.API().ChannelsGetChannels(ctx, []tg.InputChannelClass{
		&tg.InputChannel{ChannelID: channelID, AccessHash: accessHash},
	})
	if err != nil {
		c.noteFloodWait(err)
		return nil, fmt.Errorf("get channel %d: %w", channelID, err)
	}
	return firstChat(chats)
}

func (c *Client) resolveChat(ctx context.Context, chatID int64) (Entity, error) {
	chats, err := c.proto.API().MessagesGetChats(ctx, []int64{chatID})
	if err != nil {
		c.noteFloodWait(err)
		return nil, fmt.Errorf("get chat %d: %w", chatID, err)
	}
	return firstChat(chats)
}

// firstChat unwraps the first element of a messages.Chats result.
func firstChat(chats tg.MessagesChatsClass) (Entity, error) {
	list := chats.GetChats()
	if len(list) == 0 {
		return nil, fmt.Errorf("get chats: empty response")
	}
	return asEntity(list[0])
}

// asEntity narrows a raw tg object to the Entity union. Every user/chat
// variant the server returns carries an id, so this only guards against
// schema additions.
func asEntity(obj any) (Entity, error) {
	ent, ok := obj.(Entity)
	if !ok {
		return nil, fmt.Errorf("object %T has no id", obj)
	}
	return ent, nil
}

// noteFloodWait feeds a server-requested backoff into the rate limiter so
// follow-up calls do not immediately trip the same wall.
func (c *Client) noteFloodWait(err error) {
	if wait, ok := tgerr.AsFloodWait(err); ok {
		c.log.Warn().Dur("wait", wait).Msg("telegram: FLOOD_WAIT received, backing off")
		c.rateLimiter.SetFloodWait(int(wait.Seconds()) + 1)
	}
}
