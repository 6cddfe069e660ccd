package telegram

// Entity is a resolved Telegram object referenced by a dialog filter.
// The concrete types are *tg.User, *tg.Channel and *tg.Chat; anything else
// the server may hand back (forbidden or empty variants) is rejected by the
// classifier downstream.
type Entity interface {
	// GetID returns the object id shared by all entity variants.
	GetID() int64
}
