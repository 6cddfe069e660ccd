package telegram

import (
	"github.com/gotd/td/tgerr"
)

// rpc error types that invalidate a single peer, not the whole export:
// the peer went private, the server asked for a backoff the library already
// exhausted, or the auth key was rejected mid-run.
var recoverableResolveErrors = []string{
	"CHANNEL_PRIVATE",
	"FLOOD_WAIT",
	"AUTH_KEY_UNREGISTERED",
	"AUTH_KEY_INVALID",
}

// IsRecoverableResolveError reports whether err is a per-peer resolution
// failure the exporter may skip over.
func IsRecoverableResolveError(err error) bool {
	return tgerr.Is(err, recoverableResolveErrors...)
}

// ErrorType returns the rpc error type for logging, or the plain error
// string for non-rpc errors.
func ErrorType(err error) string {
	if rpcErr, ok := tgerr.As(err); ok {
		return rpcErr.Type
	}
	return err.Error()
}
