package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/directory"
	"github.com/avask/pulse/internal/domain"
)

// Presence computes the fan-out set for a user's status transitions: the
// accepted friends that currently hold a live connection. The fan-out is
// O(friend count) and synchronous with the triggering event.
type Presence struct {
	Directory directory.Directory
	Registry  *Registry
}

func NewPresence(dir directory.Directory, reg *Registry) *Presence {
	return &Presence{Directory: dir, Registry: reg}
}

// OnlineFriends resolves uid's accepted friends to live sessions. A
// directory failure returns an empty set: presence is advisory, the caller
// skips the broadcast and the connection stays up.
func (p *Presence) OnlineFriends(ctx context.Context, uid domain.UserID) []*core.Session {
	friends, err := p.Directory.ListAcceptedFriends(ctx, uid)
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Str("user", string(uid)).Msg("friend list fetch failed, broadcast skipped")
		return nil
	}
	out := make([]*core.Session, 0, len(friends))
	for _, fid := range friends {
		if sess, ok := p.Registry.Resolve(fid); ok {
			out = append(out, sess)
		}
	}
	return out
}
