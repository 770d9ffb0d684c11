package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/domain"
)

// Registry maps authenticated user ids to their single live session.
// One connection per user: a re-authentication replaces the mapping and the
// caller is expected to tear the previous connection down.
type Registry struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]*core.Session
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[domain.UserID]*core.Session)}
}

// Register installs sess as the connection for uid and returns the session
// it displaced, if any.
func (r *Registry) Register(uid domain.UserID, sess *core.Session) (prev *core.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.byUser[uid]
	if prev == sess {
		prev = nil
	}
	r.byUser[uid] = sess
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("sid", string(sess.ID())).Msg("registered session")
	return prev
}

// Resolve returns the live session for uid, if the user is online.
func (r *Registry) Resolve(uid domain.UserID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byUser[uid]
	return s, ok
}

// Unregister removes the mapping for uid only if it still points at sess.
// It reports whether sess was the current mapping; a false return means the
// session was superseded by a re-authentication and the caller must skip
// offline side effects.
func (r *Registry) Unregister(uid domain.UserID, sess *core.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byUser[uid]
	if !ok || cur != sess {
		return false
	}
	delete(r.byUser, uid)
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("sid", string(sess.ID())).Msg("unregistered session")
	return true
}

// OnlineCount reports how many users currently hold a session.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
