package core

import (
	"sync"

	"github.com/avask/pulse/internal/domain"
	"github.com/rs/zerolog/log"
)

// Room is a threadsafe in-memory broadcast scope.
// It owns the membership set but never closes adapter-owned transports.
type Room struct {
	key   domain.RoomKey
	mu    sync.RWMutex
	bySID map[SessionID]*Session
}

func NewRoom(key domain.RoomKey) *Room {
	return &Room{
		key:   key,
		bySID: make(map[SessionID]*Session),
	}
}

func (r *Room) Key() domain.RoomKey { return r.key }

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *Room) AddMember(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySID[s.ID()] = s
	log.Debug().Str("module", "core.room").Str("room", string(r.key)).Str("sid", string(s.ID())).Msg("member added")
}

func (r *Room) RemoveMember(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bySID, sid)
	log.Debug().Str("module", "core.room").Str("room", string(r.key)).Str("sid", string(sid)).Msg("member removed")
}

func (r *Room) HasMember(sid SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bySID[sid]
	return ok
}

// Broadcast delivers data to every member except from. Delivery is
// best-effort: slow consumers are skipped, never waited on.
func (r *Room) Broadcast(from SessionID, data Frame) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sent := 0
	for sid, m := range r.bySID {
		if sid == from {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			continue
		}
		sent++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.key)).Str("from", string(from)).Int("sent_to", sent).Msg("broadcast result")
	return sent
}

// MembersSnapshot returns the current member sessions without holding the
// lock during any send.
func (r *Room) MembersSnapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.bySID))
	for _, s := range r.bySID {
		out = append(out, s)
	}
	return out
}
