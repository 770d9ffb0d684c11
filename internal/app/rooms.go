package app

import (
	"sync"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/domain"
)

// RoomInfo is a read-only view for the inspection API.
type RoomInfo struct {
	Key         domain.RoomKey `json:"key"`
	MemberCount int            `json:"member_count"`
}

// Rooms tracks which sessions are subscribed to which broadcast scopes.
// Rooms are created implicitly on first join and pruned once empty; an
// absent room is indistinguishable from an empty one.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]*core.Room
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[domain.RoomKey]*core.Room)}
}

func (f *Rooms) GetOrCreate(key domain.RoomKey) *core.Room {
	f.mu.RLock()
	room, ok := f.rooms[key]
	f.mu.RUnlock()
	if ok {
		return room
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[key]; ok {
		return room
	}
	room = core.NewRoom(key)
	f.rooms[key] = room
	return room
}

// Get returns the room only if it exists; broadcasting to a missing room is
// a no-op for the caller.
func (f *Rooms) Get(key domain.RoomKey) (*core.Room, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[key]
	return room, ok
}

func (f *Rooms) Join(key domain.RoomKey, s *core.Session) *core.Room {
	room := f.GetOrCreate(key)
	room.AddMember(s)
	return room
}

// Leave removes sid from the room and prunes it when empty.
func (f *Rooms) Leave(key domain.RoomKey, sid core.SessionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[key]
	if !ok {
		return
	}
	room.RemoveMember(sid)
	if room.MemberCount() == 0 {
		delete(f.rooms, key)
	}
}

// Broadcast sends data to every member of key except from. Missing rooms
// swallow the broadcast.
func (f *Rooms) Broadcast(key domain.RoomKey, from core.SessionID, data core.Frame) int {
	room, ok := f.Get(key)
	if !ok {
		return 0
	}
	return room.Broadcast(from, data)
}

// Drop removes sid from every room it occupies. Used on disconnect, where
// the transport no longer reports which scopes the session had joined.
func (f *Rooms) Drop(sid core.SessionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, room := range f.rooms {
		room.RemoveMember(sid)
		if room.MemberCount() == 0 {
			delete(f.rooms, key)
		}
	}
}

func (f *Rooms) List() []RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]RoomInfo, 0, len(f.rooms))
	for key, r := range f.rooms {
		out = append(out, RoomInfo{Key: key, MemberCount: r.MemberCount()})
	}
	return out
}
