package directory

import (
	"context"
	"sync"

	"github.com/avask/pulse/internal/domain"
)

// Memory is an in-process Directory. It backs tests and runs the server
// without a database; state does not survive a restart.
type Memory struct {
	mu      sync.RWMutex
	users   map[domain.UserID]*domain.User
	friends map[domain.UserID]map[domain.UserID]struct{}
	servers map[domain.UserID][]string
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[domain.UserID]*domain.User),
		friends: make(map[domain.UserID]map[domain.UserID]struct{}),
		servers: make(map[domain.UserID][]string),
	}
}

// AddUser registers a profile. Seeding helper, not part of Directory.
func (m *Memory) AddUser(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

// Befriend records an accepted friendship in both directions.
func (m *Memory) Befriend(a, b domain.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.friends[a] == nil {
		m.friends[a] = make(map[domain.UserID]struct{})
	}
	if m.friends[b] == nil {
		m.friends[b] = make(map[domain.UserID]struct{})
	}
	m.friends[a][b] = struct{}{}
	m.friends[b][a] = struct{}{}
}

// JoinServer records a server membership. Seeding helper.
func (m *Memory) JoinServer(id domain.UserID, serverID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.servers[id] = append(m.servers[id], serverID)
}

func (m *Memory) LookupUser(_ context.Context, id domain.UserID) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) SetUserStatus(_ context.Context, id domain.UserID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (m *Memory) UpdateProfile(_ context.Context, id domain.UserID, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if p.Status != "" {
		u.Status = p.Status
	}
	u.CustomStatus = p.CustomStatus
	u.Activity = p.Activity
	u.ActivityType = p.ActivityType
	return nil
}

func (m *Memory) ListAcceptedFriends(_ context.Context, id domain.UserID) ([]domain.UserID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.friends[id]
	out := make([]domain.UserID, 0, len(set))
	for fid := range set {
		out = append(out, fid)
	}
	return out, nil
}

func (m *Memory) ListUserServerIDs(_ context.Context, id domain.UserID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.servers[id]...), nil
}
