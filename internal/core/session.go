package core

import (
	"sync"

	"github.com/avask/pulse/internal/domain"
)

// Session binds one transport connection to its authenticated user and the
// navigation state the protocol keeps per connection: the current server,
// text channel and voice channel. The user is nil until authentication
// succeeds; every operation requiring an identity must treat a nil user as
// "act as nobody", never as an error.
//
// Handlers for a session run on its read goroutine, but teardown can also be
// triggered by a re-authentication on another connection, so mutable fields
// sit behind a mutex.
type Session struct {
	id   SessionID
	conn SignalConnection

	mu       sync.Mutex
	user     *domain.User
	server   string
	channel  string
	voice    string
	tornDown bool
}

func NewSession(id SessionID, conn SignalConnection) *Session {
	return &Session{id: id, conn: conn}
}

func (s *Session) ID() SessionID            { return s.id }
func (s *Session) Signal() SignalConnection { return s.conn }

// User returns the authenticated identity, or nil.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) SetUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Session) CurrentServer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server
}

func (s *Session) SetCurrentServer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.server = id
}

// CurrentChannel is single-valued: joining a channel implicitly leaves the
// previous one. SwapChannel installs the new id and returns the old one.
func (s *Session) CurrentChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

func (s *Session) SwapChannel(id string) (prev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.channel
	s.channel = id
	return prev
}

// CurrentVoice mirrors CurrentChannel for voice channels.
func (s *Session) CurrentVoice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

func (s *Session) SwapVoice(id string) (prev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.voice
	s.voice = id
	return prev
}

// ClearServer resets the current server only if it still matches id.
func (s *Session) ClearServer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == id {
		s.server = ""
	}
}

// ClearChannel resets the current channel only if it still matches id.
func (s *Session) ClearChannel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel == id {
		s.channel = ""
	}
}

// ClearVoice resets the current voice channel only if it still matches id.
func (s *Session) ClearVoice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice == id {
		s.voice = ""
	}
}

// TornDown reports whether disconnect cleanup has started. Handlers must
// treat a torn-down session as gone: displacement runs teardown from
// another connection's goroutine while this one may still have a frame in
// flight, and state created after cleanup would never be removed.
func (s *Session) TornDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tornDown
}

// BeginTeardown reports whether the caller won the right to run disconnect
// cleanup. It returns true exactly once per session.
func (s *Session) BeginTeardown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return false
	}
	s.tornDown = true
	return true
}
